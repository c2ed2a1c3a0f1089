// Package config provides the authshell configuration.
//
//   - spec.go: Config struct and defaults (~/.authshell/config.yaml)
//   - loader.go: loading through confloader and validation
//
// Example file:
//
//	api:
//	  base_url: https://auth.example.com
//	  timeout: 15s
//	store:
//	  dir: /var/lib/authshell/session
//	serve:
//	  addr: 127.0.0.1:3000
//	  require_roles: [user]
//	log:
//	  level: info
package config
