// Package command defines the authshell CLI using urfave/cli/v2.
//
//   - root.go: the App, global flags and the shared runtime
//   - login.go: login, logout
//   - status.go: status, whoami
//   - serve.go: the local web shell
//   - config.go: config show|path
//   - version.go: build information
//
// Every command that touches the session builds one controller over the
// configured store, restores the persisted session, and acts on it.
package command
