// Package config defines the authshell configuration structure.
package config

import (
	"time"
)

// Config is the configuration for the authshell CLI and web shell.
type Config struct {
	API    APIConfig    `koanf:"api" yaml:"api" json:"api"`
	Store  StoreConfig  `koanf:"store" yaml:"store" json:"store"`
	Routes RoutesConfig `koanf:"routes" yaml:"routes" json:"routes"`
	Serve  ServeConfig  `koanf:"serve" yaml:"serve" json:"serve"`
	Log    LogConfig    `koanf:"log" yaml:"log" json:"log"`
	Output string       `koanf:"output" yaml:"output" json:"output"` // table, json, yaml
}

// APIConfig locates the authentication server.
type APIConfig struct {
	BaseURL    string `koanf:"base_url" yaml:"base_url" json:"base_url"`
	LoginPath  string `koanf:"login_path" yaml:"login_path" json:"login_path"`
	VerifyPath string `koanf:"verify_path" yaml:"verify_path" json:"verify_path"`
	LogoutPath string `koanf:"logout_path" yaml:"logout_path" json:"logout_path"`

	// Timeout bounds each outbound call. Zero means no timeout.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" json:"timeout"`

	// CAFile is an optional PEM bundle trusted in addition to system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file" json:"ca_file"`
}

// StoreConfig configures the durable session store.
type StoreConfig struct {
	// Dir is the badger directory holding the persisted session.
	Dir string `koanf:"dir" yaml:"dir" json:"dir"`

	// Encrypt seals persisted values with a key kept in KeyFile.
	Encrypt bool   `koanf:"encrypt" yaml:"encrypt" json:"encrypt"`
	KeyFile string `koanf:"key_file" yaml:"key_file" json:"key_file"`

	// GCInterval is the badger value-log GC period.
	GCInterval time.Duration `koanf:"gc_interval" yaml:"gc_interval" json:"gc_interval"`
}

// RoutesConfig names the navigation targets of the shell.
type RoutesConfig struct {
	Login     string `koanf:"login" yaml:"login" json:"login"`
	Protected string `koanf:"protected" yaml:"protected" json:"protected"`
	Forbidden string `koanf:"forbidden" yaml:"forbidden" json:"forbidden"`
}

// ServeConfig configures the local web shell.
type ServeConfig struct {
	Addr string `koanf:"addr" yaml:"addr" json:"addr"`

	// RequireRoles restricts the protected route to users holding any of
	// these roles. Empty means any authenticated user.
	RequireRoles []string `koanf:"require_roles" yaml:"require_roles" json:"require_roles"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"` // text, json
}

// Default returns the default configuration.
func Default() *Config {
	home := HomeDir()
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			LoginPath:  "/api/login",
			VerifyPath: "/api/verify-token",
			LogoutPath: "/api/logout",
		},
		Store: StoreConfig{
			Dir:        home + "/session",
			Encrypt:    true,
			KeyFile:    home + "/session.key",
			GCInterval: 10 * time.Minute,
		},
		Routes: RoutesConfig{
			Login:     "/login",
			Protected: "/dashboard",
			Forbidden: "/forbidden",
		},
		Serve: ServeConfig{
			Addr:            "127.0.0.1:3000",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: "table",
	}
}
