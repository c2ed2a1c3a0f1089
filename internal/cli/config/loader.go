// Package config defines the authshell configuration structure.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/infra/confloader"
)

// HomeDir returns the authshell state directory (~/.authshell).
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".authshell")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load reads configuration from defaults, the YAML file at path, AUTHSHELL_*
// environment variables and finally the flag overrides (dotted keys).
//
// An empty path means DefaultConfigPath, which may be absent. An explicit
// path must exist.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	opts := []confloader.Option{}
	if path == "" {
		opts = append(opts, confloader.WithConfigFile(DefaultConfigPath()), confloader.WithOptionalFile())
	} else {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the shell cannot run with.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("api.base_url %q must be an http(s) URL", cfg.API.BaseURL))
	}

	for name, p := range map[string]string{
		"api.login_path":   cfg.API.LoginPath,
		"api.verify_path":  cfg.API.VerifyPath,
		"api.logout_path":  cfg.API.LogoutPath,
		"routes.login":     cfg.Routes.Login,
		"routes.protected": cfg.Routes.Protected,
	} {
		if !strings.HasPrefix(p, "/") {
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s %q must start with /", name, p))
		}
	}

	if cfg.API.Timeout < 0 {
		return domain.ErrInvalidArgument.WithDetails("api.timeout must not be negative")
	}
	if cfg.Store.Dir == "" {
		return domain.ErrMissingArgument.WithDetails("store.dir")
	}
	if cfg.Store.Encrypt && cfg.Store.KeyFile == "" {
		return domain.ErrMissingArgument.WithDetails("store.key_file is required when store.encrypt is set")
	}

	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("output %q must be table, json or yaml", cfg.Output))
	}

	return nil
}
