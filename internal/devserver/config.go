package devserver

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/gundaabinav333/authshell/internal/core/domain"
	"github.com/gundaabinav333/authshell/internal/infra/confloader"
)

// EnvPrefix is the environment prefix for devserver settings.
const EnvPrefix = "AUTHSHELL_DEV_"

// Config is the devserver configuration.
type Config struct {
	Addr string `koanf:"addr" yaml:"addr"`

	// Secret signs tokens. Empty means a random secret per process, which
	// invalidates every token on restart.
	Secret   string        `koanf:"secret" yaml:"secret"`
	Issuer   string        `koanf:"issuer" yaml:"issuer"`
	TokenTTL time.Duration `koanf:"token_ttl" yaml:"token_ttl"`

	LoginRate  float64 `koanf:"login_rate" yaml:"login_rate"`
	LoginBurst int     `koanf:"login_burst" yaml:"login_burst"`

	TLSCert string `koanf:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `koanf:"tls_key" yaml:"tls_key"`

	Users []UserConfig `koanf:"users" yaml:"users"`

	Log struct {
		Level  string `koanf:"level" yaml:"level"`
		Format string `koanf:"format" yaml:"format"`
	} `koanf:"log" yaml:"log"`
}

// UserConfig seeds one user. Exactly one of Password and PasswordHash is
// expected; PasswordHash is an argon2id PHC string.
type UserConfig struct {
	Email        string   `koanf:"email" yaml:"email"`
	Name         string   `koanf:"name" yaml:"name"`
	Password     string   `koanf:"password" yaml:"password"`
	PasswordHash string   `koanf:"password_hash" yaml:"password_hash"`
	Roles        []string `koanf:"roles" yaml:"roles"`
	Avatar       string   `koanf:"avatar" yaml:"avatar"`
}

// DemoEmail and DemoPassword are the built-in development login.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo-password"
)

// DefaultConfig returns a config with the demo user.
func DefaultConfig() *Config {
	cfg := &Config{
		Addr:       "127.0.0.1:8080",
		Issuer:     "authshell-devserver",
		TokenTTL:   time.Hour,
		LoginRate:  1,
		LoginBurst: 5,
		Users: []UserConfig{{
			Email:    DemoEmail,
			Name:     "Demo User",
			Password: DemoPassword,
			Roles:    []string{"user"},
		}},
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// LoadConfig reads defaults, then the YAML file at path (if any), then
// AUTHSHELL_DEV_* variables. Configured users replace the demo user.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	demo := cfg.Users
	cfg.Users = nil

	opts := []confloader.Option{confloader.WithEnvPrefix(EnvPrefix)}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if len(cfg.Users) == 0 {
		cfg.Users = demo
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return domain.ErrMissingArgument.WithDetails("addr")
	}
	if c.TokenTTL <= 0 {
		return domain.ErrInvalidArgument.WithDetails("token_ttl must be positive")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return domain.ErrInvalidArgument.WithDetails("login_rate and login_burst must be positive")
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return domain.ErrInvalidArgument.WithDetails("tls_cert and tls_key go together")
	}
	if len(c.Users) == 0 {
		return domain.ErrMissingArgument.WithDetails("at least one user")
	}

	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("users[%d].email %q", i, u.Email))
		}
		key := normalizeEmail(u.Email)
		if seen[key] {
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("duplicate user %s", u.Email))
		}
		seen[key] = true
		if (u.Password == "") == (u.PasswordHash == "") {
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("users[%d] needs exactly one of password, password_hash", i))
		}
	}
	return nil
}
