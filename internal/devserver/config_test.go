package devserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Users, 1)
	assert.Equal(t, DemoEmail, cfg.Users[0].Email)
	assert.Equal(t, "Demo User", cfg.Users[0].Name)
	assert.Equal(t, []string{"user"}, cfg.Users[0].Roles)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: 127.0.0.1:9999
token_ttl: 15m
users:
  - email: admin@example.com
    name: Admin
    password: hunter2hunter2
    roles: [admin, user]
`), 0o600))

	t.Setenv("AUTHSHELL_DEV_ISSUER", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "from-env", cfg.Issuer)
	require.Len(t, cfg.Users, 1)
	assert.Equal(t, "admin@example.com", cfg.Users[0].Email)
	assert.Equal(t, []string{"admin", "user"}, cfg.Users[0].Roles)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no addr", func(c *Config) { c.Addr = "" }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"zero rate", func(c *Config) { c.LoginRate = 0 }},
		{"cert without key", func(c *Config) { c.TLSCert = "cert.pem" }},
		{"no users", func(c *Config) { c.Users = nil }},
		{"bad email", func(c *Config) { c.Users[0].Email = "nope" }},
		{"both password forms", func(c *Config) { c.Users[0].PasswordHash = "$argon2id$..." }},
		{"no password", func(c *Config) { c.Users[0].Password = "" }},
		{"duplicate", func(c *Config) { c.Users = append(c.Users, c.Users[0]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, ""))
		})
	}
}

func TestLoadConfig_NoFileKeepsDemoUser(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Len(t, cfg.Users, 1)
	assert.Equal(t, DemoEmail, cfg.Users[0].Email)
}
