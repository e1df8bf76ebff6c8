package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  env: production
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/placement"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
email:
  provider: smtp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL())
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Contains(t, cfg.Upload.ResumeTypes, "application/pdf")
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "from-file"
jwt:
  secret: "file-secret"
`)
	t.Setenv("DATABASE_URL", "from-env")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.edu,https://b.edu")
	t.Setenv("FIRST_ADMIN_EMAIL", "root@university.edu")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.DSN)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "root@university.edu", cfg.FirstAdminEmail)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/placement")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "mock", cfg.Email.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database url"},
		{"bad driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unsupported database driver"},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "jwt secret"},
		{"short secret in production", func(c *Config) { c.Server.Env = "production"; c.JWT.Secret = "short" }, "at least 32"},
		{"bad email provider", func(c *Config) { c.Email.Provider = "pigeon" }, "email provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Database.DSN = "dsn"
			cfg.JWT.Secret = "secret"
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
