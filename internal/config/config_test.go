package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, DriverPostgres, cfg.Database.Driver)
	require.True(t, cfg.Registration.EnforceCapacity)
	require.True(t, cfg.Registration.ValidateFields)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL())
	require.Equal(t, "session", cfg.JWT.CookieName)
	require.Equal(t, "1m", cfg.Database.HealthCheckPeriod)
	require.Equal(t, "30m", cfg.Database.ConnMaxIdleTime)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  port: "9000"
database:
  driver: memory
jwt:
  secret: from-file
registration:
  enforce_capacity: false
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REGISTRATION_VALIDATE_FIELDS", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "9100", cfg.Server.Port)
	require.Equal(t, DriverMemory, cfg.Database.Driver)
	require.Equal(t, "from-file", cfg.JWT.Secret)
	require.False(t, cfg.Registration.EnforceCapacity)
	require.False(t, cfg.Registration.ValidateFields)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "sqlite"}},
		{name: "bad session duration", env: map[string]string{"JWT_SECRET": "x", "JWT_SESSION_EXPIRATION": "tomorrow"}},
		{name: "bad integer", env: map[string]string{"JWT_SECRET": "x", "DB_MAX_IDLE_CONNS": "many"}},
		{name: "bad health check period", env: map[string]string{"JWT_SECRET": "x", "DB_HEALTH_CHECK_PERIOD": "often"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
			require.Error(t, err)
		})
	}
}
