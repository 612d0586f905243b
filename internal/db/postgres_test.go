package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/config"
)

func poolTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "portal"
	cfg.Database.Password = "portal"
	cfg.Database.DBName = "portal"
	cfg.Database.MaxOpenConns = 12
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = "45m"
	cfg.Database.ConnMaxIdleTime = "10m"
	cfg.Database.HealthCheckPeriod = "15s"
	return cfg
}

func TestPoolConfigUsesDatabaseSettings(t *testing.T) {
	pc, err := PoolConfig(poolTestConfig())
	require.NoError(t, err)

	require.EqualValues(t, 12, pc.MaxConns)
	require.EqualValues(t, 3, pc.MinConns)
	require.Equal(t, 45*time.Minute, pc.MaxConnLifetime)
	require.Equal(t, 10*time.Minute, pc.MaxConnIdleTime)
	require.Equal(t, 15*time.Second, pc.HealthCheckPeriod)
	require.Nil(t, pc.BeforeAcquire, "acquire must not cost a round trip")
}

func TestPoolConfigKeepsPgxDefaultsWhenUnset(t *testing.T) {
	cfg := poolTestConfig()
	cfg.Database.ConnMaxIdleTime = ""
	cfg.Database.HealthCheckPeriod = ""

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, pc.MaxConnIdleTime)
	require.Equal(t, time.Minute, pc.HealthCheckPeriod)
}

func TestPoolConfigRejectsBadDuration(t *testing.T) {
	cfg := poolTestConfig()
	cfg.Database.HealthCheckPeriod = "often"

	_, err := PoolConfig(cfg)
	require.ErrorContains(t, err, "health_check_period")
}

func TestPingWithoutPool(t *testing.T) {
	var database *PostgresDB
	require.Error(t, database.Ping(context.Background()))
	require.Error(t, (&PostgresDB{}).Ping(context.Background()))
}
