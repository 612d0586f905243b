package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/deptportal/internal/config"
)

const (
	connectTimeout = 10 * time.Second
	txTimeout      = 30 * time.Second
)

// PostgresDB owns the portal's pgx pool. Repositories take the pool directly;
// multi-statement writes go through WithTransaction.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// PoolConfig maps the database section onto a pgxpool config. Liveness is
// left to the pool's background health check rather than a round trip on
// every acquire.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	dbCfg := cfg.Database
	if dbCfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(dbCfg.MaxOpenConns)
	}
	if dbCfg.MaxIdleConns >= 0 && dbCfg.MaxIdleConns <= dbCfg.MaxOpenConns {
		poolConfig.MinConns = int32(dbCfg.MaxIdleConns)
	}

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"conn_max_lifetime", dbCfg.ConnMaxLifetime, &poolConfig.MaxConnLifetime},
		{"conn_max_idle_time", dbCfg.ConnMaxIdleTime, &poolConfig.MaxConnIdleTime},
		{"health_check_period", dbCfg.HealthCheckPeriod, &poolConfig.HealthCheckPeriod},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.target = v
	}

	return poolConfig, nil
}

// NewPostgresDB opens the pool and verifies the server answers.
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	database := &PostgresDB{Pool: pool}
	if err := database.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return database, nil
}

// Ping checks that a pooled connection can reach the server.
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool not initialised")
	}
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases the pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn inside a read-committed transaction. The error
// from fn is returned as-is so callers can match domain errors; pgx rolls
// back on error or panic.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, txTimeout)
		defer cancel()
	}

	return pgx.BeginTxFunc(ctx, db.Pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}
