package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/yigit/deptportal/internal/pkg/logger"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrator applies the embedded schema migrations
type Migrator struct {
	databaseURL string
}

// NewMigrator creates a new migrator for the given postgres:// URL
func NewMigrator(databaseURL string) *Migrator {
	return &Migrator{databaseURL: databaseURL}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return mg, nil
}

func closeMigrator(mg *migrate.Migrate) {
	sourceErr, dbErr := mg.Close()
	if sourceErr != nil {
		logger.Warn().Err(sourceErr).Msg("Failed to close migration source")
	}
	if dbErr != nil {
		logger.Warn().Err(dbErr).Msg("Failed to close migration database")
	}
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer closeMigrator(mg)

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema is up to date")
	return nil
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrate down: steps must be > 0")
	}
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer closeMigrator(mg)

	if err := mg.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}
