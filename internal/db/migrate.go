package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/samruddhi/pipecut/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Both backends speak the SQLite dialect, so one driver serves them.
func newMigrator(database Database) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(database.DB(), &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration. The migrator is not
// closed because closing it would close the shared pool.
func RunMigrations(ctx context.Context, database Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := newMigrator(database)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Schema up to date on %s", database.Target())
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied on %s", database.Target())
	return nil
}

// MigrationVersion reports the applied schema version. A database with no
// migrations yet reports version 0.
func MigrationVersion(ctx context.Context, database Database) (uint, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	m, err := newMigrator(database)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, nil
}
