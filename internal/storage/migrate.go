package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// withMigrator opens a dedicated connection for golang-migrate, since closing
// the migrator also closes the database it was given.
func withMigrator(d Dialect, dsn string, fn func(*migrate.Migrate) error) error {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}

	var (
		driverName string
		m          *migrate.Migrate
	)
	src, err := iofs.New(migrationsFS, "migrations/"+string(d))
	if err != nil {
		db.Close()
		return fmt.Errorf("create iofs source: %w", err)
	}

	switch d {
	case DialectSQLite:
		driverName = "sqlite"
		drv, err := sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			db.Close()
			return fmt.Errorf("create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, driverName, drv)
		if err != nil {
			db.Close()
			return fmt.Errorf("create migrate instance: %w", err)
		}
	case DialectPostgres:
		driverName = "pgx5"
		drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
		if err != nil {
			db.Close()
			return fmt.Errorf("create pgx driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, driverName, drv)
		if err != nil {
			db.Close()
			return fmt.Errorf("create migrate instance: %w", err)
		}
	default:
		db.Close()
		return fmt.Errorf("unsupported dialect %q", d)
	}
	defer m.Close()

	return fn(m)
}

// RunMigrations applies every pending up migration.
func RunMigrations(d Dialect, dsn string) error {
	return withMigrator(d, dsn, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("run migrations: %w", err)
		}
		return nil
	})
}

// resetSchema migrates all the way down and back up.
func resetSchema(d Dialect, dsn string) error {
	return withMigrator(d, dsn, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate up: %w", err)
		}
		return nil
	})
}
