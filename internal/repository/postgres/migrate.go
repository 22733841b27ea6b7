package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"dataroom/internal/repository/postgres/migrations"
)

const migrationsTable = "schema_migrations"

// RunMigrations applies every pending embedded migration.
// golang-migrate takes an advisory lock, so concurrent instances are safe.
func RunMigrations(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	logger.Info("running database migrations")

	m, db, err := newMigrate(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get migration version: %w", err)
	}
	logger.Info("schema version", "version", version, "dirty", dirty)
	if dirty {
		logger.Warn("database schema is in dirty state, manual intervention may be required")
	}

	return nil
}

// DropAll rolls back every migration, removing all tables.
func DropAll(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	m, db, err := newMigrate(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}

	logger.Info("all tables dropped")
	return nil
}

func newMigrate(ctx context.Context, databaseURL string) (*migrate.Migrate, *sql.DB, error) {
	// golang-migrate needs database/sql
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create postgres driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return m, db, nil
}
