package postgres

import (
	"errors"
	"fmt"
	"strings"

	"MathBot/internal/adapters/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// NewMigrator opens a migration session against connString.
func NewMigrator(connString string, baseLogger *zerolog.Logger) (*Migrator, error) {
	log := baseLogger.With().Str("component", "migrator").Logger()

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(connString))
	if err != nil {
		return nil, fmt.Errorf("create migration: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations. No pending migrations is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info().Msg("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	mg.log.Info().Msg("Migrations applied")
	return nil
}

// Down rolls back every migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return errors.New("no migrations to roll back")
		}
		return fmt.Errorf("roll back migrations: %w", err)
	}
	mg.log.Info().Msg("Migrations rolled back")
	return nil
}

// Version returns the current schema version.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// pgx5URL rewrites a postgres:// URL to the scheme the pgx v5 driver registers.
func pgx5URL(connString string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(connString, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return connString
}
