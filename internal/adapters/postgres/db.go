package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DB holds the connection pool.
type DB struct {
	pool *pgxpool.Pool
	sq   sq.StatementBuilderType
	log  zerolog.Logger
}

// NewDB creates and tests a new database connection.
func NewDB(ctx context.Context, connString string, baseLogger *zerolog.Logger) (*DB, error) {
	log := baseLogger.With().Str("component", "postgres").Logger()

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse DB connection string")
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create connection pool")
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to ping database")
		pool.Close()
		return nil, err
	}

	log.Info().Int32("max_conns", poolConfig.MaxConns).Msg("Database connection pool established")
	return &DB{
		pool: pool,
		sq:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		log:  log,
	}, nil
}

// withConn acquires a pooled connection for the duration of fn.
// The connection goes back to the pool on every path.
func (db *DB) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// Close gracefully closes the connection pool.
func (db *DB) Close() {
	db.log.Info().Msg("Closing database connection pool")
	db.pool.Close()
}
