package postgres

import (
	"context"

	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type callRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.CallRecorder = (*callRepository)(nil) // Ensure compliance

// NewCallRepository creates the usage statistics store.
func NewCallRepository(db *DB, baseLogger *zerolog.Logger) ports.CallRecorder {
	return &callRepository{
		db:  db,
		log: baseLogger.With().Str("component", "call_repo").Logger(),
	}
}

// Record stores one handler invocation.
func (r *callRepository) Record(ctx context.Context, call *domain.FunctionCall) error {
	if call.ID == uuid.Nil {
		call.ID = uuid.New()
	}

	query, args, err := r.db.sq.Insert("function_calls").
		Columns("id", "name", "user_id", "result").
		Values(call.ID, call.Name, call.UserID, call.Result).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return err
	}

	err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&call.CreatedAt)
	})
	if err != nil {
		r.log.Error().Err(err).Str("name", call.Name).Msg("Failed to record function call")
	}
	return err
}
