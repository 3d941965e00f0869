package postgres

import (
	"context"
	"errors"

	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type userRepository struct {
	db     *DB
	secSvc ports.SecurityPort // names are stored encrypted
	log    zerolog.Logger
}

var _ ports.UserRepository = (*userRepository)(nil) // Ensure compliance

// NewUserRepository creates a new repository for user operations.
func NewUserRepository(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "user_repo").Logger(),
	}
}

// GetOrCreate inserts the user unless the id is already stored, then
// returns the stored row.
func (r *userRepository) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	lastName, err := r.encrypt(user.LastName)
	if err != nil {
		return nil, err
	}
	firstName, err := r.encrypt(user.FirstName)
	if err != nil {
		return nil, err
	}
	username, err := r.encrypt(user.Username)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, last_name, first_name, username)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(ctx, query, user.ID, lastName, firstName, username)
		return err
	})
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to insert user")
		return nil, err
	}

	return r.GetByID(ctx, user.ID)
}

const userQueryCols = `id, last_name, first_name, username, created_at`

// GetByID finds and decrypts a user by their Telegram ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userQueryCols + ` FROM users WHERE id = $1`

	var user *domain.User
	err := r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		user, err = r.scanUser(conn.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Debug().Int64("user_id", id).Msg("User not found")
			return nil, nil // Return nil, nil for "not found"
		}
		return nil, err
	}
	return user, nil
}

// ListIDs returns every stored user id in insertion order.
func (r *userRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, `SELECT id FROM users ORDER BY created_at, id`)
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[int64])
		return err
	})
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list user ids")
		return nil, err
	}
	return ids, nil
}

// scanUser scans a row into a User and decrypts the name fields.
func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var encLast, encFirst, encUsername *string

	if err := row.Scan(&user.ID, &encLast, &encFirst, &encUsername, &user.CreatedAt); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.log.Error().Err(err).Msg("Failed to scan user row")
		}
		return nil, err
	}

	var err error
	if user.LastName, err = r.decrypt(user.ID, encLast); err != nil {
		return nil, err
	}
	if user.FirstName, err = r.decrypt(user.ID, encFirst); err != nil {
		return nil, err
	}
	if user.Username, err = r.decrypt(user.ID, encUsername); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) encrypt(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	enc, err := r.secSvc.EncryptString(*value)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to encrypt user field")
		return nil, err
	}
	return &enc, nil
}

func (r *userRepository) decrypt(userID int64, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	dec, err := r.secSvc.DecryptString(*value)
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to decrypt user field (tampered?)")
		return nil, err
	}
	return &dec, nil
}
