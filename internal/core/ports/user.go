package ports

import (
	"MathBot/internal/core/domain"
	"context"
)

// UserRepository defines the persistence operations for Users.
type UserRepository interface {
	// GetOrCreate returns the stored user with user.ID, creating it first
	// when absent. Calling it twice never creates a duplicate.
	GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID finds a user by their Telegram ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// ListIDs returns the ids of every stored user.
	ListIDs(ctx context.Context) ([]int64, error)
}
