package memory

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"slices"
	"sync"
	"time"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[int64]domain.User
	order []int64
}

var _ ports.UserRepository = (*userRepository)(nil)

// NewUserRepository creates an in-memory user store.
func NewUserRepository() ports.UserRepository {
	return &userRepository{users: make(map[int64]domain.User)}
}

func (r *userRepository) GetOrCreate(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[user.ID]; ok {
		return &existing, nil
	}

	created := *user
	created.CreatedAt = time.Now().UTC()
	r.users[user.ID] = created
	r.order = append(r.order, user.ID)
	return &created, nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order), nil
}
