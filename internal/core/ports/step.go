package ports

import (
	"MathBot/internal/core/domain"
	"context"
)

// StepStore keeps at most one pending continuation per chat.
type StepStore interface {
	// Save stores the step, replacing any step already pending for its chat.
	Save(ctx context.Context, step *domain.PendingStep) error

	// Take removes and returns the chat's pending step, or nil when none.
	Take(ctx context.Context, chatID int64) (*domain.PendingStep, error)

	// Delete removes the chat's pending step without returning it.
	Delete(ctx context.Context, chatID int64) error
}
