// Package conversation turns independent chat messages into multi-step
// dialogues. A handler that needs one more piece of input registers a
// continuation for the chat; the chat's next message is handed to it.
package conversation

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"maps"

	"github.com/rs/zerolog"
)

// Registry maps a chat id to its pending continuation.
type Registry struct {
	store ports.StepStore
	log   zerolog.Logger
}

// NewRegistry wraps a step store.
func NewRegistry(store ports.StepStore, baseLogger *zerolog.Logger) *Registry {
	return &Registry{
		store: store,
		log:   baseLogger.With().Str("component", "step_registry").Logger(),
	}
}

// Register stores a continuation for the chat, replacing any pending one.
func (r *Registry) Register(ctx context.Context, chatID int64, kind domain.StepKind, args map[string]string) error {
	step := &domain.PendingStep{ChatID: chatID, Kind: kind, Args: maps.Clone(args)}
	if err := r.store.Save(ctx, step); err != nil {
		return err
	}
	r.log.Debug().Int64("chat_id", chatID).Str("step", string(kind)).Msg("Registered continuation")
	return nil
}

// Take removes the chat's continuation and returns it. The entry is gone
// before the caller invokes it, so a duplicate message cannot run it twice.
func (r *Registry) Take(ctx context.Context, chatID int64) (*domain.PendingStep, error) {
	return r.store.Take(ctx, chatID)
}

// Clear drops the chat's continuation without invoking it.
func (r *Registry) Clear(ctx context.Context, chatID int64) error {
	if err := r.store.Delete(ctx, chatID); err != nil {
		return err
	}
	r.log.Debug().Int64("chat_id", chatID).Msg("Cleared continuation")
	return nil
}
