package memory

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"maps"
	"sync"
)

// stepStore keeps pending steps in a map keyed by chat id.
type stepStore struct {
	mu    sync.Mutex
	steps map[int64]domain.PendingStep
}

var _ ports.StepStore = (*stepStore)(nil)

// NewStepStore creates an empty in-memory step store.
func NewStepStore() ports.StepStore {
	return &stepStore{steps: make(map[int64]domain.PendingStep)}
}

func (s *stepStore) Save(_ context.Context, step *domain.PendingStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *step
	stored.Args = maps.Clone(step.Args)
	s.steps[step.ChatID] = stored
	return nil
}

func (s *stepStore) Take(_ context.Context, chatID int64) (*domain.PendingStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, ok := s.steps[chatID]
	if !ok {
		return nil, nil
	}
	delete(s.steps, chatID)
	return &step, nil
}

func (s *stepStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.steps, chatID)
	return nil
}
