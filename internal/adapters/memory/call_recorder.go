package memory

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"sync"
)

// CallRecorder keeps function call statistics in memory.
type CallRecorder struct {
	mu    sync.Mutex
	calls []domain.FunctionCall
}

var _ ports.CallRecorder = (*CallRecorder)(nil)

func NewCallRecorder() *CallRecorder {
	return &CallRecorder{}
}

func (r *CallRecorder) Record(_ context.Context, call *domain.FunctionCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, *call)
	return nil
}

// Calls returns a snapshot of the recorded calls.
func (r *CallRecorder) Calls() []domain.FunctionCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.FunctionCall, len(r.calls))
	copy(out, r.calls)
	return out
}
