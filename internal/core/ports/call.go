package ports

import (
	"MathBot/internal/core/domain"
	"context"
)

// CallRecorder stores usage statistics of terminal handlers.
type CallRecorder interface {
	Record(ctx context.Context, call *domain.FunctionCall) error
}
