package domain

import (
	"time"

	"github.com/google/uuid"
)

// FunctionCall records one invocation of a terminal math handler.
type FunctionCall struct {
	ID        uuid.UUID
	Name      string
	UserID    int64
	Result    string // Empty when the handler answered with an error message
	CreatedAt time.Time
}
