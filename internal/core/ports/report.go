package ports

import (
	"MathBot/internal/core/domain"
	"context"
	"iter"
)

// ReportRepository defines the persistence operations for Reports.
type ReportRepository interface {
	// Create saves a new report and fills in its ID and CreatedAt.
	Create(ctx context.Context, report *domain.Report) error

	// GetByID returns nil, nil when the report does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Report, error)

	// ListByStatus yields reports with the given status in store order.
	// The sequence is lazy and meant to be consumed once.
	ListByStatus(ctx context.Context, status domain.ReportStatus) iter.Seq2[*domain.Report, error]

	// UpdateStatus moves a report from one status to another and sets its
	// link. It returns domain.ErrStatusConflict when the stored status is
	// no longer 'from'.
	UpdateStatus(ctx context.Context, id int64, from, to domain.ReportStatus, link *string) error
}
