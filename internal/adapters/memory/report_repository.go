package memory

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"iter"
	"sync"
	"time"
)

type reportRepository struct {
	mu      sync.RWMutex
	nextID  int64
	reports []*domain.Report
}

var _ ports.ReportRepository = (*reportRepository)(nil)

// NewReportRepository creates an in-memory report store. IDs start at 1.
func NewReportRepository() ports.ReportRepository {
	return &reportRepository{nextID: 1}
}

func (r *reportRepository) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report.ID = r.nextID
	r.nextID++
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	r.reports = append(r.reports, copyReport(report))
	return nil
}

func (r *reportRepository) GetByID(_ context.Context, id int64) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if stored := r.find(id); stored != nil {
		return copyReport(stored), nil
	}
	return nil, nil
}

func (r *reportRepository) ListByStatus(_ context.Context, status domain.ReportStatus) iter.Seq2[*domain.Report, error] {
	return func(yield func(*domain.Report, error) bool) {
		r.mu.RLock()
		var matched []*domain.Report
		for _, report := range r.reports {
			if report.Status == status {
				matched = append(matched, copyReport(report))
			}
		}
		r.mu.RUnlock()

		for _, report := range matched {
			if !yield(report, nil) {
				return
			}
		}
	}
}

func (r *reportRepository) UpdateStatus(_ context.Context, id int64, from, to domain.ReportStatus, link *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.find(id)
	if stored == nil {
		return domain.ErrReportNotFound
	}
	if stored.Status != from {
		return domain.ErrStatusConflict
	}
	stored.Status = to
	stored.Link = copyLink(link)
	return nil
}

func (r *reportRepository) find(id int64) *domain.Report {
	for _, report := range r.reports {
		if report.ID == id {
			return report
		}
	}
	return nil
}

func copyReport(r *domain.Report) *domain.Report {
	c := *r
	c.Link = copyLink(r.Link)
	return &c
}

func copyLink(link *string) *string {
	if link == nil {
		return nil
	}
	l := *link
	return &l
}
