// Package workflow implements the bug report lifecycle: submission, admin
// review and the link confirmation that precedes acceptance.
package workflow

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Workflow drives reports through NEW, ACCEPTED, REJECTED and CLOSED.
type Workflow struct {
	users   ports.UserRepository
	reports ports.ReportRepository
	bus     ports.EventBus
	log     zerolog.Logger

	mu      sync.Mutex
	reviews map[int64]*linkReview
}

// New creates a report workflow. bus may be nil.
func New(
	users ports.UserRepository,
	reports ports.ReportRepository,
	bus ports.EventBus,
	baseLogger *zerolog.Logger,
) *Workflow {
	return &Workflow{
		users:   users,
		reports: reports,
		bus:     bus,
		log:     baseLogger.With().Str("component", "report_workflow").Logger(),
		reviews: make(map[int64]*linkReview),
	}
}

// Submit stores a NEW report owned by author, creating the user on first use.
func (w *Workflow) Submit(ctx context.Context, author *domain.User, text string) (*domain.Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyReport
	}

	user, err := w.users.GetOrCreate(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("get or create reporter: %w", err)
	}

	report := &domain.Report{
		UserID: user.ID,
		Text:   text,
		Status: domain.ReportNew,
	}
	if err := w.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	w.log.Info().Int64("report_id", report.ID).Int64("user_id", user.ID).Msg("Report submitted")
	w.publish(ctx, ports.TopicReportSubmitted, report)
	return report, nil
}

// ListByStatus yields the reports of one status bucket in store order.
func (w *Workflow) ListByStatus(ctx context.Context, status domain.ReportStatus) iter.Seq2[*domain.Report, error] {
	return w.reports.ListByStatus(ctx, status)
}

// DropReviews discards every open link review and returns how many there
// were. Reviews left unconfirmed stay in memory until this runs.
func (w *Workflow) DropReviews() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.reviews)
	clear(w.reviews)
	if n > 0 {
		w.log.Info().Int("count", n).Msg("Abandoned link reviews dropped")
	}
	return n
}

// Get returns a report or domain.ErrReportNotFound.
func (w *Workflow) Get(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := w.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", reportID, err)
	}
	if report == nil {
		return nil, domain.ErrReportNotFound
	}
	return report, nil
}

// BeginAccept opens a link review for a NEW report. A review already in
// progress for the report starts over.
func (w *Workflow) BeginAccept(ctx context.Context, reportID int64) error {
	report, err := w.Get(ctx, reportID)
	if err != nil {
		return err
	}
	if _, err := NextStatus(ctx, report, domain.ActionAccept); err != nil {
		return err
	}

	w.mu.Lock()
	w.reviews[reportID] = newLinkReview(reportID)
	w.mu.Unlock()

	w.log.Info().Int64("report_id", reportID).Msg("Link review started")
	return nil
}

// ProposeLink records the candidate link and waits for confirmation.
func (w *Workflow) ProposeLink(ctx context.Context, reportID int64, link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return domain.ErrEmptyLink
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	review, ok := w.reviews[reportID]
	if !ok {
		return domain.ErrNoLinkReview
	}
	if err := review.machine.Event(ctx, eventPropose, link); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoLinkReview, err)
	}
	return nil
}

// PendingLink returns the link awaiting confirmation, if any.
func (w *Workflow) PendingLink(reportID int64) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	review, ok := w.reviews[reportID]
	if !ok || review.state() != reviewAwaitingConfirmation {
		return "", false
	}
	return review.link, true
}

// DeclineLink discards the candidate link; the review waits for a new one.
func (w *Workflow) DeclineLink(ctx context.Context, reportID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	review, ok := w.reviews[reportID]
	if !ok {
		return domain.ErrNoLinkReview
	}
	if err := review.machine.Event(ctx, eventDecline); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoLinkReview, err)
	}
	return nil
}

// ConfirmLink commits NEW -> ACCEPTED together with the confirmed link.
func (w *Workflow) ConfirmLink(ctx context.Context, reportID int64) (*domain.Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	review, ok := w.reviews[reportID]
	if !ok || !review.machine.Can(eventConfirm) {
		return nil, domain.ErrNoLinkReview
	}

	report, err := w.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	link := review.link
	updated, err := w.transition(ctx, report, domain.ActionAccept, &link)
	if err != nil {
		if isTerminal(err) {
			delete(w.reviews, reportID)
		}
		return nil, err
	}

	if err := review.machine.Event(ctx, eventConfirm); err != nil {
		w.log.Warn().Err(err).Int64("report_id", reportID).Msg("Link review did not reach committed")
	}
	delete(w.reviews, reportID)
	return updated, nil
}

// Reject moves a NEW report to REJECTED without any confirmation.
func (w *Workflow) Reject(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := w.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	updated, err := w.transition(ctx, report, domain.ActionReject, nil)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	delete(w.reviews, reportID)
	w.mu.Unlock()
	return updated, nil
}

// Close moves an ACCEPTED report to CLOSED, keeping its link. Any other
// status yields domain.ErrNotConfirmed and nothing changes.
func (w *Workflow) Close(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := w.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportAccepted {
		return nil, domain.ErrNotConfirmed
	}
	return w.transition(ctx, report, domain.ActionClose, report.Link)
}

// transition persists one lifecycle move. The store update is conditional
// on the status read here.
func (w *Workflow) transition(ctx context.Context, report *domain.Report, action domain.ReportAction, link *string) (*domain.Report, error) {
	next, err := NextStatus(ctx, report, action)
	if err != nil {
		return nil, err
	}

	if err := w.reports.UpdateStatus(ctx, report.ID, report.Status, next, link); err != nil {
		return nil, fmt.Errorf("update report %d: %w", report.ID, err)
	}

	from := report.Status
	updated := *report
	updated.Status = next
	updated.Link = link

	w.log.Info().
		Int64("report_id", report.ID).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("Report status changed")
	w.publish(ctx, ports.TopicReportStatusChanged, &domain.ReportStatusChanged{Report: &updated, From: from})
	return &updated, nil
}

func (w *Workflow) publish(ctx context.Context, topic string, data interface{}) {
	if w.bus == nil {
		return
	}
	if err := w.bus.Publish(ctx, topic, data); err != nil {
		w.log.Error().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}

// isTerminal reports whether a review can never commit after err.
func isTerminal(err error) bool {
	return errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrStatusConflict) ||
		errors.Is(err, domain.ErrReportNotFound)
}
