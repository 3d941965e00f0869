package domain

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid report status transition")
	ErrNotConfirmed      = errors.New("report is not confirmed yet")
	ErrStatusConflict    = errors.New("report status changed concurrently")

	ErrEmptyReport  = errors.New("report text is empty")
	ErrEmptyLink    = errors.New("link is empty")
	ErrNoLinkReview = errors.New("no link review in progress for report")
)

// TransitionError describes a refused lifecycle event.
type TransitionError struct {
	ReportID int64
	From     ReportStatus
	Action   ReportAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("report %d: cannot %s from status %s", e.ReportID, e.Action, e.From)
}
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
