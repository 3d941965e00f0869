package domain

import "time"

// ReportStatus is a custom type for the report lifecycle ENUM
type ReportStatus string

const (
	ReportNew      ReportStatus = "NEW"
	ReportAccepted ReportStatus = "ACCEPTED"
	ReportRejected ReportStatus = "REJECTED"
	ReportClosed   ReportStatus = "CLOSED"
)

// ReportStatuses lists every status in menu order.
var ReportStatuses = []ReportStatus{ReportNew, ReportAccepted, ReportRejected, ReportClosed}

// ParseReportStatus converts a raw status token into a ReportStatus.
func ParseReportStatus(raw string) (ReportStatus, bool) {
	for _, s := range ReportStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// ReportAction is an admin action on a report. The values double as
// callback tokens.
type ReportAction string

const (
	ActionAccept ReportAction = "accept_report"
	ActionReject ReportAction = "reject_report"
	ActionClose  ReportAction = "close_report"
)

// Report is a user-submitted bug description.
type Report struct {
	ID        int64
	UserID    int64
	Text      string
	Status    ReportStatus
	Link      *string // Set only once ACCEPTED, kept on CLOSED
	CreatedAt time.Time
}

// HasLink reports whether a non-empty link is attached.
func (r *Report) HasLink() bool {
	return r.Link != nil && *r.Link != ""
}

// ReportStatusChanged is the payload of a status change event.
type ReportStatusChanged struct {
	Report *Report
	From   ReportStatus
}
