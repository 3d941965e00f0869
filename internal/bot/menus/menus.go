// Package menus builds the inline keyboards of the report workflow. The
// functions are pure: same role and status, same buttons.
package menus

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"fmt"
)

// Callback tokens.
const (
	CallbackReport      = "report"
	CallbackCancel      = "cancel"
	CallbackViewReports = "view_reports"
	CallbackBack        = "back_button"
	CallbackStatus      = "report_status_"
	CallbackAcceptLink  = "accept_link"
	CallbackRejectLink  = "reject_link"
)

var statusLabels = map[domain.ReportStatus]string{
	domain.ReportNew:      "New bugs",
	domain.ReportAccepted: "Accepted mistakes",
	domain.ReportRejected: "Rejected errors",
	domain.ReportClosed:   "Closed bugs",
}

var actionLabels = map[domain.ReportAction]string{
	domain.ActionAccept: "Accept mistake",
	domain.ActionReject: "Reject error",
	domain.ActionClose:  "Close error",
}

// ReportMenu is attached to /help.
func ReportMenu(isAdmin bool) [][]ports.Button {
	rows := [][]ports.Button{{{Text: "Report a bug!", Data: CallbackReport}}}
	if isAdmin {
		rows = append(rows, []ports.Button{{Text: "View errors", Data: CallbackViewReports}})
	}
	return rows
}

// CancelMenu lets the user abandon a prompt.
func CancelMenu() [][]ports.Button {
	return [][]ports.Button{{{Text: "Back", Data: CallbackCancel}}}
}

// StatusMenu lists the status buckets. It is empty for regular users.
func StatusMenu(isAdmin bool) [][]ports.Button {
	if !isAdmin {
		return nil
	}
	rows := make([][]ports.Button, 0, len(domain.ReportStatuses)+1)
	for _, status := range domain.ReportStatuses {
		rows = append(rows, []ports.Button{{Text: statusLabels[status], Data: CallbackStatus + string(status)}})
	}
	return append(rows, []ports.Button{{Text: "Back", Data: CallbackBack}})
}

// ActionMenu renders one button per action. No actions, no keyboard.
func ActionMenu(actions []domain.ReportAction) [][]ports.Button {
	if len(actions) == 0 {
		return nil
	}
	rows := make([][]ports.Button, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []ports.Button{{Text: actionLabels[action], Data: string(action)}})
	}
	return rows
}

// LinkConfirmMenu asks the admin to confirm a proposed link.
func LinkConfirmMenu(reportID int64) [][]ports.Button {
	return [][]ports.Button{
		{{Text: "Confirm", Data: fmt.Sprintf("%s %d", CallbackAcceptLink, reportID)}},
		{{Text: "Reject", Data: fmt.Sprintf("%s %d", CallbackRejectLink, reportID)}},
	}
}
