package workflow

import (
	"MathBot/internal/core/domain"
	"context"

	"github.com/looplab/fsm"
)

// Event names are the admin action tokens.
var lifecycleEvents = fsm.Events{
	{Name: string(domain.ActionAccept), Src: []string{string(domain.ReportNew)}, Dst: string(domain.ReportAccepted)},
	{Name: string(domain.ActionReject), Src: []string{string(domain.ReportNew)}, Dst: string(domain.ReportRejected)},
	{Name: string(domain.ActionClose), Src: []string{string(domain.ReportAccepted)}, Dst: string(domain.ReportClosed)},
}

// NextStatus returns the status an admin action leads to. Any move outside
// NEW->ACCEPTED, NEW->REJECTED and ACCEPTED->CLOSED is refused with a
// *domain.TransitionError.
func NextStatus(ctx context.Context, report *domain.Report, action domain.ReportAction) (domain.ReportStatus, error) {
	machine := fsm.NewFSM(string(report.Status), lifecycleEvents, fsm.Callbacks{})
	if err := machine.Event(ctx, string(action)); err != nil {
		return report.Status, &domain.TransitionError{ReportID: report.ID, From: report.Status, Action: action}
	}
	return domain.ReportStatus(machine.Current()), nil
}

var adminActions = map[domain.ReportStatus][]domain.ReportAction{
	domain.ReportNew:      {domain.ActionAccept, domain.ActionReject, domain.ActionClose},
	domain.ReportAccepted: {domain.ActionReject, domain.ActionClose},
}

// AvailableActions lists the actions an admin menu offers for a report.
// Regular users, REJECTED and CLOSED reports get an empty set.
func AvailableActions(role domain.Role, status domain.ReportStatus) []domain.ReportAction {
	if role != domain.RoleAdmin {
		return nil
	}
	actions := adminActions[status]
	out := make([]domain.ReportAction, len(actions))
	copy(out, actions)
	return out
}
