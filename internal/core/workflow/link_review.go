package workflow

import (
	"context"

	"github.com/looplab/fsm"
)

const (
	reviewAwaitingLink         = "awaiting_link"
	reviewAwaitingConfirmation = "awaiting_confirmation"
	reviewCommitted            = "committed"

	eventPropose = "propose"
	eventDecline = "decline"
	eventConfirm = "confirm"
)

// linkReview tracks the two-step link confirmation for one report. Declining
// goes back to awaiting_link, so only the admin can end the loop.
type linkReview struct {
	reportID int64
	link     string
	machine  *fsm.FSM
}

func newLinkReview(reportID int64) *linkReview {
	r := &linkReview{reportID: reportID}
	r.machine = fsm.NewFSM(
		reviewAwaitingLink,
		fsm.Events{
			{Name: eventPropose, Src: []string{reviewAwaitingLink}, Dst: reviewAwaitingConfirmation},
			{Name: eventDecline, Src: []string{reviewAwaitingConfirmation}, Dst: reviewAwaitingLink},
			{Name: eventConfirm, Src: []string{reviewAwaitingConfirmation}, Dst: reviewCommitted},
		},
		fsm.Callbacks{
			"enter_" + reviewAwaitingConfirmation: func(_ context.Context, e *fsm.Event) {
				if len(e.Args) > 0 {
					r.link, _ = e.Args[0].(string)
				}
			},
			"enter_" + reviewAwaitingLink: func(_ context.Context, _ *fsm.Event) {
				r.link = ""
			},
		},
	)
	return r
}

func (r *linkReview) state() string {
	return r.machine.Current()
}
