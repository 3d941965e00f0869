package workflow

import (
	"MathBot/internal/adapters/memory"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventBus records published events.
type MockEventBus struct {
	mock.Mock
}

var _ ports.EventBus = (*MockEventBus)(nil)

func (m *MockEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	args := m.Called(ctx, topic, data)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(topic string, handler ports.EventHandler) {
	m.Called(topic, handler)
}

func newWorkflow(t *testing.T) (*Workflow, ports.ReportRepository, ports.UserRepository) {
	t.Helper()
	nopLogger := zerolog.Nop()
	users := memory.NewUserRepository()
	reports := memory.NewReportRepository()
	return New(users, reports, nil, &nopLogger), reports, users
}

func TestWorkflow_Scenario_SubmitCloseAcceptClose(t *testing.T) {
	ctx := t.Context()
	wf, _, users := newWorkflow(t)

	report, err := wf.Submit(ctx, &domain.User{ID: 501}, "button broken")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportNew, report.Status)
	assert.Nil(t, report.Link)

	stored, err := users.GetByID(ctx, 501)
	require.NoError(t, err)
	assert.NotNil(t, stored, "submission creates the reporter")

	// Closing an unconfirmed report is refused and changes nothing.
	_, err = wf.Close(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	current, err := wf.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportNew, current.Status)
	assert.Nil(t, current.Link)

	// Accept: request link, propose, confirm.
	require.NoError(t, wf.BeginAccept(ctx, report.ID))
	require.NoError(t, wf.ProposeLink(ctx, report.ID, "http://x/1"))
	pending, ok := wf.PendingLink(report.ID)
	require.True(t, ok)
	assert.Equal(t, "http://x/1", pending)

	current, err = wf.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportNew, current.Status, "nothing changes before confirmation")

	accepted, err := wf.ConfirmLink(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportAccepted, accepted.Status)
	require.NotNil(t, accepted.Link)
	assert.Equal(t, "http://x/1", *accepted.Link)

	closed, err := wf.Close(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportClosed, closed.Status)
	require.NotNil(t, closed.Link, "closing keeps the link")
	assert.Equal(t, "http://x/1", *closed.Link)
}

func TestWorkflow_DeclineLinkLoops(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	report, err := wf.Submit(ctx, &domain.User{ID: 1}, "typo in help")
	require.NoError(t, err)
	require.NoError(t, wf.BeginAccept(ctx, report.ID))

	for _, link := range []string{"http://wrong/1", "http://wrong/2"} {
		require.NoError(t, wf.ProposeLink(ctx, report.ID, link))
		require.NoError(t, wf.DeclineLink(ctx, report.ID))
		_, ok := wf.PendingLink(report.ID)
		assert.False(t, ok)

		_, err := wf.ConfirmLink(ctx, report.ID)
		assert.ErrorIs(t, err, domain.ErrNoLinkReview, "nothing to confirm after a decline")
	}

	require.NoError(t, wf.ProposeLink(ctx, report.ID, "  http://right/3  "))
	accepted, err := wf.ConfirmLink(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://right/3", *accepted.Link)

	// The review is gone once committed.
	assert.ErrorIs(t, wf.DeclineLink(ctx, report.ID), domain.ErrNoLinkReview)
}

func TestWorkflow_RejectAndInvalidMoves(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	report, err := wf.Submit(ctx, &domain.User{ID: 2}, "crash on /det")
	require.NoError(t, err)

	rejected, err := wf.Reject(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportRejected, rejected.Status)
	assert.Nil(t, rejected.Link)

	// REJECTED is terminal.
	_, err = wf.Reject(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, wf.BeginAccept(ctx, report.ID), domain.ErrInvalidTransition)
	_, err = wf.Close(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)

	current, err := wf.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportRejected, current.Status)
	assert.Nil(t, current.Link)
}

func TestWorkflow_RejectAcceptedIsRefused(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	report, err := wf.Submit(ctx, &domain.User{ID: 3}, "wrong inverse")
	require.NoError(t, err)
	require.NoError(t, wf.BeginAccept(ctx, report.ID))
	require.NoError(t, wf.ProposeLink(ctx, report.ID, "http://x/9"))
	_, err = wf.ConfirmLink(ctx, report.ID)
	require.NoError(t, err)

	_, err = wf.Reject(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	current, err := wf.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportAccepted, current.Status)
	assert.Equal(t, "http://x/9", *current.Link)
}

func TestWorkflow_Errors(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	_, err := wf.Submit(ctx, &domain.User{ID: 4}, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyReport)

	_, err = wf.Close(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
	assert.ErrorIs(t, wf.BeginAccept(ctx, 404), domain.ErrReportNotFound)

	assert.ErrorIs(t, wf.ProposeLink(ctx, 404, "http://x"), domain.ErrNoLinkReview)

	report, err := wf.Submit(ctx, &domain.User{ID: 4}, "real")
	require.NoError(t, err)
	require.NoError(t, wf.BeginAccept(ctx, report.ID))
	assert.ErrorIs(t, wf.ProposeLink(ctx, report.ID, " "), domain.ErrEmptyLink)
}

func TestWorkflow_ConfirmAfterConcurrentReject(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	report, err := wf.Submit(ctx, &domain.User{ID: 5}, "race")
	require.NoError(t, err)
	require.NoError(t, wf.BeginAccept(ctx, report.ID))
	require.NoError(t, wf.ProposeLink(ctx, report.ID, "http://x/2"))

	_, err = wf.Reject(ctx, report.ID)
	require.NoError(t, err)

	_, err = wf.ConfirmLink(ctx, report.ID)
	assert.ErrorIs(t, err, domain.ErrNoLinkReview, "rejecting drops the open review")

	current, err := wf.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportRejected, current.Status)
	assert.Nil(t, current.Link)
}

func TestWorkflow_PublishesEvents(t *testing.T) {
	ctx := t.Context()
	nopLogger := zerolog.Nop()
	bus := new(MockEventBus)
	wf := New(memory.NewUserRepository(), memory.NewReportRepository(), bus, &nopLogger)

	bus.On("Publish", mock.Anything, ports.TopicReportSubmitted, mock.AnythingOfType("*domain.Report")).Return(nil).Once()
	bus.On("Publish", mock.Anything, ports.TopicReportStatusChanged, mock.MatchedBy(func(ev *domain.ReportStatusChanged) bool {
		return ev.From == domain.ReportNew && ev.Report.Status == domain.ReportRejected
	})).Return(nil).Once()

	report, err := wf.Submit(ctx, &domain.User{ID: 6}, "event me")
	require.NoError(t, err)
	_, err = wf.Reject(ctx, report.ID)
	require.NoError(t, err)

	bus.AssertExpectations(t)
}

func TestWorkflow_DropReviews(t *testing.T) {
	ctx := t.Context()
	wf, _, _ := newWorkflow(t)

	first, err := wf.Submit(ctx, &domain.User{ID: 6}, "one")
	require.NoError(t, err)
	second, err := wf.Submit(ctx, &domain.User{ID: 6}, "two")
	require.NoError(t, err)

	require.NoError(t, wf.BeginAccept(ctx, first.ID))
	require.NoError(t, wf.BeginAccept(ctx, second.ID))
	require.NoError(t, wf.ProposeLink(ctx, second.ID, "http://x/3"))

	assert.Equal(t, 2, wf.DropReviews())
	assert.Equal(t, 0, wf.DropReviews())

	_, ok := wf.PendingLink(second.ID)
	assert.False(t, ok)
	_, err = wf.ConfirmLink(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNoLinkReview)

	current, err := wf.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportNew, current.Status, "dropping a review leaves the report untouched")
	require.NoError(t, wf.BeginAccept(ctx, second.ID))
}
