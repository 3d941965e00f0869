package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/bot/menus"
	"MathBot/internal/bot/messages"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"MathBot/internal/core/workflow"
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
)

func init() {
	bot.RegisterCallback(NewReportCallback)
	bot.RegisterCallback(NewCancelCallback)
	bot.RegisterCallback(NewViewReportsCallback)
	bot.RegisterCallback(NewBackCallback)
	bot.RegisterCallback(NewReportStatusCallback)
	bot.RegisterCallback(NewAcceptReportCallback)
	bot.RegisterCallback(NewRejectReportCallback)
	bot.RegisterCallback(NewCloseReportCallback)
	bot.RegisterCallback(NewAcceptLinkCallback)
	bot.RegisterCallback(NewRejectLinkCallback)

	bot.RegisterStep(NewReportTextStep)
	bot.RegisterStep(NewReportLinkStep)
}

const (
	msgAskLink     = "Provide a link to the GitHub issue, please."
	msgNoSuchIssue = "The report could not be found."
)

// reportBase is shared by the report workflow handlers.
type reportBase struct {
	base
	workflow *workflow.Workflow
	steps    *conversation.Registry
}

func newReportBase(deps *bot.Dependencies, component string) reportBase {
	return reportBase{
		base:     newBase(deps, component),
		workflow: deps.Workflow,
		steps:    deps.Steps,
	}
}

// explain turns a refused workflow request into an advisory message. Errors
// it does not know are logged and reported as internal errors.
func (h reportBase) explain(ctx context.Context, chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, domain.ErrNotConfirmed):
		text = "The issue has not been confirmed yet!"
	case errors.Is(err, domain.ErrInvalidTransition):
		text = "This action is not available for the report in its current status."
	case errors.Is(err, domain.ErrStatusConflict):
		text = "The report was changed by someone else. Open the list again."
	case errors.Is(err, domain.ErrReportNotFound):
		text = msgNoSuchIssue
	case errors.Is(err, domain.ErrNoLinkReview):
		text = "There is no link waiting for confirmation for this report."
	default:
		h.logger(ctx).Error().Err(err).Msg("Report workflow failed")
		return h.internalError(ctx, chatID)
	}
	h.logger(ctx).Info().Err(err).Msg("Report action refused")
	return h.send(ctx, messages.NewBuilder(chatID).WithText(text).Build())
}

func (h reportBase) askLink(ctx context.Context, chatID int64, text string, reportID int64) error {
	if err := h.prompt(ctx, chatID, text); err != nil {
		return err
	}
	return h.steps.Register(ctx, chatID, domain.StepReportLink,
		map[string]string{domain.ArgReportID: strconv.FormatInt(reportID, 10)})
}

// --- Reporting ---

// reportCallback starts a bug report.
type reportCallback struct {
	reportBase
}

// NewReportCallback handles the "Report a bug!" button.
func NewReportCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &reportCallback{reportBase: newReportBase(deps, "report_handler")}
}

func (h *reportCallback) Prefix() string { return menus.CallbackReport }

func (h *reportCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	msg := messages.NewBuilder(update.ChatID).
		WithText("Please describe specifically what went wrong.").
		WithInlineButtons(menus.CancelMenu()).
		Build()
	if err := h.send(ctx, msg); err != nil {
		return err
	}
	return h.steps.Register(ctx, update.ChatID, domain.StepReportText, nil)
}

// reportTextStep stores the description as a NEW report.
type reportTextStep struct {
	reportBase
}

// NewReportTextStep creates the continuation of the report button.
func NewReportTextStep(deps *bot.Dependencies) ports.StepHandler {
	return &reportTextStep{reportBase: newReportBase(deps, "report_handler")}
}

func (h *reportTextStep) Step() domain.StepKind { return domain.StepReportText }

func (h *reportTextStep) Handle(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) error {
	report, err := h.workflow.Submit(ctx, update.Sender(), update.Text)
	if errors.Is(err, domain.ErrEmptyReport) {
		return h.answer(ctx, update.ChatID, "The report text cannot be empty.")
	}
	if err != nil {
		h.logger(ctx).Error().Err(err).Msg("Failed to submit report")
		return h.internalError(ctx, update.ChatID)
	}

	h.logger(ctx).Info().Int64("report_id", report.ID).Msg("Report received")
	return h.answer(ctx, update.ChatID, "Thank you for reporting the issues to me!")
}

// cancelCallback abandons the pending prompt.
type cancelCallback struct {
	reportBase
}

// NewCancelCallback handles the "Back" button under a prompt.
func NewCancelCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &cancelCallback{reportBase: newReportBase(deps, "cancel_handler")}
}

func (h *cancelCallback) Prefix() string { return menus.CallbackCancel }

func (h *cancelCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.steps.Clear(ctx, update.ChatID); err != nil {
		return err
	}
	return h.client.DeleteMessage(ctx, update.ChatID, update.MessageID)
}

// --- Browsing ---

// viewReportsCallback swaps the report menu for the status menu.
type viewReportsCallback struct {
	reportBase
}

// NewViewReportsCallback handles the admin "View errors" button.
func NewViewReportsCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &viewReportsCallback{reportBase: newReportBase(deps, "report_browser")}
}

func (h *viewReportsCallback) Prefix() string { return menus.CallbackViewReports }

func (h *viewReportsCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}
	return h.client.EditMessageReplyMarkup(ctx, ports.EditMarkupParams{
		ChatID:      update.ChatID,
		MessageID:   update.MessageID,
		ReplyMarkup: &ports.ReplyMarkup{IsInline: true, Buttons: menus.StatusMenu(true)},
	})
}

// backCallback restores the report menu.
type backCallback struct {
	reportBase
}

// NewBackCallback handles the "Back" button of the status menu.
func NewBackCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &backCallback{reportBase: newReportBase(deps, "report_browser")}
}

func (h *backCallback) Prefix() string { return menus.CallbackBack }

func (h *backCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return h.client.EditMessageReplyMarkup(ctx, ports.EditMarkupParams{
		ChatID:      update.ChatID,
		MessageID:   update.MessageID,
		ReplyMarkup: &ports.ReplyMarkup{IsInline: true, Buttons: menus.ReportMenu(h.cfg.IsAdmin(update.UserID))},
	})
}

// reportStatusCallback lists the reports of one status bucket.
type reportStatusCallback struct {
	reportBase
}

// NewReportStatusCallback handles the "report_status_<STATUS>" buttons.
func NewReportStatusCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &reportStatusCallback{reportBase: newReportBase(deps, "report_browser")}
}

func (h *reportStatusCallback) Prefix() string { return menus.CallbackStatus }

func (h *reportStatusCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}

	raw := strings.TrimPrefix(callbackData(update), menus.CallbackStatus)
	status, ok := domain.ParseReportStatus(raw)
	if !ok {
		h.logger(ctx).Warn().Str("status", raw).Msg("Unknown report status requested")
		return nil
	}

	// opening a list ends any review the admin left unconfirmed
	h.workflow.DropReviews()

	actions := menus.ActionMenu(workflow.AvailableActions(domain.RoleAdmin, status))
	shown := 0
	for report, err := range h.workflow.ListByStatus(ctx, status) {
		if err != nil {
			h.logger(ctx).Error().Err(err).Str("status", string(status)).Msg("Failed to list reports")
			return h.internalError(ctx, update.ChatID)
		}
		msg := messages.NewBuilder(update.ChatID).
			WithText(messages.ReportCard(report)).
			WithInlineButtons(actions).
			Build()
		if err := h.send(ctx, msg); err != nil {
			return err
		}
		shown++
	}

	if shown == 0 {
		return h.send(ctx, messages.NewBuilder(update.ChatID).
			WithText(fmt.Sprintf("There are no reports with status %s.", status)).
			Build())
	}
	return nil
}

// --- Admin actions on a report card ---

// reportActionCallback applies accept, reject or close to the report whose
// card carries the button.
type reportActionCallback struct {
	reportBase
	action domain.ReportAction
}

// NewAcceptReportCallback starts the link review of a NEW report.
func NewAcceptReportCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &reportActionCallback{reportBase: newReportBase(deps, "report_actions"), action: domain.ActionAccept}
}

// NewRejectReportCallback rejects a NEW report.
func NewRejectReportCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &reportActionCallback{reportBase: newReportBase(deps, "report_actions"), action: domain.ActionReject}
}

// NewCloseReportCallback closes an ACCEPTED report.
func NewCloseReportCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &reportActionCallback{reportBase: newReportBase(deps, "report_actions"), action: domain.ActionClose}
}

func (h *reportActionCallback) Prefix() string { return string(h.action) }

func (h *reportActionCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}

	reportID, ok := messages.ParseReportID(update.MessageText)
	if !ok {
		h.logger(ctx).Warn().Str("action", string(h.action)).Msg("Report card without id")
		return h.send(ctx, messages.NewBuilder(update.ChatID).WithText(msgNoSuchIssue).Build())
	}
	h.logger(ctx).Info().Int64("report_id", reportID).Str("action", string(h.action)).Msg("Report action requested")

	switch h.action {
	case domain.ActionAccept:
		if err := h.workflow.BeginAccept(ctx, reportID); err != nil {
			return h.explain(ctx, update.ChatID, err)
		}
		return h.askLink(ctx, update.ChatID, msgAskLink, reportID)

	case domain.ActionReject:
		if _, err := h.workflow.Reject(ctx, reportID); err != nil {
			return h.explain(ctx, update.ChatID, err)
		}
		return h.send(ctx, messages.NewBuilder(update.ChatID).WithText("The issue has been rejected.").Build())

	case domain.ActionClose:
		if _, err := h.workflow.Close(ctx, reportID); err != nil {
			return h.explain(ctx, update.ChatID, err)
		}
		return h.send(ctx, messages.NewBuilder(update.ChatID).WithText("The issue has been closed.").Build())
	}
	return nil
}

// --- Link review ---

// reportLinkStep receives the link proposed for a report under review.
type reportLinkStep struct {
	reportBase
}

// NewReportLinkStep creates the continuation of "accept_report".
func NewReportLinkStep(deps *bot.Dependencies) ports.StepHandler {
	return &reportLinkStep{reportBase: newReportBase(deps, "link_review")}
}

func (h *reportLinkStep) Step() domain.StepKind { return domain.StepReportLink }

func (h *reportLinkStep) Handle(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}

	reportID, err := strconv.ParseInt(step.Arg(domain.ArgReportID), 10, 64)
	if err != nil {
		h.logger(ctx).Error().Str("report_id", step.Arg(domain.ArgReportID)).Msg("Bad bound report id")
		return h.internalError(ctx, update.ChatID)
	}

	err = h.workflow.ProposeLink(ctx, reportID, update.Text)
	if errors.Is(err, domain.ErrEmptyLink) {
		return h.askLink(ctx, update.ChatID, msgAskLink, reportID)
	}
	if err != nil {
		return h.explain(ctx, update.ChatID, err)
	}

	link, _ := h.workflow.PendingLink(reportID)
	msg := messages.NewBuilder(update.ChatID).
		WithText(fmt.Sprintf("<b>Is the link provided correct?</b>\n<b>Link:</b> %s", html.EscapeString(link))).
		WithInlineButtons(menus.LinkConfirmMenu(reportID)).
		Build()
	return h.send(ctx, msg)
}

// linkDecisionCallback confirms or declines the proposed link.
type linkDecisionCallback struct {
	reportBase
	prefix  string
	confirm bool
}

// NewAcceptLinkCallback commits the acceptance with the proposed link.
func NewAcceptLinkCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &linkDecisionCallback{reportBase: newReportBase(deps, "link_review"), prefix: menus.CallbackAcceptLink, confirm: true}
}

// NewRejectLinkCallback discards the proposed link and asks again.
func NewRejectLinkCallback(deps *bot.Dependencies) ports.CallbackHandler {
	return &linkDecisionCallback{reportBase: newReportBase(deps, "link_review"), prefix: menus.CallbackRejectLink}
}

func (h *linkDecisionCallback) Prefix() string { return h.prefix }

func (h *linkDecisionCallback) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}

	reportID, ok := messages.ParseCallbackID(callbackData(update))
	if !ok {
		h.logger(ctx).Warn().Str("data", callbackData(update)).Msg("Link decision without report id")
		return nil
	}

	if !h.confirm {
		if err := h.workflow.DeclineLink(ctx, reportID); err != nil {
			return h.explain(ctx, update.ChatID, err)
		}
		return h.askLink(ctx, update.ChatID, "Please provide the link again.", reportID)
	}

	if _, err := h.workflow.ConfirmLink(ctx, reportID); err != nil {
		return h.explain(ctx, update.ChatID, err)
	}
	return h.send(ctx, messages.NewBuilder(update.ChatID).WithText("The issue has been confirmed.").Build())
}

func callbackData(update *ports.BotUpdate) string {
	if update.CallbackData == nil {
		return ""
	}
	return *update.CallbackData
}
