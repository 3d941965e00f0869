package handlers

import (
	"MathBot/internal/bot/messages"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"MathBot/internal/shared/config"
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/rs/zerolog"
)

// NotificationHandler listens for report events (from the EventBus)
// and tells admins and reporters about them.
type NotificationHandler struct {
	log    zerolog.Logger
	cfg    *config.Config
	client ports.BotClientPort
}

// NewNotificationHandler creates a new handler for sending notifications.
// It is NOT a registered router handler; it's a system component.
func NewNotificationHandler(
	cfg *config.Config,
	client ports.BotClientPort,
	baseLogger *zerolog.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		log:    baseLogger.With().Str("component", "notification_handler").Logger(),
		cfg:    cfg,
		client: client,
	}
}

// Subscribe attaches the handler to its topics.
func (h *NotificationHandler) Subscribe(bus ports.EventBus) {
	bus.Subscribe(ports.TopicReportSubmitted, h.HandleReportSubmitted)
	bus.Subscribe(ports.TopicReportStatusChanged, h.HandleReportStatusChanged)
}

// HandleReportSubmitted is an EventHandler for the "report:submitted" topic.
func (h *NotificationHandler) HandleReportSubmitted(ctx context.Context, event ports.Event) error {
	report, ok := event.Data.(*domain.Report)
	if !ok {
		h.log.Error().Msg("Received invalid data for 'report:submitted' event")
		return nil // Don't retry
	}

	log := h.log.With().Int64("report_id", report.ID).Logger()
	log.Info().Int("admins", len(h.cfg.Admins)).Msg("Notifying admins about new report")

	text := "<b>New bug report</b>\n\n" + messages.ReportCard(report)
	var errs []error
	for _, admin := range h.cfg.Admins {
		if _, err := h.client.SendMessage(ctx, messages.NewBuilder(admin).WithText(text).Build()); err != nil {
			log.Error().Err(err).Int64("admin_id", admin).Msg("Failed to notify admin")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleReportStatusChanged is an EventHandler for the "report:status_changed" topic.
func (h *NotificationHandler) HandleReportStatusChanged(ctx context.Context, event ports.Event) error {
	change, ok := event.Data.(*domain.ReportStatusChanged)
	if !ok || change.Report == nil {
		h.log.Error().Msg("Received invalid data for 'report:status_changed' event")
		return nil // Don't retry
	}
	report := change.Report

	log := h.log.With().Int64("report_id", report.ID).Int64("user_id", report.UserID).Logger()
	log.Info().Str("status", string(report.Status)).Msg("Notifying reporter about status change")

	text := fmt.Sprintf("The status of your report #%d is now <b>%s</b>.", report.ID, report.Status)
	if report.HasLink() {
		text += "\nLink: " + html.EscapeString(*report.Link)
	}

	if _, err := h.client.SendMessage(ctx, messages.NewBuilder(report.UserID).WithText(text).Build()); err != nil {
		log.Error().Err(err).Msg("Failed to notify reporter")
		return err
	}
	return nil
}
