package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"fmt"
)

func init() {
	bot.RegisterCommand(NewBroadcastHandler)
	bot.RegisterCommand(NewBroadcastAliasHandler)
	bot.RegisterStep(NewBroadcastStep)
}

// broadcastHandler asks an admin for the mailing text.
type broadcastHandler struct {
	base
	command string
	steps   *conversation.Registry
}

// NewBroadcastHandler creates the /broadcast handler.
func NewBroadcastHandler(deps *bot.Dependencies) ports.CommandHandler {
	return &broadcastHandler{base: newBase(deps, "broadcast_handler"), command: "broadcast", steps: deps.Steps}
}

// NewBroadcastAliasHandler creates the /bc handler.
func NewBroadcastAliasHandler(deps *bot.Dependencies) ports.CommandHandler {
	return &broadcastHandler{base: newBase(deps, "broadcast_handler"), command: "bc", steps: deps.Steps}
}

func (h *broadcastHandler) Command() string { return h.command }

func (h *broadcastHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if !h.isAdmin(ctx, update) {
		return nil
	}
	if err := h.prompt(ctx, update.ChatID, "Message for mailing:"); err != nil {
		return err
	}
	return h.steps.Register(ctx, update.ChatID, domain.StepBroadcast, nil)
}

// broadcastStep delivers the text to every stored user.
type broadcastStep struct {
	base
	users ports.UserRepository
}

// NewBroadcastStep creates the continuation of /broadcast.
func NewBroadcastStep(deps *bot.Dependencies) ports.StepHandler {
	return &broadcastStep{base: newBase(deps, "broadcast_step"), users: deps.Users}
}

func (h *broadcastStep) Step() domain.StepKind { return domain.StepBroadcast }

func (h *broadcastStep) Handle(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) error {
	// Group chats share one step between members.
	if !h.isAdmin(ctx, update) {
		return nil
	}

	ids, err := h.users.ListIDs(ctx)
	if err != nil {
		h.logger(ctx).Error().Err(err).Msg("Failed to list users for mailing")
		return h.internalError(ctx, update.ChatID)
	}

	failed := 0
	for _, id := range ids {
		_, err := h.client.SendMessage(ctx, ports.SendMessageParams{ChatID: id, Text: update.Text})
		if err != nil {
			failed++
			h.logger(ctx).Warn().Err(err).Int64("recipient", id).Msg("Mailing not delivered")
		}
	}

	h.logger(ctx).Info().Int("recipients", len(ids)).Int("failed", failed).Msg("Mailing finished")
	return h.answer(ctx, update.ChatID, fmt.Sprintf("Mailing completed successfully!\nThe mailing was not received. %d", failed))
}
