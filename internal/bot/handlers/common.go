package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/bot/messages"
	"MathBot/internal/core/ports"
	"MathBot/internal/shared/config"
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	msgInputError    = "Input data error"
	msgInternalError = "An internal error occurred. Please try again later."
)

// base carries what every handler needs.
type base struct {
	component string
	log       zerolog.Logger
	client    ports.BotClientPort
	cfg       *config.Config
}

func newBase(deps *bot.Dependencies, component string) base {
	return base{
		component: component,
		log:       deps.Logger.With().Str("component", component).Logger(),
		client:    deps.Bot,
		cfg:       deps.Config,
	}
}

// logger returns the request logger (with trace id) tagged with the
// handler's component.
func (b base) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &b.log
	}
	scoped := l.With().Str("component", b.component).Logger()
	return &scoped
}

func (b base) send(ctx context.Context, params ports.SendMessageParams) error {
	_, err := b.client.SendMessage(ctx, params)
	return err
}

// answer sends text together with the command keyboard.
func (b base) answer(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, messages.NewBuilder(chatID).WithText(text).WithMainMenu().Build())
}

// prompt asks for the next piece of input and hides the command keyboard.
func (b base) prompt(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, messages.NewBuilder(chatID).WithText(text).WithRemoveKeyboard().Build())
}

func (b base) internalError(ctx context.Context, chatID int64) error {
	return b.send(ctx, messages.NewBuilder(chatID).WithText(msgInternalError).WithParseMode("").Build())
}

// isAdmin gates admin-only handlers. Callers drop the update silently when
// it returns false.
func (b base) isAdmin(ctx context.Context, update *ports.BotUpdate) bool {
	if b.cfg.IsAdmin(update.UserID) {
		return true
	}
	b.logger(ctx).Warn().Int64("user_id", update.UserID).Msg("Non-admin tried an admin action")
	return false
}

func parseInt(text string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	return n, err == nil
}
