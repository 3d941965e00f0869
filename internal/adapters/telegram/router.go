package telegram

import (
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Router holds all handler plugins and routes each incoming update.
// A message is first offered to the chat's pending continuation, then to
// the command handlers. Callback queries go to callback handlers by exact
// token, then by the longest registered prefix.
type Router struct {
	log              zerolog.Logger
	steps            *conversation.Registry
	botClient        ports.BotClientPort
	commandHandlers  map[string]ports.CommandHandler
	callbackHandlers map[string]ports.CallbackHandler
	stepHandlers     map[domain.StepKind]ports.StepHandler
}

// NewRouter creates a new router.
func NewRouter(
	steps *conversation.Registry,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) *Router {
	return &Router{
		log:              baseLogger.With().Str("component", "tg_router").Logger(),
		steps:            steps,
		botClient:        botClient,
		commandHandlers:  make(map[string]ports.CommandHandler),
		callbackHandlers: make(map[string]ports.CallbackHandler),
		stepHandlers:     make(map[domain.StepKind]ports.StepHandler),
	}
}

// RegisterCommandHandler adds a command plugin.
func (r *Router) RegisterCommandHandler(handler ports.CommandHandler) {
	cmd := handler.Command()
	r.commandHandlers[cmd] = handler
	r.log.Debug().Str("command", cmd).Msg("Registered command handler")
}

// RegisterCallbackHandler adds a callback plugin.
func (r *Router) RegisterCallbackHandler(handler ports.CallbackHandler) {
	prefix := handler.Prefix()
	r.callbackHandlers[prefix] = handler
	r.log.Debug().Str("prefix", prefix).Msg("Registered callback handler")
}

// RegisterStepHandler adds a continuation plugin.
func (r *Router) RegisterStepHandler(handler ports.StepHandler) {
	kind := handler.Step()
	r.stepHandlers[kind] = handler
	r.log.Debug().Str("step", string(kind)).Msg("Registered step handler")
}

// HandleUpdate is the entry point for a new update from Telegram. It never
// panics; a failing handler is logged and the update is dropped.
func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	botUpdate, isSupported := r.parseUpdate(update)
	if !isSupported {
		r.log.Debug().Int("update_id", update.UpdateID).Msg("Received unsupported update type")
		return
	}

	ctxLogger := r.log.With().
		Str("trace_id", uuid.NewString()).
		Int64("user_id", botUpdate.UserID).
		Int64("chat_id", botUpdate.ChatID).
		Logger()
	ctx = ctxLogger.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			ctxLogger.Error().
				Err(fmt.Errorf("panic: %v", rec)).
				Bytes("stack", debug.Stack()).
				Msg("Handler panicked")
		}
	}()

	if botUpdate.CallbackData != nil {
		r.routeCallback(ctx, &ctxLogger, botUpdate)
		return
	}
	r.routeMessage(ctx, &ctxLogger, botUpdate)
}

func (r *Router) routeMessage(ctx context.Context, log *zerolog.Logger, update *ports.BotUpdate) {
	step, err := r.steps.Take(ctx, update.ChatID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read pending step")
	}
	if step != nil {
		if handler, ok := r.stepHandlers[step.Kind]; ok {
			log.Info().Str("step", string(step.Kind)).Msg("Routing to step handler")
			if err := handler.Handle(ctx, update, step); err != nil {
				log.Error().Err(err).Str("step", string(step.Kind)).Msg("Step handler failed")
			}
			return
		}
		log.Warn().Str("step", string(step.Kind)).Msg("No handler for pending step")
	}

	if update.Command == "" {
		log.Debug().Msg("Text without a pending step ignored")
		return
	}

	handler, ok := r.commandHandlers[update.Command]
	if !ok {
		log.Debug().Str("command", update.Command).Msg("Unknown command ignored")
		return
	}
	log.Info().Str("handler", update.Command).Msg("Routing to command handler")
	if err := handler.Handle(ctx, update); err != nil {
		log.Error().Err(err).Msg("Command handler failed")
	}
}

func (r *Router) routeCallback(ctx context.Context, log *zerolog.Logger, update *ports.BotUpdate) {
	if err := r.botClient.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to answer callback query")
	}

	data := *update.CallbackData
	handler, key := r.matchCallback(callbackToken(data))
	if handler == nil {
		log.Debug().Str("data", data).Msg("No callback handler found")
		return
	}

	log.Info().Str("handler", key).Str("data", data).Msg("Routing to callback handler")
	if err := handler.Handle(ctx, update); err != nil {
		log.Error().Err(err).Msg("Callback handler failed")
	}
}

// matchCallback returns the handler registered for token, or else the one
// with the longest prefix of token.
func (r *Router) matchCallback(token string) (ports.CallbackHandler, string) {
	if handler, ok := r.callbackHandlers[token]; ok {
		return handler, token
	}

	var (
		best    ports.CallbackHandler
		bestKey string
	)
	for prefix, handler := range r.callbackHandlers {
		if strings.HasPrefix(token, prefix) && len(prefix) > len(bestKey) {
			best, bestKey = handler, prefix
		}
	}
	return best, bestKey
}

// callbackToken returns the first whitespace-separated field of data.
func callbackToken(data string) string {
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseUpdate converts a tgbotapi.Update into our internal, simplified struct.
func (r *Router) parseUpdate(update *tgbotapi.Update) (*ports.BotUpdate, bool) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
			return nil, false
		}
		return &ports.BotUpdate{
			MessageID:       cb.Message.MessageID,
			ChatID:          cb.Message.Chat.ID,
			UserID:          cb.From.ID,
			FirstName:       cb.From.FirstName,
			LastName:        cb.From.LastName,
			Username:        cb.From.UserName,
			CallbackQueryID: cb.ID,
			CallbackData:    &cb.Data,
			MessageText:     cb.Message.Text,
		}, true
	}

	if msg := update.Message; msg != nil {
		if msg.From == nil || msg.Chat == nil {
			return nil, false
		}
		return &ports.BotUpdate{
			MessageID: msg.MessageID,
			ChatID:    msg.Chat.ID,
			UserID:    msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
			Text:      msg.Text,
			Command:   msg.Command(),
		}, true
	}

	return nil, false
}
