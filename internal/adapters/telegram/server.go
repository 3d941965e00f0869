package telegram

import (
	"MathBot/internal/shared/config"
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// BotServer runs the bot in polling or webhook mode. Updates are handled
// one at a time, in arrival order, by a single consumer.
type BotServer struct {
	api    *tgbotapi.BotAPI
	router *Router
	cfg    *config.BotConfig
	log    zerolog.Logger
}

// NewBotServer creates a new server instance
func NewBotServer(
	api *tgbotapi.BotAPI,
	router *Router,
	cfg *config.BotConfig,
	baseLogger *zerolog.Logger,
) *BotServer {
	return &BotServer{
		api:    api,
		router: router,
		cfg:    cfg,
		log:    baseLogger.With().Str("component", "bot_server").Logger(),
	}
}

// Start blocks until ctx is cancelled.
func (s *BotServer) Start(ctx context.Context) error {
	s.log.Info().Str("mode", s.cfg.Mode).Msg("Starting bot server...")

	switch s.cfg.Mode {
	case "polling":
		return s.startPolling(ctx)
	case "webhook":
		return s.startWebhook(ctx)
	default:
		return fmt.Errorf("unknown bot mode: %s", s.cfg.Mode)
	}
}

func (s *BotServer) startPolling(ctx context.Context) error {
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}
	if _, err := s.api.Request(deleteWebhookConfig); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete webhook (continuing anyway)")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = s.cfg.PollTimeout
	updates := s.api.GetUpdatesChan(u)

	s.log.Info().Int("timeout", u.Timeout).Msg("Polling update listener started")
	s.consume(ctx, updates)

	s.api.StopReceivingUpdates()
	s.log.Info().Msg("Polling stopped gracefully")
	return nil
}

func (s *BotServer) startWebhook(ctx context.Context) error {
	path := "/webhook/" + s.api.Token
	wh, err := tgbotapi.NewWebhook(s.cfg.Webhook.URL + path)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create webhook config")
		return err
	}
	if _, err := s.api.Request(wh); err != nil {
		s.log.Error().Err(err).Msg("Failed to set webhook")
		return err
	}

	info, err := s.api.GetWebhookInfo()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get webhook info")
		return err
	}
	if info.LastErrorDate != 0 {
		s.log.Error().Str("error_message", info.LastErrorMessage).Msg("Telegram webhook has a last error")
	}

	mux := http.NewServeMux()
	updates := make(chan tgbotapi.Update, s.api.Buffer)
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		update, err := s.api.HandleUpdate(r)
		if err != nil {
			s.log.Warn().Err(err).Msg("Rejected webhook request")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		select {
		case updates <- *update:
		case <-r.Context().Done():
		}
	})

	// TLS is terminated by the reverse proxy in front of the bot.
	listenAddr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Webhook.ListenPort)
	httpServer := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("Webhook HTTP server failed")
		}
	}()

	s.log.Info().Str("addr", listenAddr).Msg("Webhook update listener started")
	s.consume(ctx, updates)

	if err := httpServer.Shutdown(context.Background()); err != nil {
		s.log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	s.log.Info().Msg("Webhook server stopped gracefully")
	return nil
}

// consume hands every update to the router, one after another, until ctx
// is cancelled or the channel closes.
func (s *BotServer) consume(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.router.HandleUpdate(ctx, &update)
		}
	}
}
