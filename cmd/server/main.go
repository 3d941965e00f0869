package main

import (
	"MathBot/internal/adapters/eventbus"
	"MathBot/internal/adapters/memory"
	"MathBot/internal/adapters/postgres"
	"MathBot/internal/adapters/redis"
	"MathBot/internal/adapters/security"
	"MathBot/internal/adapters/telegram"
	"MathBot/internal/bot"
	"MathBot/internal/bot/handlers"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/ports"
	"MathBot/internal/core/workflow"
	"MathBot/internal/shared/config"
	"MathBot/internal/shared/logger"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// version is set at build time with -ldflags "-X main.version=v1.0.0".
var version = "dev"

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev(), cfg.LogLevel)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Str("bot_mode", cfg.Bot.Mode).
		Int("admins", len(cfg.Admins)).
		Str("version", version).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &baseLogger); err != nil {
		baseLogger.Fatal().Err(err).Msg("MathBot stopped with an error")
	}
	baseLogger.Info().Msg("MathBot stopped")
}

func run(ctx context.Context, cfg *config.Config, baseLogger *zerolog.Logger) error {
	// 3. Initialize the Security Service
	secSvc, err := security.NewAESServiceFromHex(cfg.EncryptionKey, baseLogger)
	if err != nil {
		return fmt.Errorf("init security service: %w", err)
	}

	// 4. Initialize Storage
	var (
		users   ports.UserRepository
		reports ports.ReportRepository
		calls   ports.CallRecorder
	)
	if cfg.Postgres.URL != "" {
		if cfg.Postgres.AutoMigrate {
			if err := migrateUp(cfg.Postgres.URL, baseLogger); err != nil {
				return err
			}
		}

		db, err := postgres.NewDB(ctx, cfg.Postgres.URL, baseLogger)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer db.Close()

		users = postgres.NewUserRepository(db, secSvc, baseLogger)
		reports = postgres.NewReportRepository(db, baseLogger)
		calls = postgres.NewCallRepository(db, baseLogger)
	} else {
		baseLogger.Warn().Msg("DATABASE_URL is empty, data will be kept in memory only")
		users = memory.NewUserRepository()
		reports = memory.NewReportRepository()
		calls = memory.NewCallRecorder()
	}

	var stepStore ports.StepStore
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer rdb.Close()
		stepStore = redis.NewStepStore(rdb, baseLogger)
	} else {
		stepStore = memory.NewStepStore()
	}

	// 5. Connect to Telegram
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("connect bot api: %w", err)
	}
	api.Debug = cfg.IsDev()
	baseLogger.Info().Str("username", api.Self.UserName).Msg("Bot API connected")

	client := telegram.NewClient(api, baseLogger)

	// 6. Events and the report workflow
	bus := eventbus.New(baseLogger)
	defer bus.Wait()
	handlers.NewNotificationHandler(cfg, client, baseLogger).Subscribe(bus)

	reportFlow := workflow.New(users, reports, bus, baseLogger)

	// 7. Router and handlers
	steps := conversation.NewRegistry(stepStore, baseLogger)
	router := telegram.NewRouter(steps, client, baseLogger)
	bot.RegisterAllHandlers(router, &bot.Dependencies{
		Config:   cfg,
		Users:    users,
		Workflow: reportFlow,
		Steps:    steps,
		Bot:      client,
		Calls:    calls,
		Version:  version,
		Logger:   baseLogger,
	})

	if err := client.SetMenuCommands(ctx); err != nil {
		baseLogger.Warn().Err(err).Msg("Menu commands not updated")
	}

	// 8. Serve until interrupted
	server := telegram.NewBotServer(api, router, &cfg.Bot, baseLogger)
	return server.Start(ctx)
}

func migrateUp(url string, baseLogger *zerolog.Logger) error {
	migrator, err := postgres.NewMigrator(url, baseLogger)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
