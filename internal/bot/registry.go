package bot

import (
	"MathBot/internal/adapters/telegram"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/ports"
	"MathBot/internal/core/workflow"
	"MathBot/internal/shared/config"

	"github.com/rs/zerolog"
)

// Dependencies is everything a handler constructor may need.
type Dependencies struct {
	Config   *config.Config
	Users    ports.UserRepository
	Workflow *workflow.Workflow
	Steps    *conversation.Registry
	Bot      ports.BotClientPort
	Calls    ports.CallRecorder
	Version  string
	Logger   *zerolog.Logger
}

// --- Define types for handler "constructors" ---

type CommandHandlerConstructor func(deps *Dependencies) ports.CommandHandler
type CallbackHandlerConstructor func(deps *Dependencies) ports.CallbackHandler
type StepHandlerConstructor func(deps *Dependencies) ports.StepHandler

// --- Create the global registries ---

var (
	commandRegistry  []CommandHandlerConstructor
	callbackRegistry []CallbackHandlerConstructor
	stepRegistry     []StepHandlerConstructor
)

// RegisterCommand is called by handlers in their init() function
func RegisterCommand(constructor CommandHandlerConstructor) {
	commandRegistry = append(commandRegistry, constructor)
}

// RegisterCallback is called by callback handlers in their init()
func RegisterCallback(constructor CallbackHandlerConstructor) {
	callbackRegistry = append(callbackRegistry, constructor)
}

// RegisterStep is called by continuation handlers in their init()
func RegisterStep(constructor StepHandlerConstructor) {
	stepRegistry = append(stepRegistry, constructor)
}

// RegisterAllHandlers is the single function called by main.go
// It builds all registered handlers and passes them to the router.
func RegisterAllHandlers(router *telegram.Router, deps *Dependencies) {
	log := deps.Logger.With().Str("component", "handler_registry").Logger()

	for _, constructor := range commandRegistry {
		router.RegisterCommandHandler(constructor(deps))
	}
	for _, constructor := range callbackRegistry {
		router.RegisterCallbackHandler(constructor(deps))
	}
	for _, constructor := range stepRegistry {
		router.RegisterStepHandler(constructor(deps))
	}

	log.Info().
		Int("commands", len(commandRegistry)).
		Int("callbacks", len(callbackRegistry)).
		Int("steps", len(stepRegistry)).
		Msg("Handlers registered")
}
