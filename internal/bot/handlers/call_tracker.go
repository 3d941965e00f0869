package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// answerStep is a terminal step that reports the answer it sent, or ""
// when it replied with an error message.
type answerStep interface {
	Step() domain.StepKind
	Answer(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) (string, error)
}

// trackedStep records usage statistics around an answerStep.
type trackedStep struct {
	inner answerStep
	// name is the statistic name, or the step argument holding it when
	// nameArg is set.
	name    string
	nameArg string
	calls   ports.CallRecorder
	log     zerolog.Logger
}

func track(deps *bot.Dependencies, name string, inner answerStep) *trackedStep {
	return &trackedStep{
		inner: inner,
		name:  name,
		calls: deps.Calls,
		log:   deps.Logger.With().Str("component", "call_tracker").Logger(),
	}
}

func trackByArg(deps *bot.Dependencies, arg string, inner answerStep) *trackedStep {
	t := track(deps, "", inner)
	t.nameArg = arg
	return t
}

func (t *trackedStep) Step() domain.StepKind { return t.inner.Step() }

func (t *trackedStep) Handle(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) error {
	result, err := t.inner.Answer(ctx, update, step)

	name := t.name
	if t.nameArg != "" {
		name = step.Arg(t.nameArg)
	}
	t.log.Info().Str("function", name).Int64("user_id", update.UserID).Bool("answered", result != "").Msg("Function called")

	if t.calls != nil {
		call := &domain.FunctionCall{ID: uuid.New(), Name: name, UserID: update.UserID, Result: result}
		if recErr := t.calls.Record(ctx, call); recErr != nil {
			t.log.Error().Err(recErr).Str("function", name).Msg("Failed to record function call")
		}
	}
	return err
}
