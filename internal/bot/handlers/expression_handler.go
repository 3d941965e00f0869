package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"MathBot/internal/mathx/calc"
	"MathBot/internal/mathx/logic"
	"context"
	"errors"
	"html"
)

func init() {
	bot.RegisterCommand(NewCalcHandler)
	bot.RegisterCommand(NewLogicHandler)
	bot.RegisterStep(NewCalcStep)
	bot.RegisterStep(NewLogicStep)
}

// NewCalcHandler creates the /calc handler.
func NewCalcHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, "calc", "Enter the expression:", domain.StepCalc, nil)
}

// NewLogicHandler creates the /logic handler.
func NewLogicHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, "logic", "Enter a logical expression:", domain.StepLogic, nil)
}

var calcErrors = []struct {
	err  error
	text string
}{
	{calc.ErrInvalidSyntax, "Syntax error in the expression"},
	{calc.ErrInvalidName, "Unknown variable encountered"},
	{calc.ErrInvalidArguments, "Incorrect usage of function"},
	{calc.ErrCalculationLimit, "Reached the limit of computation complexity"},
	{calc.ErrDivisionByZero, "During execution, division by zero was encountered"},
	{calc.ErrArithmetic, "Arithmetic error"},
	{calc.ErrInvalidValue, "Failed to recognize the value"},
}

var logicErrors = []struct {
	err  error
	text string
}{
	{logic.ErrInvalidSyntax, "Syntax error in the expression"},
	{logic.ErrInvalidName, "Unknown variable encountered"},
	{logic.ErrInvalidArguments, "Incorrect usage of the function"},
	{logic.ErrCalculationLimit, "Reached the limit of computation complexity"},
	{logic.ErrInvalidValue, "Failed to recognize the value. Allowed values: 0, 1"},
}

// calcStep evaluates an arithmetic expression.
type calcStep struct {
	base
}

// NewCalcStep creates the continuation of /calc.
func NewCalcStep(deps *bot.Dependencies) ports.StepHandler {
	return track(deps, "calc", &calcStep{base: newBase(deps, "calc_step")})
}

func (h *calcStep) Step() domain.StepKind { return domain.StepCalc }

func (h *calcStep) Answer(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) (string, error) {
	result, err := calc.Eval(update.Text)
	if err != nil {
		for _, e := range calcErrors {
			if errors.Is(err, e.err) {
				return "", h.answer(ctx, update.ChatID, e.text)
			}
		}
		h.logger(ctx).Error().Err(err).Msg("Unexpected calculator error")
		return "", h.internalError(ctx, update.ChatID)
	}

	answer := "<code>" + html.EscapeString(result) + "</code>"
	return answer, h.answer(ctx, update.ChatID, answer)
}

// logicStep prints the truth table of a boolean expression.
type logicStep struct {
	base
}

// NewLogicStep creates the continuation of /logic.
func NewLogicStep(deps *bot.Dependencies) ports.StepHandler {
	return track(deps, "logic", &logicStep{base: newBase(deps, "logic_step")})
}

func (h *logicStep) Step() domain.StepKind { return domain.StepLogic }

func (h *logicStep) Answer(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) (string, error) {
	table, err := logic.BuildTable(update.Text)
	if err != nil {
		for _, e := range logicErrors {
			if errors.Is(err, e.err) {
				return "", h.answer(ctx, update.ChatID, e.text)
			}
		}
		h.logger(ctx).Error().Err(err).Msg("Unexpected logic error")
		return "", h.internalError(ctx, update.ChatID)
	}

	answer := "<code>" + html.EscapeString(table.String()) + "</code>"
	return answer, h.answer(ctx, update.ChatID, answer)
}
