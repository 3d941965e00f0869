package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/bot/messages"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"MathBot/internal/mathx/matrix"
	"context"
	"errors"
	"fmt"
)

func init() {
	bot.RegisterCommand(NewDetHandler)
	bot.RegisterCommand(NewRefHandler)
	bot.RegisterCommand(NewMatrixInverseHandler)
	bot.RegisterStep(NewMatrixStep)
}

const (
	matrixDet     = "det"
	matrixRef     = "ref"
	matrixInverse = "m_inverse"
)

// matrixCommand prompts for a matrix and binds the requested action.
type matrixCommand struct {
	base
	action string
	steps  *conversation.Registry
}

func newMatrixCommand(deps *bot.Dependencies, action string) *matrixCommand {
	return &matrixCommand{
		base:   newBase(deps, "matrix_handler"),
		action: action,
		steps:  deps.Steps,
	}
}

// NewDetHandler creates the /det handler.
func NewDetHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newMatrixCommand(deps, matrixDet)
}

// NewRefHandler creates the /ref handler.
func NewRefHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newMatrixCommand(deps, matrixRef)
}

// NewMatrixInverseHandler creates the /m_inverse handler.
func NewMatrixInverseHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newMatrixCommand(deps, matrixInverse)
}

func (h *matrixCommand) Command() string { return h.action }

func (h *matrixCommand) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.prompt(ctx, update.ChatID, "Enter the matrix: (in one message)"); err != nil {
		return err
	}
	return h.steps.Register(ctx, update.ChatID, domain.StepMatrix, map[string]string{domain.ArgAction: h.action})
}

// matrixStep parses the matrix and runs the bound action.
type matrixStep struct {
	base
}

// NewMatrixStep creates the continuation shared by the matrix commands.
func NewMatrixStep(deps *bot.Dependencies) ports.StepHandler {
	return trackByArg(deps, domain.ArgAction, &matrixStep{base: newBase(deps, "matrix_step")})
}

func (h *matrixStep) Step() domain.StepKind { return domain.StepMatrix }

func (h *matrixStep) Answer(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) (string, error) {
	reply := func(text string) (string, error) {
		msg := messages.NewBuilder(update.ChatID).WithText(text).WithReplyTo(update.MessageID).WithMainMenu().Build()
		return "", h.send(ctx, msg)
	}

	m, err := matrix.Parse(update.Text)
	switch {
	case errors.Is(err, matrix.ErrSizesMismatch):
		return reply("Mismatch in row or column sizes. The matrix must be <b>rectangular</b>.")
	case err != nil:
		return reply("Please enter a <b>numeric</b> square matrix.")
	}

	limit := h.cfg.Limits.MaxMatrix
	if rows, cols := m.Dims(); rows > limit || cols > limit {
		return reply(fmt.Sprintf("The matrix input has a limitation of %dx%d!", limit, limit))
	}

	var answer string
	switch action := step.Arg(domain.ArgAction); action {
	case matrixDet:
		det, err := m.Det()
		if err != nil {
			return reply("Determinant cannot be calculated for a non-square matrix!")
		}
		answer = matrix.FormatNumber(det)
	case matrixRef:
		answer = fmt.Sprintf("The matrix in row echelon form:\n<code>%s</code>", m.REF())
	case matrixInverse:
		inv, err := m.Inverse()
		switch {
		case errors.Is(err, matrix.ErrSquareMatrixRequired):
			return reply("Please enter a <b>numeric</b> square matrix.")
		case err != nil:
			return reply("Inverse matrix does not exist!")
		}
		answer = fmt.Sprintf("Inverse matrix:\n<code>%s</code>", inv)
	default:
		h.logger(ctx).Error().Str("action", action).Msg("Unknown matrix action")
		return "", h.internalError(ctx, update.ChatID)
	}

	return answer, h.answer(ctx, update.ChatID, answer)
}
