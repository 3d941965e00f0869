package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"MathBot/internal/mathx/rings"
	"context"
	"fmt"
	"strconv"
	"strings"
)

func init() {
	bot.RegisterCommand(NewIdempotentsHandler)
	bot.RegisterCommand(NewNilpotentsHandler)
	bot.RegisterCommand(NewInverseHandler)
	bot.RegisterCommand(NewFactorizeHandler)
	bot.RegisterCommand(NewEuclidHandler)

	bot.RegisterStep(NewRingStep)
	bot.RegisterStep(NewInverseModuloStep)
	bot.RegisterStep(NewInverseElementStep)
	bot.RegisterStep(NewFactorizeStep)
	bot.RegisterStep(NewEuclidStep)
}

const (
	ringIdempotents = "idempotents"
	ringNilpotents  = "nilpotents"
)

// promptCommand sends a prompt and registers a continuation. It covers
// every command whose only job is to ask for input.
type promptCommand struct {
	base
	command string
	text    string
	kind    domain.StepKind
	args    map[string]string
	steps   *conversation.Registry
}

func (h *promptCommand) Command() string { return h.command }

func (h *promptCommand) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.prompt(ctx, update.ChatID, h.text); err != nil {
		return err
	}
	return h.steps.Register(ctx, update.ChatID, h.kind, h.args)
}

func newPromptCommand(deps *bot.Dependencies, command, text string, kind domain.StepKind, args map[string]string) *promptCommand {
	return &promptCommand{
		base:    newBase(deps, command+"_handler"),
		command: command,
		text:    text,
		kind:    kind,
		args:    args,
		steps:   deps.Steps,
	}
}

// NewIdempotentsHandler creates the /idempotents handler.
func NewIdempotentsHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, ringIdempotents, "Enter the ring modulus:", domain.StepRing,
		map[string]string{domain.ArgCommand: ringIdempotents})
}

// NewNilpotentsHandler creates the /nilpotents handler.
func NewNilpotentsHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, ringNilpotents, "Enter the ring modulus:", domain.StepRing,
		map[string]string{domain.ArgCommand: ringNilpotents})
}

// NewInverseHandler creates the /inverse handler.
func NewInverseHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, "inverse", "Enter the ring modulus:", domain.StepInverseModulo, nil)
}

// NewFactorizeHandler creates the /factorize handler.
func NewFactorizeHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, "factorize", "Enter a number:", domain.StepFactorize, nil)
}

// NewEuclidHandler creates the /euclid handler.
func NewEuclidHandler(deps *bot.Dependencies) ports.CommandHandler {
	return newPromptCommand(deps, "euclid", "Enter two numbers separated by a space:", domain.StepEuclid, nil)
}

// readModulo parses a ring modulus and replies when it is unusable.
func (b base) readModulo(ctx context.Context, update *ports.BotUpdate) (int64, bool, error) {
	n, ok := parseInt(update.Text)
	if !ok {
		return 0, false, b.answer(ctx, update.ChatID, msgInputError)
	}
	if n < 2 || n >= b.cfg.Limits.MaxModulo {
		return 0, false, b.answer(ctx, update.ChatID, fmt.Sprintf("Limitation: 2 <= n < %E", float64(b.cfg.Limits.MaxModulo)))
	}
	return n, true, nil
}

// ringStep lists the idempotent or nilpotent elements of Z/n.
type ringStep struct {
	base
}

// NewRingStep creates the continuation of /idempotents and /nilpotents.
func NewRingStep(deps *bot.Dependencies) ports.StepHandler {
	return trackByArg(deps, domain.ArgCommand, &ringStep{base: newBase(deps, "ring_step")})
}

func (h *ringStep) Step() domain.StepKind { return domain.StepRing }

func (h *ringStep) Answer(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) (string, error) {
	n, ok, err := h.readModulo(ctx, update)
	if !ok {
		return "", err
	}

	var (
		title string
		count int64
		lines []string
	)
	switch command := step.Arg(domain.ArgCommand); command {
	case ringIdempotents:
		title = "Idempotents"
		idem, err := rings.Idempotents(n)
		if err != nil {
			return "", err
		}
		count = int64(len(idem))
		for _, e := range idem {
			lines = append(lines, e.String())
		}
	case ringNilpotents:
		title = "Nilpotents"
		if count, err = rings.CountNilpotents(n); err != nil {
			return "", err
		}
		if count <= int64(h.cfg.Limits.MaxElements) {
			elems, err := rings.Nilpotents(n)
			if err != nil {
				return "", err
			}
			for _, x := range elems {
				lines = append(lines, strconv.FormatInt(x, 10))
			}
		}
	default:
		h.logger(ctx).Error().Str("command", command).Msg("Unknown ring command")
		return "", h.internalError(ctx, update.ChatID)
	}

	body := strings.Join(lines, "\n")
	if count > int64(h.cfg.Limits.MaxElements) {
		body = "There are too many elements to display..."
	}
	answer := fmt.Sprintf("<b>%s in Z/%d</b>\nQuantity: %d\n\n%s\n", title, n, count, body)
	return answer, h.answer(ctx, update.ChatID, answer)
}

// inverseModuloStep reads the modulus of /inverse and asks for the element.
type inverseModuloStep struct {
	base
	steps *conversation.Registry
}

// NewInverseModuloStep creates the first continuation of /inverse.
func NewInverseModuloStep(deps *bot.Dependencies) ports.StepHandler {
	return &inverseModuloStep{base: newBase(deps, "inverse_step"), steps: deps.Steps}
}

func (h *inverseModuloStep) Step() domain.StepKind { return domain.StepInverseModulo }

func (h *inverseModuloStep) Handle(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) error {
	n, ok, err := h.readModulo(ctx, update)
	if !ok {
		return err
	}
	if err := h.prompt(ctx, update.ChatID, "Enter the element for which you want to find the inverse:"); err != nil {
		return err
	}
	return h.steps.Register(ctx, update.ChatID, domain.StepInverseElem,
		map[string]string{domain.ArgModulo: strconv.FormatInt(n, 10)})
}

// inverseElementStep finds the inverse of the element in the bound ring.
type inverseElementStep struct {
	base
}

// NewInverseElementStep creates the second continuation of /inverse.
func NewInverseElementStep(deps *bot.Dependencies) ports.StepHandler {
	return track(deps, "inverse", &inverseElementStep{base: newBase(deps, "inverse_step")})
}

func (h *inverseElementStep) Step() domain.StepKind { return domain.StepInverseElem }

func (h *inverseElementStep) Answer(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) (string, error) {
	modulo, err := strconv.ParseInt(step.Arg(domain.ArgModulo), 10, 64)
	if err != nil || modulo < 2 {
		h.logger(ctx).Error().Str("modulo", step.Arg(domain.ArgModulo)).Msg("Bad bound modulo")
		return "", h.internalError(ctx, update.ChatID)
	}

	a, ok := parseInt(update.Text)
	if !ok {
		return "", h.answer(ctx, update.ChatID, msgInputError)
	}
	a %= modulo
	if a < 0 {
		a += modulo
	}

	inv, err := rings.Inverse(a, modulo)
	if err != nil {
		d, _, _ := rings.ExtGCD(a, modulo)
		answer := fmt.Sprintf("<b>%d has no inverse in the ring Z/%d</b>\nAs GCD(%d, %d) = %d > 1", a, modulo, a, modulo, d)
		return answer, h.answer(ctx, update.ChatID, answer)
	}

	answer := strconv.FormatInt(inv, 10)
	return answer, h.answer(ctx, update.ChatID, answer)
}

// factorizeStep prints the prime factorization of n.
type factorizeStep struct {
	base
}

// NewFactorizeStep creates the continuation of /factorize.
func NewFactorizeStep(deps *bot.Dependencies) ports.StepHandler {
	return track(deps, "factorize", &factorizeStep{base: newBase(deps, "factorize_step")})
}

func (h *factorizeStep) Step() domain.StepKind { return domain.StepFactorize }

func (h *factorizeStep) Answer(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) (string, error) {
	n, ok := parseInt(update.Text)
	if !ok {
		return "", h.answer(ctx, update.ChatID, msgInputError)
	}
	if n < 2 || n > h.cfg.Limits.FactorizeMax {
		return "", h.answer(ctx, update.ChatID, fmt.Sprintf(
			"Factorization is available for positive integers n: 2 <= n <= %E", float64(h.cfg.Limits.FactorizeMax)))
	}

	factors, err := rings.Factorize(n)
	if err != nil {
		return "", err
	}
	answer := fmt.Sprintf("%d = %s", n, rings.FormatFactors(factors))
	return answer, h.answer(ctx, update.ChatID, answer)
}

// euclidStep solves ax + by = gcd(a, b).
type euclidStep struct {
	base
}

// NewEuclidStep creates the continuation of /euclid.
func NewEuclidStep(deps *bot.Dependencies) ports.StepHandler {
	return track(deps, "euclid", &euclidStep{base: newBase(deps, "euclid_step")})
}

func (h *euclidStep) Step() domain.StepKind { return domain.StepEuclid }

func (h *euclidStep) Answer(ctx context.Context, update *ports.BotUpdate, _ *domain.PendingStep) (string, error) {
	fields := strings.Fields(update.Text)
	if len(fields) != 2 {
		return "", h.answer(ctx, update.ChatID, msgInputError)
	}
	a, okA := parseInt(fields[0])
	b, okB := parseInt(fields[1])
	if !okA || !okB {
		return "", h.answer(ctx, update.ChatID, msgInputError)
	}

	d, x, y := rings.ExtGCD(a, b)
	bs := strconv.FormatInt(b, 10)
	if b < 0 {
		bs = "(" + bs + ")"
	}
	answer := fmt.Sprintf(
		"GCD (Greatest Common Divisor)(%d, %d) = %d\n\n"+
			"<u>Equation solution:</u>\n%d*x + %s*y <b>= %d</b>\n"+
			"x = %d\ny = %d\n\n"+
			"<u>Attention</u>\n"+
			"<b>Pay attention to the form of the equation!</b>\n"+
			"The equation of the form ax + by = GCD(a, b) is being solved!",
		a, b, d, a, bs, d, x, y)
	return answer, h.answer(ctx, update.ChatID, answer)
}
