package handlers

import (
	"MathBot/internal/bot"
	"MathBot/internal/bot/menus"
	"MathBot/internal/bot/messages"
	"MathBot/internal/core/ports"
	"context"
	"fmt"
	"html"
	"runtime/debug"
	"strings"
)

func init() {
	bot.RegisterCommand(NewStartHandler)
	bot.RegisterCommand(NewHelpHandler)
	bot.RegisterCommand(NewAboutHandler)
}

// startHandler is the plugin for the /start command.
type startHandler struct {
	base
	users ports.UserRepository
}

// NewStartHandler creates a new handler for the /start command.
func NewStartHandler(deps *bot.Dependencies) ports.CommandHandler {
	return &startHandler{base: newBase(deps, "start_handler"), users: deps.Users}
}

func (h *startHandler) Command() string { return "start" }

// Handle greets the user and stores them on first contact.
func (h *startHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	greeting := "Hello"
	if update.FirstName != "" {
		greeting += ", " + html.EscapeString(update.FirstName)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s!</b>\n", greeting)
	sb.WriteString("Use the keyboard or commands to call the desired feature\n")
	sb.WriteString("/help - call for help\n")
	sb.WriteString("/about - bot information\n")
	if h.cfg.Links.Channel != "" {
		fmt.Fprintf(&sb, "Our channel: %s\n", h.cfg.Links.Channel)
	}

	if err := h.answer(ctx, update.ChatID, sb.String()); err != nil {
		return err
	}

	if _, err := h.users.GetOrCreate(ctx, update.Sender()); err != nil {
		h.logger(ctx).Error().Err(err).Msg("Failed to store user")
		return err
	}
	return nil
}

const helpText = "<b>Matrix operations</b>\n" +
	"/det - determinant of a matrix.\n" +
	"/ref - row echelon form of a matrix (upper triangular).\n" +
	"/m_inverse - inverse of a matrix.\n" +
	"\n<b>Number theory and discrete mathematics</b>\n" +
	"/factorize - prime factorization of a natural number.\n" +
	"/euclid - GCD of two numbers and solution of Diophantine equation.\n" +
	"/idempotents - idempotent elements in Z/n.\n" +
	"/nilpotents - nilpotent elements in Z/n.\n" +
	"/inverse - inverse element in Z/n.\n" +
	"/logic - truth table of an expression.\n" +
	"\n<b>Calculators</b>\n" +
	"/calc - calculator for mathematical expressions.\n" +
	"\n<b>About this bot</b> /about\n"

// helpHandler lists the commands and offers the report menu.
type helpHandler struct {
	base
}

// NewHelpHandler creates a new handler for the /help command.
func NewHelpHandler(deps *bot.Dependencies) ports.CommandHandler {
	return &helpHandler{base: newBase(deps, "help_handler")}
}

func (h *helpHandler) Command() string { return "help" }

func (h *helpHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	msg := messages.NewBuilder(update.ChatID).
		WithText(helpText).
		WithInlineButtons(menus.ReportMenu(h.cfg.IsAdmin(update.UserID))).
		Build()
	return h.send(ctx, msg)
}

// aboutHandler prints the build version and project links.
type aboutHandler struct {
	base
	version string
}

// NewAboutHandler creates a new handler for the /about command.
func NewAboutHandler(deps *bot.Dependencies) ports.CommandHandler {
	return &aboutHandler{base: newBase(deps, "about_handler"), version: deps.Version}
}

func (h *aboutHandler) Command() string { return "about" }

func (h *aboutHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	version, stable := resolveVersion(h.version)

	warning := ""
	if !stable {
		warning = " (<u>Unstable.</u>)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Version%s: <b>%s</b>\n", warning, html.EscapeString(version))
	if h.cfg.Links.Channel != "" {
		fmt.Fprintf(&sb, "Our channel: %s\n", h.cfg.Links.Channel)
	}
	if h.cfg.Links.GitHub != "" {
		fmt.Fprintf(&sb, "GitHub: %s\n", h.cfg.Links.GitHub)
	}
	sb.WriteString("<b>Under GNU-GPL 2.0-or-later license</b>")

	return h.send(ctx, messages.NewBuilder(update.ChatID).WithText(sb.String()).Build())
}

// resolveVersion prefers the release tag injected at link time and falls
// back to the VCS revision stamped by the Go toolchain.
func resolveVersion(tag string) (string, bool) {
	if tag != "" && tag != "dev" {
		return tag, true
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value, false
			}
		}
	}
	return "dev", false
}
