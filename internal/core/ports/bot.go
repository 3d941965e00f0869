package ports

import (
	"context"

	"MathBot/internal/core/domain"
)

// --- Bot Message Structures ---

// Button represents a single button in a keyboard.
type Button struct {
	Text string
	Data string // For callbacks
	URL  string // For URL buttons
}

// ReplyMarkup represents any kind of keyboard markup.
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool // Differentiates between Inline and Reply keyboards
}

// SendMessageParams holds all possible options for sending a message.
type SendMessageParams struct {
	ChatID           int64
	Text             string
	ParseMode        string // e.g., "MarkdownV2" or "HTML"
	ReplyToMessageID int
	ReplyMarkup      *ReplyMarkup
	RemoveKeyboard   bool
}

// EditMarkupParams replaces the inline keyboard of a sent message.
// A nil ReplyMarkup removes the keyboard.
type EditMarkupParams struct {
	ChatID      int64
	MessageID   int
	ReplyMarkup *ReplyMarkup
}

// AnswerCallbackParams stops the client-side spinner of a callback query.
type AnswerCallbackParams struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
}

// --- Bot Client Port (Outbound) ---

// BotClientPort defines the interface for *sending* messages.
type BotClientPort interface {
	// SendMessage returns the id of the sent message.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)
	EditMessageReplyMarkup(ctx context.Context, params EditMarkupParams) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallbackQuery(ctx context.Context, params AnswerCallbackParams) error
	SetMenuCommands(ctx context.Context) error
}

// --- Bot Handler Port (Inbound) ---

// BotUpdate represents a simplified, generic update.
type BotUpdate struct {
	MessageID       int
	ChatID          int64
	UserID          int64
	FirstName       string
	LastName        string
	Username        string
	Text            string
	Command         string
	CallbackQueryID string
	CallbackData    *string
	// MessageText is the text of the message a callback button is attached to.
	MessageText string
}

// Sender builds the domain user for the update's author.
func (u *BotUpdate) Sender() *domain.User {
	user := &domain.User{ID: u.UserID}
	if u.FirstName != "" {
		user.FirstName = &u.FirstName
	}
	if u.LastName != "" {
		user.LastName = &u.LastName
	}
	if u.Username != "" {
		user.Username = &u.Username
	}
	return user
}

// CommandHandler defines the "plugin" interface for handling bot commands.
type CommandHandler interface {
	// Command returns the command string without the "/" (e.g., "start")
	Command() string
	// Handle processes the update.
	Handle(ctx context.Context, update *BotUpdate) error
}

// CallbackHandler defines the interface for handling callback queries.
type CallbackHandler interface {
	// Prefix returns the callback token or token prefix (e.g., "report_status_")
	Prefix() string
	// Handle processes the callback.
	Handle(ctx context.Context, update *BotUpdate) error
}

// StepHandler consumes the next message of a chat that has a pending step.
type StepHandler interface {
	Step() domain.StepKind
	Handle(ctx context.Context, update *BotUpdate, step *domain.PendingStep) error
}
