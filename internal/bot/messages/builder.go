package messages

import "MathBot/internal/core/ports"

// Builder helps construct SendMessageParams.
type Builder struct {
	params ports.SendMessageParams
}

// NewBuilder creates a new message builder. Messages default to HTML.
func NewBuilder(chatID int64) *Builder {
	return &Builder{
		params: ports.SendMessageParams{
			ChatID:    chatID,
			ParseMode: "HTML",
		},
	}
}

// WithText sets the message text.
func (b *Builder) WithText(text string) *Builder {
	b.params.Text = text
	return b
}

// WithParseMode overrides the default parse mode.
func (b *Builder) WithParseMode(mode string) *Builder {
	b.params.ParseMode = mode
	return b
}

// WithReplyTo quotes the message with the given id.
func (b *Builder) WithReplyTo(messageID int) *Builder {
	b.params.ReplyToMessageID = messageID
	return b
}

// WithRemoveKeyboard adds a flag to remove the reply keyboard.
func (b *Builder) WithRemoveKeyboard() *Builder {
	b.params.RemoveKeyboard = true
	b.params.ReplyMarkup = nil
	return b
}

// WithInlineButtons adds a set of inline buttons. An empty set adds none.
func (b *Builder) WithInlineButtons(buttons [][]ports.Button) *Builder {
	b.params.RemoveKeyboard = false
	if len(buttons) == 0 {
		b.params.ReplyMarkup = nil
		return b
	}
	b.params.ReplyMarkup = &ports.ReplyMarkup{
		IsInline: true,
		Buttons:  buttons,
	}
	return b
}

// WithReplyButtons creates a grid of reply buttons.
// It takes a flat list of button texts and arranges them into rows.
func (b *Builder) WithReplyButtons(buttonTexts []string, columns int) *Builder {
	var rows [][]ports.Button
	var row []ports.Button

	for i, text := range buttonTexts {
		row = append(row, ports.Button{Text: text})

		if (i+1)%columns == 0 || i == len(buttonTexts)-1 {
			rows = append(rows, row)
			row = []ports.Button{}
		}
	}

	b.params.RemoveKeyboard = false
	b.params.ReplyMarkup = &ports.ReplyMarkup{
		IsInline: false,
		Buttons:  rows,
	}
	return b
}

// WithMainMenu attaches the command keyboard.
func (b *Builder) WithMainMenu() *Builder {
	return b.WithReplyButtons(MainMenuCommands, 3)
}

// Build returns the final SendMessageParams struct.
func (b *Builder) Build() ports.SendMessageParams {
	return b.params
}
