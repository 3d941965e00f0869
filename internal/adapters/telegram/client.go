package telegram

import (
	"MathBot/internal/core/ports"
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// tgClient implements the BotClientPort.
type tgClient struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

var _ ports.BotClientPort = (*tgClient)(nil) // Ensure compliance

// NewClient creates a new Telegram client adapter.
func NewClient(api *tgbotapi.BotAPI, baseLogger *zerolog.Logger) ports.BotClientPort {
	log := baseLogger.With().Str("component", "tg_client").Logger()
	return &tgClient{api: api, log: log}
}

// menuCommands is the command list shown in the client's "/" menu.
var menuCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "help", Description: "List of commands"},
	{Command: "det", Description: "Determinant of a matrix"},
	{Command: "ref", Description: "Row echelon form of a matrix"},
	{Command: "m_inverse", Description: "Inverse of a matrix"},
	{Command: "factorize", Description: "Prime factorization"},
	{Command: "euclid", Description: "Extended Euclidean algorithm"},
	{Command: "idempotents", Description: "Idempotents of Z/n"},
	{Command: "nilpotents", Description: "Nilpotents of Z/n"},
	{Command: "inverse", Description: "Inverse element in Z/n"},
	{Command: "calc", Description: "Calculator"},
	{Command: "logic", Description: "Truth table of an expression"},
	{Command: "about", Description: "About the bot"},
}

// SendMessage translates our params into a tgbotapi message and returns
// the id Telegram assigned to it.
func (c *tgClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	msg := tgbotapi.NewMessage(params.ChatID, params.Text)
	msg.ParseMode = params.ParseMode
	msg.ReplyToMessageID = params.ReplyToMessageID

	// Handle keyboard removal first
	if params.RemoveKeyboard {
		msg.ReplyMarkup = tgbotapi.ReplyKeyboardRemove{RemoveKeyboard: true}
	} else if params.ReplyMarkup != nil {
		if params.ReplyMarkup.IsInline {
			msg.ReplyMarkup = c.buildInlineKeyboard(params.ReplyMarkup.Buttons)
		} else {
			msg.ReplyMarkup = c.buildReplyKeyboard(params.ReplyMarkup.Buttons)
		}
	}

	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error().Err(err).Int64("chat_id", params.ChatID).Msg("Failed to send message")
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessageReplyMarkup swaps the inline keyboard of a sent message.
func (c *tgClient) EditMessageReplyMarkup(ctx context.Context, params ports.EditMarkupParams) error {
	// Telegram removes the keyboard only when it receives an empty one.
	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if params.ReplyMarkup != nil && len(params.ReplyMarkup.Buttons) > 0 {
		markup = c.buildInlineKeyboard(params.ReplyMarkup.Buttons)
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(params.ChatID, params.MessageID, markup)
	if _, err := c.api.Request(edit); err != nil {
		c.log.Error().Err(err).
			Int64("chat_id", params.ChatID).
			Int("message_id", params.MessageID).
			Msg("Failed to edit reply markup")
		return err
	}
	return nil
}

// DeleteMessage removes a message from the chat.
func (c *tgClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		c.log.Error().Err(err).
			Int64("chat_id", chatID).
			Int("message_id", messageID).
			Msg("Failed to delete message")
		return err
	}
	return nil
}

// buildInlineKeyboard is a helper to create the inline keyboard.
func (c *tgClient) buildInlineKeyboard(buttons [][]ports.Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, buttonRow := range buttons {
		var row []tgbotapi.InlineKeyboardButton
		for _, btn := range buttonRow {
			if btn.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
			}
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildReplyKeyboard is a helper to create the command keyboard.
func (c *tgClient) buildReplyKeyboard(buttons [][]ports.Button) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, buttonRow := range buttons {
		var row []tgbotapi.KeyboardButton
		for _, btn := range buttonRow {
			row = append(row, tgbotapi.NewKeyboardButton(btn.Text))
		}
		rows = append(rows, row)
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// SetMenuCommands publishes the command menu.
func (c *tgClient) SetMenuCommands(ctx context.Context) error {
	config := tgbotapi.NewSetMyCommands(menuCommands...)
	if _, err := c.api.Request(config); err != nil {
		c.log.Error().Err(err).Msg("Failed to set menu commands")
		return err
	}
	return nil
}

// AnswerCallbackQuery sends a response to a callback query (stops the spinner)
func (c *tgClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	callbackConfig := tgbotapi.NewCallback(params.CallbackQueryID, params.Text)
	callbackConfig.ShowAlert = params.ShowAlert

	if _, err := c.api.Request(callbackConfig); err != nil {
		c.log.Error().Err(err).
			Str("callback_query_id", params.CallbackQueryID).
			Msg("Failed to answer callback query")
		return err
	}
	return nil
}
