package telegram

import (
	"MathBot/internal/adapters/memory"
	"MathBot/internal/core/conversation"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// MockBotClient is a mock for the BotClientPort
type MockBotClient struct {
	mock.Mock
}

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}
func (m *MockBotClient) EditMessageReplyMarkup(ctx context.Context, params ports.EditMarkupParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}
func (m *MockBotClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
func (m *MockBotClient) SetMenuCommands(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCommandHandler
type MockCommandHandler struct {
	mock.Mock
}

func (m *MockCommandHandler) Command() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(update)
	return args.Error(0)
}

// MockCallbackHandler
type MockCallbackHandler struct {
	mock.Mock
}

func (m *MockCallbackHandler) Prefix() string {
	args := m.Called()
	return args.String(0)
}
func (m *MockCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	args := m.Called(update)
	return args.Error(0)
}

// MockStepHandler
type MockStepHandler struct {
	mock.Mock
}

func (m *MockStepHandler) Step() domain.StepKind {
	args := m.Called()
	return args.Get(0).(domain.StepKind)
}
func (m *MockStepHandler) Handle(ctx context.Context, update *ports.BotUpdate, step *domain.PendingStep) error {
	args := m.Called(update, step)
	return args.Error(0)
}

// --- Helpers ---

func newTestRouter() (*Router, *conversation.Registry, *MockBotClient) {
	nopLogger := zerolog.Nop()
	steps := conversation.NewRegistry(memory.NewStepStore(), &nopLogger)
	client := new(MockBotClient)
	return NewRouter(steps, client, &nopLogger), steps, client
}

func textUpdate(chatID int64, text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 456,
		From:      &tgbotapi.User{ID: chatID, FirstName: "Test"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return &tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(chatID int64, data, messageText string) *tgbotapi.Update {
	return &tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb_id_1",
			From: &tgbotapi.User{ID: chatID},
			Message: &tgbotapi.Message{
				MessageID: 777,
				Chat:      &tgbotapi.Chat{ID: chatID},
				Text:      messageText,
			},
			Data: data,
		},
	}
}

// --- Tests ---

func TestRouter_HandleUpdate_Command(t *testing.T) {
	router, _, _ := newTestRouter()

	startHandler := new(MockCommandHandler)
	startHandler.On("Command").Return("start")
	startHandler.On("Handle", mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.Command == "start" && u.ChatID == 1000 && u.FirstName == "Test"
	})).Return(nil).Once()

	helpHandler := new(MockCommandHandler)
	helpHandler.On("Command").Return("help")

	router.RegisterCommandHandler(startHandler)
	router.RegisterCommandHandler(helpHandler)

	router.HandleUpdate(context.Background(), textUpdate(1000, "/start"))

	startHandler.AssertExpectations(t)
	helpHandler.AssertNotCalled(t, "Handle", mock.Anything)
}

func TestRouter_HandleUpdate_UnknownCommandAndTextAreIgnored(t *testing.T) {
	router, _, client := newTestRouter()

	router.HandleUpdate(context.Background(), textUpdate(1000, "/nope"))
	router.HandleUpdate(context.Background(), textUpdate(1000, "hello world"))

	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestRouter_HandleUpdate_ContinuationBeforeCommand(t *testing.T) {
	router, steps, _ := newTestRouter()
	ctx := context.Background()

	calcStep := new(MockStepHandler)
	calcStep.On("Step").Return(domain.StepCalc)
	calcStep.On("Handle", mock.Anything, mock.MatchedBy(func(s *domain.PendingStep) bool {
		return s.Kind == domain.StepCalc && s.Arg("k") == "v"
	})).Return(nil).Once()

	startHandler := new(MockCommandHandler)
	startHandler.On("Command").Return("start")
	startHandler.On("Handle", mock.Anything).Return(nil).Once()

	router.RegisterStepHandler(calcStep)
	router.RegisterCommandHandler(startHandler)

	require.NoError(t, steps.Register(ctx, 1000, domain.StepCalc, map[string]string{"k": "v"}))

	// The pending step swallows the command-looking message.
	router.HandleUpdate(ctx, textUpdate(1000, "/start"))
	calcStep.AssertExpectations(t)
	startHandler.AssertNotCalled(t, "Handle", mock.Anything)

	// The entry was consumed, so the next /start reaches the command.
	router.HandleUpdate(ctx, textUpdate(1000, "/start"))
	startHandler.AssertExpectations(t)
}

func TestRouter_HandleUpdate_ContinuationIsPerChat(t *testing.T) {
	router, steps, _ := newTestRouter()
	ctx := context.Background()

	logicStep := new(MockStepHandler)
	logicStep.On("Step").Return(domain.StepLogic)
	logicStep.On("Handle", mock.MatchedBy(func(u *ports.BotUpdate) bool { return u.ChatID == 1 }), mock.Anything).
		Return(nil).Once()
	router.RegisterStepHandler(logicStep)

	require.NoError(t, steps.Register(ctx, 1, domain.StepLogic, nil))

	router.HandleUpdate(ctx, textUpdate(2, "a and b"))
	router.HandleUpdate(ctx, textUpdate(1, "a and b"))

	logicStep.AssertExpectations(t)
}

func TestRouter_HandleUpdate_Callback(t *testing.T) {
	router, _, client := newTestRouter()

	client.On("AnswerCallbackQuery", mock.Anything, ports.AnswerCallbackParams{CallbackQueryID: "cb_id_1"}).
		Return(nil)

	report := new(MockCallbackHandler)
	report.On("Prefix").Return("report")
	statusHandler := new(MockCallbackHandler)
	statusHandler.On("Prefix").Return("report_status_")
	statusHandler.On("Handle", mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return *u.CallbackData == "report_status_NEW"
	})).Return(nil).Once()
	acceptLink := new(MockCallbackHandler)
	acceptLink.On("Prefix").Return("accept_link")
	acceptLink.On("Handle", mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.MessageText == "Link: http://x/1"
	})).Return(nil).Once()

	router.RegisterCallbackHandler(report)
	router.RegisterCallbackHandler(statusHandler)
	router.RegisterCallbackHandler(acceptLink)

	// Longest prefix wins over the shorter "report".
	router.HandleUpdate(context.Background(), callbackUpdate(1000, "report_status_NEW", ""))
	// Exact token match on the first field.
	router.HandleUpdate(context.Background(), callbackUpdate(1000, "accept_link 5", "Link: http://x/1"))

	statusHandler.AssertExpectations(t)
	acceptLink.AssertExpectations(t)
	report.AssertNotCalled(t, "Handle", mock.Anything)
	client.AssertNumberOfCalls(t, "AnswerCallbackQuery", 2)
}

func TestRouter_HandleUpdate_UnmatchedCallbackIsStillAnswered(t *testing.T) {
	router, _, client := newTestRouter()
	client.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil).Once()

	router.HandleUpdate(context.Background(), callbackUpdate(1000, "mystery", ""))

	client.AssertExpectations(t)
}

func TestRouter_HandleUpdate_RecoversFromPanic(t *testing.T) {
	router, _, _ := newTestRouter()

	boom := new(MockCommandHandler)
	boom.On("Command").Return("boom")
	boom.On("Handle", mock.Anything).Panic("handler exploded")
	router.RegisterCommandHandler(boom)

	assert.NotPanics(t, func() {
		router.HandleUpdate(context.Background(), textUpdate(1000, "/boom"))
	})
}

func TestRouter_HandleUpdate_Unsupported(t *testing.T) {
	router, _, client := newTestRouter()

	assert.NotPanics(t, func() {
		router.HandleUpdate(context.Background(), &tgbotapi.Update{UpdateID: 9})
	})
	client.AssertNotCalled(t, "AnswerCallbackQuery", mock.Anything, mock.Anything)
}

func TestCallbackToken(t *testing.T) {
	assert.Equal(t, "accept_link", callbackToken("accept_link 42"))
	assert.Equal(t, "cancel", callbackToken("cancel"))
	assert.Equal(t, "", callbackToken("   "))
}
