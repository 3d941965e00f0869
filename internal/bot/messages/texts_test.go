package messages

import (
	"testing"
	"time"

	"MathBot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestReportCardRoundTrip(t *testing.T) {
	link := "http://x/1"
	card := ReportCard(&domain.Report{
		ID:        42,
		UserID:    7,
		Text:      "a < b",
		Status:    domain.ReportAccepted,
		Link:      &link,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	assert.Contains(t, card, "a &lt; b")
	assert.Contains(t, card, "Status: <b>ACCEPTED</b>")
	assert.Contains(t, card, "Link: http://x/1")

	id, ok := ParseReportID(card)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestReportCardWithoutLink(t *testing.T) {
	card := ReportCard(&domain.Report{ID: 1, Status: domain.ReportNew})
	assert.Contains(t, card, "Link: None")
}

func TestParseReportID(t *testing.T) {
	_, ok := ParseReportID("hello\nReport id: 3")
	assert.False(t, ok)

	_, ok = ParseReportID("Report id: abc")
	assert.False(t, ok)
}

func TestParseCallbackID(t *testing.T) {
	id, ok := ParseCallbackID("accept_link 15")
	assert.True(t, ok)
	assert.Equal(t, int64(15), id)

	_, ok = ParseCallbackID("accept_link")
	assert.False(t, ok)
}

func TestBuilder(t *testing.T) {
	params := NewBuilder(10).WithText("hi").WithReplyTo(5).WithMainMenu().Build()
	assert.Equal(t, "HTML", params.ParseMode)
	assert.Equal(t, 5, params.ReplyToMessageID)
	if assert.NotNil(t, params.ReplyMarkup) {
		assert.False(t, params.ReplyMarkup.IsInline)
		assert.Len(t, params.ReplyMarkup.Buttons, 4)
	}

	empty := NewBuilder(10).WithInlineButtons(nil).Build()
	assert.Nil(t, empty.ReplyMarkup)

	removed := NewBuilder(10).WithMainMenu().WithRemoveKeyboard().Build()
	assert.True(t, removed.RemoveKeyboard)
	assert.Nil(t, removed.ReplyMarkup)
}
