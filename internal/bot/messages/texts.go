package messages

import (
	"MathBot/internal/core/domain"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// MainMenuCommands are the buttons of the command keyboard.
var MainMenuCommands = []string{
	"/help",
	"/det", "/ref", "/m_inverse",
	"/factorize", "/euclid", "/idempotents",
	"/nilpotents", "/inverse", "/logic",
	"/calc", "/about",
}

const reportIDPrefix = "Report id:"

// ReportCard renders a report for the admin listing. The first line carries
// the id so that action buttons attached to the card can find the report.
func ReportCard(r *domain.Report) string {
	link := "None"
	if r.HasLink() {
		link = html.EscapeString(*r.Link)
	}
	return fmt.Sprintf(
		"%s %d\nUser id: %d\nTimestamp: %s\n\nProblem statement:\n%s\n\nStatus: <b>%s</b>\nLink: %s",
		reportIDPrefix,
		r.ID,
		r.UserID,
		r.CreatedAt.UTC().Format(time.DateTime),
		html.EscapeString(r.Text),
		r.Status,
		link,
	)
}

// ParseReportID reads the report id from the first line of a report card.
func ParseReportID(cardText string) (int64, bool) {
	first, _, _ := strings.Cut(cardText, "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), reportIDPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ParseCallbackID reads the numeric argument of callback data such as
// "accept_link 42".
func ParseCallbackID(data string) (int64, bool) {
	fields := strings.Fields(data)
	if len(fields) < 2 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
