// Package transcript renders a day's message log as linear text for synthesis.
package transcript

import (
	"strings"
	"time"

	"github.com/rcliao/daybook/internal/model"
)

// TimestampLayout is how message instants appear in a transcript line.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Render returns one "[<timestamp>] <ROLE>: <content>" line per message in
// append order, joined by newlines. An empty log renders as "".
func Render(messages []model.Message) string {
	if len(messages) == 0 {
		return ""
	}
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = Line(m)
	}
	return strings.Join(lines, "\n")
}

// Line renders a single message.
func Line(m model.Message) string {
	return "[" + FormatTimestamp(m.Timestamp) + "] " + strings.ToUpper(string(m.Role)) + ": " + m.Content
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Window returns the last n messages, or all of them when n <= 0 or the log is shorter.
func Window(messages []model.Message, n int) []model.Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
