package message

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxLen is the maximum length of a message in characters.
const MaxLen = 2000

// Received is a message received from a service.
type Received struct {
	// ID is the unique ID of the message.
	ID string
	// To is the destination of the message. This is the identifier of the
	// channel in which the message was sent.
	To string
	// Sender is a unique identifier for the message sender.
	Sender string
	// Name is the display name of the message sender.
	Name string
	// Text is the text of the message.
	Text string
	// Timestamp is the timestamp of the message as milliseconds since the
	// Unix epoch.
	Timestamp int64
}

func (m *Received) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Sent is a message to be sent to a service.
type Sent struct {
	// Reply is a message to reply to. If empty, the message is not interpreted
	// as a reply.
	Reply string
	// To is the channel to whom the message is sent.
	To string
	// Text is the message text.
	Text string
	// Embed is an optional rich embed sent with the message.
	Embed *Embed
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	// Color is an RGB color for the embed's accent.
	Color int
}

// ErrorColor is the accent color of error embeds.
const ErrorColor = 0xff4500

// formatString is a type to prevent misuse of format strings passed to [Format].
type formatString string

// Format constructs a message to send from a format string literal and
// formatting arguments.
func Format(reply, to string, f formatString, args ...any) Sent {
	return Sent{
		Reply: reply,
		To:    to,
		Text:  strings.TrimSpace(fmt.Sprintf(string(f), args...)),
	}
}

// Error constructs an error embed message. If title is empty, it is "Error".
func Error(reply, to, title, detail string) Sent {
	if title == "" {
		title = "Error"
	}
	return Sent{
		Reply: reply,
		To:    to,
		Embed: &Embed{
			Title:       title,
			Description: Truncate(detail, MaxLen),
			Color:       ErrorColor,
		},
	}
}

// Codeblock fences text in a code block. Fences within text are escaped.
func Codeblock(text string) string {
	return "```\n" + strings.ReplaceAll(text, "```", "\\`\\`\\`") + "```"
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
