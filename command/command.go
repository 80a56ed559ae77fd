package command

import (
	"context"
	"fmt"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/message"
)

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Channel is the channel where the invocation occurred.
	Channel *channel.Channel
	// Message is the message which triggered the invocation. It is always
	// non-nil, but not all fields are guaranteed to be populated.
	Message *message.Received
	// Name is the name by which the command was invoked, which may be an
	// alias.
	Name string
	// Args is the raw text following the command name.
	Args string
	// Clean neutralizes platform markup such as mentions in text.
	// If nil, text is used unchanged.
	Clean func(string) string
}

// Tokens splits the arguments into words. Words which begin with a quotation
// mark may contain spaces.
func (call *Invocation) Tokens() ([]string, error) {
	toks, err := split(call.Args)
	if err != nil {
		return nil, &UserError{Title: "Invalid arguments", Detail: err.Error()}
	}
	return toks, nil
}

// Say sends text to the invocation's channel.
func (call *Invocation) Say(ctx context.Context, text string) {
	call.Channel.Say(ctx, "", text)
}

func (call *Invocation) clean(s string) string {
	if call.Clean == nil {
		return s
	}
	return call.Clean(s)
}

// Func executes a command. Returning a *UserError shows its contents to the
// user as an error. Other errors are logged and reported generically.
type Func func(ctx context.Context, robo *Robot, call *Invocation) error

// UserError is an error caused by the invoking user, such as malformed
// arguments.
type UserError struct {
	// Title is the title of the error. If empty, a generic title is used.
	Title string
	// Detail describes the error.
	Detail string
}

func (e *UserError) Error() string {
	if e.Title == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// fail creates a user error with only detail.
func fail(detail string) error {
	return &UserError{Detail: detail}
}
