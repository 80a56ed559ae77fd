package channel

import (
	"context"

	"github.com/osmarks/autobotrobot/message"
)

// Channel is a place where commands are invoked and replies are sent.
type Channel struct {
	// Name is the identifier of the channel.
	Name string
	// Message sends a message to the channel.
	Message func(ctx context.Context, msg message.Sent)
	// Typing starts a typing indicator in the channel. The returned function
	// stops it. If nil, typing is not shown.
	Typing func(ctx context.Context) (stop func())
}

// Say sends plain text to the channel, replying to the message with the
// given ID if it is not empty. Text beyond the maximum message length is cut.
func (ch *Channel) Say(ctx context.Context, reply, text string) {
	ch.Message(ctx, message.Sent{Reply: reply, To: ch.Name, Text: message.Truncate(text, message.MaxLen)})
}

// Error sends an error embed to the channel.
func (ch *Channel) Error(ctx context.Context, reply, title, detail string) {
	ch.Message(ctx, message.Error(reply, ch.Name, title, detail))
}

// StartTyping shows a typing indicator until the returned function is called.
func (ch *Channel) StartTyping(ctx context.Context) func() {
	if ch.Typing == nil {
		return func() {}
	}
	return ch.Typing(ctx)
}
