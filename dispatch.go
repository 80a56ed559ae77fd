package main

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/command"
	"github.com/osmarks/autobotrobot/message"
)

// parseCommand finds the command name and raw arguments in text if it begins
// with one of the prefixes. The name ends at the first whitespace. Leading
// whitespace is trimmed from the arguments but everything else is kept.
func parseCommand(prefixes []string, text string) (name, args string, ok bool) {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		rest, found := strings.CutPrefix(text, p)
		if !found {
			continue
		}
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		k := strings.IndexFunc(rest, unicode.IsSpace)
		if k < 0 {
			k = len(rest)
		}
		name, args = rest[:k], strings.TrimLeftFunc(rest[k:], unicode.IsSpace)
		if name == "" {
			return "", "", false
		}
		return name, args, true
	}
	return "", "", false
}

// command handles a received message which may be a command. It reports
// whether the message named a known command, in which case the command has
// been queued to run on a worker.
func (robo *Robot) command(ctx context.Context, ch *channel.Channel, msg *message.Received, prefixes []string, clean func(string) string) bool {
	name, args, ok := parseCommand(prefixes, msg.Text)
	if !ok {
		return false
	}
	if robo.state.Commands.Find(name) == nil {
		slog.DebugContext(ctx, "unknown command", slog.String("name", name), slog.String("trace", msg.ID))
		return false
	}
	call := command.Invocation{
		Channel: ch,
		Message: msg,
		Name:    name,
		Args:    args,
		Clean:   clean,
	}
	// Run the command in a worker so that we don't block the message loop.
	robo.enqueue(ctx, func(ctx context.Context) {
		robo.state.Commands.Dispatch(ctx, &robo.state, &call)
	})
	return true
}

func (robo *Robot) enqueue(ctx context.Context, work func(context.Context)) {
	var w chan func(context.Context)
	// Get a worker if one exists. Otherwise, spawn a new one.
	select {
	case w = <-robo.works:
	default:
		w = make(chan func(context.Context), 1)
		go worker(ctx, robo.works, w)
	}
	// Send it work.
	select {
	case <-ctx.Done():
		return
	case w <- work:
	}
}

// worker runs works for a while. The provided context is passed to each work.
func worker(ctx context.Context, works chan chan func(context.Context), ch chan func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case work := <-ch:
			work(ctx)
			// Replace ourselves in the pool if it needs additional capacity.
			// Otherwise, we're done.
			select {
			case works <- ch:
			default:
				return
			}
		}
	}
}
