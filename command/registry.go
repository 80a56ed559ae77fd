package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"github.com/osmarks/autobotrobot/metrics"
)

// Command is an entry in the command table.
type Command struct {
	// Name is the canonical name of the command.
	Name string
	// Aliases are other names which invoke the command.
	Aliases []string
	// Usage describes the command's arguments, e.g. "<NdX>".
	Usage string
	// Help is a one-line description of the command.
	Help string
	// Fn is the command implementation.
	Fn Func
}

// Registry maps names to commands.
type Registry struct {
	names map[string]*Command
	cmds  []*Command
}

// NewRegistry creates a registry containing the given commands.
// It panics if any names or aliases collide.
func NewRegistry(cmds ...*Command) *Registry {
	r := &Registry{names: make(map[string]*Command, len(cmds))}
	for _, c := range cmds {
		for _, name := range append([]string{c.Name}, c.Aliases...) {
			if r.names[name] != nil {
				panic(fmt.Errorf("command: duplicate command name %q", name))
			}
			r.names[name] = c
		}
		r.cmds = append(r.cmds, c)
	}
	return r
}

// Default returns a registry with all built-in commands.
func Default() *Registry {
	return NewRegistry(
		&Command{Name: "about", Aliases: []string{"invite"}, Help: "Get some information about the bot.", Fn: About},
		&Command{Name: "apioform", Help: "Generates an apioform type.", Fn: Apioform},
		&Command{Name: "choice", Aliases: []string{"choose"}, Usage: "[count] <options...>", Help: "'Randomly' choose between the specified options.", Fn: Choice},
		&Command{Name: "delete", Usage: "<target>", Help: "Deletes the specified target.", Fn: Delete},
		&Command{Name: "exec", Usage: "[-v] [-L language] <codeblock>", Help: "Execute provided code (in a codeblock) using TIO.run.", Fn: Exec},
		&Command{Name: "fortune", Help: "Gives you a random fortune as generated by `fortune`.", Fn: Fortune},
		&Command{Name: "help", Usage: "[command]", Help: "Shows this message.", Fn: Help},
		&Command{Name: "list_deleted", Usage: "[search]", Help: "View recently deleted things, optionally matching a filter.", Fn: ListDeleted},
		&Command{Name: "ping", Help: "Says Pong.", Fn: Ping},
		&Command{Name: "roll", Usage: "<NdX>", Help: "Roll simulated dice (basic NdX syntax, N <= 50, X <= 1e6).", Fn: Roll},
		&Command{Name: "supported_langs", Usage: "[search]", Help: "List supported languages, optionally matching a filter.", Fn: SupportedLangs},
	)
}

// Find returns the command with the given name or alias, or nil if there is
// none.
func (r *Registry) Find(name string) *Command {
	return r.names[name]
}

// All returns all commands in the order they were registered.
func (r *Registry) All() []*Command {
	return slices.Clone(r.cmds)
}

// Dispatch runs the command named by call. It reports false without doing
// anything if there is no such command.
//
// Errors and panics from the command never escape Dispatch. User errors are
// shown in the invocation's channel; anything else is logged and the user is
// given a generic apology.
func (r *Registry) Dispatch(ctx context.Context, robo *Robot, call *Invocation) bool {
	cmd := r.Find(call.Name)
	if cmd == nil {
		return false
	}
	log := robo.Log.With(slog.String("command", cmd.Name), slog.String("trace", call.Message.ID))
	log.InfoContext(ctx, "command", slog.String("sender", call.Message.Sender), slog.String("channel", call.Channel.Name))
	metrics.Observe(robo.Metrics.CommandCount, 1, cmd.Name)
	start := time.Now()
	err := run(ctx, cmd.Fn, robo, call)
	metrics.Observe(robo.Metrics.CommandLatency, time.Since(start).Seconds(), cmd.Name)
	var ue *UserError
	switch {
	case err == nil: // do nothing
	case errors.As(err, &ue):
		log.InfoContext(ctx, "user error", slog.String("err", ue.Error()))
		call.Channel.Error(ctx, "", ue.Title, ue.Detail)
	default:
		log.ErrorContext(ctx, "command failed", slog.Any("err", err))
		metrics.Observe(robo.Metrics.CommandErrors, 1, cmd.Name)
		call.Channel.Error(ctx, "", "", "Something went wrong. Sorry!")
	}
	return true
}

// errPanic wraps panics from commands.
var errPanic = errors.New("command panicked")

func run(ctx context.Context, fn Func, robo *Robot, call *Invocation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v\n%s", errPanic, p, debug.Stack())
		}
	}()
	return fn(ctx, robo, call)
}
