package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/osmarks/autobotrobot/choice"
	"github.com/osmarks/autobotrobot/deleted"
	"github.com/osmarks/autobotrobot/metrics"
	"github.com/osmarks/autobotrobot/tio"
)

// Robot is the bot state as is visible to commands.
type Robot struct {
	Log *slog.Logger
	// Commands is the command table. The help command describes it.
	Commands *Registry
	// Prefix is the command prefix, used in help text.
	Prefix string
	// Bias adjusts the weights of choices.
	Bias *choice.Bias
	// Deleted is the deletion log.
	Deleted deleted.Log
	// DeleteDelay is the pause between announcing and completing a deletion.
	DeleteDelay time.Duration
	// Exec runs code.
	Exec Executor
	// Fortune gets a fortune.
	Fortune func(ctx context.Context) (string, error)
	// Apioform generates an apioform type.
	Apioform func() string
	// Invite is the URL to invite the bot to a server. May be empty.
	Invite string
	// Metrics records command metrics.
	Metrics metrics.Metrics
	// Now is the current time. If nil, time.Now is used.
	Now func() time.Time
}

// Executor runs code on a remote service.
type Executor interface {
	// Run executes code in a language.
	Run(ctx context.Context, lang, code string) (tio.Result, error)
	// Languages lists supported languages in sorted order.
	Languages(ctx context.Context) ([]string, error)
}

var _ Executor = (*tio.Client)(nil)

func (robo *Robot) now() time.Time {
	if robo.Now == nil {
		return time.Now()
	}
	return robo.Now()
}
