package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/osmarks/autobotrobot/apioform"
	"github.com/osmarks/autobotrobot/command"
	"github.com/osmarks/autobotrobot/fortune"
	"github.com/osmarks/autobotrobot/metrics"
)

// Robot is the overall configuration for the bot.
type Robot struct {
	// state is the bot state as visible to commands.
	state command.Robot
	// log is the deletion log with its database.
	log closeLog
	// works is the worker pool for command invocations.
	works chan chan func(context.Context)
	// metrics is the set of metrics the bot records.
	metrics metrics.Metrics
}

// New creates a new robot instance. Use the Set methods and Configure to
// finish setting it up.
func New(poolSize int) *Robot {
	m := metrics.New("autobotrobot")
	return &Robot{
		state: command.Robot{
			Log:         slog.Default(),
			Commands:    command.Default(),
			DeleteDelay: time.Second,
			Apioform:    apioform.Generate,
			Fortune:     (&fortune.Runner{}).Fortune,
			Metrics:     m,
		},
		works:   make(chan chan func(context.Context), poolSize),
		metrics: m,
	}
}

// Configure sets up everything but the chat connection from configuration.
func (robo *Robot) Configure(ctx context.Context, cfg *Config) error {
	robo.state.Prefix = cfg.Prefix
	robo.state.Invite = cfg.Invite
	robo.state.Bias = loadBias(cfg.Autobias)
	robo.state.Exec = loadTIO(cfg.TIO)
	if cfg.DeleteDelay != nil {
		robo.state.DeleteDelay = fseconds(*cfg.DeleteDelay)
	}
	f := fortune.Runner{Path: cfg.Fortune.Path, Args: cfg.Fortune.Args}
	robo.state.Fortune = f.Fortune
	l, err := loadLog(ctx, cfg.DB)
	if err != nil {
		return err
	}
	robo.SetLog(l)
	return nil
}

// SetLog sets the deletion log.
func (robo *Robot) SetLog(l closeLog) {
	robo.log = l
	robo.state.Deleted = l
}

// Close closes the deletion log.
func (robo *Robot) Close() error {
	if robo.log == nil {
		return nil
	}
	return robo.log.Close()
}

// Run connects to Discord and serves the HTTP API until ctx is canceled or
// something fails.
func (robo *Robot) Run(ctx context.Context, cfg *Config) error {
	tok, err := os.ReadFile(cfg.Discord.TokenFile)
	if err != nil {
		return fmt.Errorf("couldn't read Discord token: %w", err)
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.Discord.Rate.Num > 0 {
		lim = rate.NewLimiter(rate.Every(fseconds(cfg.Discord.Rate.Every)), cfg.Discord.Rate.Num)
	}
	dc, err := robo.NewDiscord(ctx, strings.TrimSpace(string(tok)), lim)
	if err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := dc.Start(); err != nil {
			return fmt.Errorf("couldn't connect to Discord: %w", err)
		}
		slog.InfoContext(ctx, "connected to Discord")
		<-ctx.Done()
		return dc.Close()
	})
	if cfg.HTTP.Listen != "" {
		group.Go(func() error {
			return robo.api(ctx, cfg.HTTP.Listen, new(http.ServeMux), robo.metrics.Collectors())
		})
	}
	return group.Wait()
}
