package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/command"
	"github.com/osmarks/autobotrobot/message"
)

var app = cli.Command{
	Name:  "autobotrobot",
	Usage: "The least useful Discord bot ever designed",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:      "invoke",
			Aliases:   []string{"run"},
			Usage:     "Run one command locally and print its replies",
			ArgsUsage: "command [arguments...]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "trace",
					Usage: "Print the invocation trace ID",
				},
			},
			Action: cliInvoke,
		},
		{
			Name:   "init",
			Usage:  "Create the deletion log database",
			Action: cliInit,
		},
	},
	Action: cliRun,

	Authors: []any{
		"osmarks",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// loadConfig loads the config named by the config flag.
func loadConfig(ctx context.Context, cmd *cli.Command) (*Config, error) {
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, _, err := Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	robo := New(runtime.GOMAXPROCS(0))
	if err := robo.Configure(ctx, cfg); err != nil {
		return err
	}
	defer robo.Close()
	return robo.Run(ctx, cfg)
}

func cliInvoke(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("no command to invoke")
	}
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	robo := New(1)
	if err := robo.Configure(ctx, cfg); err != nil {
		return err
	}
	defer robo.Close()
	id := uuid.NewString()
	if cmd.Bool("trace") {
		fmt.Fprintln(os.Stderr, "trace:", id)
	}
	ch := channel.Channel{
		Name:    "stdout",
		Message: printMessage,
	}
	call := command.Invocation{
		Channel: &ch,
		Message: &message.Received{
			ID:        id,
			To:        ch.Name,
			Sender:    "cli",
			Name:      "cli",
			Text:      strings.Join(args, " "),
			Timestamp: time.Now().UnixMilli(),
		},
		Name: args[0],
		Args: strings.Join(args[1:], " "),
	}
	if !robo.state.Commands.Dispatch(ctx, &robo.state, &call) {
		return fmt.Errorf("no command named %q", args[0])
	}
	return nil
}

// printMessage writes a sent message to standard output.
func printMessage(ctx context.Context, msg message.Sent) {
	if msg.Text != "" {
		fmt.Println(msg.Text)
	}
	if msg.Embed != nil {
		fmt.Printf("[%s] %s\n", msg.Embed.Title, msg.Embed.Description)
	}
}

func cliInit(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	l, err := loadLog(ctx, cfg.DB)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "deletion log ready")
	return l.Close()
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}
