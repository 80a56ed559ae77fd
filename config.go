package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"golang.org/x/time/rate"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/osmarks/autobotrobot/choice"
	"github.com/osmarks/autobotrobot/deleted"
	"github.com/osmarks/autobotrobot/deleted/kvlog"
	"github.com/osmarks/autobotrobot/deleted/sqllog"
	"github.com/osmarks/autobotrobot/tio"
)

// Load loads a bot configuration from TOML.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	if cfg.Prefix == "" {
		return nil, nil, errors.New("config has no command prefix")
	}
	return &cfg, &md, nil
}

// closeLog is a deletion log which holds a database open.
type closeLog interface {
	deleted.Log
	Close() error
}

func loadLog(ctx context.Context, cfg DBCfg) (closeLog, error) {
	if cfg.KVLog != "" && cfg.SQLLog != "" {
		return nil, fmt.Errorf("multiple deletion log backends requested; use exactly one")
	}
	if cfg.KVLog == "" && cfg.SQLLog == "" {
		return nil, fmt.Errorf("no deletion log backends requested; use exactly one")
	}

	if cfg.KVLog != "" {
		slog.DebugContext(ctx, "using kvlog", slog.String("path", cfg.KVLog), slog.String("flags", cfg.KVFlag))
		opts := badger.DefaultOptions(cfg.KVLog)
		opts = opts.WithLogger(nil)
		opts = opts.WithCompression(options.None)
		db, err := badger.Open(opts.FromSuperFlag(cfg.KVFlag))
		if err != nil {
			return nil, fmt.Errorf("couldn't open kvlog db: %w", err)
		}
		l, err := kvlog.New(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return l, nil
	}
	slog.DebugContext(ctx, "using sqllog", slog.String("path", cfg.SQLLog))
	db, err := sqlitex.NewPool(cfg.SQLLog, sqlitex.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("couldn't open sqllog db: %w", err)
	}
	l, err := sqllog.Open(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func loadBias(cfg Autobias) *choice.Bias {
	return choice.NewBias(cfg.Bad, cfg.Good, cfg.Negations)
}

func loadTIO(cfg TIOCfg) *tio.Client {
	cl := tio.Client{
		HTTP:        &http.Client{Timeout: fseconds(cfg.Timeout)},
		Base:        cfg.Base,
		LanguageTTL: fseconds(cfg.LanguageTTL),
	}
	if cfg.Rate.Num > 0 {
		cl.Rate = rate.NewLimiter(rate.Every(fseconds(cfg.Rate.Every)), cfg.Rate.Num)
	}
	for _, s := range cfg.Retries {
		cl.Retries = append(cl.Retries, fseconds(s))
	}
	return &cl
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config is the top-level configuration.
type Config struct {
	// Prefix is the text which introduces commands.
	Prefix string `toml:"prefix"`
	// Invite is the link shown by the about command to add the bot to a server.
	Invite string `toml:"invite"`
	// DeleteDelay is the time in seconds that deletions take.
	// Defaults to one second if not set.
	DeleteDelay *float64 `toml:"delete_delay"`
	// DB is the deletion log database configuration.
	DB DBCfg `toml:"db"`
	// Autobias is the bias configuration for random choices.
	Autobias Autobias `toml:"autobias"`
	// TIO is the code execution service configuration.
	TIO TIOCfg `toml:"tio"`
	// Fortune is the fortune program configuration.
	Fortune FortuneCfg `toml:"fortune"`
	// Discord is the Discord connection configuration.
	Discord DiscordCfg `toml:"discord"`
	// HTTP is the configuration for the HTTP API.
	HTTP struct {
		// Listen is the address to bind the HTTP server.
		Listen string `toml:"listen"`
	} `toml:"http"`
}

// DBCfg is the configuration of databases. Exactly one of SQLLog and KVLog
// must be set.
type DBCfg struct {
	SQLLog string `toml:"sqllog"`
	KVLog  string `toml:"kvlog"`
	KVFlag string `toml:"kvflag"`
}

// Autobias is the configuration of choice weights.
type Autobias struct {
	Bad       []string `toml:"bad_things"`
	Good      []string `toml:"good_things"`
	Negations []string `toml:"negations"`
}

// TIOCfg is the configuration of the code execution client.
type TIOCfg struct {
	// Base is the base URL of the TIO instance.
	Base string `toml:"base"`
	// Timeout is the timeout for each request in seconds.
	Timeout float64 `toml:"timeout"`
	// Retries are the delays in seconds before retries of failed requests.
	Retries []float64 `toml:"retries"`
	// LanguageTTL is the time in seconds to cache the language list.
	LanguageTTL float64 `toml:"language_ttl"`
	Rate        Rate    `toml:"rate"`
}

// FortuneCfg is the configuration of the fortune program.
type FortuneCfg struct {
	Path string   `toml:"path"`
	Args []string `toml:"args"`
}

// DiscordCfg is the configuration of the Discord connection.
type DiscordCfg struct {
	// TokenFile is the path to a file containing the bot token.
	TokenFile string `toml:"token_file"`
	// Rate limits messages sent to Discord.
	Rate Rate `toml:"rate"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Prefix,
		&cfg.Invite,
		&cfg.DB.SQLLog,
		&cfg.DB.KVLog,
		&cfg.DB.KVFlag,
		&cfg.TIO.Base,
		&cfg.Fortune.Path,
		&cfg.Discord.TokenFile,
		&cfg.HTTP.Listen,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i, s := range cfg.Fortune.Args {
		cfg.Fortune.Args[i] = os.Expand(s, expand)
	}
}
