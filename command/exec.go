package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/pflag"

	"github.com/osmarks/autobotrobot/message"
	"github.com/osmarks/autobotrobot/metrics"
)

// execRE matches flags followed by a fenced code block with an optional
// language tag.
var execRE = regexp.MustCompile("(?s)^(.*)```([a-zA-Z0-9_\\-+]+)?\n(.*)```\n?$")

// execFlags parses the flags preceding a code block.
func execFlags(s string) (verbose bool, lang string, err error) {
	args, err := shlex.Split(s)
	if err != nil {
		return false, "", err
	}
	fs := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVarP(&verbose, "verbose", "v", false, "show debug information")
	fs.StringVarP(&lang, "language", "L", "", "language to run")
	if err := fs.Parse(args); err != nil {
		return false, "", err
	}
	if fs.NArg() > 0 {
		return false, "", fmt.Errorf("unrecognized arguments: %s", strings.Join(fs.Args(), " "))
	}
	return verbose, lang, nil
}

// Exec runs code.
//   - Args: Flags followed by a code block. Flags are -v/--verbose to show
//     debug information and -L/--language to set the language.
func Exec(ctx context.Context, robo *Robot, call *Invocation) error {
	m := execRE.FindStringSubmatch(call.Args)
	if m == nil {
		return fail("Invalid format. Expected a codeblock.")
	}
	verbose, lang, err := execFlags(m[1])
	if err != nil {
		return fail("Flag parse error: " + err.Error())
	}
	if lang == "" {
		lang = m[2]
	}
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return fail("No language specified. Use the -L flag or add a language to your codeblock.")
	}
	code := m[3]

	stop := call.Channel.StartTyping(ctx)
	defer stop()
	start := time.Now()
	r, err := robo.Exec.Run(ctx, lang, code)
	metrics.Observe(robo.Metrics.ExecLatency, time.Since(start).Seconds())
	if err != nil {
		robo.Log.WarnContext(ctx, "exec failed", slog.String("lang", lang), slog.Any("err", err))
		return &UserError{Title: "Execution failed", Detail: message.Codeblock(err.Error())}
	}
	if !r.OK {
		return &UserError{Title: "Execution failed", Detail: message.Codeblock(r.Output)}
	}
	out := r.Output
	if verbose {
		// Output keeps up to half of the message.
		keep := min(message.Len(out), message.MaxLen/2)
		dbg := debugBlock(r.Debug, r.Language, message.MaxLen-keep)
		out = message.Truncate(out, message.MaxLen-message.Len(dbg)) + dbg
	} else {
		out = message.Truncate(out, message.MaxLen)
	}
	if strings.TrimSpace(out) == "" {
		out = "(no output)"
	}
	call.Say(ctx, out)
	return nil
}

// debugBlock formats debug information as a code block preceded by a newline.
// The debug text is cut so that the block is at most limit characters.
func debugBlock(debug, lang string, limit int) string {
	for {
		b := "\n" + message.Codeblock(debug+"\nLanguage:  "+lang)
		over := message.Len(b) - limit
		if over <= 0 || debug == "" {
			return b
		}
		debug = message.Truncate(debug, message.Len(debug)-over)
	}
}

// SupportedLangs lists the languages Exec can run.
//   - First token: Search text. Optional.
func SupportedLangs(ctx context.Context, robo *Robot, call *Invocation) error {
	toks, err := call.Tokens()
	if err != nil {
		return err
	}
	var search string
	if len(toks) > 0 {
		search = toks[0]
	}
	langs, err := robo.Exec.Languages(ctx)
	if err != nil {
		return fmt.Errorf("couldn't get languages: %w", err)
	}
	var b strings.Builder
	sent := false
	for _, lang := range langs {
		if !strings.Contains(lang, search) {
			continue
		}
		if b.Len()+len(lang)+1 > message.MaxLen {
			call.Say(ctx, strings.TrimSuffix(b.String(), " "))
			b.Reset()
			sent = true
		}
		b.WriteString(lang)
		b.WriteByte(' ')
	}
	switch {
	case b.Len() > 0:
		call.Say(ctx, strings.TrimSuffix(b.String(), " "))
	case !sent:
		call.Say(ctx, "No results.")
	}
	return nil
}
