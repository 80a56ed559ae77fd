package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/choice"
	"github.com/osmarks/autobotrobot/deleted"
	"github.com/osmarks/autobotrobot/message"
	"github.com/osmarks/autobotrobot/tio"
)

// memlog is a deletion log in memory.
type memlog struct {
	mu    sync.Mutex
	items []deleted.Item
	err   error
}

func (l *memlog) Append(ctx context.Context, item deleted.Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.items = append(l.items, item)
	return nil
}

func (l *memlog) Recent(ctx context.Context, limit int, search string) ([]deleted.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var r []deleted.Item
	for _, v := range slices.Backward(l.items) {
		if len(r) >= limit {
			break
		}
		if deleted.Match(v.Text, search) {
			r = append(r, v)
		}
	}
	return r, nil
}

// fakeExec is an Executor with canned results.
type fakeExec struct {
	langs  []string
	result tio.Result
	err    error
	// lang and code are the arguments of the last Run.
	lang, code string
}

func (e *fakeExec) Run(ctx context.Context, lang, code string) (tio.Result, error) {
	e.lang, e.code = lang, code
	return e.result, e.err
}

func (e *fakeExec) Languages(ctx context.Context) ([]string, error) {
	return e.langs, e.err
}

// testEnv is a robot and channel recording everything sent.
type testEnv struct {
	robo   *Robot
	ch     *channel.Channel
	log    *memlog
	exec   *fakeExec
	sent   []message.Sent
	typing int
}

func newEnv() *testEnv {
	env := &testEnv{
		log:  new(memlog),
		exec: new(fakeExec),
	}
	env.robo = &Robot{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Commands: Default(),
		Prefix:   "ab!",
		Bias:     choice.NewBias(nil, nil, nil),
		Deleted:  env.log,
		Exec:     env.exec,
		Fortune: func(ctx context.Context) (string, error) {
			return "You will meet a bee.", nil
		},
		Apioform: func() string { return "Cryoapioform" },
		Now:      func() time.Time { return time.Unix(1700000000, 0) },
	}
	env.ch = &channel.Channel{
		Name:    "kessoku",
		Message: func(ctx context.Context, msg message.Sent) { env.sent = append(env.sent, msg) },
		Typing: func(ctx context.Context) func() {
			env.typing++
			return func() { env.typing-- }
		},
	}
	return env
}

// invoke dispatches a command and returns what was sent.
func (env *testEnv) invoke(t *testing.T, name, args string) []message.Sent {
	t.Helper()
	env.sent = nil
	call := Invocation{
		Channel: env.ch,
		Message: &message.Received{ID: "1", To: "kessoku", Sender: "bocchi", Text: name + " " + args},
		Name:    name,
		Args:    args,
		Clean:   func(s string) string { return strings.ReplaceAll(s, "@", "@\u200b") },
	}
	if !env.robo.Commands.Dispatch(context.Background(), env.robo, &call) {
		t.Fatalf("no command %q", name)
	}
	if env.typing != 0 {
		t.Errorf("typing left at %d", env.typing)
	}
	return env.sent
}

func say(text string) message.Sent {
	return message.Sent{To: "kessoku", Text: text}
}

func errmsg(title, detail string) message.Sent {
	return message.Error("", "kessoku", title, detail)
}

func TestSimple(t *testing.T) {
	cases := []struct {
		name string
		want []message.Sent
	}{
		{"ping", []message.Sent{say("Pong.")}},
		{"fortune", []message.Sent{say("You will meet a bee.")}},
		{"apioform", []message.Sent{say("Cryoapioform")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newEnv()
			got := env.invoke(t, c.name, "")
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong messages (+got/-want):\n%s", diff)
			}
		})
	}
}

func TestAbout(t *testing.T) {
	env := newEnv()
	for _, name := range []string{"about", "invite"} {
		got := env.invoke(t, name, "")
		if len(got) != 1 || !strings.HasPrefix(got[0].Text, "**AutoBotRobot") {
			t.Errorf("%s sent wrong messages: %+v", name, got)
		}
		if strings.Contains(got[0].Text, "invite it") {
			t.Errorf("%s has invite link without configured invite: %q", name, got[0].Text)
		}
	}
	env.robo.Invite = "https://invite.example"
	got := env.invoke(t, "about", "")
	if len(got) != 1 || !strings.HasSuffix(got[0].Text, "<https://invite.example>") {
		t.Errorf("wrong message with invite: %+v", got)
	}
}

func TestDispatch(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		env := newEnv()
		call := Invocation{Channel: env.ch, Message: new(message.Received), Name: "marriage"}
		if env.robo.Commands.Dispatch(context.Background(), env.robo, &call) {
			t.Error("dispatched unknown command")
		}
		if len(env.sent) != 0 {
			t.Errorf("unknown command sent messages: %+v", env.sent)
		}
	})
	t.Run("error", func(t *testing.T) {
		env := newEnv()
		env.robo.Fortune = func(ctx context.Context) (string, error) {
			return "", errors.New("no fortune")
		}
		got := env.invoke(t, "fortune", "")
		want := []message.Sent{errmsg("", "Something went wrong. Sorry!")}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong messages (+got/-want):\n%s", diff)
		}
	})
	t.Run("panic", func(t *testing.T) {
		env := newEnv()
		env.robo.Apioform = func() string { panic("apioforms escaped") }
		got := env.invoke(t, "apioform", "")
		want := []message.Sent{errmsg("", "Something went wrong. Sorry!")}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong messages (+got/-want):\n%s", diff)
		}
	})
	t.Run("badquote", func(t *testing.T) {
		env := newEnv()
		got := env.invoke(t, "choice", `"bees`)
		if len(got) != 1 || got[0].Embed == nil || got[0].Embed.Title != "Invalid arguments" {
			t.Errorf("wrong messages: %+v", got)
		}
	})
}

func TestDuplicateName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic from duplicate alias")
		}
	}()
	NewRegistry(
		&Command{Name: "about", Aliases: []string{"invite"}, Fn: About},
		&Command{Name: "invite", Fn: About},
	)
}

func TestHelp(t *testing.T) {
	env := newEnv()
	got := env.invoke(t, "help", "")
	if len(got) != 1 {
		t.Fatalf("wrong number of messages: %+v", got)
	}
	for _, c := range env.robo.Commands.All() {
		if !strings.Contains(got[0].Text, c.Name) {
			t.Errorf("help doesn't mention %s", c.Name)
		}
	}
	got = env.invoke(t, "help", "choose")
	if len(got) != 1 || !strings.Contains(got[0].Text, "ab!choice [count] <options...>") || !strings.Contains(got[0].Text, "Aliases: choose") {
		t.Errorf("wrong command help: %+v", got)
	}
	got = env.invoke(t, "help", "marriage")
	want := []message.Sent{errmsg("", `No command called "marriage" found.`)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong messages (+got/-want):\n%s", diff)
	}
}
