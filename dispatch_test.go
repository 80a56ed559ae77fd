package main

import (
	"context"
	"sync"
	"testing"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/message"
)

func TestParseCommand(t *testing.T) {
	prefixes := []string{"ab!", "<@1234>"}
	cases := []struct {
		name string
		in   string
		cmd  string
		args string
		ok   bool
	}{
		{"empty", "", "", "", false},
		{"plain", "ab!ping", "ping", "", true},
		{"args", "ab!roll 2d6", "roll", "2d6", true},
		{"spaces", "ab!delete   the concept of Tuesday  ", "delete", "the concept of Tuesday  ", true},
		{"newline", "ab!exec\n```py\nprint(1)```", "exec", "```py\nprint(1)```", true},
		{"mention", "<@1234> choose bees apioforms", "choose", "bees apioforms", true},
		{"spaceAfterPrefix", "ab! ping", "ping", "", true},
		{"onlyPrefix", "ab!", "", "", false},
		{"noPrefix", "ping", "", "", false},
		{"case", "AB!ping", "", "", false},
		{"middle", "hello ab!ping", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cmd, args, ok := parseCommand(prefixes, c.in)
			if cmd != c.cmd {
				t.Errorf("wrong command: want %q, got %q", c.cmd, cmd)
			}
			if args != c.args {
				t.Errorf("wrong args: want %q, got %q", c.args, args)
			}
			if ok != c.ok {
				t.Errorf("wrong commandness: want %t, got %t", c.ok, ok)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	robo := New(4)
	var (
		mu   sync.Mutex
		got  []message.Sent
		done = make(chan struct{})
	)
	ch := &channel.Channel{
		Name: "kessoku",
		Message: func(ctx context.Context, msg message.Sent) {
			mu.Lock()
			got = append(got, msg)
			mu.Unlock()
			close(done)
		},
	}
	msg := &message.Received{ID: "1", To: "kessoku", Sender: "bocchi", Text: "ab!ping"}
	if !robo.command(ctx, ch, msg, []string{"ab!"}, nil) {
		t.Fatal("ping wasn't a command")
	}
	<-done
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Text != "Pong." {
		t.Errorf("wrong reply: %+v", got)
	}
	for _, text := range []string{"ab!marriage", "hello"} {
		msg := &message.Received{ID: "2", Text: text}
		if robo.command(ctx, ch, msg, []string{"ab!"}, nil) {
			t.Errorf("%q was a command", text)
		}
	}
}
