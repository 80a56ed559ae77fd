package main

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/osmarks/autobotrobot/channel"
	"github.com/osmarks/autobotrobot/message"
)

// discordClient is a connection to Discord.
type discordClient struct {
	session *discordgo.Session
	// rate limits all sent messages.
	rate *rate.Limiter
}

// NewDiscord creates a Discord session which dispatches commands from
// received messages. The session is not connected until Start is called.
func (robo *Robot) NewDiscord(ctx context.Context, token string, lim *rate.Limiter) (*discordClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	dc := &discordClient{session: session, rate: lim}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	session.AddHandler(func(session *discordgo.Session, event *discordgo.Ready) {
		slog.InfoContext(ctx, "discord ready", slog.String("user", event.User.Username), slog.Int("guilds", len(event.Guilds)))
	})
	session.AddHandler(func(session *discordgo.Session, event *discordgo.MessageCreate) {
		robo.onDiscordMessage(ctx, dc, event)
	})
	return dc, nil
}

func (robo *Robot) onDiscordMessage(ctx context.Context, dc *discordClient, event *discordgo.MessageCreate) {
	// Ignore messages sent by bots, including ourselves.
	if event.Author == nil || event.Author.Bot {
		return
	}
	me := dc.session.State.User
	prefixes := []string{robo.state.Prefix}
	if me != nil {
		prefixes = append(prefixes, "<@"+me.ID+">", "<@!"+me.ID+">")
	}
	log := slog.With(slog.String("trace", event.ID), slog.String("in", event.ChannelID))
	ch := &channel.Channel{
		Name:    event.ChannelID,
		Message: dc.send(log, event.ChannelID),
		Typing:  dc.typing(event.ChannelID),
	}
	msg := &message.Received{
		ID:        event.ID,
		To:        event.ChannelID,
		Sender:    event.Author.ID,
		Name:      event.Author.Username,
		Text:      event.Content,
		Timestamp: event.Timestamp.UnixMilli(),
	}
	names := discordNames(dc.session.State, event.Message)
	robo.command(ctx, ch, msg, prefixes, names.clean)
}

// send creates a function to send messages to a Discord channel.
func (dc *discordClient) send(log *slog.Logger, channelID string) func(ctx context.Context, msg message.Sent) {
	return func(ctx context.Context, msg message.Sent) {
		if err := dc.rate.Wait(ctx); err != nil {
			log.WarnContext(ctx, "couldn't wait to send", slog.Any("err", err))
			return
		}
		_, err := dc.session.ChannelMessageSendComplex(channelID, discordMessage(channelID, msg), discordgo.WithContext(ctx))
		if err != nil {
			log.ErrorContext(ctx, "failed to send discord message", slog.Any("err", err))
		}
	}
}

// discordMessage converts a message to Discord's form. Mentions in sent
// messages never ping anyone.
func discordMessage(channelID string, msg message.Sent) *discordgo.MessageSend {
	m := &discordgo.MessageSend{
		Content:         message.Truncate(msg.Text, message.MaxLen),
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if msg.Embed != nil {
		m.Embeds = []*discordgo.MessageEmbed{
			{
				Title:       msg.Embed.Title,
				Description: msg.Embed.Description,
				Color:       msg.Embed.Color,
			},
		}
	}
	if msg.Reply != "" {
		m.Reference = &discordgo.MessageReference{MessageID: msg.Reply, ChannelID: channelID}
	}
	return m
}

// typingInterval is how often to renew the typing indicator. Discord shows it
// for ten seconds after each request.
const typingInterval = 8 * time.Second

// typing creates a function to show a typing indicator in a channel.
func (dc *discordClient) typing(channelID string) func(ctx context.Context) func() {
	return func(ctx context.Context) func() {
		ctx, cancel := context.WithCancel(ctx)
		go func() {
			t := time.NewTicker(typingInterval)
			defer t.Stop()
			for {
				if err := dc.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil && ctx.Err() == nil {
					slog.DebugContext(ctx, "couldn't show typing", slog.String("in", channelID), slog.Any("err", err))
				}
				select {
				case <-ctx.Done():
					return
				case <-t.C:
				}
			}
		}()
		return cancel
	}
}

// Start opens the Discord websocket connection.
func (dc *discordClient) Start() error {
	return dc.session.Open()
}

// Close closes the Discord websocket connection.
func (dc *discordClient) Close() error {
	return dc.session.Close()
}

// mentionNames resolves the names of mentioned entities.
// Each function reports false if the entity is unknown.
type mentionNames struct {
	user    func(id string) (string, bool)
	role    func(id string) (string, bool)
	channel func(id string) (string, bool)
}

var (
	mentionRE    = regexp.MustCompile(`<(@!?|@&|#)([0-9]+)>`)
	everyoneRepl = strings.NewReplacer("@everyone", "@\u200beveryone", "@here", "@\u200bhere")
)

// clean replaces mentions with the plain names of what they mention and
// neutralizes mass mentions.
func (m mentionNames) clean(s string) string {
	s = mentionRE.ReplaceAllStringFunc(s, func(v string) string {
		u := mentionRE.FindStringSubmatch(v)
		id := u[2]
		switch u[1] {
		case "@", "@!":
			if n, ok := lookup(m.user, id); ok {
				return "@" + n
			}
			return "@deleted-user"
		case "@&":
			if n, ok := lookup(m.role, id); ok {
				return "@" + n
			}
			return "@deleted-role"
		default:
			if n, ok := lookup(m.channel, id); ok {
				return "#" + n
			}
			return "#deleted-channel"
		}
	})
	return everyoneRepl.Replace(s)
}

func lookup(f func(string) (string, bool), id string) (string, bool) {
	if f == nil {
		return "", false
	}
	return f(id)
}

// discordNames resolves mentions using a message's mention lists and the
// session state cache.
func discordNames(state *discordgo.State, msg *discordgo.Message) mentionNames {
	return mentionNames{
		user: func(id string) (string, bool) {
			for _, u := range msg.Mentions {
				if u.ID != id {
					continue
				}
				if msg.GuildID != "" && state != nil {
					if mem, err := state.Member(msg.GuildID, id); err == nil && mem.Nick != "" {
						return mem.Nick, true
					}
				}
				if u.GlobalName != "" {
					return u.GlobalName, true
				}
				return u.Username, true
			}
			return "", false
		},
		role: func(id string) (string, bool) {
			if state == nil || msg.GuildID == "" {
				return "", false
			}
			r, err := state.Role(msg.GuildID, id)
			if err != nil {
				return "", false
			}
			return r.Name, true
		},
		channel: func(id string) (string, bool) {
			if state == nil {
				return "", false
			}
			c, err := state.Channel(id)
			if err != nil {
				return "", false
			}
			return c.Name, true
		},
	}
}
