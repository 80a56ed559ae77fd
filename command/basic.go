package command

import (
	"context"
	"fmt"
	"strings"
)

// Fortune sends a fortune.
// No arguments.
func Fortune(ctx context.Context, robo *Robot, call *Invocation) error {
	s, err := robo.Fortune(ctx)
	if err != nil {
		return fmt.Errorf("couldn't get fortune: %w", err)
	}
	call.Say(ctx, s)
	return nil
}

// Apioform sends the name of a new apioform type.
// No arguments.
func Apioform(ctx context.Context, robo *Robot, call *Invocation) error {
	call.Say(ctx, robo.Apioform())
	return nil
}

// Ping says Pong.
// No arguments.
func Ping(ctx context.Context, robo *Robot, call *Invocation) error {
	call.Say(ctx, "Pong.")
	return nil
}

const about = `**AutoBotRobot: The least useful Discord bot ever designed.**
AutoBotRobot has many features, but not necessarily any practical ones.
It can execute code via TIO.run, roll dice, make choices, print fortunes, and not any more!
AutoBotRobot is open source - the code is available at <https://github.com/osmarks/autobotrobot> - and you could run your own instance if you wanted to and could get around the complete lack of user guide or documentation.`

// About sends information about the bot.
// No arguments.
func About(ctx context.Context, robo *Robot, call *Invocation) error {
	if robo.Invite == "" {
		call.Say(ctx, about)
		return nil
	}
	call.Say(ctx, about+"\nYou can also invite it to your server: <"+robo.Invite+">")
	return nil
}

// Help lists commands, or describes one.
//   - First token: Command to describe. Optional.
func Help(ctx context.Context, robo *Robot, call *Invocation) error {
	toks, err := call.Tokens()
	if err != nil {
		return err
	}
	if len(toks) > 0 {
		c := robo.Commands.Find(toks[0])
		if c == nil {
			return fail(fmt.Sprintf("No command called %q found.", call.clean(toks[0])))
		}
		var b strings.Builder
		b.WriteString("```\n")
		fmt.Fprintf(&b, "%s%s", robo.Prefix, c.Name)
		if c.Usage != "" {
			fmt.Fprintf(&b, " %s", c.Usage)
		}
		fmt.Fprintf(&b, "\n\n%s\n", c.Help)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, "\nAliases: %s\n", strings.Join(c.Aliases, ", "))
		}
		b.WriteString("```")
		call.Say(ctx, b.String())
		return nil
	}
	var b strings.Builder
	b.WriteString("```\nCommands:\n")
	for _, c := range robo.Commands.All() {
		fmt.Fprintf(&b, "  %-16s %s\n", c.Name, c.Help)
	}
	fmt.Fprintf(&b, "\nType %shelp command for more info on a command.\n```", robo.Prefix)
	call.Say(ctx, b.String())
	return nil
}
