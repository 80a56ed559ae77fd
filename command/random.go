package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/osmarks/autobotrobot/choice"
	"github.com/osmarks/autobotrobot/dice"
)

// Roll rolls dice.
//   - First token: Dice in NdX notation.
func Roll(ctx context.Context, robo *Robot, call *Invocation) error {
	toks, err := call.Tokens()
	if err != nil {
		return err
	}
	if len(toks) == 0 {
		return fail("Specify dice to roll, e.g. 2d6.")
	}
	spec, err := dice.Parse(toks[0])
	switch {
	case err == nil: // do nothing
	case errors.Is(err, dice.ErrFormat):
		return fail("Invalid dice notation")
	case errors.Is(err, dice.ErrLimit):
		return fail("N or X exceeds limit")
	default:
		return err
	}
	call.Say(ctx, spec.Roll().String())
	return nil
}

// Choice chooses among options, possibly many times.
//   - First token: Number of samples, if it is an integer. Otherwise it is
//     the first option.
//   - Remaining tokens: Options.
func Choice(ctx context.Context, robo *Robot, call *Invocation) error {
	toks, err := call.Tokens()
	if err != nil {
		return err
	}
	k := int64(1)
	if len(toks) > 0 {
		n, err := strconv.ParseInt(toks[0], 10, 64)
		switch {
		case err == nil:
			k, toks = n, toks[1:]
		case errors.Is(err, strconv.ErrRange):
			call.Say(ctx, "No.")
			return nil
		}
	}
	counts, err := choice.Sample(toks, robo.Bias, k)
	switch {
	case err == nil: // do nothing
	case errors.Is(err, choice.ErrNoChoices), errors.Is(err, choice.ErrCount):
		call.Say(ctx, "No.")
		return nil
	default:
		return fmt.Errorf("couldn't sample choices: %w", err)
	}
	if k == 1 {
		for _, c := range counts {
			if c.N > 0 {
				call.Say(ctx, call.clean(c.Text))
				return nil
			}
		}
		return errors.New("sampling chose nothing")
	}
	var b strings.Builder
	for i, c := range counts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s x%d", c.Text, c.N)
	}
	call.Say(ctx, call.clean(b.String()))
	return nil
}
