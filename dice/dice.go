// Package dice rolls dice described in NdX notation.
package dice

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Limits on dice specifications.
const (
	MaxCount = 50
	MaxSides = 1000000
)

var (
	// ErrFormat is returned by Parse for text that is not NdX notation.
	ErrFormat = errors.New("invalid dice notation")
	// ErrLimit is returned by Parse for dice outside the allowed ranges.
	ErrLimit = errors.New("N or X exceeds limit")
)

var notation = regexp.MustCompile(`^([-+]?[0-9]*)d([0-9]+)$`)

// Spec is a number of dice to roll and the number of sides on each.
type Spec struct {
	N int
	X int
}

// Parse parses NdX notation. N may be omitted, in which case it is 1.
// Negative or zero counts are rejected along with counts and sides beyond
// MaxCount and MaxSides.
func Parse(s string) (Spec, error) {
	m := notation.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	n := 1
	if m[1] != "" {
		var err error
		n, err = strconv.Atoi(m[1])
		switch {
		case errors.Is(err, strconv.ErrRange):
			return Spec{}, fmt.Errorf("%w: %q", ErrLimit, s)
		case err != nil:
			// Just a sign.
			return Spec{}, fmt.Errorf("%w: %q", ErrFormat, s)
		}
	}
	x, err := strconv.Atoi(m[2])
	if err != nil {
		// The pattern only admits digits, so this must be out of range.
		return Spec{}, fmt.Errorf("%w: %q", ErrLimit, s)
	}
	if n < 1 || n > MaxCount || x < 1 || x > MaxSides {
		return Spec{}, fmt.Errorf("%w: %q", ErrLimit, s)
	}
	return Spec{N: n, X: x}, nil
}

// Roll is the outcome of rolling dice.
type Roll struct {
	// Sum is the total of all rolls.
	Sum int
	// Rolls is the individual rolls in ascending order.
	Rolls []int
}

// Roll rolls the dice.
func (s Spec) Roll() Roll {
	r := Roll{Rolls: make([]int, s.N)}
	for i := range r.Rolls {
		v := rand.IntN(s.X) + 1
		r.Rolls[i] = v
		r.Sum += v
	}
	slices.Sort(r.Rolls)
	return r
}

// String formats the roll as the sum followed by the individual rolls.
func (r Roll) String() string {
	b := make([]byte, 0, 8+8*len(r.Rolls))
	b = strconv.AppendInt(b, int64(r.Sum), 10)
	b = append(b, " ("...)
	for i, v := range r.Rolls {
		if i > 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	b = append(b, ')')
	return string(b)
}
