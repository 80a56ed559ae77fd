// Package choice implements biased random selection among free-text options.
package choice

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Bias is the set of substrings which adjust the weights of options.
// A Bias must not be modified once it is in use.
type Bias struct {
	// Bad is the list of substrings which halve an option's weight.
	Bad []string
	// Good is the list of substrings which double an option's weight.
	Good []string
	// Negations is the list of substrings which invert an option's weight
	// each time they appear.
	Negations []string
}

// NewBias creates a bias from word lists. Entries are lowercased and empty
// entries are dropped. Duplicate entries are kept and compound.
func NewBias(bad, good, negations []string) *Bias {
	return &Bias{
		Bad:       lowerAll(bad),
		Good:      lowerAll(good),
		Negations: lowerAll(negations),
	}
}

func lowerAll(s []string) []string {
	r := make([]string, 0, len(s))
	for _, v := range s {
		if v == "" {
			continue
		}
		r = append(r, cases.Lower(language.Und).String(v))
	}
	return r
}

// Weight computes the relative weight of an option.
// The adjustments apply in order: the literal option "c", then each matching
// bad substring, then each matching good substring, then each occurrence of
// each negation.
func Weight(text string, b *Bias) float64 {
	s := cases.Lower(language.Und).String(text)
	w := 1.0
	if s == "c" {
		w *= 0.3
	}
	if b == nil {
		return w
	}
	for _, t := range b.Bad {
		if t != "" && strings.Contains(s, t) {
			w *= 0.5
		}
	}
	for _, t := range b.Good {
		if t != "" && strings.Contains(s, t) {
			w *= 2
		}
	}
	for _, t := range b.Negations {
		if t == "" {
			continue
		}
		for range strings.Count(s, t) {
			w = 1 / w
		}
	}
	return w
}

// Weights computes the weight of each option.
func Weights(choices []string, b *Bias) []float64 {
	r := make([]float64, len(choices))
	for i, c := range choices {
		r[i] = Weight(c, b)
	}
	return r
}
