package command

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
		err  error
	}{
		{"empty", "", nil, nil},
		{"spaces", " \t\n ", nil, nil},
		{"words", "bees  apioforms\nkita", []string{"bees", "apioforms", "kita"}, nil},
		{"apostrophe", "don't go", []string{"don't", "go"}, nil},
		{"apostrophes", "'bees' it's", []string{"'bees'", "it's"}, nil},
		{"hash", "#1 #2", []string{"#1", "#2"}, nil},
		{"backslash", `C:\tmp D:\tmp`, []string{`C:\tmp`, `D:\tmp`}, nil},
		{"quoted", `"the concept of bees" apioforms`, []string{"the concept of bees", "apioforms"}, nil},
		{"quotedEmpty", `"" bees`, []string{"", "bees"}, nil},
		{"quotedEscape", `"say \"bees\"" x`, []string{`say "bees"`, "x"}, nil},
		{"quotedBackslash", `"C:\tmp"`, []string{`C:\tmp`}, nil},
		{"quotedApostrophe", `"don't go"`, []string{"don't go"}, nil},
		{"midQuote", `bo"cchi ryo"`, []string{`bo"cchi`, `ryo"`}, nil},
		{"curly", "“kessoku band” nijika", []string{"kessoku band", "nijika"}, nil},
		{"guillemets", "«bocchi the» rock", []string{"bocchi the", "rock"}, nil},
		{"unclosed", `"bees`, nil, errUnclosed},
		{"escapedClose", `"bees\"`, nil, errUnclosed},
		{"joined", `"bees"apioforms`, nil, errQuoteEnd},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := split(c.in)
			if !errors.Is(err, c.err) {
				t.Errorf("wrong error: want %v, got %v", c.err, err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong words (+got/-want):\n%s", diff)
			}
		})
	}
}
