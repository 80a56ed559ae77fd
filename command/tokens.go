package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// quotes maps opening quotation marks to their closing marks.
var quotes = map[rune]rune{
	'"': '"',
	'‘': '’',
	'‚': '‛',
	'“': '”',
	'„': '‟',
	'⹂': '⹂',
	'「': '」',
	'『': '』',
	'〝': '〞',
	'﹁': '﹂',
	'﹃': '﹄',
	'＂': '＂',
	'｢': '｣',
	'«': '»',
	'‹': '›',
	'《': '》',
	'〈': '〉',
}

var (
	errUnclosed = errors.New("expected closing quote")
	errQuoteEnd = errors.New("expected space after closing quote")
)

// split divides command arguments into words.
// Words are separated by whitespace. A word which begins with a quotation
// mark extends to the matching closing mark, which must be followed by
// whitespace or the end of the text. Within a quoted word, a backslash
// escapes either of its quotation marks. Everything else is literal,
// including apostrophes, backslashes, and quotes in the middle of a word.
func split(s string) ([]string, error) {
	var r []string
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return r, nil
		}
		open, n := utf8.DecodeRuneInString(s)
		end, ok := quotes[open]
		if !ok {
			k := strings.IndexFunc(s, unicode.IsSpace)
			if k < 0 {
				k = len(s)
			}
			r = append(r, s[:k])
			s = s[k:]
			continue
		}
		w, rest, err := quoted(s[n:], open, end)
		if err != nil {
			return nil, err
		}
		r = append(r, w)
		s = rest
	}
}

// quoted reads a quoted word from s, which follows the opening mark.
func quoted(s string, open, end rune) (word, rest string, err error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		c, n := utf8.DecodeRuneInString(s[i:])
		i += n
		switch c {
		case '\\':
			e, m := utf8.DecodeRuneInString(s[i:])
			if m > 0 && (e == open || e == end) {
				b.WriteRune(e)
				i += m
				continue
			}
			b.WriteRune(c)
		case end:
			e, _ := utf8.DecodeRuneInString(s[i:])
			if i < len(s) && !unicode.IsSpace(e) {
				return "", "", fmt.Errorf("%w, got %q", errQuoteEnd, e)
			}
			return b.String(), s[i:], nil
		default:
			b.WriteRune(c)
		}
	}
	return "", "", fmt.Errorf("%w %q", errUnclosed, end)
}
