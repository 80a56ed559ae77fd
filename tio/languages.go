package tio

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// aliases maps common short names to TIO language identifiers.
var aliases = map[string]string{
	"py":         "python3",
	"python":     "python3",
	"py3":        "python3",
	"py2":        "python2",
	"js":         "javascript-node",
	"javascript": "javascript-node",
	"node":       "javascript-node",
	"ts":         "typescript",
	"rb":         "ruby",
	"rs":         "rust",
	"c":          "c-gcc",
	"cpp":        "cpp-gcc",
	"c++":        "cpp-gcc",
	"cs":         "cs-core",
	"csharp":     "cs-core",
	"c#":         "cs-core",
	"fs":         "fs-core",
	"hs":         "haskell",
	"sh":         "bash",
	"shell":      "bash",
	"kt":         "kotlin",
	"pl":         "perl5",
	"perl":       "perl5",
	"lisp":       "clisp",
	"bf":         "brainfuck",
	"apl":        "apl-dyalog",
	"java":       "java-openjdk",
	"lua":        "lua",
	"go":         "go",
	"golang":     "go",
}

// Resolve maps a language alias to its TIO identifier. Names which are not
// aliases are returned unchanged.
func Resolve(lang string) string {
	if r, ok := aliases[lang]; ok {
		return r
	}
	return lang
}

// Languages returns the identifiers of all languages TIO supports, sorted.
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	m, err := c.languages(ctx)
	if err != nil {
		return nil, err
	}
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	slices.Sort(r)
	return r, nil
}

// languages gets the language set, using the cache when it is fresh.
// The returned map must not be modified.
func (c *Client) languages(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.langs != nil && (c.LanguageTTL == 0 || time.Since(c.when) < c.LanguageTTL) {
		return c.langs, nil
	}
	b, err := c.do(ctx, "GET", "/languages.json", nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't get languages: %w", err)
	}
	// Only the keys matter. Each value describes the language.
	var v map[string]jsontext.Value
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("couldn't decode languages: %w", err)
	}
	m := make(map[string]struct{}, len(v))
	for k := range v {
		m[k] = struct{}{}
	}
	c.langs, c.when = m, time.Now()
	return m, nil
}
