// Package deleted defines the log of things that have been "deleted".
package deleted

import (
	"context"
	"time"
)

// Item is a single deletion.
type Item struct {
	// Time is the time at which the item was deleted.
	Time time.Time
	// Text is the deleted thing.
	Text string
}

// Log is an append-only record of deleted items.
type Log interface {
	// Append records an item. Concurrent appends need no coordination from
	// the caller.
	Append(ctx context.Context, item Item) error
	// Recent returns up to limit items in order from newest to oldest.
	// If search is not empty, only items containing it are returned.
	// Matching is case-insensitive for ASCII letters.
	Recent(ctx context.Context, limit int, search string) ([]Item, error)
}

// Match reports whether text contains search, ignoring case in ASCII
// letters. It is the matching rule for logs which filter in Go rather than
// in a query language.
func Match(text, search string) bool {
	if search == "" {
		return true
	}
	n := len(search)
	for i := 0; i+n <= len(text); i++ {
		if asciiEqualFold(text[i:i+n], search) {
			return true
		}
	}
	return false
}

func asciiEqualFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}
