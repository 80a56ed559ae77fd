// Package logtest provides integration testing facilities for deletion logs.
package logtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/osmarks/autobotrobot/deleted"
)

// Test runs the integration test suite against logs produced by new.
//
// If a log cannot be created without error, new should call t.Fatal.
func Test(ctx context.Context, t *testing.T, new func(context.Context) deleted.Log) {
	t.Run("empty", testEmpty(ctx, new(ctx)))
	t.Run("order", testOrder(ctx, new(ctx)))
	t.Run("limit", testLimit(ctx, new(ctx)))
	t.Run("search", testSearch(ctx, new(ctx)))
	t.Run("sametime", testSameTime(ctx, new(ctx)))
}

var items = [...]deleted.Item{
	{Time: time.Unix(1, 0), Text: "bees"},
	{Time: time.Unix(2, 0), Text: "the concept of Tuesday"},
	{Time: time.Unix(3, 0), Text: "100% of BEES"},
	{Time: time.Unix(4, 0), Text: "snake_case"},
	{Time: time.Unix(5, 0), Text: "apioforms"},
}

func fill(ctx context.Context, t *testing.T, l deleted.Log) {
	t.Helper()
	// Insert out of order so that ordering must come from the times.
	for _, i := range []int{2, 0, 4, 1, 3} {
		if err := l.Append(ctx, items[i]); err != nil {
			t.Fatalf("couldn't append %q: %v", items[i].Text, err)
		}
	}
}

func texts(r []deleted.Item) []string {
	s := make([]string, len(r))
	for i, v := range r {
		s[i] = v.Text
	}
	return s
}

func testEmpty(ctx context.Context, l deleted.Log) func(t *testing.T) {
	return func(t *testing.T) {
		r, err := l.Recent(ctx, 100, "")
		if err != nil {
			t.Fatalf("couldn't list empty log: %v", err)
		}
		if len(r) != 0 {
			t.Errorf("empty log has items: %q", texts(r))
		}
	}
}

func testOrder(ctx context.Context, l deleted.Log) func(t *testing.T) {
	return func(t *testing.T) {
		fill(ctx, t, l)
		r, err := l.Recent(ctx, 100, "")
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		want := []deleted.Item{items[4], items[3], items[2], items[1], items[0]}
		if diff := cmp.Diff(want, r, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
			t.Errorf("wrong items (+got/-want):\n%s", diff)
		}
	}
}

func testLimit(ctx context.Context, l deleted.Log) func(t *testing.T) {
	return func(t *testing.T) {
		fill(ctx, t, l)
		r, err := l.Recent(ctx, 2, "")
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		if diff := cmp.Diff([]string{"apioforms", "snake_case"}, texts(r)); diff != "" {
			t.Errorf("wrong items (+got/-want):\n%s", diff)
		}
		r, err = l.Recent(ctx, 0, "")
		if err != nil {
			t.Fatalf("couldn't list with zero limit: %v", err)
		}
		if len(r) != 0 {
			t.Errorf("zero limit gave items: %q", texts(r))
		}
	}
}

func testSearch(ctx context.Context, l deleted.Log) func(t *testing.T) {
	return func(t *testing.T) {
		fill(ctx, t, l)
		cases := []struct {
			search string
			want   []string
		}{
			{"bees", []string{"100% of BEES", "bees"}},
			{"BeEs", []string{"100% of BEES", "bees"}},
			{"%", []string{"100% of BEES"}},
			{"_", []string{"snake_case"}},
			{"e_c", []string{"snake_case"}},
			{"tuesday", []string{"the concept of Tuesday"}},
			{"orange", []string{}},
		}
		for _, c := range cases {
			t.Run(c.search, func(t *testing.T) {
				r, err := l.Recent(ctx, 100, c.search)
				if err != nil {
					t.Fatalf("couldn't search: %v", err)
				}
				if diff := cmp.Diff(c.want, texts(r)); diff != "" {
					t.Errorf("wrong items (+got/-want):\n%s", diff)
				}
			})
		}
	}
}

func testSameTime(ctx context.Context, l deleted.Log) func(t *testing.T) {
	return func(t *testing.T) {
		tm := time.Unix(1700000000, 0)
		var want []string
		for i := range 5 {
			s := fmt.Sprint("thing ", i)
			if err := l.Append(ctx, deleted.Item{Time: tm, Text: s}); err != nil {
				t.Fatalf("couldn't append %q: %v", s, err)
			}
			want = append([]string{s}, want...)
		}
		r, err := l.Recent(ctx, 100, "thing")
		if err != nil {
			t.Fatalf("couldn't list: %v", err)
		}
		if diff := cmp.Diff(want, texts(r)); diff != "" {
			t.Errorf("wrong items (+got/-want):\n%s", diff)
		}
	}
}
