package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/osmarks/autobotrobot/deleted"
	"github.com/osmarks/autobotrobot/deleted/sqllog"
)

var dbCount atomic.Int64

func testRobot(t *testing.T) (*Robot, *http.ServeMux) {
	t.Helper()
	ctx := context.Background()
	k := dbCount.Add(1)
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:test-api-%d.db?mode=memory&cache=shared", k), sqlitex.PoolOptions{Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenMemory | sqlite.OpenSharedCache | sqlite.OpenURI})
	if err != nil {
		t.Fatal(err)
	}
	l, err := sqllog.Open(ctx, pool)
	if err != nil {
		t.Fatal(err)
	}
	robo := New(1)
	robo.SetLog(l)
	t.Cleanup(func() { robo.Close() })
	mux := http.NewServeMux()
	robo.routes(mux, robo.metrics.Collectors())
	return robo, mux
}

func TestAPIRecent(t *testing.T) {
	ctx := context.Background()
	robo, mux := testRobot(t)
	for i, s := range []string{"bees", "apioforms", "more bees"} {
		if err := robo.state.Deleted.Append(ctx, deleted.Item{Time: time.Unix(int64(i), 0), Text: s}); err != nil {
			t.Fatal(err)
		}
	}
	cases := []struct {
		name   string
		query  string
		status int
		want   []string
	}{
		{"all", "", http.StatusOK, []string{"more bees", "apioforms", "bees"}},
		{"search", "?search=bees", http.StatusOK, []string{"more bees", "bees"}},
		{"limit", "?n=1", http.StatusOK, []string{"more bees"}},
		{"badLimit", "?n=bocchi", http.StatusBadRequest, nil},
		{"zeroLimit", "?n=0", http.StatusBadRequest, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/deleted"+c.query, nil))
			if rec.Code != c.status {
				t.Fatalf("wrong status: want %d, got %d", c.status, rec.Code)
			}
			if c.status != http.StatusOK {
				return
			}
			var u struct {
				Data []apiItem `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
				t.Fatalf("couldn't decode response %q: %v", rec.Body.String(), err)
			}
			var got []string
			for _, v := range u.Data {
				got = append(got, v.Text)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong items (+got/-want):\n%s", diff)
			}
		})
	}
}

func TestAPIImport(t *testing.T) {
	ctx := context.Background()
	robo, mux := testRobot(t)
	body := `{"text":"bees","time":"2020-01-01T00:00:00Z"} {"text":"apioforms","time":"2021-01-01T00:00:00Z"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/deleted", strings.NewReader(body)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("wrong status: want %d, got %d: %s", http.StatusNoContent, rec.Code, rec.Body)
	}
	items, err := robo.state.Deleted.Recent(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []deleted.Item{
		{Time: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Text: "apioforms"},
		{Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Text: "bees"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("wrong items (+got/-want):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/api/deleted", strings.NewReader(`{"text":"x","time":"yesterday"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("bad time accepted: %d", rec.Code)
	}
}

func TestAPIMetrics(t *testing.T) {
	_, mux := testRobot(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("wrong status: want 200, got %d", rec.Code)
	}
}
