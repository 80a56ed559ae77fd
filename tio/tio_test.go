package tio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

const sep = "0123456789abcdef"

// fakeTIO is a round tripper imitating TIO.
type fakeTIO struct {
	// payload is the decompressed body of the last run request.
	payload []byte
	// fails is the number of requests to fail with 503 before succeeding.
	fails atomic.Int32
	// langReqs counts requests for the language list.
	langReqs atomic.Int32
	// status, if nonzero, is the status of every response.
	status int
}

func (f *fakeTIO) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.fails.Add(-1) >= 0 {
		return respond(http.StatusServiceUnavailable, nil), nil
	}
	if f.status != 0 {
		return respond(f.status, nil), nil
	}
	switch req.URL.Path {
	case "/languages.json":
		f.langReqs.Add(1)
		return respond(http.StatusOK, []byte(`{"python3":{"name":"Python 3"},"bash":{"name":"Bash"},"brainfuck":{}}`)), nil
	case "/cgi-bin/run/api/":
		b, err := io.ReadAll(flate.NewReader(req.Body))
		if err != nil {
			return nil, err
		}
		f.payload = b
		var z bytes.Buffer
		w := gzip.NewWriter(&z)
		io.WriteString(w, sep+"hello\n"+sep+"Real time: 0.1 s\nExit code: 0"+sep)
		w.Close()
		return respond(http.StatusOK, z.Bytes()), nil
	}
	return respond(http.StatusNotFound, nil), nil
}

func respond(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func testClient(f *fakeTIO) *Client {
	return &Client{
		HTTP: &http.Client{Transport: f},
		Base: "https://tio.example",
	}
}

func TestPayload(t *testing.T) {
	got := payload("python3", "print('é')")
	want := "Vlang\x001\x00python3\x00F.code.tio\x0011\x00print('é')F.input.tio\x000\x00Vargs\x000\x00R"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("wrong payload (+got/-want):\n%s", diff)
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		out   string
		debug string
		err   bool
	}{
		{"both", sep + "out" + sep + "dbg" + sep, "out", "dbg", false},
		{"noDebug", sep + "out", "out", "", false},
		{"empty", sep, "", "", false},
		{"short", "abc", "", "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, debug, err := decode([]byte(c.body))
			if (err != nil) != c.err {
				t.Errorf("wrong error: %v", err)
			}
			if out != c.out {
				t.Errorf("wrong output: want %q, got %q", c.out, out)
			}
			if debug != c.debug {
				t.Errorf("wrong debug: want %q, got %q", c.debug, debug)
			}
		})
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	f := new(fakeTIO)
	cl := testClient(f)
	r, err := cl.Run(ctx, "py", "print('hello')")
	if err != nil {
		t.Fatalf("couldn't run: %v", err)
	}
	want := Result{
		OK:       true,
		Language: "python3",
		Output:   "hello\n",
		Debug:    "Real time: 0.1 s\nExit code: 0",
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("wrong result (+got/-want):\n%s", diff)
	}
	if !bytes.HasPrefix(f.payload, []byte("Vlang\x001\x00python3\x00")) {
		t.Errorf("wrong language in payload: %q", f.payload)
	}
}

func TestRunUnknown(t *testing.T) {
	ctx := context.Background()
	f := new(fakeTIO)
	cl := testClient(f)
	r, err := cl.Run(ctx, "whitespace-but-not", "  \t")
	if err != nil {
		t.Fatalf("couldn't run: %v", err)
	}
	if r.OK {
		t.Errorf("unknown language ran: %+v", r)
	}
	if !strings.Contains(r.Output, "whitespace-but-not") {
		t.Errorf("failure doesn't name the language: %q", r.Output)
	}
	if f.payload != nil {
		t.Errorf("sent code for unknown language: %q", f.payload)
	}
}

func TestLanguagesCached(t *testing.T) {
	ctx := context.Background()
	f := new(fakeTIO)
	cl := testClient(f)
	for range 3 {
		langs, err := cl.Languages(ctx)
		if err != nil {
			t.Fatalf("couldn't get languages: %v", err)
		}
		if diff := cmp.Diff([]string{"bash", "brainfuck", "python3"}, langs); diff != "" {
			t.Errorf("wrong languages (+got/-want):\n%s", diff)
		}
	}
	if n := f.langReqs.Load(); n != 1 {
		t.Errorf("wrong number of language requests: want 1, got %d", n)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	t.Run("recovers", func(t *testing.T) {
		f := new(fakeTIO)
		f.fails.Store(2)
		cl := testClient(f)
		cl.Retries = []time.Duration{time.Millisecond, time.Millisecond}
		if _, err := cl.Languages(ctx); err != nil {
			t.Errorf("retries didn't recover: %v", err)
		}
	})
	t.Run("exhausted", func(t *testing.T) {
		f := new(fakeTIO)
		f.fails.Store(3)
		cl := testClient(f)
		cl.Retries = []time.Duration{time.Millisecond, time.Millisecond}
		if _, err := cl.Languages(ctx); err == nil {
			t.Error("no error after exhausting retries")
		}
	})
	t.Run("rejected", func(t *testing.T) {
		f := &fakeTIO{status: http.StatusBadRequest}
		cl := testClient(f)
		cl.Retries = []time.Duration{time.Hour}
		_, err := cl.Languages(ctx)
		if !errors.Is(err, errRejected) {
			t.Errorf("wrong error: want %v, got %v", errRejected, err)
		}
	})
}

func TestResolve(t *testing.T) {
	cases := map[string]string{
		"py":        "python3",
		"python3":   "python3",
		"c++":       "cpp-gcc",
		"brainfuck": "brainfuck",
		"":          "",
	}
	for in, want := range cases {
		if got := Resolve(in); got != want {
			t.Errorf("Resolve(%q): want %q, got %q", in, want, got)
		}
	}
}
