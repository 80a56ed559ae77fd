// Package tio is a client for the TIO.run code execution service.
package tio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBase is the base URL of the public TIO instance.
const DefaultBase = "https://tio.run"

// Client holds the context for requests to TIO.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Base is the base URL of the TIO instance.
	// If empty, DefaultBase is used.
	Base string
	// Rate limits requests to the service. If nil, requests are unlimited.
	Rate *rate.Limiter
	// Retries lists the delays before each retry of a request that fails
	// with a transport error or a server error.
	Retries []time.Duration
	// LanguageTTL is the duration for which the language list is cached.
	// If zero, it is cached forever.
	LanguageTTL time.Duration

	mu    sync.Mutex
	langs map[string]struct{}
	when  time.Time
}

// Result is the outcome of running code.
type Result struct {
	// OK is whether the service accepted and ran the code.
	OK bool
	// Language is the resolved language name.
	Language string
	// Output is the program's output, or a failure description if not OK.
	Output string
	// Debug is the service's debug information, including timing and exit
	// status.
	Debug string
}

// errRejected marks responses which retrying cannot fix.
var errRejected = errors.New("rejected by server")

func (c *Client) base() string {
	if c.Base == "" {
		return DefaultBase
	}
	return c.Base
}

func (c *Client) http() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// do performs a request with retries and returns the response body.
// The body is truncated to 4 MB.
func (c *Client) do(ctx context.Context, method, ep string, body []byte) ([]byte, error) {
	u, err := url.JoinPath(c.base(), ep)
	if err != nil {
		return nil, fmt.Errorf("couldn't make URL for %s: %w", ep, err)
	}
	for i := 0; ; i++ {
		b, err := c.once(ctx, method, u, body)
		if err == nil {
			return b, nil
		}
		if i >= len(c.Retries) || errors.Is(err, errRejected) || ctx.Err() != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Retries[i]):
		}
	}
}

func (c *Client) once(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	if c.Rate != nil {
		if err := c.Rate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("couldn't wait for rate limit: %w", err)
		}
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't make request: %w", err)
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't %s: %w", method, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("couldn't read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusOK: // do nothing
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("request failed: %s", resp.Status)
	default:
		return nil, fmt.Errorf("request failed: %s (%w)", resp.Status, errRejected)
	}
	return b, nil
}

// Run executes code in the named language. Language aliases are resolved
// before the request. An unknown language produces a Result that is not OK
// rather than an error; errors are reserved for failures to talk to TIO.
func (c *Client) Run(ctx context.Context, lang, code string) (Result, error) {
	langs, err := c.languages(ctx)
	if err != nil {
		return Result{}, err
	}
	name := Resolve(lang)
	if _, ok := langs[name]; !ok {
		r := Result{
			Language: name,
			Output:   fmt.Sprintf("Unknown language %q.", lang),
		}
		return r, nil
	}
	req, err := encode(name, code)
	if err != nil {
		return Result{}, err
	}
	b, err := c.do(ctx, "POST", "/cgi-bin/run/api/", req)
	if err != nil {
		return Result{}, fmt.Errorf("couldn't run code: %w", err)
	}
	out, debug, err := decode(b)
	if err != nil {
		return Result{}, err
	}
	r := Result{
		OK:       true,
		Language: name,
		Output:   out,
		Debug:    debug,
	}
	return r, nil
}
