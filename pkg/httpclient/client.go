package httpclient

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// Default politeness window between requests. Scraping targets are small
// fan/reference sites; the delay is a rate-limiting courtesy, not a
// performance knob, and must precede every request.
const (
	DefaultMinDelay = 1500 * time.Millisecond
	DefaultMaxDelay = 3 * time.Second
)

// userAgents are rotated per request so the scrapers look like ordinary
// browser traffic instead of a bot hammering one UA string.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

// Client wraps an http.Client with browser-like headers and a mandatory
// randomized delay before every request.
type Client struct {
	client   *http.Client
	minDelay time.Duration
	maxDelay time.Duration
}

// New creates a polite HTTP client with the default delay window and a
// 15 second request timeout.
func New() *Client {
	return NewWithDelay(DefaultMinDelay, DefaultMaxDelay)
}

// NewWithDelay creates a client with a custom politeness window. Tests use
// a zero window; production callers should keep the defaults.
func NewWithDelay(minDelay, maxDelay time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Get performs a GET request after the politeness delay, with rotating
// browser headers. The delay is interruptible via ctx.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.politeDelay(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	c.setHeaders(req)

	return c.client.Do(req)
}

// politeDelay sleeps for a random duration inside the configured window,
// returning early if the context is cancelled.
func (c *Client) politeDelay(ctx context.Context) error {
	if c.maxDelay <= 0 {
		return ctx.Err()
	}

	delay := c.minDelay
	if spread := c.maxDelay - c.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
