package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBytes bounds fetched response bodies. Large crawls produce
// multi-megabyte GraphML files, so the limit is generous.
const DefaultMaxBytes = 256 << 20

// Client fetches remote documents with retries.
type Client struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
	attempts  int
	delay     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxBytes bounds the response body size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) { c.maxBytes = n }
}

// WithRetries sets the retry policy: attempts tries with an initial
// delay that doubles after each failure.
func WithRetries(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a Client with sensible defaults: a 30 second
// request timeout, 3 attempts with 1 second initial backoff.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the document at url. Network failures and 5xx
// responses are retried; 4xx responses fail immediately.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := Retry(ctx, c.attempts, c.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return &RetryableError{Err: fmt.Errorf("GET %s: %s", url, resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
		if err != nil {
			return &RetryableError{Err: err}
		}
		if int64(len(body)) > c.maxBytes {
			return fmt.Errorf("GET %s: response exceeds %d bytes", url, c.maxBytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
