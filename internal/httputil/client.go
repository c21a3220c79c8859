// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by the index, link and
// download stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/edition-archiver/pkg/types"
)

// StatusError is returned when the server answers with anything but 200.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Client issues single-attempt GET requests with a fixed User-Agent.
// Failures are returned to the caller; nothing is retried.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// NewClient builds a Client from cfg. A zero timeout leaves the
// net/http default (no timeout).
func NewClient(cfg types.HTTPConfig) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		UserAgent: cfg.UserAgent,
	}
}

// Get performs a GET request. On a non-200 response the body is drained and
// closed and a *StatusError is returned. The caller closes the body on
// success.
func (c *Client) Get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		slog.Debug("request failed", "url", url, "err", err)
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	slog.Debug("response", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	return resp, nil
}

// GetBytes performs a GET and returns the whole body.
func (c *Client) GetBytes(ctx context.Context, url, accept string) ([]byte, error) {
	resp, err := c.Get(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Pause waits for d or until ctx is done. A non-positive d returns
// immediately.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
