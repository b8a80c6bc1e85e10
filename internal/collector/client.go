// Package collector produces the data root served by the viewer: registry
// metadata, the snapshot index and relation statistics.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Registry endpoints, relative to the registry base URL.
const (
	NodeTypesListPath     = "/api/types-repo/citypes/list"
	NodeTypePath          = "/api/types-repo/citypes/citype/"
	RelationTypesListPath = "/api/types-repo/relationshiptypes/list"
	RelationTypePath      = "/api/types-repo/relationshiptypes/relationshiptype/"
)

// ClientOptions configures a registry Client.
type ClientOptions struct {
	BaseURL string
	// Retries is the total number of attempts per request.
	Retries int
	// Backoff is the delay before the first retry; it doubles each time.
	Backoff time.Duration
	Timeout time.Duration
	HTTP    *http.Client
	Logger  *slog.Logger
}

// Client fetches documents from the registry API.
type Client struct {
	base    string
	http    *http.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// NewClient creates a registry client.
func NewClient(opts ClientOptions) *Client {
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTP,
		retries: opts.Retries,
		backoff: opts.Backoff,
		logger:  opts.Logger,
	}
}

// StatusError reports a non-retryable response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector: GET %s: status %d", e.URL, e.StatusCode)
}

// Get fetches path relative to the base URL. Network errors and 5xx
// responses are retried with exponential backoff; other non-2xx responses
// fail at once with *StatusError.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	url := c.base + path
	delay := c.backoff

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		data, retry, err := c.do(ctx, url)
		if err == nil {
			return data, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if attempt == c.retries {
			break
		}

		c.logger.Warn("collector: request failed, retrying",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("collector: GET %s failed after %d attempts: %w", url, c.retries, lastErr)
}

func (c *Client) do(ctx context.Context, url string) (data []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("collector: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false, err
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, true, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("collector: read body: %w", err)
	}
	return data, false, nil
}
