package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTP implements Provider over a remote data root.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP creates a provider rooted at baseURL. A nil client means
// http.DefaultClient.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return &HTTP{base: u, client: client}, nil
}

// Location returns the URL of path with each segment escaped.
func (h *HTTP) Location(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := *h.base
	u.RawPath = ""
	return u.String() + "/" + strings.Join(segs, "/")
}

// Read fetches path and fails with *StatusError on a non-2xx response.
func (h *HTTP) Read(ctx context.Context, path string) ([]byte, error) {
	loc := h.Location(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request %s: %w", loc, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: GET %s: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: loc, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read body %s: %w", loc, err)
	}
	return data, nil
}
