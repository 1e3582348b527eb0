package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/magazine/internal/apperr"
)

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// literalPath reports whether p is a relative slash path without dot
// segments.
func literalPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || schemeRe.MatchString(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// HTTP implements Provider by fetching resources from a web origin.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP creates a provider that resolves paths against baseURL.
// A nil client uses a client without timeout.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage: base url must be http or https: %s", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{base: u, client: client}, nil
}

// Read fetches path and returns the body of a 200 response.
func (h *HTTP) Read(ctx context.Context, path string) ([]byte, error) {
	if !literalPath(path) {
		return nil, fmt.Errorf("storage: invalid path: %s", path)
	}
	// path is a file name, not a reference: '%', '#' and '?' are escaped.
	target := h.base.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("storage: fetch %s: %w", path, apperr.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("storage: fetch %s: status %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read body %s: %w", path, err)
	}
	return data, nil
}
