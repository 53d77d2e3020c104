// Package fetch mirrors CHILDES corpus archives politely: index-page
// link discovery, robots.txt compliance, per-host rate limiting,
// response caching, bounded reads, and skipping of files already on
// disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Defaults for the polite client. One request per second with a small
// burst is well under what the TalkBank servers ask for.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "kinvoc-fetch/0.1 (research corpus mirror)"
	DefaultMaxBytes  = 256 << 20
	DefaultRate      = 1.0
	DefaultBurst     = 2

	maxRedirects = 3
)

// Fetcher retrieves pages and archives over HTTP.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a Fetcher with the given limits. Zero or negative
// values take the package defaults.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Result is one fetched page.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

func (f *Fetcher) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return req, nil
}

// Fetch retrieves a page, truncating the body at the byte cap. Meant
// for index pages, not archives.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := f.newRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// Download streams the response into w. Unlike Fetch it fails when the
// body exceeds the byte cap: a truncated archive is worse than none.
func (f *Fetcher) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := f.newRequest(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return n, fmt.Errorf("read body: %w", err)
	}
	if n > f.maxBytes {
		return n, fmt.Errorf("body exceeds %d byte cap", f.maxBytes)
	}
	return n, nil
}
