package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsTTL bounds how long a host's robots.txt verdict is reused.
const robotsTTL = time.Hour

// Robots checks robots.txt compliance, caching per-host rule sets.
type Robots struct {
	cache      *gocache.Cache
	httpClient *http.Client
	userAgent  string
}

// NewRobots creates a robots.txt checker.
func NewRobots(userAgent string, timeout time.Duration) *Robots {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Robots{
		cache:      gocache.New(robotsTTL, 2*robotsTTL),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay
// the host requests. An unreachable robots.txt allows by default: a
// mirror must not stall on a missing policy file.
func (r *Robots) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.rulesFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	allowed := data.TestAgent(parsed.Path, r.userAgent)
	var delay time.Duration
	if group := data.FindGroup(r.userAgent); group != nil {
		delay = group.CrawlDelay
	}
	return allowed, delay, nil
}

func (r *Robots) rulesFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if v, ok := r.cache.Get(u.Host); ok {
		return v.(*robotstxt.RobotsData), nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	// A 404 means no policy, which robotstxt maps to allow-all.
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	r.cache.SetDefault(u.Host, data)
	return data, nil
}
