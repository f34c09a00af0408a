package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// maxPolicySize bounds how much of a robots.txt response we read.
// Google's crawler uses a 500KiB cap; anything larger is not a real policy.
const maxPolicySize = 512 * 1024

// Gate answers "may I fetch this URL" per the robots exclusion standard.
//
// One Gate serves a whole run. It is safe for concurrent use: the policy
// cache is mutex-guarded and population is deduplicated per origin with
// singleflight, so concurrent callers for the same uncached origin
// trigger exactly one policy download.
type Gate struct {
	// client performs the robots.txt downloads. Requests carry the
	// configured user agent but no retry: a policy either loads on the
	// first try or the origin is treated as unrestricted.
	client *http.Client

	// userAgent is matched against robots.txt agent groups.
	userAgent string

	// logger records policy fetch failures and blocked URLs.
	logger *slog.Logger

	// mu guards policies.
	mu sync.Mutex

	// policies caches the parsed policy per origin. A nil value means
	// the policy could not be fetched and the origin is unrestricted.
	policies map[string]*robotstxt.RobotsData

	// flight deduplicates concurrent policy downloads per origin.
	flight singleflight.Group
}

// Option configures a Gate.
type Option func(*Gate)

// WithUserAgent sets the agent name matched against robots.txt groups.
func WithUserAgent(ua string) Option {
	return func(g *Gate) {
		g.userAgent = ua
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a Gate using the given HTTP client.
//
// The client is injected rather than constructed here so the gate shares
// the fetcher's timeout configuration and so tests can point it at an
// httptest server.
func NewGate(client *http.Client, opts ...Option) *Gate {
	g := &Gate{
		client:    client,
		userAgent: "*",
		policies:  make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// CanFetch reports whether the URL's origin permits fetching it.
//
// Unparseable URLs are allowed through: the fetch itself will fail with
// a clearer error than anything the gate could produce.
func (g *Gate) CanFetch(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	origin := u.Scheme + "://" + u.Host
	policy := g.policy(ctx, origin)
	if policy == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	allowed := policy.TestAgent(path, g.userAgent)
	if !allowed {
		g.logger.Info("blocked by robots.txt", "url", rawURL)
	}
	return allowed
}

// policy returns the cached policy for origin, downloading it once if
// needed. Returns nil when the origin is unrestricted.
func (g *Gate) policy(ctx context.Context, origin string) *robotstxt.RobotsData {
	g.mu.Lock()
	if policy, ok := g.policies[origin]; ok {
		g.mu.Unlock()
		return policy
	}
	g.mu.Unlock()

	// singleflight collapses concurrent misses for the same origin into
	// one download; every caller receives the same stored result.
	result, _, _ := g.flight.Do(origin, func() (any, error) {
		policy := g.fetchPolicy(ctx, origin)
		g.mu.Lock()
		g.policies[origin] = policy
		g.mu.Unlock()
		return policy, nil
	})

	if policy, ok := result.(*robotstxt.RobotsData); ok {
		return policy
	}
	return nil
}

// fetchPolicy downloads and parses {origin}/robots.txt.
// Any failure yields nil, i.e. unrestricted.
func (g *Gate) fetchPolicy(ctx context.Context, origin string) *robotstxt.RobotsData {
	robotsURL := origin + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("failed to build robots.txt request", "url", robotsURL, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("failed to fetch robots.txt, treating origin as unrestricted",
			"url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPolicySize))
	if err != nil {
		g.logger.Warn("failed to read robots.txt, treating origin as unrestricted",
			"url", robotsURL, "error", err)
		return nil
	}

	policy, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Warn("failed to parse robots.txt, treating origin as unrestricted",
			"url", robotsURL, "error", err)
		return nil
	}
	return policy
}
