package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/toscrape/harvester/internal/robots"
)

// Defaults for fetch behavior. Retry count and the per-attempt timeout
// live in the config package; these cover the knobs that rarely change.
const (
	// defaultRetryBaseDelay is the backoff base: the wait after failed
	// attempt n is base * 2^(n-1), so 1s then 2s with three attempts.
	defaultRetryBaseDelay = 1 * time.Second

	// defaultJitterMin/Max bound the randomized post-success sleep.
	defaultJitterMin = 500 * time.Millisecond
	defaultJitterMax = 1500 * time.Millisecond

	// defaultMaxBodySize limits how much of a response body we read.
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Fetcher fetches pages with visited-set deduplication, politeness
// checks, and retry with exponential backoff.
//
// One Fetcher serves a whole run and is safe for concurrent use. The
// visited set is global to the Fetcher, not per crawl unit, so two
// categories discovering the same URL fetch it once between them.
type Fetcher struct {
	// client performs the HTTP requests. Its Timeout is the hard
	// per-attempt limit.
	client *http.Client

	// gate is consulted before any network attempt.
	gate *robots.Gate

	// retries is the number of attempts per URL.
	retries int

	// retryBaseDelay is the exponential backoff base.
	retryBaseDelay time.Duration

	// jitterMin/jitterMax bound the randomized sleep after a successful
	// fetch. Both zero disables the sleep (used in tests).
	jitterMin time.Duration
	jitterMax time.Duration

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits response body reads.
	maxBodySize int64

	// logger records per-URL decisions: skips, blocks, retries, failures.
	logger *slog.Logger

	// mu guards visited. Check-and-insert is a single critical section
	// so two concurrent callers for one URL never both fetch.
	mu      sync.Mutex
	visited map[string]bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetries sets the number of attempts per URL.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.retries = n
		}
	}
}

// WithRetryBaseDelay sets the exponential backoff base delay.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryBaseDelay = d
	}
}

// WithJitter sets the post-success sleep bounds. Zero for both disables
// the jitter entirely.
func WithJitter(minDelay, maxDelay time.Duration) Option {
	return func(f *Fetcher) {
		f.jitterMin = minDelay
		f.jitterMax = maxDelay
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher using the given HTTP client and politeness gate.
// The client is injected so its timeout comes from configuration and so
// tests can use an httptest server's client.
func New(client *http.Client, gate *robots.Gate, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:         client,
		gate:           gate,
		retries:        3,
		retryBaseDelay: defaultRetryBaseDelay,
		jitterMin:      defaultJitterMin,
		jitterMax:      defaultJitterMax,
		maxBodySize:    defaultMaxBodySize,
		visited:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// FetchPage fetches a URL and returns its body text.
// The second return value is false when no content is available: the URL
// was already visited, robots.txt blocks it, or every attempt failed.
// None of these outcomes is an error for the caller; a crawl unit simply
// stops traversing when it sees ok == false.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (string, bool) {
	// Mark visited before fetching. The mark stays even if the fetch
	// fails: a URL that failed all its attempts is not retried by a
	// later crawl unit either.
	if !f.markVisited(url) {
		f.logger.Info("skipping already visited URL", "url", url)
		return "", false
	}

	if !f.gate.CanFetch(ctx, url) {
		// The gate already logged the block.
		return "", false
	}

	var body string
	err := retry.Do(
		func() error {
			text, err := f.attempt(ctx, url)
			if err != nil {
				return err
			}
			body = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.retries)), //nolint:gosec // Validated positive by config
		retry.Delay(f.retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("fetch attempt failed", "url", url, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		f.logger.Warn("giving up on URL", "url", url, "attempts", f.retries, "error", err)
		return "", false
	}

	f.logger.Info("fetched", "url", url, "bytes", len(body))
	f.sleepJitter(ctx)
	return body, true
}

// Visited reports whether a URL has been claimed by a fetch this run.
func (f *Fetcher) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited[url]
}

// VisitedCount returns the number of URLs claimed this run.
func (f *Fetcher) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// markVisited atomically claims a URL. Returns false when it was
// already claimed.
func (f *Fetcher) markVisited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visited[url] {
		return false
	}
	f.visited[url] = true
	return true
}

// attempt performs a single HTTP GET. Only status 200 is a success.
func (f *Fetcher) attempt(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// sleepJitter pauses for a random duration between jitterMin and
// jitterMax after a successful fetch. Cancelling the context cuts the
// sleep short.
func (f *Fetcher) sleepJitter(ctx context.Context) {
	if f.jitterMax <= 0 {
		return
	}
	d := f.jitterMin
	if span := f.jitterMax - f.jitterMin; span > 0 {
		d += rand.N(span)
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
