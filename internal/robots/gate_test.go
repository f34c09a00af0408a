package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// newRobotsServer returns a test server that serves the given robots.txt
// body and counts how many times it was requested.
func newRobotsServer(t *testing.T, body string, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestGateCanFetch tests robots.txt policy enforcement.
func TestGateCanFetch(t *testing.T) {
	t.Parallel()

	t.Run("allows permitted paths and blocks disallowed ones", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, "User-agent: *\nDisallow: /private/\n", nil)
		gate := NewGate(srv.Client())

		if !gate.CanFetch(context.Background(), srv.URL+"/catalogue/page-1.html") {
			t.Error("expected public path to be allowed")
		}
		if gate.CanFetch(context.Background(), srv.URL+"/private/secrets.html") {
			t.Error("expected disallowed path to be blocked")
		}
	})

	t.Run("fetches policy once per origin", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := newRobotsServer(t, "User-agent: *\nDisallow:\n", &hits)
		gate := NewGate(srv.Client())

		for range 5 {
			gate.CanFetch(context.Background(), srv.URL+"/index.html")
		}

		if got := hits.Load(); got != 1 {
			t.Errorf("expected 1 robots.txt fetch, got %d", got)
		}
	})

	t.Run("concurrent callers trigger a single policy fetch", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		srv := newRobotsServer(t, "User-agent: *\nDisallow: /blocked\n", &hits)
		gate := NewGate(srv.Client())

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !gate.CanFetch(context.Background(), srv.URL+"/page.html") {
					t.Error("expected allowed")
				}
			}()
		}
		wg.Wait()

		if got := hits.Load(); got != 1 {
			t.Errorf("expected 1 robots.txt fetch under concurrency, got %d", got)
		}
	})

	t.Run("policy fetch failure means unrestricted", func(t *testing.T) {
		t.Parallel()

		// Server without a robots.txt route returns 404, which the
		// robots exclusion standard treats as allow-all.
		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		gate := NewGate(srv.Client())
		if !gate.CanFetch(context.Background(), srv.URL+"/anything") {
			t.Error("expected 404 robots.txt to allow everything")
		}

		// Unreachable origin: transport error, still unrestricted.
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		if !gate.CanFetch(context.Background(), dead.URL+"/anything") {
			t.Error("expected unreachable robots.txt to allow everything")
		}
	})

	t.Run("respects named user agent groups", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, "User-agent: harvester\nDisallow: /\n\nUser-agent: *\nDisallow:\n", nil)

		blocked := NewGate(srv.Client(), WithUserAgent("harvester"))
		if blocked.CanFetch(context.Background(), srv.URL+"/index.html") {
			t.Error("expected harvester agent to be blocked")
		}

		open := NewGate(srv.Client(), WithUserAgent("somebody-else"))
		if !open.CanFetch(context.Background(), srv.URL+"/index.html") {
			t.Error("expected other agents to be allowed")
		}
	})

	t.Run("unparseable URL is allowed through", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, "User-agent: *\nDisallow: /\n", nil)
		gate := NewGate(srv.Client())

		if !gate.CanFetch(context.Background(), "::not a url::") {
			t.Error("expected unparseable URL to pass the gate")
		}
	})
}
