package extractor

import (
	"context"
	"sync"
)

// stubFetcher serves canned pages and counts fetches per URL.
// URLs without an entry report no content, like a blocked or failed
// fetch would.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{
		pages: pages,
		calls: make(map[string]int),
	}
}

func (s *stubFetcher) FetchPage(_ context.Context, url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[url]++
	html, ok := s.pages[url]
	return html, ok
}

func (s *stubFetcher) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

// newTestExtractor builds an Extractor with fresh shared state over the
// given stub pages.
func newTestExtractor(pages map[string]string) (*Extractor, *stubFetcher) {
	fetch := newStubFetcher(pages)
	ids := NewIDGenerator()
	authors := NewAuthorCache(fetch, ids, nil)
	return New(fetch, ids, authors), fetch
}
