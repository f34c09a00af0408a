package extractor

import (
	"context"
	"sync"
	"testing"
)

const authorPageFixture = `<!DOCTYPE html>
<html><body>
<div class="author-details">
	<h3 class="author-title">Albert Einstein</h3>
	<p>Born: <span class="author-born-date">March 14, 1879</span>
	<span class="author-born-location">in Ulm, Germany</span></p>
	<div class="author-description">
		In 1879, Albert Einstein was born in Ulm, Germany.
	</div>
</div>
</body></html>`

const einsteinURL = "https://quotes.toscrape.com/author/Albert-Einstein"

// TestAuthorCacheGet tests author resolution and caching.
func TestAuthorCacheGet(t *testing.T) {
	t.Parallel()

	t.Run("parses biography fields", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher(map[string]string{einsteinURL: authorPageFixture})
		cache := NewAuthorCache(fetch, NewIDGenerator(), nil)

		author := cache.Get(context.Background(), quotesPageURL, "/author/Albert-Einstein")

		if author.URL != einsteinURL {
			t.Errorf("unexpected URL: %q", author.URL)
		}
		if author.Name == nil || *author.Name != "Albert Einstein" {
			t.Errorf("unexpected name: %v", author.Name)
		}
		if author.BornDate == nil || *author.BornDate != "March 14, 1879" {
			t.Errorf("unexpected born date: %v", author.BornDate)
		}
		// The leading "in " prefix is stripped from the location
		if author.BornLocation == nil || *author.BornLocation != "Ulm, Germany" {
			t.Errorf("unexpected born location: %v", author.BornLocation)
		}
		if author.Description == nil || *author.Description == "" {
			t.Error("expected a description")
		}
	})

	t.Run("unavailable page yields minimal record", func(t *testing.T) {
		t.Parallel()

		cache := NewAuthorCache(newStubFetcher(nil), NewIDGenerator(), nil)
		author := cache.Get(context.Background(), quotesPageURL, "/author/Nobody")

		if author.ID == "" {
			t.Error("expected an id on the minimal record")
		}
		if author.URL != "https://quotes.toscrape.com/author/Nobody" {
			t.Errorf("unexpected URL: %q", author.URL)
		}
		if author.Name != nil || author.BornDate != nil || author.BornLocation != nil || author.Description != nil {
			t.Errorf("expected all optional fields nil, got %+v", author)
		}
		if cache.Len() != 1 {
			t.Errorf("minimal record should be cached, cache len = %d", cache.Len())
		}
	})

	t.Run("missing page elements leave fields nil", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher(map[string]string{
			einsteinURL: `<h3 class="author-title">Albert Einstein</h3>`,
		})
		cache := NewAuthorCache(fetch, NewIDGenerator(), nil)
		author := cache.Get(context.Background(), quotesPageURL, "/author/Albert-Einstein")

		if author.Name == nil {
			t.Error("expected name to be set")
		}
		if author.BornDate != nil || author.BornLocation != nil || author.Description != nil {
			t.Errorf("expected absent fields nil, got %+v", author)
		}
	})

	t.Run("concurrent callers converge on one cached value", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher(map[string]string{einsteinURL: authorPageFixture})
		cache := NewAuthorCache(fetch, NewIDGenerator(), nil)

		const callers = 25
		authors := make(chan string, callers)
		var wg sync.WaitGroup
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				a := cache.Get(context.Background(), quotesPageURL, "/author/Albert-Einstein")
				authors <- a.ID
			}()
		}
		wg.Wait()
		close(authors)

		ids := make(map[string]bool)
		for id := range authors {
			ids[id] = true
		}
		if len(ids) != 1 {
			t.Errorf("expected all callers to observe one AuthorDetails, saw %d distinct ids", len(ids))
		}
		if got := fetch.fetchCount(einsteinURL); got != 1 {
			t.Errorf("expected 1 author page fetch, got %d", got)
		}
		if cache.Len() != 1 {
			t.Errorf("expected 1 cache entry, got %d", cache.Len())
		}
	})

	t.Run("second lookup hits the cache", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher(map[string]string{einsteinURL: authorPageFixture})
		cache := NewAuthorCache(fetch, NewIDGenerator(), nil)

		first := cache.Get(context.Background(), quotesPageURL, "/author/Albert-Einstein")
		second := cache.Get(context.Background(), quotesPageURL, "/author/Albert-Einstein")

		if first != second {
			t.Error("expected identical pointers from cache")
		}
		if got := fetch.fetchCount(einsteinURL); got != 1 {
			t.Errorf("expected 1 fetch, got %d", got)
		}
	})
}
