package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"

	"github.com/toscrape/harvester/internal/model"
)

// AuthorCache resolves author detail pages at most once per author URL
// and shares the resulting model.AuthorDetails across all quotes that
// reference the author.
//
// The cache check and store run under a mutex; the network fetch runs
// inside a singleflight group keyed by author URL, so concurrent misses
// for one brand-new author collapse into a single fetch and every
// caller observes the same stored value.
type AuthorCache struct {
	// fetcher retrieves author pages. It applies the run's politeness
	// and retry rules; a blocked or failed fetch surfaces as ok == false
	// and yields a minimal record.
	fetcher PageFetcher

	// ids issues author record identifiers.
	ids *IDGenerator

	// logger records failed author lookups.
	logger *slog.Logger

	// mu guards cache.
	mu    sync.Mutex
	cache map[string]*model.AuthorDetails

	// flight deduplicates concurrent fetches per author URL.
	flight singleflight.Group
}

// NewAuthorCache creates an empty AuthorCache.
func NewAuthorCache(fetcher PageFetcher, ids *IDGenerator, logger *slog.Logger) *AuthorCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorCache{
		fetcher: fetcher,
		ids:     ids,
		logger:  logger,
		cache:   make(map[string]*model.AuthorDetails),
	}
}

// Get returns the author details for authorHref resolved against
// baseURL, fetching and caching them on first use.
//
// Get never fails: when the author page is blocked or unreachable, a
// minimal record (id and URL only) is cached and returned, so a flaky
// author page degrades the dataset instead of dropping quotes.
func (c *AuthorCache) Get(ctx context.Context, baseURL, authorHref string) *model.AuthorDetails {
	authorURL := resolveAuthorURL(baseURL, authorHref)

	c.mu.Lock()
	if author, ok := c.cache[authorURL]; ok {
		c.mu.Unlock()
		return author
	}
	c.mu.Unlock()

	result, _, _ := c.flight.Do(authorURL, func() (any, error) {
		author := c.lookup(ctx, authorURL)
		c.mu.Lock()
		c.cache[authorURL] = author
		c.mu.Unlock()
		return author, nil
	})

	author, ok := result.(*model.AuthorDetails)
	if !ok {
		// Unreachable: the flight function always returns *AuthorDetails.
		return &model.AuthorDetails{ID: c.ids.Generate("author"), URL: authorURL}
	}
	return author
}

// Len returns the number of cached authors.
func (c *AuthorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// lookup fetches and parses one author page. Failures yield a minimal
// record rather than an error.
func (c *AuthorCache) lookup(ctx context.Context, authorURL string) *model.AuthorDetails {
	html, ok := c.fetcher.FetchPage(ctx, authorURL)
	if !ok {
		c.logger.Warn("author page unavailable, caching minimal record", "url", authorURL)
		return &model.AuthorDetails{ID: c.ids.Generate("author"), URL: authorURL}
	}
	return c.parse(authorURL, html)
}

// parse extracts the biography fields from an author page. Any missing
// element leaves the corresponding field nil.
func (c *AuthorCache) parse(authorURL, html string) *model.AuthorDetails {
	author := &model.AuthorDetails{
		ID:  c.ids.Generate("author"),
		URL: authorURL,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		c.logger.Warn("failed to parse author page", "url", authorURL, "error", err)
		return author
	}

	author.Name = textOrNil(doc, "h3.author-title")
	author.BornDate = textOrNil(doc, "span.author-born-date")
	author.Description = textOrNil(doc, "div.author-description")

	if loc := textOrNil(doc, "span.author-born-location"); loc != nil {
		trimmed := *loc
		if len(trimmed) >= 3 && strings.EqualFold(trimmed[:3], "in ") {
			trimmed = trimmed[3:]
		}
		author.BornLocation = &trimmed
	}

	return author
}

// textOrNil returns the trimmed text of the first match of sel, or nil
// when the element is absent.
func textOrNil(doc *goquery.Document, sel string) *string {
	node := doc.Find(sel).First()
	if node.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(node.Text())
	return &text
}

// resolveAuthorURL joins an author href against the page it appeared
// on. An unparseable href is returned as-is; the fetch will fail and
// produce a minimal record keyed by the raw string.
func resolveAuthorURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
