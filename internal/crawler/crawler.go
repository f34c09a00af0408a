package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/toscrape/harvester/internal/pagination"
)

// PageFetcher is the crawler's fetch dependency, matching the fetcher
// package's contract.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, bool)
}

// Category is one catalog category discovered from the sidebar.
type Category struct {
	// Name is the human-readable category label.
	Name string

	// URL is the absolute URL of the category's first listing page.
	URL string
}

// CategoryLinks holds the deduplicated book-detail links found under
// one category, in first-occurrence order.
type CategoryLinks struct {
	Category string
	Links    []string
}

// QuotePage is one fetched page of the quote chain. The HTML is kept so
// the parse stage can consume it without a second fetch; the visited
// set would refuse the refetch anyway.
type QuotePage struct {
	URL  string
	HTML string
}

// Crawler drives pagination for both catalog sites.
// Safe for concurrent use; the only shared state is inside the fetcher.
type Crawler struct {
	// fetcher performs all page retrieval with the run's dedup,
	// politeness, and retry rules.
	fetcher PageFetcher

	// workers bounds the book-category worker pool.
	workers int

	// maxBookPages is the pagination ceiling per category.
	maxBookPages int

	// maxQuotePages is the pagination ceiling for the quote chain.
	maxQuotePages int

	// logger records per-unit progress and early stops.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithWorkers sets the worker pool size for parallel category crawls.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxBookPages sets the per-category pagination ceiling.
func WithMaxBookPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxBookPages = n
		}
	}
}

// WithMaxQuotePages sets the quote chain pagination ceiling.
func WithMaxQuotePages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxQuotePages = n
		}
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler over the given fetcher.
func New(fetcher PageFetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:       fetcher,
		workers:       10,
		maxBookPages:  500,
		maxQuotePages: 1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// DiscoverCategories fetches the book catalog root and returns its
// sidebar categories in listing order. An unreachable root yields an
// empty slice, not an error; the run then simply produces no books.
func (c *Crawler) DiscoverCategories(ctx context.Context, booksRoot string) []Category {
	html, ok := c.fetcher.FetchPage(ctx, booksRoot)
	if !ok {
		c.logger.Warn("book catalog root unavailable", "url", booksRoot)
		return []Category{}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		c.logger.Warn("failed to parse book catalog root", "url", booksRoot, "error", err)
		return []Category{}
	}

	categories := make([]Category, 0)
	doc.Find(".side_categories ul ul li a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		resolved, ok := resolveLink(booksRoot, href)
		if !ok {
			return
		}
		categories = append(categories, Category{
			Name: strings.TrimSpace(a.Text()),
			URL:  resolved,
		})
	})

	c.logger.Info("discovered categories", "count", len(categories))
	return categories
}

// CrawlBookCategories walks every category's pagination chain in
// parallel and returns the collected book-detail links per category,
// in category discovery order.
//
// Each category is an independent crawl unit: a failure inside one
// chain ends that chain early and leaves the others untouched.
func (c *Crawler) CrawlBookCategories(ctx context.Context, categories []Category) []CategoryLinks {
	results := make([]CategoryLinks, len(categories))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, cat := range categories {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = CategoryLinks{Category: cat.Name, Links: []string{}}
				return nil
			default:
			}

			links := c.crawlCategory(ctx, cat)
			results[i] = CategoryLinks{Category: cat.Name, Links: links}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait() //nolint:errcheck

	return results
}

// crawlCategory walks one category chain and returns its deduplicated
// book links in first-occurrence order.
func (c *Crawler) crawlCategory(ctx context.Context, cat Category) []string {
	links := make([]string, 0)
	seen := make(map[string]bool)

	current := cat.URL
	for pageCount := 0; current != ""; pageCount++ {
		if pageCount >= c.maxBookPages {
			c.logger.Warn("reached page ceiling for category",
				"category", cat.Name, "pages", pageCount)
			break
		}

		html, ok := c.fetcher.FetchPage(ctx, current)
		if !ok {
			// Partial results are acceptable; stop this unit only.
			break
		}

		for _, link := range extractBookLinks(current, html) {
			if !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
		}

		next, ok := pagination.NextBookPageURL(html, current)
		if !ok {
			break
		}
		current = next
	}

	c.logger.Info("finished category", "category", cat.Name, "links", len(links))
	return links
}

// CrawlQuotePages walks the quote pagination chain from the site root.
// The chain is inherently sequential: each page's successor is only
// known after the page is fetched. Stops on fetch failure, a missing
// next link, or the page ceiling.
func (c *Crawler) CrawlQuotePages(ctx context.Context, quotesRoot string) []QuotePage {
	pages := make([]QuotePage, 0)

	current := quotesRoot
	for pageCount := 0; current != ""; pageCount++ {
		if pageCount >= c.maxQuotePages {
			c.logger.Warn("reached quote page ceiling", "pages", pageCount)
			break
		}

		html, ok := c.fetcher.FetchPage(ctx, current)
		if !ok {
			break
		}
		pages = append(pages, QuotePage{URL: current, HTML: html})

		next, ok := pagination.NextQuotePageURL(html, current)
		if !ok {
			break
		}
		current = next
	}

	c.logger.Info("finished quote chain", "pages", len(pages))
	return pages
}

// extractBookLinks collects the book-detail links of one listing page,
// resolved against the page URL.
func extractBookLinks(pageURL, html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	links := make([]string, 0)
	doc.Find("article.product_pod h3 a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if resolved, ok := resolveLink(pageURL, href); ok {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveLink joins href against base.
func resolveLink(base, href string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}
