package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/toscrape/harvester/internal/aggregate"
	"github.com/toscrape/harvester/internal/config"
	"github.com/toscrape/harvester/internal/crawler"
	"github.com/toscrape/harvester/internal/database"
	"github.com/toscrape/harvester/internal/extractor"
	"github.com/toscrape/harvester/internal/fetcher"
	"github.com/toscrape/harvester/internal/model"
	"github.com/toscrape/harvester/internal/robots"
)

// CrawlBooksStep discovers the book catalog categories and walks every
// category's pagination chain, collecting book-detail links.
//
// Design decision: Discovery and traversal share one step because the
// category list has no value on its own; a run that discovered
// categories but crawled none of them is indistinguishable from a
// failed crawl.
type CrawlBooksStep struct {
	// crawler drives pagination over the catalog.
	crawler *crawler.Crawler

	// booksURL is the catalog root.
	booksURL string

	// logger for structured logging.
	logger *slog.Logger
}

// NewCrawlBooksStep creates the book crawl step.
func NewCrawlBooksStep(c *crawler.Crawler, booksURL string, logger *slog.Logger) *CrawlBooksStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlBooksStep{crawler: c, booksURL: booksURL, logger: logger}
}

// Name returns the step name.
func (s *CrawlBooksStep) Name() string {
	return "crawl_books"
}

// Do executes the book crawl step. An unreachable catalog is not an
// error; the run simply carries no book links.
func (s *CrawlBooksStep) Do(ctx context.Context, run *Run) error {
	run.Categories = s.crawler.DiscoverCategories(ctx, s.booksURL)
	run.BookLinks = s.crawler.CrawlBookCategories(ctx, run.Categories)

	var total int
	for _, cl := range run.BookLinks {
		total += len(cl.Links)
	}
	s.logger.Info("book crawl completed",
		"categories", len(run.Categories),
		"links", total,
	)
	return nil
}

// CrawlQuotesStep walks the quote site's pagination chain, keeping each
// page's HTML for the parse step.
type CrawlQuotesStep struct {
	crawler   *crawler.Crawler
	quotesURL string
	logger    *slog.Logger
}

// NewCrawlQuotesStep creates the quote crawl step.
func NewCrawlQuotesStep(c *crawler.Crawler, quotesURL string, logger *slog.Logger) *CrawlQuotesStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlQuotesStep{crawler: c, quotesURL: quotesURL, logger: logger}
}

// Name returns the step name.
func (s *CrawlQuotesStep) Name() string {
	return "crawl_quotes"
}

// Do executes the quote crawl step.
func (s *CrawlQuotesStep) Do(ctx context.Context, run *Run) error {
	run.QuotePages = s.crawler.CrawlQuotePages(ctx, s.quotesURL)
	s.logger.Info("quote crawl completed", "pages", len(run.QuotePages))
	return nil
}

// ParseBooksStep fetches and parses every collected book-detail page
// concurrently inside a bounded worker pool.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it's simpler and errgroup handles the concurrency
// correctly. Each page gets its own goroutine, but only 'workers'
// goroutines run simultaneously. Results land in an index-addressed
// slice so output order matches link order without sorting.
type ParseBooksStep struct {
	// extractor parses detail pages into records.
	extractor *extractor.Extractor

	// workers bounds the parse worker pool.
	workers int

	// maxBooks caps the number of detail pages parsed. Zero means
	// unlimited.
	maxBooks int

	// logger for structured logging.
	logger *slog.Logger
}

// ParseBooksOption configures a ParseBooksStep.
type ParseBooksOption func(*ParseBooksStep)

// WithParseWorkers sets the parse worker pool size.
func WithParseWorkers(n int) ParseBooksOption {
	return func(s *ParseBooksStep) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxBooks caps the number of books parsed per run.
func WithMaxBooks(n int) ParseBooksOption {
	return func(s *ParseBooksStep) {
		if n > 0 {
			s.maxBooks = n
		}
	}
}

// WithParseBooksLogger sets a custom logger for the step.
func WithParseBooksLogger(logger *slog.Logger) ParseBooksOption {
	return func(s *ParseBooksStep) {
		s.logger = logger
	}
}

// NewParseBooksStep creates the book parse step.
func NewParseBooksStep(ext *extractor.Extractor, opts ...ParseBooksOption) *ParseBooksStep {
	s := &ParseBooksStep{
		extractor: ext,
		workers:   config.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *ParseBooksStep) Name() string {
	return "parse_books"
}

// bookTask pairs a detail-page URL with the category it was found under.
type bookTask struct {
	url      string
	category string
}

// Do executes the book parse step. Pages that fail to fetch or parse
// are skipped; the remaining records keep link order.
func (s *ParseBooksStep) Do(ctx context.Context, run *Run) error {
	tasks := make([]bookTask, 0)
	for _, cl := range run.BookLinks {
		for _, link := range cl.Links {
			tasks = append(tasks, bookTask{url: link, category: cl.Category})
		}
	}
	if s.maxBooks > 0 && len(tasks) > s.maxBooks {
		s.logger.Warn("truncating book tasks", "limit", s.maxBooks, "total", len(tasks))
		tasks = tasks[:s.maxBooks]
	}

	books := make([]*model.BookItem, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, task := range tasks {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			if book, ok := s.extractor.BookFromPage(ctx, task.url, task.category); ok {
				books[i] = &book
			}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait() //nolint:errcheck

	run.Books = make([]model.BookItem, 0, len(tasks))
	for _, b := range books {
		if b != nil {
			run.Books = append(run.Books, *b)
		}
	}

	s.logger.Info("book parse completed",
		"pages", len(tasks),
		"books", len(run.Books),
	)
	return nil
}

// ParseQuotesStep parses the retained quote pages in chain order.
// Parsing is sequential: pages are already in memory and the only
// network activity, author detail lookup, is deduplicated by the
// author cache anyway.
type ParseQuotesStep struct {
	extractor *extractor.Extractor

	// maxQuotes caps the number of quote records kept. Zero means
	// unlimited.
	maxQuotes int

	logger *slog.Logger
}

// ParseQuotesOption configures a ParseQuotesStep.
type ParseQuotesOption func(*ParseQuotesStep)

// WithMaxQuotes caps the number of quotes kept per run.
func WithMaxQuotes(n int) ParseQuotesOption {
	return func(s *ParseQuotesStep) {
		if n > 0 {
			s.maxQuotes = n
		}
	}
}

// WithParseQuotesLogger sets a custom logger for the step.
func WithParseQuotesLogger(logger *slog.Logger) ParseQuotesOption {
	return func(s *ParseQuotesStep) {
		s.logger = logger
	}
}

// NewParseQuotesStep creates the quote parse step.
func NewParseQuotesStep(ext *extractor.Extractor, opts ...ParseQuotesOption) *ParseQuotesStep {
	s := &ParseQuotesStep{extractor: ext}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *ParseQuotesStep) Name() string {
	return "parse_quotes"
}

// Do executes the quote parse step.
func (s *ParseQuotesStep) Do(ctx context.Context, run *Run) error {
	quotes := make([]model.QuoteItem, 0)

	for _, page := range run.QuotePages {
		select {
		case <-ctx.Done():
			run.Quotes = quotes
			return nil
		default:
		}

		quotes = append(quotes, s.extractor.QuotesFromHTML(ctx, page.URL, page.HTML)...)
		if s.maxQuotes > 0 && len(quotes) >= s.maxQuotes {
			s.logger.Warn("truncating quotes", "limit", s.maxQuotes)
			quotes = quotes[:s.maxQuotes]
			break
		}
	}

	run.Quotes = quotes
	s.logger.Info("quote parse completed", "quotes", len(run.Quotes))
	return nil
}

// AggregateStep merges the parsed records into the final dataset. It is
// cancel safe: a run cut short by a signal still aggregates whatever
// the crawl and parse steps collected before the cancellation.
type AggregateStep struct {
	logger *slog.Logger
}

// NewAggregateStep creates the aggregation step.
func NewAggregateStep(logger *slog.Logger) *AggregateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateStep{logger: logger}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// CancelSafe reports that aggregation runs even on a cancelled run.
func (s *AggregateStep) CancelSafe() bool {
	return true
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(_ context.Context, run *Run) error {
	dataset := aggregate.BuildDataset(run.Books, run.Quotes)
	run.Dataset = &dataset

	s.logger.Info("dataset built",
		"total_items", dataset.Meta.TotalItems,
		"books", len(run.Books),
		"quotes", len(run.Quotes),
	)
	return nil
}

// PersistStep stores the dataset in the harvest database.
type PersistStep struct {
	db     *database.HarvestDB
	logger *slog.Logger
}

// NewPersistStep creates the persistence step.
func NewPersistStep(db *database.HarvestDB, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step. A persist failure is critical for
// this step but the dataset already lives in the run, so callers using
// WithContinueOnError still get their output files.
func (s *PersistStep) Do(ctx context.Context, run *Run) error {
	if run.Dataset == nil {
		s.logger.Debug("skipping persist, no dataset built")
		return nil
	}

	id, err := s.db.SaveDataset(ctx, run.Dataset)
	if err != nil {
		return err
	}

	run.StoredRunID = id
	s.logger.Info("dataset persisted", "run_id", id)
	return nil
}

// DefaultPipeline creates a pipeline with all harvest steps wired to a
// fresh fetch stack built from the configuration. Passing a nil
// database omits the persist step.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full harvest
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
func DefaultPipeline(cfg *config.Config, db *database.HarvestDB, logger *slog.Logger, pipelineOpts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}

	gate := robots.NewGate(client,
		robots.WithUserAgent(cfg.UserAgent),
		robots.WithLogger(logger),
	)
	fetch := fetcher.New(client, gate,
		fetcher.WithRetries(cfg.Retries),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(logger),
	)
	crawl := crawler.New(fetch,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithMaxBookPages(cfg.MaxBookPages),
		crawler.WithMaxQuotePages(cfg.MaxQuotePages),
		crawler.WithLogger(logger),
	)

	ids := extractor.NewIDGenerator()
	authors := extractor.NewAuthorCache(fetch, ids, logger)
	ext := extractor.New(fetch, ids, authors, extractor.WithLogger(logger))

	p := New(append([]Option{WithLogger(logger)}, pipelineOpts...)...)
	p.AddSteps(
		NewCrawlBooksStep(crawl, cfg.BooksURL, logger),
		NewCrawlQuotesStep(crawl, cfg.QuotesURL, logger),
		NewParseBooksStep(ext,
			WithParseWorkers(cfg.Workers),
			WithMaxBooks(cfg.MaxBooks),
			WithParseBooksLogger(logger),
		),
		NewParseQuotesStep(ext,
			WithMaxQuotes(cfg.MaxQuotes),
			WithParseQuotesLogger(logger),
		),
		NewAggregateStep(logger),
	)
	if db != nil {
		p.AddStep(NewPersistStep(db, logger))
	}

	return p
}
