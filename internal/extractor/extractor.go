package extractor

import (
	"context"
	"log/slog"
)

// PageFetcher is the fetch dependency of the extractor. It matches the
// fetcher package's contract: content plus ok, never an error.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, bool)
}

// Extractor parses book and quote pages into model records.
// Safe for concurrent use; all mutable state lives in the shared
// IDGenerator and AuthorCache.
type Extractor struct {
	// fetcher retrieves pages when a caller asks to parse by URL.
	fetcher PageFetcher

	// ids issues record identifiers.
	ids *IDGenerator

	// authors resolves and caches author details for quotes.
	authors *AuthorCache

	// logger records skipped pages and blocks.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor. The fetcher, id generator, and author cache
// are injected because they are shared run-wide state owned by the
// pipeline, not by any single extractor.
func New(fetcher PageFetcher, ids *IDGenerator, authors *AuthorCache, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		ids:     ids,
		authors: authors,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}
