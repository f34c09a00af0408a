package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where applicable these mirror the
// defaults the two demo sites were originally scraped with.
const (
	// DefaultBooksURL is the root of the book catalog demo site.
	DefaultBooksURL = "https://books.toscrape.com/"

	// DefaultQuotesURL is the root of the quote catalog demo site.
	DefaultQuotesURL = "https://quotes.toscrape.com/"

	// DefaultRetries is the number of fetch attempts per URL before the
	// URL is given up as a terminal failure.
	DefaultRetries = 3

	// DefaultFetchTimeout is the hard timeout for a single HTTP attempt.
	// The demo sites normally answer well under a second; ten seconds
	// covers slow mirrors without stalling a crawl unit for long.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultWorkers bounds the number of concurrent fetch-and-parse
	// goroutines. This is the system's only backpressure mechanism, so
	// it directly caps concurrent outbound connections.
	DefaultWorkers = 10

	// DefaultMaxBookPages is the per-category pagination ceiling.
	// No real category comes close; the ceiling guards against a
	// pagination loop on a broken page.
	DefaultMaxBookPages = 500

	// DefaultMaxQuotePages is the pagination ceiling for the single
	// quote page chain.
	DefaultMaxQuotePages = 1000

	// DefaultUserAgent identifies the harvester in HTTP requests.
	DefaultUserAgent = "toscrape-harvester/1.0 (+https://github.com/toscrape/harvester)"

	// AppName is the application name used for XDG directory paths.
	AppName = "harvester"
)

// Config holds all options for one harvest run.
//
// The struct is populated from CLI flags and the optional config file,
// then passed by value through the pipeline. No global state: two runs
// with two configs can coexist in one process, which the tests rely on.
type Config struct {
	// BooksURL is the book catalog root. Overridable for tests.
	BooksURL string

	// QuotesURL is the quote catalog root. Overridable for tests.
	QuotesURL string

	// Retries is the number of attempts per URL fetch.
	Retries int

	// FetchTimeout is the per-attempt HTTP timeout.
	FetchTimeout time.Duration

	// Workers is the worker pool size for parallel crawl and parse units.
	Workers int

	// MaxBookPages is the pagination ceiling per book category.
	MaxBookPages int

	// MaxQuotePages is the pagination ceiling for the quote page chain.
	MaxQuotePages int

	// MaxBooks truncates the number of book pages parsed. Zero means
	// unlimited. Truncation is silent, not an error.
	MaxBooks int

	// MaxQuotes truncates the number of quotes collected. Zero means
	// unlimited.
	MaxQuotes int

	// UserAgent is sent with every request and matched against
	// robots.txt groups.
	UserAgent string

	// OutputDir is the directory for dataset.json and items.jsonl.
	// Empty means a timestamped directory under the XDG data dir.
	OutputDir string

	// MarkdownSummary additionally writes a summary.md report next to
	// the dataset files.
	MarkdownSummary bool

	// DBDir is the directory holding the SQLite dataset store. When set,
	// finished datasets are also saved there for run-over-run comparison.
	// Empty disables persistence.
	DBDir string

	// Verbose enables debug-level logging. The default level is Info so
	// per-URL skip/block decisions remain visible.
	Verbose bool

	// JSONLogs switches log output from text to JSON format.
	JSONLogs bool

	// ConfigFilePath is an explicit config file location. Empty triggers
	// the usual search (current dir, then home dir).
	ConfigFilePath string
}

// NewConfig creates a Config with all defaults applied.
//
// We use a constructor rather than zero values because most defaults are
// non-zero, and the constructor doubles as documentation of what they are.
func NewConfig() *Config {
	return &Config{
		BooksURL:      DefaultBooksURL,
		QuotesURL:     DefaultQuotesURL,
		Retries:       DefaultRetries,
		FetchTimeout:  DefaultFetchTimeout,
		Workers:       DefaultWorkers,
		MaxBookPages:  DefaultMaxBookPages,
		MaxQuotePages: DefaultMaxQuotePages,
		UserAgent:     DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for the harvester.
// On Linux: ~/.local/share/harvester
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after flag parsing, before any network activity.
func (c *Config) Validate() error {
	if c.BooksURL == "" && c.QuotesURL == "" {
		return ErrNoSites
	}
	if c.Retries <= 0 {
		return ErrInvalidRetries
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxBookPages <= 0 || c.MaxQuotePages <= 0 {
		return ErrInvalidPageCeiling
	}
	if c.MaxBooks < 0 || c.MaxQuotes < 0 {
		return ErrInvalidItemLimit
	}
	return nil
}
