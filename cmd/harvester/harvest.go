package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toscrape/harvester/internal/config"
	"github.com/toscrape/harvester/internal/database"
	"github.com/toscrape/harvester/internal/log"
	"github.com/toscrape/harvester/internal/pipeline"
	"github.com/toscrape/harvester/internal/report"
)

// Output file names within a run directory.
const (
	datasetFileName = "dataset.json"
	itemsFileName   = "items.jsonl"
	summaryFileName = "summary.md"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawl both catalogs and build the merged dataset",
		Long: `Harvest crawls the book and quote catalogs, parses every record, and
merges them into one dataset with summary aggregations.

The book catalog's categories are crawled in parallel inside a bounded
worker pool; the quote chain is walked sequentially. Fetches respect
robots.txt, retry with exponential backoff, and never hit the same URL
twice. A failing page or category degrades the dataset instead of
aborting the run.

Examples:
  # Harvest both sites with defaults
  harvester harvest

  # Write outputs into a specific directory with a Markdown summary
  harvester harvest -o ./out --markdown

  # Limit the run for a quick smoke test
  harvester harvest --max-books 20 --max-quotes 40

  # Use a custom configuration file
  harvester harvest -c myconfig.yaml

Configuration file (.harvester) example:
  workers: 4
  fetch_timeout: 15s
  max_books: 100
  markdown_summary: true`,
		Args: cobra.NoArgs,
		RunE: runHarvestCmd,
	}

	// Source flags
	cmd.Flags().String("books-url", config.DefaultBooksURL,
		"Book catalog root URL")
	cmd.Flags().String("quotes-url", config.DefaultQuotesURL,
		"Quote catalog root URL")

	// Fetch behavior flags
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Fetch attempts per URL before giving up")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"HTTP timeout for each fetch attempt")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Worker pool size for parallel crawl and parse units")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header, also matched against robots.txt groups")

	// Limit flags
	cmd.Flags().Int("max-book-pages", config.DefaultMaxBookPages,
		"Pagination ceiling per book category")
	cmd.Flags().Int("max-quote-pages", config.DefaultMaxQuotePages,
		"Pagination ceiling for the quote chain")
	cmd.Flags().Int("max-books", 0,
		"Maximum book pages to parse (0 = unlimited)")
	cmd.Flags().Int("max-quotes", 0,
		"Maximum quotes to collect (0 = unlimited)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Output directory (default: timestamped directory under the XDG data dir)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Additionally write a Markdown summary next to the dataset files")
	cmd.Flags().Bool("json-logs", false,
		"Emit logs as JSON instead of text")

	// Persistence flags
	cmd.Flags().Bool("no-db", false,
		"Skip saving the dataset to the local SQLite store")
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite store (default: XDG data dir)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .harvester in current or home directory)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Cancel the run context on SIGINT/SIGTERM. The pipeline keeps
	// whatever was harvested before the signal.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runHarvest(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags, merging in the
// optional config file. Flag values act as the base; config-file keys
// override them, matching the file's role as per-project settings.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if cfg.BooksURL, err = cmd.Flags().GetString("books-url"); err != nil {
		return nil, err
	}
	if cfg.QuotesURL, err = cmd.Flags().GetString("quotes-url"); err != nil {
		return nil, err
	}
	if cfg.Retries, err = cmd.Flags().GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBookPages, err = cmd.Flags().GetInt("max-book-pages"); err != nil {
		return nil, err
	}
	if cfg.MaxQuotePages, err = cmd.Flags().GetInt("max-quote-pages"); err != nil {
		return nil, err
	}
	if cfg.MaxBooks, err = cmd.Flags().GetInt("max-books"); err != nil {
		return nil, err
	}
	if cfg.MaxQuotes, err = cmd.Flags().GetInt("max-quotes"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.MarkdownSummary, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.JSONLogs, err = cmd.Flags().GetBool("json-logs"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load overrides from the config file. An explicitly given path must
	// exist; the default search is allowed to come up empty.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	switch {
	case noDB:
		cfg.DBDir = ""
	case dbDir != "":
		cfg.DBDir = dbDir
	case cfg.DBDir == "":
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on the configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.JSONLogs {
		return log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	return log.NewLogger(os.Stderr, cfg.Verbose)
}

// runHarvest executes the harvest and writes the outputs.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"booksURL", cfg.BooksURL,
		"quotesURL", cfg.QuotesURL,
		"workers", cfg.Workers,
		"saveToDB", cfg.DBDir != "",
	)

	var db *database.HarvestDB
	if cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	p := pipeline.DefaultPipeline(cfg, db, logger,
		pipeline.WithContinueOnError(true),
	)

	run := pipeline.NewRun()
	startTime := time.Now()

	// ContinueOnError keeps the output steps alive past a persist
	// failure; partial harvests still produce files. Only a cancelled
	// context stops execution outright.
	if err := p.Execute(ctx, run); err != nil {
		if run.Dataset == nil {
			return fmt.Errorf("harvest failed: %w", err)
		}
		logger.Warn("harvest interrupted, writing partial dataset", "error", err)
	}

	if run.Dataset == nil {
		return errors.New("harvest produced no dataset")
	}

	outputDir, err := writeOutputs(cfg, run)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Harvest completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  items:      %d (%d books, %d quotes)\n",
		run.Dataset.Meta.TotalItems, len(run.Books), len(run.Quotes))
	fmt.Printf("  categories: %d\n", len(run.Dataset.Filters.Categories))
	fmt.Printf("  tags:       %d\n", len(run.Dataset.Filters.Tags))
	fmt.Printf("  output:     %s\n", outputDir)
	if run.StoredRunID != 0 {
		fmt.Printf("  stored as run %d\n", run.StoredRunID)
	}

	return run.Err
}

// writeOutputs writes dataset.json, items.jsonl, and optionally
// summary.md into the run's output directory, creating it if needed.
// Returns the directory used.
func writeOutputs(cfg *config.Config, run *pipeline.Run) (string, error) {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(config.XDGDataDir(), "data",
			run.Dataset.Meta.GeneratedAt.Format("20060102T150405Z"))
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFile(filepath.Join(outputDir, datasetFileName), func(f *os.File) error {
		_, err := report.NewJSONWriter(f, report.WithPrettyPrint()).Write(run.Dataset)
		return err
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(outputDir, itemsFileName), func(f *os.File) error {
		_, err := report.NewJSONLWriter(f).Write(run.Dataset)
		return err
	}); err != nil {
		return "", err
	}

	if cfg.MarkdownSummary {
		if err := writeFile(filepath.Join(outputDir, summaryFileName), func(f *os.File) error {
			_, err := report.NewMarkdownWriter(f).Write(run.Dataset)
			return err
		}); err != nil {
			return "", err
		}
	}

	return outputDir, nil
}

// writeFile creates path and hands it to write, closing on the way out.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // Path is under the run's own output dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
