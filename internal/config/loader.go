package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".harvester"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML representation of a config file. All fields are
// pointers so an absent key leaves the corresponding Config field at its
// flag or default value.
type File struct {
	BooksURL        *string `yaml:"books_url"`
	QuotesURL       *string `yaml:"quotes_url"`
	Retries         *int    `yaml:"retries"`
	FetchTimeout    *string `yaml:"fetch_timeout"`
	Workers         *int    `yaml:"workers"`
	MaxBookPages    *int    `yaml:"max_book_pages"`
	MaxQuotePages   *int    `yaml:"max_quote_pages"`
	MaxBooks        *int    `yaml:"max_books"`
	MaxQuotes       *int    `yaml:"max_quotes"`
	UserAgent       *string `yaml:"user_agent"`
	OutputDir       *string `yaml:"output_dir"`
	DBDir           *string `yaml:"db_dir"`
	MarkdownSummary *bool   `yaml:"markdown_summary"`
}

// LoadConfigFile loads overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers
// decide whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies the file's set values onto cfg. Unset keys are left alone.
func (f *File) Apply(cfg *Config) error {
	if f.BooksURL != nil {
		cfg.BooksURL = *f.BooksURL
	}
	if f.QuotesURL != nil {
		cfg.QuotesURL = *f.QuotesURL
	}
	if f.Retries != nil {
		cfg.Retries = *f.Retries
	}
	if f.FetchTimeout != nil {
		d, err := time.ParseDuration(*f.FetchTimeout)
		if err != nil {
			return fmt.Errorf("fetch_timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.MaxBookPages != nil {
		cfg.MaxBookPages = *f.MaxBookPages
	}
	if f.MaxQuotePages != nil {
		cfg.MaxQuotePages = *f.MaxQuotePages
	}
	if f.MaxBooks != nil {
		cfg.MaxBooks = *f.MaxBooks
	}
	if f.MaxQuotes != nil {
		cfg.MaxQuotes = *f.MaxQuotes
	}
	if f.UserAgent != nil {
		cfg.UserAgent = *f.UserAgent
	}
	if f.OutputDir != nil {
		cfg.OutputDir = *f.OutputDir
	}
	if f.DBDir != nil {
		cfg.DBDir = *f.DBDir
	}
	if f.MarkdownSummary != nil {
		cfg.MarkdownSummary = *f.MarkdownSummary
	}
	return nil
}

// FindConfigFile searches for the configuration file in order:
//  1. The explicit configPath, if given
//  2. .harvester in the current directory
//  3. .harvester in the user's home directory
//
// Returns the path if found, or empty string if not.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
