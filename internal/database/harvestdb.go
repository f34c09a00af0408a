package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/toscrape/harvester/internal/model"
)

// HarvestDB provides SQLite-based storage for harvest runs. Each run
// persists the full dataset document plus lightweight metadata so past
// runs can be listed without deserializing their items.
//
// Design decision: We store one database file for all runs rather than
// one file per run. This keeps history queries in SQL and simplifies
// backup/restore operations.
type HarvestDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HarvestDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HarvestDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HarvestDB, error) {
	dbPath := filepath.Join(dbDir, "harvester.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; extra connections don't help.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HarvestDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HarvestDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HarvestDB) createTables() error {
	schema := `
	-- Harvest runs store complete datasets as JSON plus summary columns
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		total_items INTEGER NOT NULL,
		dataset_json TEXT NOT NULL,
		item_counts TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON harvest_runs(dataset);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON harvest_runs(generated_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveDataset persists a dataset as a new harvest run and returns the
// run's database ID.
func (hdb *HarvestDB) SaveDataset(ctx context.Context, dataset *model.Dataset) (int64, error) {
	datasetJSON, err := json.Marshal(dataset)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize dataset: %w", err)
	}

	counts := map[string]int{"book": 0, "quote": 0}
	for _, item := range dataset.Items {
		counts[string(item.ItemType())]++
	}
	countsJSON, _ := json.Marshal(counts) //nolint:errcheck,errchkjson // counts is a simple map; Marshal won't fail

	query := `
	INSERT INTO harvest_runs (dataset, generated_at, total_items, dataset_json, item_counts)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		dataset.Meta.Dataset,
		dataset.Meta.GeneratedAt.UTC().Format(time.RFC3339Nano),
		dataset.Meta.TotalItems,
		string(datasetJSON),
		string(countsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save dataset: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestDataset retrieves the most recent harvest run's dataset.
// Returns nil without error when no run has been stored yet.
func (hdb *HarvestDB) GetLatestDataset(ctx context.Context) (*model.Dataset, error) {
	query := `
	SELECT dataset_json FROM harvest_runs
	ORDER BY generated_at DESC, id DESC
	LIMIT 1
	`

	var datasetJSON string
	err := hdb.db.QueryRowContext(ctx, query).Scan(&datasetJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	var dataset model.Dataset
	if err := json.Unmarshal([]byte(datasetJSON), &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	return &dataset, nil
}

// GetDatasetByID retrieves a harvest run's dataset by its database ID.
// Returns nil without error when the ID is unknown.
func (hdb *HarvestDB) GetDatasetByID(ctx context.Context, id int64) (*model.Dataset, error) {
	query := `
	SELECT dataset_json FROM harvest_runs
	WHERE id = ?
	`

	var datasetJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&datasetJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	var dataset model.Dataset
	if err := json.Unmarshal([]byte(datasetJSON), &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	return &dataset, nil
}

// RunMetadata contains summary information about a stored harvest run.
// This is used for displaying run history without loading the full dataset.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Dataset is the dataset identifier.
	Dataset string

	// GeneratedAt is when the dataset was generated.
	GeneratedAt time.Time

	// TotalItems is the number of items in the run.
	TotalItems int

	// ItemCounts contains per-type item counts.
	ItemCounts map[string]int
}

// ListRuns retrieves metadata for all stored harvest runs, newest first.
// This is more efficient than loading full datasets when only metadata
// is needed.
func (hdb *HarvestDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT id, dataset, generated_at, total_items, item_counts
	FROM harvest_runs
	ORDER BY generated_at DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var generated string
		var countsJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Dataset, &generated, &meta.TotalItems, &countsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.GeneratedAt = parseTimestamp(generated)

		if countsJSON.Valid && countsJSON.String != "" {
			if err := json.Unmarshal([]byte(countsJSON.String), &meta.ItemCounts); err != nil {
				meta.ItemCounts = make(map[string]int)
			}
		} else {
			meta.ItemCounts = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // our own insert format
	time.RFC3339,              // full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
