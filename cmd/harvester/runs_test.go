package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/toscrape/harvester/internal/database"
	"github.com/toscrape/harvester/internal/model"
)

// seedRunsDB creates a database in dir holding a single stored dataset.
func seedRunsDB(t *testing.T, dir string) {
	t.Helper()

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	dataset := &model.Dataset{
		Meta: model.MetaInfo{
			Dataset:     model.DatasetName,
			GeneratedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
			TotalItems:  1,
		},
		Filters: model.Filters{Categories: []string{"Crime"}, Tags: []string{}},
		Items: model.ItemList{
			model.BookItem{ID: "book-1", Type: model.ItemTypeBook, Category: "Crime", Rating: 3},
		},
	}
	if _, err := db.SaveDataset(context.Background(), dataset); err != nil {
		t.Fatalf("failed to save dataset: %v", err)
	}
}

// TestRunsCmd tests stored run inspection.
func TestRunsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists stored runs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		seedRunsDB(t, dir)

		cmd := NewRunsCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir})

		if err := cmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "GENERATED") {
			t.Errorf("expected a table header, got %q", out)
		}
		if !strings.Contains(out, "2026-08-31") {
			t.Errorf("expected the stored run's date, got %q", out)
		}
	})

	t.Run("latest prints the dataset as JSON", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		seedRunsDB(t, dir)

		cmd := NewRunsCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir, "--latest"})

		if err := cmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var ds model.Dataset
		if err := json.Unmarshal(buf.Bytes(), &ds); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if ds.Meta.TotalItems != 1 {
			t.Errorf("unexpected dataset: %+v", ds.Meta)
		}
	})

	t.Run("unknown run id is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		seedRunsDB(t, dir)

		cmd := NewRunsCmd()
		cmd.SetOut(bytes.NewBuffer(nil))
		cmd.SetErr(bytes.NewBuffer(nil))
		cmd.SetArgs([]string{"--db-dir", dir, "--show-id", "999"})

		if err := cmd.ExecuteContext(context.Background()); err == nil {
			t.Fatal("expected an error for an unknown run id")
		}
	})

	t.Run("missing database is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunsCmd()
		cmd.SetOut(bytes.NewBuffer(nil))
		cmd.SetErr(bytes.NewBuffer(nil))
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})

		if err := cmd.ExecuteContext(context.Background()); err == nil {
			t.Fatal("expected an error for a missing database")
		}
	})
}
