package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/toscrape/harvester/internal/model"
)

func testDataset() *model.Dataset {
	return &model.Dataset{
		Meta: model.MetaInfo{
			Dataset:     model.DatasetName,
			GeneratedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
			TotalItems:  2,
		},
		Filters: model.Filters{
			Categories: []string{"Crime"},
			Tags:       []string{"life"},
		},
		Items: model.ItemList{
			model.BookItem{
				ID: "book-1", Type: model.ItemTypeBook, Title: "A Dark Book",
				Price: 10.97, Availability: "In stock", Rating: 1,
				Category: "Crime", ProductURL: "https://books.toscrape.com/catalogue/a/index.html",
			},
			model.QuoteItem{
				ID: "quote-1", Type: model.ItemTypeQuote, Text: "A thought.",
				Author: "Jane Austen", Tags: []string{"life"},
				PageURL: "https://quotes.toscrape.com/",
			},
		},
		Summary: model.SummaryData{
			BooksByCategory: []model.CategoryCount{{Category: "Crime", Count: 1}},
			BooksByRating:   []model.RatingCount{{Rating: 1, Count: 1}},
			QuotesByTag:     []model.TagCount{{Tag: "life", Count: 1}},
			QuotesByAuthor:  []model.AuthorCount{{Author: "Jane Austen", Count: 1}},
		},
	}
}

// TestJSONWriter tests JSON dataset output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes a round-trippable document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(testDataset())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		var got model.Dataset
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Meta.TotalItems != 2 || len(got.Items) != 2 {
			t.Errorf("unexpected round trip: %+v", got.Meta)
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(testDataset()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"meta\"") {
			t.Errorf("expected indented output, got: %s", buf.String())
		}
	})
}

// TestJSONLWriter tests line-oriented item output.
func TestJSONLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)

	if _, err := w.Write(testDataset()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first["type"] != "book" {
		t.Errorf("expected first line to be the book, got %v", first["type"])
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not valid JSON: %v", err)
	}
	if second["type"] != "quote" {
		t.Errorf("expected second line to be the quote, got %v", second["type"])
	}
}

// TestMarkdownWriter tests the human-readable summary.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders all summary sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(testDataset()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Harvest Summary",
			"books_and_quotes",
			"## Books",
			"## Quotes",
			"Jane Austen",
			"Crime",
			"pie",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("empty dataset renders a warning", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		ds := &model.Dataset{
			Meta: model.MetaInfo{Dataset: model.DatasetName, GeneratedAt: time.Now().UTC()},
		}
		if _, err := w.Write(ds); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "no items") {
			t.Errorf("expected empty warning, got: %s", out)
		}
		if !strings.Contains(out, "No books collected.") || !strings.Contains(out, "No quotes collected.") {
			t.Errorf("expected empty section notes, got: %s", out)
		}
	})
}

// failWriter fails after a fixed number of writes.
type failWriter struct {
	writes int
	limit  int
}

func (f *failWriter) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.limit {
		return 0, errors.New("write failed")
	}
	return len(p), nil
}

// TestMultiWriter tests fan-out across writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every destination", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&a), NewJSONLWriter(&b))

		if _, err := mw.Write(testDataset()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both destinations to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var b bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(&failWriter{}), NewJSONWriter(&b))

		if _, err := mw.Write(testDataset()); err == nil {
			t.Fatal("expected an error")
		}
		if b.Len() != 0 {
			t.Error("expected later writers to be skipped after an error")
		}
	})
}
