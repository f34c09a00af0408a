package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTrimHandler tests attribute trimming behavior.
func TestTrimHandler(t *testing.T) {
	t.Parallel()

	t.Run("leaves short values alone", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("fetched", "url", "https://books.toscrape.com/index.html")

		out := buf.String()
		if !strings.Contains(out, "https://books.toscrape.com/index.html") {
			t.Errorf("expected full URL in output, got %s", out)
		}
		if strings.Contains(out, TrimMarker) {
			t.Errorf("short value should not be trimmed: %s", out)
		}
	})

	t.Run("trims oversized values", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("parsed", "html", strings.Repeat("x", MaxAttrLen*4))

		out := buf.String()
		if !strings.Contains(out, TrimMarker) {
			t.Errorf("expected trim marker in output, got %s", out)
		}
		if len(out) > MaxAttrLen*2 {
			t.Errorf("output still oversized: %d bytes", len(out))
		}
	})

	t.Run("trims values inside groups", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("page",
			slog.Group("response",
				slog.String("body", strings.Repeat("y", MaxAttrLen+1)),
				slog.Int("status", 200),
			),
		)

		out := buf.String()
		if !strings.Contains(out, TrimMarker) {
			t.Errorf("expected group value trimmed, got %s", out)
		}
		if !strings.Contains(out, "status=200") {
			t.Errorf("expected non-string attr preserved, got %s", out)
		}
	})

	t.Run("respects verbose level", func(t *testing.T) {
		t.Parallel()

		var quiet, loud bytes.Buffer
		NewLogger(&quiet, false).Debug("hidden")
		NewLogger(&loud, true).Debug("shown")

		if quiet.Len() != 0 {
			t.Errorf("debug should be suppressed when not verbose: %s", quiet.String())
		}
		if !strings.Contains(loud.String(), "shown") {
			t.Errorf("debug should appear when verbose: %s", loud.String())
		}
	})
}
