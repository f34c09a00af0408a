package report

import (
	"encoding/json"
	"io"

	"github.com/toscrape/harvester/internal/model"
)

// JSONWriter outputs the dataset in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full dataset in JSON format.
func (w *JSONWriter) Write(dataset *model.Dataset) (int, error) {
	return w.writeJSON(dataset)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONLWriter outputs the dataset items as JSON Lines, one item record
// per line in dataset order. The metadata and summary are omitted; this
// format feeds line-oriented tooling that streams individual records.
type JSONLWriter struct {
	baseWriter
}

// NewJSONLWriter creates a JSONLWriter that outputs to the given writer.
func NewJSONLWriter(output io.Writer) *JSONLWriter {
	return &JSONLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs every dataset item as one compact JSON line.
func (w *JSONLWriter) Write(dataset *model.Dataset) (int, error) {
	var total int
	for _, item := range dataset.Items {
		data, err := json.Marshal(item)
		if err != nil {
			return total, err
		}
		data = append(data, '\n')
		n, err := w.output.Write(data)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
