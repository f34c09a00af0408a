package log

import (
	"context"
	"io"
	"log/slog"
)

// MaxAttrLen is the maximum length of a logged string attribute value.
// Longer values are cut and suffixed with TrimMarker. The limit is
// generous enough for any real URL on the target sites; only page bodies
// and pathological hrefs exceed it.
const MaxAttrLen = 512

// TrimMarker is appended to attribute values that were cut.
const TrimMarker = "...(trimmed)"

// TrimHandler wraps an slog.Handler and shortens oversized string
// attribute values before passing records on.
//
// We wrap a handler rather than defining a custom logger so the trimming
// composes with any underlying handler (text, JSON) and with libraries
// that accept a plain *slog.Logger.
type TrimHandler struct {
	// handler is the underlying slog handler receiving trimmed records.
	handler slog.Handler
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})
	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added,
// trimmed first.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name)}
}

// trimAttr trims a single attribute, recursing into groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); len(v) > MaxAttrLen {
			return slog.String(a.Key, v[:MaxAttrLen]+TrimMarker)
		}
	}
	return a
}

// NewLogger creates a text-format slog.Logger with trimming installed.
// Level is Debug when verbose, otherwise Info. Info is the working
// default for a crawler: the per-URL skip and blocked decisions the
// fetcher logs are part of normal operation, not noise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewTrimHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a JSON-format slog.Logger with trimming
// installed. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewTrimHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
