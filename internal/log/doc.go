// Package log builds the slog loggers used across the harvester.
//
// Crawler logs attach raw URLs and occasionally page content as
// attributes. TrimHandler wraps any slog.Handler and shortens oversized
// attribute values so a single malformed page cannot flood the log
// stream. NewLogger and NewJSONLogger return ready-to-use loggers with
// the wrapper installed.
package log
