package config

import "errors"

// Configuration validation errors.
//
// Package-level sentinel errors let callers use errors.Is() for
// programmatic handling while keeping human-readable messages.
var (
	// ErrNoSites is returned when both site roots are empty.
	ErrNoSites = errors.New("no sites configured: at least one of books-url or quotes-url is required")

	// ErrInvalidRetries is returned when the retry count is not positive.
	ErrInvalidRetries = errors.New("invalid retries: must be positive")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A zero timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker pool size is not
	// positive. Zero workers would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidPageCeiling is returned when a pagination ceiling is not
	// positive. The ceilings exist to stop runaway pagination loops.
	ErrInvalidPageCeiling = errors.New("invalid page ceiling: must be positive")

	// ErrInvalidItemLimit is returned when a result-count limit is
	// negative. Zero means unlimited.
	ErrInvalidItemLimit = errors.New("invalid item limit: must be non-negative")
)
