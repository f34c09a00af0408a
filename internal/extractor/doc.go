// Package extractor parses catalog pages into typed records.
//
// An Extractor turns one book detail page into a model.BookItem and one
// quote listing page into an ordered slice of model.QuoteItem. Quote
// extraction resolves each quote's author through a run-wide
// AuthorCache so every quote by the same author shares one
// model.AuthorDetails value, populated by at most one author-page fetch.
//
// Record identifiers come from IDGenerator, which guarantees global
// uniqueness across concurrent extraction workers.
//
// Parse failures are local: a malformed page or quote block is skipped
// and logged, never escalated.
package extractor
