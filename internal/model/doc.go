// Package model defines the data types shared across the harvester.
//
// All types in this package are plain data holders created during a single
// run and never mutated after creation. The central types are:
//
//   - BookItem: one book scraped from the book catalog
//   - QuoteItem: one quote scraped from the quote catalog
//   - AuthorDetails: author biography shared by quotes via the author cache
//   - Dataset: the merged, deduplicated output with summary aggregations
//
// BookItem and QuoteItem both implement the Item interface, a tagged union
// with an explicit "type" discriminant so the JSON output round-trips
// without runtime type inspection.
package model
