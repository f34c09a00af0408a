// Package aggregate merges extracted records into the final dataset.
//
// BuildDataset is a pure function of its inputs: no I/O, no
// concurrency, no shared state. Summary counts are independent of
// input ordering; only the presentation order of items and of the
// count lists follows first occurrence.
package aggregate
