// Package report serializes harvested datasets for output.
//
// This package contains writers for different output formats:
//   - JSONWriter: the full dataset document for tool integration
//   - JSONLWriter: one item record per line for streaming consumers
//   - MarkdownWriter: a human-readable summary of the aggregations
//
// Design decision: We separate dataset writing from the dataset
// structures (which are in the model package) to follow the single
// responsibility principle. This allows adding new output formats
// without modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
