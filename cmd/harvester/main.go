// Package main provides the entry point for the harvester CLI.
//
// harvester crawls the two toscrape.com demo catalogs, parses books and
// quotes into one deduplicated dataset, and writes JSON, JSONL, and
// Markdown outputs.
//
// Usage:
//
//	harvester harvest
//	harvester runs --list
//
// See --help for all available options.
package main

// main is the entry point for harvester.
func main() {
	Execute()
}
