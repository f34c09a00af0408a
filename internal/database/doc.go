// Package database provides SQLite-based storage for harvest runs.
//
// This package implements the HarvestDB, which stores:
//   - Complete datasets as JSON documents, one row per run
//   - Per-run metadata for cheap history listings
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
