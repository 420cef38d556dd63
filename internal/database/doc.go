// Package database provides SQLite-based storage for uciscope.
//
// This package implements the CrawlDB, which stores:
//   - One record per processed page: canonical URL, host, status, duplicate
//     outcome, word count, exact hash and SimHash, links emitted
//   - One report per crawl run, serialized as JSON, for the report command
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets the report command read while a crawl is writing
//
// The crawl state itself (duplicate registry, statistics) lives in memory;
// the database is an output, never consulted during admission.
package database
