// Package model defines the core data structures shared across uciscope.
//
// This package contains the following main types:
//   - Page: a fetch result (status, headers, raw bytes)
//   - Document: visible text and anchors extracted from a page
//   - PageFingerprint and Outcome: content identity and the duplicate verdict
//   - PageResult: everything the admission pipeline learns about one page
//   - CrawlStats and CrawlReport: aggregate statistics and the per-run report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The pipeline, crawler, database and report packages all use
// these types.
//
// The error values in errors.go form the skip taxonomy: every one of them means
// "leave this page or link out", never "stop the crawl".
package model
