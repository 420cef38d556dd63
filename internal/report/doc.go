// Package report renders crawl reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter and FullJSONWriter: Structured JSON for tool integration
//   - MarkdownWriter: Tables and a mermaid pie chart for sharing
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so that the database can store a report
// once and any writer can render it later.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
