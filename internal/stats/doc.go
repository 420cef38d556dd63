// Package stats accumulates the crawl-wide statistics used for reporting:
// unique pages, the longest page, the word histogram and unique pages per
// subdomain.
//
// URL-level uniqueness and content-level duplication are tracked separately.
// A page URL counts as unique the first time it is recorded, whatever the
// duplicate verdict on its content. The histogram and the longest-page record
// only learn from pages whose content is new and long enough to be
// informative.
//
// An Aggregator is not safe for concurrent use; pipeline.CrawlState guards it
// together with the duplicate registry.
package stats
