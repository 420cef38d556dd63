package model

import "time"

// LongestPage records the admitted page with the most words.
type LongestPage struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// WordCount is the number of tokens on the page.
	WordCount int `json:"word_count"`
}

// WordCount is one entry of the word histogram.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// SubdomainCount is the number of unique pages seen on one host.
type SubdomainCount struct {
	Host  string `json:"host"`
	Pages int    `json:"pages"`
}

// CrawlStats is a read-only snapshot of the aggregate crawl state.
type CrawlStats struct {
	// UniquePages is the number of distinct canonical URLs processed.
	UniquePages int `json:"unique_pages"`

	// LongestPage is the admitted page with the highest word count.
	LongestPage LongestPage `json:"longest_page"`

	// TopWords holds the most frequent non-stopword tokens, highest count first.
	TopWords []WordCount `json:"top_words"`

	// Subdomains lists unique page counts per host under the root domain,
	// ordered by host name.
	Subdomains []SubdomainCount `json:"subdomains"`

	// ExactDuplicates is the number of pages rejected as exact duplicates.
	ExactDuplicates int `json:"exact_duplicates"`

	// NearDuplicates is the number of pages rejected as near duplicates.
	NearDuplicates int `json:"near_duplicates"`

	// LowValuePages is the number of admitted pages below the word minimum.
	LowValuePages int `json:"low_value_pages"`
}

// CrawlReport is the result of one crawl run.
// It is serialized to JSON for the database and for JSON output.
type CrawlReport struct {
	// ID is the database identifier, zero until stored.
	ID int64 `json:"id,omitempty"`

	// Seeds are the URLs the crawl started from.
	Seeds []string `json:"seeds"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl stopped.
	FinishedAt time.Time `json:"finished_at"`

	// PagesFetched counts every fetch that returned a response.
	PagesFetched int `json:"pages_fetched"`

	// PagesSkipped counts pages rejected by sanity checks or duplicate detection.
	PagesSkipped int `json:"pages_skipped"`

	// FetchErrors counts fetches that failed at the transport level.
	FetchErrors int `json:"fetch_errors"`

	// LinksEnqueued counts canonical in-scope links handed to the frontier.
	LinksEnqueued int `json:"links_enqueued"`

	// Stats is the aggregate statistics snapshot.
	Stats CrawlStats `json:"stats"`

	// TimedOut is true if the crawl was cancelled before the frontier drained.
	TimedOut bool `json:"timed_out"`

	// Error holds a crawl-level error message, if any.
	Error string `json:"error,omitempty"`
}

// NewCrawlReport creates a report for a crawl starting now.
func NewCrawlReport(seeds []string) *CrawlReport {
	return &CrawlReport{
		Seeds:     seeds,
		StartedAt: time.Now(),
	}
}

// Duration returns how long the crawl ran.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
