package model

// PageResult accumulates what the admission pipeline learns about one page.
// Each pipeline step reads the fields filled by earlier steps and adds its own.
type PageResult struct {
	// Page is the fetch result being processed.
	Page *Page `json:"page"`

	// CanonicalURL is the canonical form of the page's effective URL.
	CanonicalURL string `json:"canonical_url"`

	// Host is the host of CanonicalURL.
	Host string `json:"host"`

	// Document is the parsed visible text and anchors.
	Document *Document `json:"-"`

	// Tokens are the folded tokens of the visible text, stopwords included.
	Tokens []string `json:"-"`

	// WordCount is len(Tokens).
	WordCount int `json:"word_count"`

	// Fingerprint is the page's content fingerprint.
	Fingerprint PageFingerprint `json:"-"`

	// Outcome is the duplicate tracker's verdict.
	Outcome Outcome `json:"outcome"`

	// PriorPages is the number of unique pages of Host seen before this one.
	PriorPages int `json:"prior_pages"`

	// DiscoveredLinks is the number of anchors found on the page.
	DiscoveredLinks int `json:"discovered_links"`

	// TrapFiltered holds the links that survived the trap stages.
	TrapFiltered []string `json:"-"`

	// Links are the canonical, in-scope URLs to enqueue.
	Links []string `json:"links"`

	// PerformedSteps lists the pipeline steps that ran to completion.
	PerformedSteps []string `json:"performed_steps"`

	// Err is the error that stopped the pipeline, if any.
	Err error `json:"-"`
}

// NewPageResult creates a result for the given page.
func NewPageResult(page *Page) *PageResult {
	return &PageResult{
		Page:           page,
		Links:          make([]string, 0),
		PerformedSteps: make([]string, 0),
	}
}

// Admitted reports whether the page passed every step without being skipped.
func (r *PageResult) Admitted() bool {
	return r.Err == nil && !r.Outcome.IsDuplicate()
}
