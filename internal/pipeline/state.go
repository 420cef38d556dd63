package pipeline

import (
	"sync"

	"github.com/nao1215/uciscope/internal/dedup"
	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/stats"
)

// CrawlState is the crawl-wide mutable state shared by every page: the
// duplicate registry and the statistics aggregator. A fresh CrawlState per
// crawl (or per test) isolates runs from each other.
type CrawlState struct {
	mu       sync.Mutex
	registry *dedup.Registry
	stats    *stats.Aggregator
}

// NewCrawlState creates a CrawlState over the given registry and aggregator.
// The caller must not use either directly afterwards.
func NewCrawlState(registry *dedup.Registry, aggregator *stats.Aggregator) *CrawlState {
	return &CrawlState{
		registry: registry,
		stats:    aggregator,
	}
}

// Admit classifies a page's content and records the page in the statistics
// as one atomic step. It returns the duplicate verdict and the number of
// unique pages of host recorded before this page.
func (s *CrawlState) Admit(canonicalURL, host string, fp model.PageFingerprint, tokens []string) (model.Outcome, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.stats.HostPages(host)
	outcome := s.registry.CheckAndRegister(fp)
	s.stats.Record(canonicalURL, outcome, tokens)
	return outcome, prior
}

// UniquePages returns the number of distinct page URLs admitted so far.
func (s *CrawlState) UniquePages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.UniquePages()
}

// Snapshot returns the current statistics with the top n words.
func (s *CrawlState) Snapshot(n int) model.CrawlStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Snapshot(n)
}
