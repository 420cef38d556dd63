package crawler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/pipeline"
	"github.com/nao1215/uciscope/internal/urlnorm"
)

// Spider crawls from a set of seeds, breadth first.
//
// Each wave of the frontier is fetched concurrently by a
// pipeline.BatchProcessor. The links admitted pages emit form the next wave.
// A URL is fetched at most once per crawl, identified by its
// scheme-insensitive canonical key.
//
// There is no politeness delay and no robots.txt handling; the crawl is
// bounded by MaxPages and the caller's context instead.
type Spider struct {
	fetcher   pipeline.Fetcher
	admission *pipeline.Pipeline
	workers   int
	maxPages  int
	logger    *slog.Logger
	onPage    func(*model.PageResult)

	// mutex protects visited and stats.
	mutex   sync.Mutex
	visited map[string]struct{}
	stats   SpiderStats
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the maximum number of fetches. Zero means no limit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithWorkers sets how many pages are fetched concurrently.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPageHandler registers a function called once for every processed
// page, including failed fetches (Page is nil) and skipped pages (Err is
// set). It is called from the crawl goroutine, never concurrently.
func WithPageHandler(fn func(*model.PageResult)) SpiderOption {
	return func(s *Spider) {
		s.onPage = fn
	}
}

// WithSpiderLogger sets the logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches with fetcher and runs every page
// through admission.
func NewSpider(fetcher pipeline.Fetcher, admission *pipeline.Pipeline, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:   fetcher,
		admission: admission,
		workers:   8,
		maxPages:  0,
		logger:    slog.Default(),
		visited:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl fetches the seeds and everything reachable from them through
// admitted links, until the frontier is empty, MaxPages fetches were made,
// or ctx is done. It returns the statistics gathered so far together with
// ctx's error on cancellation.
func (s *Spider) Crawl(ctx context.Context, seeds []string) (SpiderStats, error) {
	frontier := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		canonical, err := urlnorm.Canonicalize(seed)
		if err != nil {
			s.logger.Warn("ignoring invalid seed", "seed", seed, "error", err)
			continue
		}
		if s.markVisited(canonical) {
			frontier = append(frontier, canonical)
		}
	}
	s.addQueued(len(frontier))

	batch := pipeline.NewBatchProcessor(s.fetcher, s.admission,
		pipeline.WithConcurrency(s.workers),
		pipeline.WithBatchLogger(s.logger),
	)

	for wave := 0; len(frontier) > 0; wave++ {
		if remaining := s.remaining(); remaining == 0 {
			break
		} else if remaining > 0 && len(frontier) > remaining {
			frontier = frontier[:remaining]
		}

		s.logger.Info("crawling wave", "wave", wave, "urls", len(frontier))
		results, err := batch.ProcessBatch(ctx, frontier)

		next := make([]string, 0)
		for _, result := range results {
			if result == nil {
				continue
			}
			next = append(next, s.handle(result)...)
		}
		s.addQueued(len(next))

		if err != nil {
			return s.Stats(), err
		}
		frontier = next
	}

	return s.Stats(), nil
}

// handle records one result and returns its links that were not seen yet.
func (s *Spider) handle(result *model.PageResult) []string {
	s.mutex.Lock()
	switch {
	case result.Page == nil:
		s.stats.FetchErrors++
	case result.Err != nil:
		s.stats.PagesFetched++
		s.stats.PagesSkipped++
	default:
		s.stats.PagesFetched++
		s.stats.PagesAdmitted++
	}
	s.mutex.Unlock()

	if result.CanonicalURL != "" {
		// a redirect target counts as visited as well
		s.markVisited(result.CanonicalURL)
	}

	fresh := make([]string, 0, len(result.Links))
	for _, link := range result.Links {
		if s.markVisited(link) {
			fresh = append(fresh, link)
		}
	}

	if s.onPage != nil {
		s.onPage(result)
	}
	return fresh
}

// markVisited records u and reports whether it was new.
func (s *Spider) markVisited(canonicalURL string) bool {
	key := urlnorm.Key(canonicalURL)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.visited[key]; ok {
		return false
	}
	s.visited[key] = struct{}{}
	return true
}

// remaining returns how many more fetches are allowed, or -1 for no limit.
func (s *Spider) remaining() int {
	if s.maxPages <= 0 {
		return -1
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return max(s.maxPages-s.stats.PagesFetched-s.stats.FetchErrors, 0)
}

func (s *Spider) addQueued(n int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats.URLsQueued += n
}

// Reset clears the spider's state, allowing it to be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]struct{})
	s.stats = SpiderStats{}
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stats
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesFetched is the number of fetches that returned a response.
	PagesFetched int

	// PagesAdmitted is the number of pages that passed every admission step.
	PagesAdmitted int

	// PagesSkipped is the number of fetched pages rejected by a step.
	PagesSkipped int

	// FetchErrors is the number of fetches that failed in transport.
	FetchErrors int

	// URLsQueued is the number of distinct URLs put on the frontier,
	// seeds included.
	URLsQueued int
}
