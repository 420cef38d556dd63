package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/uciscope/internal/model"
)

// Fetcher retrieves a page. fetch.Client is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// BatchProcessor fetches a batch of URLs concurrently and runs every fetched
// page through the pipeline.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each URL gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
type BatchProcessor struct {
	fetcher     Fetcher
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent fetches.
// Default is 10 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipeline is shared by all goroutines; its steps keep no per-page state
// and the crawl-wide state is locked by CrawlState.
func NewBatchProcessor(fetcher Fetcher, pipeline *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		fetcher:     fetcher,
		pipeline:    pipeline,
		concurrency: 10,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch fetches and processes urls, returning one result per URL in
// input order. A fetch failure is reported as a result with a nil Page and
// the error in Err; it does not stop the batch. The returned error is only
// set when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.PageResult, error) {
	results := make([]*model.PageResult, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(result *model.PageResult, index int) {
		// each index is written by exactly one goroutine
		results[index] = result
	})
	return results, err
}

// ProcessBatchWithCallback fetches and processes urls and calls callback for
// each completed page. The callback runs on the worker goroutine, so it must
// be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(result *model.PageResult, index int),
) error {
	bp.logger.Debug("starting batch",
		"urls", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			page, err := bp.fetcher.Fetch(ctx, rawURL)
			if err != nil {
				bp.logger.Debug("fetch failed", "url", rawURL, "error", err)
				result := model.NewPageResult(nil)
				result.Err = err
				callback(result, i)
				return nil
			}

			// Error is stored in the result
			result, _ := bp.pipeline.Process(ctx, page) //nolint:errcheck
			callback(result, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Debug("batch complete",
		"urls", len(urls),
		"elapsed", time.Since(startTime),
	)
	return err
}
