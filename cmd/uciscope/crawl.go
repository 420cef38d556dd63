package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/uciscope/internal/config"
	"github.com/nao1215/uciscope/internal/crawler"
	"github.com/nao1215/uciscope/internal/database"
	"github.com/nao1215/uciscope/internal/dedup"
	"github.com/nao1215/uciscope/internal/fetch"
	"github.com/nao1215/uciscope/internal/log"
	"github.com/nao1215/uciscope/internal/model"
	"github.com/nao1215/uciscope/internal/pipeline"
	"github.com/nao1215/uciscope/internal/report"
	"github.com/nao1215/uciscope/internal/scope"
	"github.com/nao1215/uciscope/internal/stats"
	"github.com/nao1215/uciscope/internal/trap"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl the allowed domains and report statistics",
		Long: `Crawl fetches the seed URLs and every in-scope page reachable from them.

Each page is canonicalized, checked against the allowed domains and the trap
rules, fingerprinted and compared with every page seen before. Exact and
near duplicates contribute no links. When the crawl ends (frontier drained,
--max-pages reached, --max-duration elapsed or Ctrl-C) a report is printed
and saved to the database.

Without arguments the configured seeds are used (by default the ICS, CS,
Informatics and Statistics home pages).

Examples:
  # Crawl the four department sites
  uciscope crawl

  # Crawl one site, stop after 500 fetches
  uciscope crawl https://www.stat.uci.edu --max-pages 500

  # Write a Markdown report to a file
  uciscope crawl -m -o reports/crawl.md

  # Use a custom configuration file
  uciscope crawl -c myconfig.yaml

Configuration file (.uciscope) example:
  allowed_domains:
    - ics.uci.edu
  blocklist:
    hosts:
      - wiki.ics.uci.edu
  thresholds:
    near_duplicate_distance: 4`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of fetches (0 means no limit)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().DurationP("max-duration", "d", 0,
		"Stop the crawl after this long and report partial results (0 means no limit)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().IntP("top", "n", config.DefaultTopWords,
		"Number of most common words to report")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .uciscope in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Database flags
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false,
		"Do not store page records and the report in the database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing with partial results")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.MaxDuration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.MaxDuration)
		defer cancelTimeout()
	}

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and the
// command flags, in that order. A flag only wins over the file when it was
// given on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user named a config file, it must exist. Otherwise a missing
	// file just means built-in defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-duration") {
		if cfg.MaxDuration, err = flags.GetDuration("max-duration"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("top") {
		if cfg.TopWords, err = flags.GetInt("top"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.Seeds = args
	}
	return cfg, nil
}

// crawlRun holds the components of one crawl.
type crawlRun struct {
	state  *pipeline.CrawlState
	spider *crawler.Spider
}

// newCrawlRun wires the admission components configured by cfg around
// fetcher. onPage is called for every processed page.
func newCrawlRun(cfg *config.Config, fetcher pipeline.Fetcher, logger *slog.Logger, onPage func(*model.PageResult)) (*crawlRun, error) {
	idx, err := cfg.Thresholds.NewIndex()
	if err != nil {
		return nil, err
	}
	state := pipeline.NewCrawlState(
		dedup.NewRegistry(dedup.WithIndex(idx)),
		stats.NewAggregator(cfg.EffectiveRootDomain(), stats.WithMinWords(cfg.Thresholds.MinWords)),
	)

	blocklist := scope.DefaultBlocklist()
	for _, h := range cfg.BlockedHosts {
		blocklist.AddHost(h)
	}
	for _, p := range cfg.BlockedPrefixes {
		blocklist.AddPrefix(p)
	}

	admission := pipeline.NewAdmissionPipeline(pipeline.Dependencies{
		State:     state,
		Extractor: crawler.NewParser(),
		Validator: scope.NewValidator(cfg.AllowedDomains,
			scope.WithRules(cfg.Thresholds.ScopeRules()),
			scope.WithBlocklist(blocklist),
		),
		Detector: trap.NewDetector(
			trap.WithStages(trap.StagesFor(cfg.Thresholds.TrapLimits())...),
			trap.WithLogger(logger),
		),
		MaxBodySize: cfg.Thresholds.MaxBodySize,
	}, pipeline.WithLogger(logger))

	spider := crawler.NewSpider(fetcher, admission,
		crawler.WithWorkers(cfg.Workers),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithPageHandler(onPage),
		crawler.WithSpiderLogger(logger),
	)
	return &crawlRun{state: state, spider: spider}, nil
}

// newFetchClient creates the HTTP client configured by cfg and, when a proxy
// is configured, verifies that it speaks SOCKS5.
func newFetchClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*fetch.Client, error) {
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.Thresholds.MaxBodySize),
	}
	if cfg.Cookie != "" {
		opts = append(opts, fetch.WithCookie(cfg.Cookie))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(cfg.Headers))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}

	client, err := fetch.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if status := client.CheckProxy(ctx); status != fetch.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Err(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}
	return client, nil
}

// runCrawl executes the crawl and writes the report to out, or to
// cfg.ReportFile when set. Cancellation of ctx ends the crawl early with a
// partial report rather than an error.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"allowedDomains", cfg.AllowedDomains,
		"workers", cfg.Workers,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	client, err := newFetchClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	crawlReport := model.NewCrawlReport(cfg.Seeds)

	// Records are written after cancellation too, so a stopped crawl still
	// leaves a consistent database behind.
	storeCtx := context.WithoutCancel(ctx)
	onPage := func(result *model.PageResult) {
		crawlReport.LinksEnqueued += len(result.Links)
		if err := savePageRecord(storeCtx, db, result); err != nil {
			logger.Error("failed to save page record", "url", result.CanonicalURL, "error", err)
		}
	}

	run, err := newCrawlRun(cfg, client, logger, onPage)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	spiderStats, crawlErr := run.spider.Crawl(ctx, cfg.Seeds)
	finishReport(crawlReport, spiderStats, run.state.Snapshot(cfg.TopWords), crawlErr)

	logger.Info("crawl finished",
		"uniquePages", crawlReport.Stats.UniquePages,
		"fetched", crawlReport.PagesFetched,
		"timedOut", crawlReport.TimedOut,
		"duration", crawlReport.Duration().Round(time.Millisecond),
	)

	if err := saveCrawlReport(storeCtx, db, crawlReport, logger); err != nil {
		logger.Error("failed to save crawl report", "error", err)
	}

	if err := outputReport(cfg, crawlReport, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if crawlReport.Error != "" {
		return crawlErr
	}
	return nil
}

// finishReport fills the counters of r from the spider and the aggregate
// statistics. Cancellation and deadline expiry mark the report as timed out.
func finishReport(r *model.CrawlReport, s crawler.SpiderStats, snapshot model.CrawlStats, crawlErr error) {
	r.FinishedAt = time.Now()
	r.PagesFetched = s.PagesFetched
	r.PagesSkipped = s.PagesSkipped
	r.FetchErrors = s.FetchErrors
	r.Stats = snapshot

	switch {
	case crawlErr == nil:
	case errors.Is(crawlErr, context.Canceled), errors.Is(crawlErr, context.DeadlineExceeded):
		r.TimedOut = true
	default:
		r.Error = crawlErr.Error()
	}
}

// savePageRecord stores the record of one processed page.
// If db is nil or the page has no canonical URL, this function is a no-op.
func savePageRecord(ctx context.Context, db *database.CrawlDB, result *model.PageResult) error {
	if db == nil {
		return nil
	}
	record := database.NewPageRecord(result)
	if record == nil {
		return nil
	}
	_, err := db.InsertPageRecord(ctx, record)
	return err
}

// saveCrawlReport saves the crawl report to the database if enabled.
// If db is nil, this function is a no-op.
func saveCrawlReport(ctx context.Context, db *database.CrawlDB, r *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveCrawlReport(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}
	logger.Info("crawl report saved to database", "id", id)
	return nil
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, r *model.CrawlReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(output, cfg.JSONReport, cfg.MarkdownReport, cfg.TopWords).Write(r)
	return err
}

// newReportWriter selects the report writer for the output flags.
func newReportWriter(output io.Writer, jsonOutput, markdownOutput bool, topWords int) report.Writer {
	switch {
	case jsonOutput:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithMaxWords(topWords))
	}
}
