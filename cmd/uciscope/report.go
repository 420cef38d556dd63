package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/uciscope/internal/config"
	"github.com/nao1215/uciscope/internal/database"
	"github.com/nao1215/uciscope/internal/model"
)

// NewReportCmd creates the report command.
// This command shows crawl reports stored in the database.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a stored crawl report",
		Long: `Report renders a crawl report saved by 'uciscope crawl' without crawling again.

Without flags the most recent crawl is shown.

Examples:
  # Show the latest crawl
  uciscope report

  # List every stored crawl
  uciscope report --list

  # Show a specific crawl as Markdown
  uciscope report --id 3 --markdown`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Show the crawl with this ID (use --list to see available IDs)")
	cmd.Flags().BoolP("list", "l", false,
		"List stored crawls")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().IntP("top", "n", config.DefaultTopWords,
		"Number of most common words to show")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	topWords, err := flags.GetInt("top")
	if err != nil {
		return err
	}

	db, err := openExistingDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if list {
		return listCrawls(ctx, db, out)
	}
	return showCrawl(ctx, db, out, id, jsonOutput, markdownOutput, topWords)
}

// openExistingDB opens the database named by --db-dir, or the default one.
// It never creates a database: reading commands have nothing to read from
// an empty one.
func openExistingDB(cmd *cobra.Command) (*database.CrawlDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// listCrawls prints one line per stored crawl, newest first.
func listCrawls(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	crawls, err := db.ListCrawlReports(ctx)
	if err != nil {
		return err
	}

	if len(crawls) == 0 {
		fmt.Fprintln(out, "No crawls found in the database.")
		fmt.Fprintln(out, "\nUse 'uciscope crawl' to start one.")
		return nil
	}

	fmt.Fprintf(out, "Stored crawls (%d):\n\n", len(crawls))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %-8s  %-8s  %s\n", "ID", "Started", "Duration", "Unique", "Fetched", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	for _, meta := range crawls {
		state := "complete"
		if meta.TimedOut {
			state = "partial"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-10s  %-8d  %-8d  %s\n",
			meta.ID,
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			meta.Duration().Round(time.Second),
			meta.UniquePages,
			meta.PagesFetched,
			state,
		)
	}

	fmt.Fprintln(out, "\nUse 'uciscope report --id <id>' to show a crawl.")
	fmt.Fprintln(out, "Use 'uciscope compare' to compare the latest two crawls.")
	return nil
}

// showCrawl renders one stored crawl. An id of zero selects the latest.
func showCrawl(ctx context.Context, db *database.CrawlDB, out io.Writer, id int64, jsonOutput, markdownOutput bool, topWords int) error {
	crawl, err := loadCrawl(ctx, db, id)
	if err != nil {
		return err
	}
	_, err = newReportWriter(out, jsonOutput, markdownOutput, topWords).Write(crawl)
	return err
}

// errNoCrawls is returned when the database holds no crawl report.
var errNoCrawls = errors.New("no crawls found in the database (run 'uciscope crawl' first)")

// loadCrawl returns the crawl with the given ID, or the latest when id is zero.
func loadCrawl(ctx context.Context, db *database.CrawlDB, id int64) (*model.CrawlReport, error) {
	if id == 0 {
		crawl, err := db.GetLatestCrawlReport(ctx)
		if err != nil {
			return nil, err
		}
		if crawl == nil {
			return nil, errNoCrawls
		}
		return crawl, nil
	}

	crawl, err := db.GetCrawlReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if crawl == nil {
		return nil, fmt.Errorf("crawl with ID %d not found", id)
	}
	return crawl, nil
}
