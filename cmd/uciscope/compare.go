package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/uciscope/internal/config"
	"github.com/nao1215/uciscope/internal/database"
	"github.com/nao1215/uciscope/internal/model"
)

// Constants for the direction of the unique page count.
const (
	directionGrew      = "grew"
	directionShrank    = "shrank"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares two crawls stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest crawl with an earlier one",
		Long: `Compare shows how the crawled web changed between two stored crawls:
- unique pages, duplicates and low-value pages
- subdomains that appeared, disappeared or changed in size
- words that entered or left the top word list

By default the latest crawl is compared with the one before it.

Examples:
  # Compare the latest two crawls
  uciscope compare

  # Compare the latest crawl with crawl 2
  uciscope compare --with-id 2

  # Output the comparison as JSON
  uciscope compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with the crawl with this ID (use 'uciscope report --list' to see IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	withID, err := flags.GetInt64("with-id")
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

	db, err := openExistingDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := runComparison(ctx, db, withID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// runComparison loads the latest crawl and the crawl to compare it with.
func runComparison(ctx context.Context, db *database.CrawlDB, withID int64) (*ComparisonResult, error) {
	crawls, err := db.ListCrawlReports(ctx)
	if err != nil {
		return nil, err
	}
	if len(crawls) == 0 {
		return nil, errNoCrawls
	}
	if len(crawls) < 2 && withID == 0 {
		return nil, fmt.Errorf("at least 2 crawls are required for comparison (found %d)", len(crawls))
	}

	current, err := loadCrawl(ctx, db, crawls[0].ID)
	if err != nil {
		return nil, err
	}

	previousID := withID
	if previousID == 0 {
		previousID = crawls[1].ID
	}
	if previousID == current.ID {
		return nil, fmt.Errorf("crawl %d is the latest crawl; choose an earlier one", previousID)
	}
	previous, err := loadCrawl(ctx, db, previousID)
	if err != nil {
		return nil, err
	}

	return compareCrawls(previous, current), nil
}

// ComparisonResult holds the result of comparing two crawl reports.
type ComparisonResult struct {
	// PreviousCrawl and CurrentCrawl summarize the two crawls.
	PreviousCrawl CrawlSummary `json:"previous_crawl"`
	CurrentCrawl  CrawlSummary `json:"current_crawl"`

	// Direction is "grew", "shrank" or "unchanged" for the unique page count.
	Direction string `json:"direction"`

	// SubdomainChanges lists hosts whose page count differs, ordered by host.
	SubdomainChanges []SubdomainChange `json:"subdomain_changes,omitempty"`

	// NewTopWords entered the top word list; DroppedTopWords left it.
	NewTopWords     []string `json:"new_top_words,omitempty"`
	DroppedTopWords []string `json:"dropped_top_words,omitempty"`
}

// CrawlSummary contains the headline numbers of one crawl.
type CrawlSummary struct {
	ID              int64     `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	UniquePages     int       `json:"unique_pages"`
	PagesFetched    int       `json:"pages_fetched"`
	ExactDuplicates int       `json:"exact_duplicates"`
	NearDuplicates  int       `json:"near_duplicates"`
	LowValuePages   int       `json:"low_value_pages"`
	LongestPage     string    `json:"longest_page"`
	TimedOut        bool      `json:"timed_out"`
}

// SubdomainChange is the page count of one host in both crawls.
// A count of zero means the host was not seen in that crawl.
type SubdomainChange struct {
	Host     string `json:"host"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// Delta returns Current - Previous.
func (c SubdomainChange) Delta() int {
	return c.Current - c.Previous
}

func summarize(r *model.CrawlReport) CrawlSummary {
	return CrawlSummary{
		ID:              r.ID,
		StartedAt:       r.StartedAt,
		UniquePages:     r.Stats.UniquePages,
		PagesFetched:    r.PagesFetched,
		ExactDuplicates: r.Stats.ExactDuplicates,
		NearDuplicates:  r.Stats.NearDuplicates,
		LowValuePages:   r.Stats.LowValuePages,
		LongestPage:     r.Stats.LongestPage.URL,
		TimedOut:        r.TimedOut,
	}
}

// compareCrawls compares two crawl reports and generates a comparison result.
func compareCrawls(previous, current *model.CrawlReport) *ComparisonResult {
	result := &ComparisonResult{
		PreviousCrawl: summarize(previous),
		CurrentCrawl:  summarize(current),
	}

	switch delta := current.Stats.UniquePages - previous.Stats.UniquePages; {
	case delta > 0:
		result.Direction = directionGrew
	case delta < 0:
		result.Direction = directionShrank
	default:
		result.Direction = directionUnchanged
	}

	counts := make(map[string]*SubdomainChange)
	for _, s := range previous.Stats.Subdomains {
		counts[s.Host] = &SubdomainChange{Host: s.Host, Previous: s.Pages}
	}
	for _, s := range current.Stats.Subdomains {
		if c, ok := counts[s.Host]; ok {
			c.Current = s.Pages
			continue
		}
		counts[s.Host] = &SubdomainChange{Host: s.Host, Current: s.Pages}
	}
	for _, c := range counts {
		if c.Delta() != 0 {
			result.SubdomainChanges = append(result.SubdomainChanges, *c)
		}
	}
	sort.Slice(result.SubdomainChanges, func(i, j int) bool {
		return result.SubdomainChanges[i].Host < result.SubdomainChanges[j].Host
	})

	result.NewTopWords = wordsMissingFrom(current.Stats.TopWords, previous.Stats.TopWords)
	result.DroppedTopWords = wordsMissingFrom(previous.Stats.TopWords, current.Stats.TopWords)
	return result
}

// wordsMissingFrom returns the words of a that are not in b, in a's order.
func wordsMissingFrom(a, b []model.WordCount) []string {
	inB := make(map[string]struct{}, len(b))
	for _, w := range b {
		inB[w.Word] = struct{}{}
	}
	var missing []string
	for _, w := range a {
		if _, ok := inB[w.Word]; !ok {
			missing = append(missing, w.Word)
		}
	}
	return missing
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// comparisonRows returns the metric rows shared by the text and Markdown output.
func comparisonRows(result *ComparisonResult) [][]string {
	p, c := result.PreviousCrawl, result.CurrentCrawl
	row := func(name string, prev, cur int) []string {
		return []string{name, strconv.Itoa(prev), strconv.Itoa(cur), formatDelta(cur - prev)}
	}
	return [][]string{
		row("Unique pages", p.UniquePages, c.UniquePages),
		row("Pages fetched", p.PagesFetched, c.PagesFetched),
		row("Exact duplicates", p.ExactDuplicates, c.ExactDuplicates),
		row("Near duplicates", p.NearDuplicates, c.NearDuplicates),
		row("Low-value pages", p.LowValuePages, c.LowValuePages),
	}
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Crawl Comparison")
	md.PlainText("")
	md.PlainTextf("**Crawl %d** (%s) compared with **crawl %d** (%s): the crawl %s.",
		result.CurrentCrawl.ID, result.CurrentCrawl.StartedAt.Format("2006-01-02 15:04"),
		result.PreviousCrawl.ID, result.PreviousCrawl.StartedAt.Format("2006-01-02 15:04"),
		result.Direction)
	md.PlainText("")

	if result.PreviousCrawl.TimedOut || result.CurrentCrawl.TimedOut {
		md.Warningf("%d of the crawls were stopped early; their numbers are partial.", timedOutCount(result))
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   comparisonRows(result),
	})
	md.PlainText("")

	if len(result.SubdomainChanges) > 0 {
		md.H2(fmt.Sprintf("Subdomain Changes (%d)", len(result.SubdomainChanges)))
		md.PlainText("")
		rows := make([][]string, len(result.SubdomainChanges))
		for i, s := range result.SubdomainChanges {
			rows[i] = []string{s.Host, strconv.Itoa(s.Previous), strconv.Itoa(s.Current), formatDelta(s.Delta())}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Host", "Previous", "Current", "Change"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(result.NewTopWords) > 0 {
		md.H2("New Top Words")
		md.PlainText("")
		md.BulletList(result.NewTopWords...)
		md.PlainText("")
	}
	if len(result.DroppedTopWords) > 0 {
		md.H2("Dropped Top Words")
		md.PlainText("")
		md.BulletList(result.DroppedTopWords...)
		md.PlainText("")
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Crawl Comparison: #%d -> #%d\n", result.PreviousCrawl.ID, result.CurrentCrawl.ID)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "\nUnique pages: %s\n", strings.ToUpper(result.Direction))
	fmt.Fprintf(&sb, "\nPrevious crawl: %s\n", result.PreviousCrawl.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current crawl:  %s\n", result.CurrentCrawl.StartedAt.Local().Format("2006-01-02 15:04:05"))

	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "  %-18s  %-10s  %-10s  %s\n", "Metric", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 50) + "\n")
	for _, row := range comparisonRows(result) {
		fmt.Fprintf(&sb, "  %-18s  %-10s  %-10s  %s\n", row[0], row[1], row[2], row[3])
	}

	if len(result.SubdomainChanges) > 0 {
		fmt.Fprintf(&sb, "\nSubdomain Changes (%d):\n", len(result.SubdomainChanges))
		for _, s := range result.SubdomainChanges {
			marker := "~"
			switch {
			case s.Previous == 0:
				marker = "+"
			case s.Current == 0:
				marker = "-"
			}
			fmt.Fprintf(&sb, "  [%s] %s, %d -> %d (%s)\n", marker, s.Host, s.Previous, s.Current, formatDelta(s.Delta()))
		}
	}

	if len(result.NewTopWords) > 0 {
		fmt.Fprintf(&sb, "\nNew top words: %s\n", strings.Join(result.NewTopWords, ", "))
	}
	if len(result.DroppedTopWords) > 0 {
		fmt.Fprintf(&sb, "Dropped top words: %s\n", strings.Join(result.DroppedTopWords, ", "))
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

func timedOutCount(result *ComparisonResult) int {
	n := 0
	for _, timedOut := range []bool{result.PreviousCrawl.TimedOut, result.CurrentCrawl.TimedOut} {
		if timedOut {
			n++
		}
	}
	return n
}
