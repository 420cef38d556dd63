package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/uciscope/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because the report is usually redirected to a file and
// compared between runs.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// maxWords limits the number of top words printed; 0 prints all.
	maxWords int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithMaxWords limits the number of top words printed.
func WithMaxWords(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n >= 0 {
			w.maxWords = n
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCrawl(&sb, report)
	w.writeStatistics(&sb, report)
	w.writeSubdomains(&sb, report)
	w.writeTopWords(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        UCISCOPE CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.ID != 0 {
		fmt.Fprintf(sb, "Report ID:      %d\n", report.ID)
	}
	fmt.Fprintf(sb, "Seeds:          %s\n", strings.Join(report.Seeds, ", "))
	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", report.Duration().Round(time.Second))
	fmt.Fprintf(sb, "Status:         %s\n", status(report))
	sb.WriteString("\n")
}

// writeCrawl writes the fetch counters.
func (w *SimpleWriter) writeCrawl(sb *strings.Builder, report *model.CrawlReport) {
	section(sb, "CRAWL")
	fmt.Fprintf(sb, "  Pages fetched:   %d\n", report.PagesFetched)
	fmt.Fprintf(sb, "  Pages skipped:   %d\n", report.PagesSkipped)
	fmt.Fprintf(sb, "  Fetch errors:    %d\n", report.FetchErrors)
	fmt.Fprintf(sb, "  Links enqueued:  %d\n", report.LinksEnqueued)
	sb.WriteString("\n")
}

// writeStatistics writes the aggregate page statistics.
func (w *SimpleWriter) writeStatistics(sb *strings.Builder, report *model.CrawlReport) {
	stats := report.Stats
	section(sb, "STATISTICS")
	fmt.Fprintf(sb, "  Unique pages:     %d\n", stats.UniquePages)
	if stats.LongestPage.URL != "" {
		fmt.Fprintf(sb, "  Longest page:     %s (%d words)\n", stats.LongestPage.URL, stats.LongestPage.WordCount)
	} else {
		sb.WriteString("  Longest page:     -\n")
	}
	fmt.Fprintf(sb, "  Exact duplicates: %d\n", stats.ExactDuplicates)
	fmt.Fprintf(sb, "  Near duplicates:  %d\n", stats.NearDuplicates)
	fmt.Fprintf(sb, "  Low-value pages:  %d\n", stats.LowValuePages)
	sb.WriteString("\n")
}

// writeSubdomains writes one "host, count" line per subdomain.
func (w *SimpleWriter) writeSubdomains(sb *strings.Builder, report *model.CrawlReport) {
	subdomains := report.Stats.Subdomains
	if len(subdomains) == 0 && !w.showEmpty {
		return
	}

	section(sb, fmt.Sprintf("SUBDOMAINS (%d)", len(subdomains)))
	if len(subdomains) == 0 {
		sb.WriteString("  No subdomains recorded\n")
	}
	for _, s := range subdomains {
		fmt.Fprintf(sb, "  %s, %d\n", s.Host, s.Pages)
	}
	sb.WriteString("\n")
}

// writeTopWords writes the word histogram head.
func (w *SimpleWriter) writeTopWords(sb *strings.Builder, report *model.CrawlReport) {
	words := report.Stats.TopWords
	if w.maxWords > 0 && len(words) > w.maxWords {
		words = words[:w.maxWords]
	}
	if len(words) == 0 && !w.showEmpty {
		return
	}

	section(sb, fmt.Sprintf("TOP %d WORDS", len(words)))
	if len(words) == 0 {
		sb.WriteString("  No words recorded\n")
	}
	for i, wc := range words {
		fmt.Fprintf(sb, "  %3d. %-24s %d\n", i+1, wc.Word, wc.Count)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by uciscope\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
