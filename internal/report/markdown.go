package report

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/uciscope/internal/model"
)

// pieSlices is the number of subdomains drawn individually in the pie chart;
// the rest are merged into one "other" slice.
const pieSlices = 8

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation. It covers tables, GitHub alerts and mermaid charts, which is
// everything the report needs.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatistics(md, report)
	w.writeSubdomains(md, report)
	w.writeTopWords(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("uciscope Crawl Report")
	md.PlainText("")

	seeds := make([]string, len(report.Seeds))
	for i, s := range report.Seeds {
		seeds[i] = "`" + s + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seeds", strings.Join(seeds, "<br>")},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Second).String()},
			{"Pages Fetched", strconv.Itoa(report.PagesFetched)},
			{"Pages Skipped", strconv.Itoa(report.PagesSkipped)},
			{"Fetch Errors", strconv.Itoa(report.FetchErrors)},
			{"Links Enqueued", strconv.Itoa(report.LinksEnqueued)},
			{"Status", status(report)},
		},
	})
	md.PlainText("")

	switch {
	case report.Error != "":
		md.Cautionf("The crawl stopped with an error: %s", report.Error)
		md.PlainText("")
	case report.TimedOut:
		md.Warningf("The crawl was stopped before the frontier drained. %d pages were processed.",
			report.Stats.UniquePages)
		md.PlainText("")
	}
}

// writeStatistics writes the aggregate statistics table.
func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, report *model.CrawlReport) {
	stats := report.Stats
	md.H2("Statistics")
	md.PlainText("")

	longest := "-"
	if stats.LongestPage.URL != "" {
		longest = stats.LongestPage.URL + " (" + strconv.Itoa(stats.LongestPage.WordCount) + " words)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Unique Pages", strconv.Itoa(stats.UniquePages)},
			{"Longest Page", longest},
			{"Exact Duplicates", strconv.Itoa(stats.ExactDuplicates)},
			{"Near Duplicates", strconv.Itoa(stats.NearDuplicates)},
			{"Low-Value Pages", strconv.Itoa(stats.LowValuePages)},
		},
	})
	md.PlainText("")

	if dup := stats.ExactDuplicates + stats.NearDuplicates; dup > 0 {
		md.Note(strconv.Itoa(dup) + " duplicate page(s) were rejected and contributed no links.")
		md.PlainText("")
	}
}

// writeSubdomains writes the subdomain table and pie chart.
func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, report *model.CrawlReport) {
	subdomains := report.Stats.Subdomains
	md.H2("Subdomains")
	md.PlainText("")

	if len(subdomains) == 0 {
		md.PlainText("No subdomains recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(subdomains))
	for i, s := range subdomains {
		rows[i] = []string{s.Host, strconv.Itoa(s.Pages)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Unique Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, subdomains)
}

// writePieChart writes a mermaid pie chart of unique pages per subdomain.
// The largest subdomains get their own slice.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, subdomains []model.SubdomainCount) {
	sorted := make([]model.SubdomainCount, len(subdomains))
	copy(sorted, subdomains)
	sortByPages(sorted)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Unique Pages per Subdomain"),
		piechart.WithShowData(true),
	)

	other := 0
	for i, s := range sorted {
		if i >= pieSlices {
			other += s.Pages
			continue
		}
		chart.LabelAndIntValue(s.Host, uint64(s.Pages)) //nolint:gosec // page counts are never negative
	}
	if other > 0 {
		chart.LabelAndIntValue("other", uint64(other)) //nolint:gosec // page counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// sortByPages orders subdomains by page count, largest first, then by host.
func sortByPages(s []model.SubdomainCount) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Pages != s[j].Pages {
			return s[i].Pages > s[j].Pages
		}
		return s[i].Host < s[j].Host
	})
}

// writeTopWords writes the word histogram head as a table.
func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, report *model.CrawlReport) {
	words := report.Stats.TopWords
	md.H2("Top Words")
	md.PlainText("")

	if len(words) == 0 {
		md.Tip("No page was long enough to contribute words.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(words))
	for i, wc := range words {
		rows[i] = []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [uciscope](https://github.com/nao1215/uciscope)*")
}
