package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/toscrape/harvester/internal/model"
)

// MarkdownWriter outputs the dataset summary in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the dataset summary in Markdown format. The individual
// item records stay in the JSON outputs; the markdown view carries the
// metadata and the aggregations.
func (w *MarkdownWriter) Write(dataset *model.Dataset) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, dataset)
	w.writeBooks(md, dataset)
	w.writeQuotes(md, dataset)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the header with run metadata.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, dataset *model.Dataset) {
	md.H1("Harvest Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Dataset", "`" + dataset.Meta.Dataset + "`"},
			{"Generated", dataset.Meta.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Total Items", strconv.Itoa(dataset.Meta.TotalItems)},
			{"Categories", strconv.Itoa(len(dataset.Filters.Categories))},
			{"Tags", strconv.Itoa(len(dataset.Filters.Tags))},
		},
	})
	md.PlainText("")

	if dataset.Meta.TotalItems == 0 {
		md.Warningf("The harvest produced no items. Both source sites may have been unreachable.")
		md.PlainText("")
	}
}

// writeBooks writes the book aggregation section.
func (w *MarkdownWriter) writeBooks(md *markdown.Markdown, dataset *model.Dataset) {
	md.H2("Books")
	md.PlainText("")

	summary := dataset.Summary
	if len(summary.BooksByCategory) == 0 {
		md.PlainText("No books collected.")
		md.PlainText("")
		return
	}

	md.H3("By Category")
	md.PlainText("")
	rows := make([][]string, len(summary.BooksByCategory))
	for i, c := range summary.BooksByCategory {
		rows[i] = []string{c.Category, strconv.Itoa(c.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H3("By Rating")
	md.PlainText("")
	rows = make([][]string, len(summary.BooksByRating))
	for i, r := range summary.BooksByRating {
		rows[i] = []string{starLabel(r.Rating), strconv.Itoa(r.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rating", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeRatingChart(md, summary.BooksByRating)
}

// writeRatingChart writes a mermaid pie chart of the rating distribution.
func (w *MarkdownWriter) writeRatingChart(md *markdown.Markdown, ratings []model.RatingCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Book Rating Distribution"),
		piechart.WithShowData(true),
	)

	for _, r := range ratings {
		if r.Count > 0 {
			chart.LabelAndIntValue(starLabel(r.Rating), uint64(r.Count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeQuotes writes the quote aggregation section.
func (w *MarkdownWriter) writeQuotes(md *markdown.Markdown, dataset *model.Dataset) {
	md.H2("Quotes")
	md.PlainText("")

	summary := dataset.Summary
	if len(summary.QuotesByAuthor) == 0 {
		md.PlainText("No quotes collected.")
		md.PlainText("")
		return
	}

	md.H3("By Author")
	md.PlainText("")
	rows := make([][]string, len(summary.QuotesByAuthor))
	for i, a := range summary.QuotesByAuthor {
		rows[i] = []string{a.Author, strconv.Itoa(a.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Author", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H3("By Tag")
	md.PlainText("")
	rows = make([][]string, len(summary.QuotesByTag))
	for i, tg := range summary.QuotesByTag {
		rows[i] = []string{tg.Tag, strconv.Itoa(tg.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tag", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by harvester*")
}

// starLabel renders a rating as stars, e.g. 3 becomes "3 ★".
func starLabel(rating int) string {
	return strconv.Itoa(rating) + " ★"
}
