package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/keraies/antennascan/internal/model"
)

// MarkdownWriter outputs run reports as Markdown, e.g. for a shared notes
// repository.
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
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStatus(md, report)
	w.writeCompanies(md, report)
	w.writeSample(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Antenna Report: " + report.Municipality)
	md.PlainText("")

	rows := [][]string{
		{"Municipality", report.Municipality},
		{"Search code", "`" + report.SearchCode + "`"},
		{"Started", report.StartedAt.Format(timeLayout)},
		{"Pages fetched", pagesLabel(report.Summary.PagesFetched)},
		{"Antennas", strconv.Itoa(report.Summary.RecordsFound)},
		{"Rows skipped", strconv.Itoa(report.Summary.RowsSkipped)},
	}
	if report.Summary.PagesRepeated > 0 {
		rows = append(rows, []string{"Pages repeated", strconv.Itoa(report.Summary.PagesRepeated)})
	}
	if report.Exported() {
		rows = append(rows,
			[]string{"CSV", "`" + report.CSVPath + "`"},
			[]string{"XLSX", "`" + report.XLSXPath + "`"},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, report *model.RunReport) {
	switch {
	case report.Status == model.RunStatusFailed:
		md.Cautionf("The run failed after %s: %s. The records above are partial.",
			pagesLabel(report.Summary.PagesFetched), report.Error)
	case report.Summary.RecordsFound == 0:
		md.Warningf("No antenna records were found for %s.", report.Municipality)
	case report.Summary.PagesRepeated > 0:
		md.Importantf("Page %d repeated the previous page. Its records were dropped and the run stopped there.",
			report.Summary.PagesFetched)
	case report.Summary.RowsSkipped > 0:
		md.Importantf("%d malformed row(s) were skipped.", report.Summary.RowsSkipped)
	default:
		md.Tip("All pages were read without errors.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCompanies(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Companies) == 0 {
		return
	}

	md.H2("Antennas per Company")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Companies))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Antennas per Company"),
		piechart.WithShowData(true),
	)
	for _, c := range report.Companies {
		name := c.Company
		if name == "" {
			name = "(none)"
		}
		rows = append(rows, []string{name, strconv.Itoa(c.Records)})
		chart.LabelAndIntValue(name, uint64(c.Records)) //nolint:gosec // counts are never negative
	}

	md.Table(markdown.TableSet{
		Header: []string{"Company", "Antennas"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeSample(md *markdown.Markdown, report *model.RunReport) {
	if report.Sample == nil {
		return
	}

	md.H2("Sample Record")
	md.PlainText("")

	values := report.Sample.Row()
	rows := make([][]string, 0, len(model.Columns))
	for i, col := range model.Columns {
		rows = append(rows, []string{col, values[i]})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Data from [keraies.eett.gr](https://keraies.eett.gr/), collected with antennascan*")
}

// pagesLabel formats a page count.
func pagesLabel(n int) string {
	if n == 1 {
		return "1 page"
	}
	return strconv.Itoa(n) + " pages"
}
