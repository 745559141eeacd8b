package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/keraies/antennascan/internal/model"
)

// SimpleWriter outputs a human-readable run summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// style is the go-pretty table style.
	style table.Style

	// maxCompanies limits the operator table; 0 shows all.
	maxCompanies int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithStyle sets the table style.
func WithStyle(style table.Style) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.style = style
	}
}

// WithMaxCompanies limits the number of operators listed.
func WithMaxCompanies(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxCompanies = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:   newBaseWriter(output),
		style:        table.StyleRounded,
		maxCompanies: 10,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the summary, the operator breakdown and the sample record.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(w.summaryTable(report))
	sb.WriteString("\n")

	if len(report.Companies) > 0 {
		sb.WriteString("\n")
		sb.WriteString(w.companyTable(report.Companies))
		sb.WriteString("\n")
	}

	if report.Sample != nil {
		sb.WriteString("\n")
		sb.WriteString(w.sampleTable(report.Sample))
		sb.WriteString("\n")
	}

	if !report.Exported() && report.Status == model.RunStatusDone {
		sb.WriteString("\nNo antenna records found for ")
		sb.WriteString(report.Municipality)
		sb.WriteString(".\nCheck the spelling or run with --list to see all municipalities.\n")
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(w.style)
	return t
}

func (w *SimpleWriter) summaryTable(report *model.RunReport) string {
	t := w.newTable()
	t.AppendRow(table.Row{"Municipality", report.Municipality})
	t.AppendRow(table.Row{"Search code", report.SearchCode})
	t.AppendRow(table.Row{"Status", statusText(report)})
	t.AppendRow(table.Row{"Pages fetched", report.Summary.PagesFetched})
	t.AppendRow(table.Row{"Total antennas", report.Summary.RecordsFound})
	if report.Summary.RowsSkipped > 0 {
		t.AppendRow(table.Row{"Rows skipped", report.Summary.RowsSkipped})
	}
	if report.Summary.PagesRepeated > 0 {
		t.AppendRow(table.Row{"Pages repeated", fmt.Sprintf("%d (records dropped, run stopped)", report.Summary.PagesRepeated)})
	}
	if d := report.Duration(); d > 0 {
		t.AppendRow(table.Row{"Duration", d.Round(100 * time.Millisecond).String()})
	}
	if report.Exported() {
		t.AppendSeparator()
		t.AppendRow(table.Row{"CSV", report.CSVPath})
		t.AppendRow(table.Row{"XLSX", report.XLSXPath})
	}
	return renderTitled("SCRAPING SUMMARY", t)
}

func (w *SimpleWriter) companyTable(companies []model.CompanyCount) string {
	t := w.newTable()
	t.AppendHeader(table.Row{"Company", "Antennas"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	shown := companies
	if w.maxCompanies > 0 && len(shown) > w.maxCompanies {
		shown = shown[:w.maxCompanies]
	}
	for _, c := range shown {
		name := c.Company
		if name == "" {
			name = "(none)"
		}
		t.AppendRow(table.Row{name, c.Records})
	}
	if rest := len(companies) - len(shown); rest > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("+%d more", rest), ""})
	}
	return renderTitled("ANTENNAS PER COMPANY", t)
}

func (w *SimpleWriter) sampleTable(r *model.AntennaRecord) string {
	t := w.newTable()
	values := r.Row()
	for i, col := range model.Columns {
		t.AppendRow(table.Row{col, values[i]})
	}
	return renderTitled("SAMPLE (FIRST ANTENNA)", t)
}

func statusText(report *model.RunReport) string {
	switch report.Status {
	case model.RunStatusFailed:
		if report.Error != "" {
			return "FAILED (partial results): " + report.Error
		}
		return "FAILED (partial results)"
	case model.RunStatusDone:
		return "Complete"
	default:
		return string(report.Status)
	}
}
