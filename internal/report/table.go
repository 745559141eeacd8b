package report

import (
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/keraies/antennascan/internal/model"
)

// MunicipalityTable writes the municipality listing.
func MunicipalityTable(w io.Writer, entries []model.MunicipalityEntry) (int, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	// A names-only table has no code column.
	withCodes := slices.ContainsFunc(entries, func(e model.MunicipalityEntry) bool { return e.Code != "" })
	if withCodes {
		t.AppendHeader(table.Row{"#", "Municipality", "Code"})
	} else {
		t.AppendHeader(table.Row{"#", "Municipality"})
	}
	for i, e := range entries {
		if withCodes {
			t.AppendRow(table.Row{i + 1, e.Name, e.Code})
		} else {
			t.AppendRow(table.Row{i + 1, e.Name})
		}
	}
	if withCodes {
		t.AppendFooter(table.Row{"", "Total", strconv.Itoa(len(entries))})
	} else {
		t.AppendFooter(table.Row{"Total", strconv.Itoa(len(entries))})
	}

	return io.WriteString(w, renderTitled("AVAILABLE MUNICIPALITIES", t)+"\n")
}

// renderTitled puts title on its own line above the table. A go-pretty
// title wraps at the table width, which is often narrower than the title.
func renderTitled(title string, t table.Writer) string {
	return title + "\n" + t.Render()
}

// HistoryTable writes saved runs, most recent first as given.
func HistoryTable(w io.Writer, runs []*model.RunReport) (int, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Started", "Municipality", "Status", "Pages", "Antennas", "Skipped", "CSV"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Municipality,
			string(r.Status),
			r.Summary.PagesFetched,
			r.Summary.RecordsFound,
			r.Summary.RowsSkipped,
			r.CSVPath,
		})
	}

	return io.WriteString(w, t.Render()+"\n")
}
