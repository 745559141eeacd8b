package model

import (
	"sort"
	"time"
)

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	// RunStatusDone means pagination stopped normally.
	RunStatusDone RunStatus = "done"

	// RunStatusFailed means a page fetch or structure error ended the run.
	// Records collected before the failure are still reported.
	RunStatusFailed RunStatus = "failed"
)

// RunReport describes one query run for report writers and run history.
type RunReport struct {
	// ID is the history row id, zero when the run was not saved.
	ID int64 `json:"id,omitempty"`

	// Municipality is the resolved display name.
	Municipality string `json:"municipality"`

	// SearchCode is the site's code for the municipality.
	SearchCode string `json:"search_code"`

	// StartedAt and FinishedAt bound the crawl.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Summary holds the page and record counters.
	Summary RunSummary `json:"summary"`

	// Status is done or failed.
	Status RunStatus `json:"status"`

	// Error is the failure message for failed runs.
	Error string `json:"error,omitempty"`

	// CSVPath and XLSXPath are the exported files, empty when nothing was written.
	CSVPath  string `json:"csv_path,omitempty"`
	XLSXPath string `json:"xlsx_path,omitempty"`

	// Sample is the first exported record, if any.
	Sample *AntennaRecord `json:"sample,omitempty"`

	// Companies counts records per operator, largest first.
	Companies []CompanyCount `json:"companies,omitempty"`
}

// CompanyCount is the number of records listed for one operator.
type CompanyCount struct {
	Company string `json:"company"`
	Records int    `json:"records"`
}

// CountCompanies tallies records per company, ordered by count descending
// and then by name. Records without a company are counted under "".
func CountCompanies(records []AntennaRecord) []CompanyCount {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Company]++
	}

	out := make([]CompanyCount, 0, len(counts))
	for company, n := range counts {
		out = append(out, CompanyCount{Company: company, Records: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Records != out[j].Records {
			return out[i].Records > out[j].Records
		}
		return out[i].Company < out[j].Company
	})
	return out
}

// Duration returns how long the crawl took.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Exported reports whether output files were written.
func (r *RunReport) Exported() bool {
	return r.CSVPath != "" && r.XLSXPath != ""
}
