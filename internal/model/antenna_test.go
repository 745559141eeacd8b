package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestAntennaRecordRow tests that Row follows the Columns order.
func TestAntennaRecordRow(t *testing.T) {
	t.Parallel()

	r := AntennaRecord{
		Sequence:     7,
		PositionCode: "2213501",
		Category:     "Κατηγορία 1",
		Company:      "COSMOTE",
		Address:      "Αβάντων 12",
		Municipality: "Χαλκιδέων",
	}

	want := []string{"7", "2213501", "Κατηγορία 1", "COSMOTE", "Αβάντων 12", "Χαλκιδέων"}
	if diff := cmp.Diff(want, r.Row()); diff != "" {
		t.Errorf("Row() mismatch (-want +got):\n%s", diff)
	}

	if len(r.Row()) != len(Columns) {
		t.Errorf("expected %d values, got %d", len(Columns), len(r.Row()))
	}
}

// TestRunReport tests the RunReport helpers.
func TestRunReport(t *testing.T) {
	t.Parallel()

	t.Run("duration between start and finish", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		r := &RunReport{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}
		if r.Duration() != 90*time.Second {
			t.Errorf("expected 90s, got %v", r.Duration())
		}
	})

	t.Run("zero duration when unfinished", func(t *testing.T) {
		t.Parallel()

		r := &RunReport{StartedAt: time.Now()}
		if r.Duration() != 0 {
			t.Errorf("expected 0, got %v", r.Duration())
		}
	})

	t.Run("exported requires both paths", func(t *testing.T) {
		t.Parallel()

		r := &RunReport{CSVPath: "a.csv"}
		if r.Exported() {
			t.Error("expected Exported to be false with only a CSV path")
		}
		r.XLSXPath = "a.xlsx"
		if !r.Exported() {
			t.Error("expected Exported to be true")
		}
	})
}

// TestCountCompanies tests the per-operator tally.
func TestCountCompanies(t *testing.T) {
	t.Parallel()

	records := []AntennaRecord{
		{Company: "VODAFONE"},
		{Company: "COSMOTE"},
		{Company: "NOVA"},
		{Company: "COSMOTE"},
		{Company: "VODAFONE"},
		{Company: "COSMOTE"},
	}

	want := []CompanyCount{
		{Company: "COSMOTE", Records: 3},
		{Company: "VODAFONE", Records: 2},
		{Company: "NOVA", Records: 1},
	}
	if diff := cmp.Diff(want, CountCompanies(records)); diff != "" {
		t.Errorf("CountCompanies() mismatch (-want +got):\n%s", diff)
	}

	if CountCompanies(nil) != nil {
		t.Error("expected nil for no records")
	}
}
