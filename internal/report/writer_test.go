package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/keraies/antennascan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.RunReport {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sample := model.AntennaRecord{
		Sequence:     1,
		PositionCode: "1000001",
		Category:     "Σταθμός Βάσης",
		Company:      "COSMOTE",
		Address:      "Οδός Αγίου Γεωργίου 1",
		Municipality: "Χαλκιδέων",
	}
	return &model.RunReport{
		Municipality: "Χαλκιδέων",
		SearchCode:   "9001",
		StartedAt:    start,
		FinishedAt:   start.Add(3 * time.Second),
		Summary:      model.RunSummary{PagesFetched: 2, RecordsFound: 27, RowsSkipped: 1},
		Status:       model.RunStatusDone,
		CSVPath:      "out/antennas_Χαλκιδέων.csv",
		XLSXPath:     "out/antennas_Χαλκιδέων.xlsx",
		Sample:       &sample,
		Companies: []model.CompanyCount{
			{Company: "COSMOTE", Records: 12},
			{Company: "VODAFONE", Records: 9},
			{Company: "NOVA", Records: 6},
		},
	}
}

// TestSimpleWriter tests the terminal summary.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary, companies and sample", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"SCRAPING SUMMARY",
			"Χαλκιδέων",
			"Total antennas",
			"27",
			"Rows skipped",
			"antennas_Χαλκιδέων.csv",
			"antennas_Χαλκιδέων.xlsx",
			"ANTENNAS PER COMPANY",
			"VODAFONE",
			"SAMPLE (FIRST ANTENNA)",
			"position_code",
			"1000001",
			"Complete",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("limits the company table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithMaxCompanies(1)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if strings.Contains(output, "VODAFONE") {
			t.Error("expected VODAFONE to be cut")
		}
		if !strings.Contains(strings.ToLower(output), "+2 more") {
			t.Error("expected a footer counting hidden companies")
		}
	})

	t.Run("failed run shows the error", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Status = model.RunStatusFailed
		report.Error = "page 2: unexpected HTTP status 502"

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "FAILED (partial results): page 2") {
			t.Errorf("expected failure status, got:\n%s", buf.String())
		}
	})

	t.Run("empty run suggests listing", func(t *testing.T) {
		t.Parallel()

		report := &model.RunReport{Municipality: "Χαλκιδέων", Status: model.RunStatusDone}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No antenna records found") || !strings.Contains(output, "--list") {
			t.Errorf("expected troubleshooting hint, got:\n%s", output)
		}
		if strings.Contains(output, "SAMPLE") {
			t.Error("expected no sample section")
		}
	})
}

// TestMarkdownWriter tests Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Antenna Report: Χαλκιδέων",
			"2 pages",
			"## Antennas per Company",
			"```mermaid",
			"pie",
			"## Sample Record",
			"1 malformed row(s) were skipped",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("failed run uses a caution alert", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Status = model.RunStatusFailed
		report.Error = "network error"

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Errorf("expected caution alert, got:\n%s", buf.String())
		}
	})

	t.Run("empty run has no company section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := &model.RunReport{Municipality: "Χαλκιδέων", Status: model.RunStatusDone, StartedAt: time.Now()}
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Antennas per Company") {
			t.Error("expected no company section")
		}
		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected a warning alert")
		}
	})
}

// TestRepeatedPageIsReported tests that a dropped repeated page shows up in
// every run summary format.
func TestRepeatedPageIsReported(t *testing.T) {
	t.Parallel()

	newReport := func() *model.RunReport {
		report := createTestReport()
		report.Summary = model.RunSummary{PagesFetched: 3, RecordsFound: 27, PagesRepeated: 1}
		return report
	}

	t.Run("simple", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Pages repeated") || !strings.Contains(buf.String(), "records dropped") {
			t.Errorf("expected a repeated page row, got:\n%s", buf.String())
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Pages repeated", "[!IMPORTANT]", "Page 3 repeated the previous page"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected markdown to contain %q, got:\n%s", want, buf.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"pages_repeated":1`) && !strings.Contains(buf.String(), `"pages_repeated": 1`) {
			t.Errorf("expected pages_repeated in JSON, got:\n%s", buf.String())
		}
	})

	t.Run("clean run omits the counter", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Pages repeated") {
			t.Error("expected no repeated page row")
		}
	})
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of compact JSON")
		}

		var decoded struct {
			Version         string  `json:"version"`
			DurationSeconds float64 `json:"duration_seconds"`
			Municipality    string  `json:"municipality"`
			Status          string  `json:"status"`
			Summary         struct {
				RecordsFound int `json:"records_found"`
			} `json:"summary"`
			Sample struct {
				PositionCode string `json:"position_code"`
			} `json:"sample"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Municipality != "Χαλκιδέων" || decoded.Status != "done" {
			t.Errorf("unexpected document %+v", decoded)
		}
		if decoded.Summary.RecordsFound != 27 || decoded.Sample.PositionCode != "1000001" {
			t.Errorf("unexpected nested values %+v", decoded)
		}
		if decoded.DurationSeconds != 3 {
			t.Errorf("expected 3 seconds, got %v", decoded.DurationSeconds)
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"municipality\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(*model.RunReport) (int, error) {
	return 0, errors.New("disk full")
}

// TestMultiWriter tests fan-out and error handling.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := m.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewJSONWriter(&after))
		if _, err := m.Write(createTestReport()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

// TestMunicipalityTable tests the listing table.
func TestMunicipalityTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	entries := []model.MunicipalityEntry{
		{Name: "Αθηναίων", Code: "9002"},
		{Name: "Χαλκιδέων", Code: "9001"},
	}
	if _, err := MunicipalityTable(&buf, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"available municipalities", "αθηναίων", "9002", "χαλκιδέων", "total"} {
		if !strings.Contains(strings.ToLower(output), want) {
			t.Errorf("expected table to contain %q", want)
		}
	}
	if strings.Index(output, "Αθηναίων") > strings.Index(output, "Χαλκιδέων") {
		t.Error("expected entries in the given order")
	}

	t.Run("names only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := MunicipalityTable(&buf, []model.MunicipalityEntry{{Name: "Αθηναίων"}, {Name: "Χαλκιδέων"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := strings.ToLower(buf.String())
		if strings.Contains(output, "code") {
			t.Errorf("expected no code column, got:\n%s", buf.String())
		}
		if !strings.Contains(output, "χαλκιδέων") || !strings.Contains(output, "total") {
			t.Errorf("expected names and a total, got:\n%s", buf.String())
		}
	})
}

// TestTitlesOnOneLine tests that section titles are not wrapped when the
// table body is narrower than the title.
func TestTitlesOnOneLine(t *testing.T) {
	t.Parallel()

	hasLine := func(output, line string) bool {
		for _, l := range strings.Split(output, "\n") {
			if strings.TrimSpace(l) == line {
				return true
			}
		}
		return false
	}

	t.Run("municipality listing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := MunicipalityTable(&buf, []model.MunicipalityEntry{{Name: "Ύδρας", Code: "1"}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !hasLine(buf.String(), "AVAILABLE MUNICIPALITIES") {
			t.Errorf("expected the title on its own line, got:\n%s", buf.String())
		}
	})

	t.Run("summary sections", func(t *testing.T) {
		t.Parallel()

		sample := model.AntennaRecord{Sequence: 1, PositionCode: "1", Company: "A"}
		report := &model.RunReport{
			Municipality: "Ύδρας",
			SearchCode:   "1",
			Summary:      model.RunSummary{PagesFetched: 1, RecordsFound: 1},
			Status:       model.RunStatusDone,
			Sample:       &sample,
			Companies:    []model.CompanyCount{{Company: "A", Records: 1}},
		}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, title := range []string{"SCRAPING SUMMARY", "ANTENNAS PER COMPANY", "SAMPLE (FIRST ANTENNA)"} {
			if !hasLine(buf.String(), title) {
				t.Errorf("expected %q on its own line, got:\n%s", title, buf.String())
			}
		}
	})
}

// TestHistoryTable tests the run history table.
func TestHistoryTable(t *testing.T) {
	t.Parallel()

	report := createTestReport()
	report.ID = 42

	var buf bytes.Buffer
	if _, err := HistoryTable(&buf, []*model.RunReport{report}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"42", "Χαλκιδέων", "done", "27"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected history to contain %q", want)
		}
	}
}
