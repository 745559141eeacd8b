package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/keraies/antennascan/internal/model"
)

// SheetName is the name of the spreadsheet's only sheet.
const SheetName = "Antennas"

// Paths are the files written by one export.
type Paths struct {
	CSV  string
	XLSX string
}

// Exporter writes export files into a directory.
type Exporter struct {
	// Dir is the output directory. It is created when missing.
	Dir string
}

// NewExporter creates an Exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// Export writes {Dir}/{baseName}.csv and {Dir}/{baseName}.xlsx.
// Either both files exist afterwards or neither does.
func (e *Exporter) Export(records []model.AntennaRecord, baseName string) (Paths, error) {
	if len(records) == 0 {
		return Paths{}, &ExportError{Err: ErrNoRecords}
	}

	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return Paths{}, &ExportError{Format: FormatCSV, Path: dir, Err: err}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.AntennaRecord) int {
		return a.Sequence - b.Sequence
	})

	paths := Paths{
		CSV:  filepath.Join(dir, baseName+"."+FormatCSV),
		XLSX: filepath.Join(dir, baseName+"."+FormatXLSX),
	}

	if err := writeCSV(paths.CSV, sorted); err != nil {
		_ = os.Remove(paths.CSV)
		return Paths{}, &ExportError{Format: FormatCSV, Path: paths.CSV, Err: err}
	}

	if err := writeXLSX(paths.XLSX, sorted); err != nil {
		_ = os.Remove(paths.XLSX)
		_ = os.Remove(paths.CSV)
		return Paths{}, &ExportError{Format: FormatXLSX, Path: paths.XLSX, Err: err}
	}

	return paths, nil
}

func writeCSV(path string, records []model.AntennaRecord) error {
	f, err := os.Create(path) //nolint:gosec // path is built from the output dir and a sanitized name
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(model.Columns); err != nil {
		_ = f.Close()
		return err
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func writeXLSX(path string, records []model.AntennaRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Sequence,
			r.PositionCode,
			r.Category,
			r.Company,
			r.Address,
			r.Municipality,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	return f.SaveAs(path)
}

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// FileBaseName returns the export base name for a municipality,
// e.g. "antennas_Χαλκιδέων". Letters of any alphabet and digits are kept;
// runs of spaces and hyphens become a single underscore.
func FileBaseName(municipality string) string {
	safe := unsafeChars.ReplaceAllString(municipality, "")
	safe = strings.TrimSpace(safe)
	safe = separators.ReplaceAllString(safe, "_")
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("antennas_%s", safe)
}
