package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/keraies/antennascan/internal/model"
)

// ErrUnexpectedHeader is returned when a file's header row is not Columns.
var ErrUnexpectedHeader = errors.New("unexpected header row")

// ReadCSV parses a CSV file written by Export.
func ReadCSV(path string) ([]model.AntennaRecord, error) {
	f, err := os.Open(path) //nolint:gosec // reading a user-chosen export file is intended
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(model.Columns)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseRows(rows)
}

// ReadXLSX parses the spreadsheet written by Export.
func ReadXLSX(path string) ([]model.AntennaRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// GetRows trims trailing empty cells.
	for i, row := range rows {
		for len(row) < len(model.Columns) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]model.AntennaRecord, error) {
	if len(rows) == 0 || !slices.Equal(rows[0], model.Columns) {
		return nil, ErrUnexpectedHeader
	}

	records := make([]model.AntennaRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		seq, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid sequence %q: %w", i+2, row[0], err)
		}
		records = append(records, model.AntennaRecord{
			Sequence:     seq,
			PositionCode: row[1],
			Category:     row[2],
			Company:      row[3],
			Address:      row[4],
			Municipality: row[5],
		})
	}
	return records, nil
}
