package export

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned when there is nothing to export.
var ErrNoRecords = errors.New("no records to export")

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportError reports a failed export.
type ExportError struct {
	// Format is FormatCSV or FormatXLSX, empty when no file was attempted.
	Format string

	// Path is the file being written.
	Path string

	Err error
}

func (e *ExportError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export failed: %v", e.Err)
	}
	return fmt.Sprintf("export %s to %s failed: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
