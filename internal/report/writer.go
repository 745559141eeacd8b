package report

import (
	"io"

	"github.com/keraies/antennascan/internal/model"
)

// Writer outputs a run report.
type Writer interface {
	// Write renders the report to the configured destination and returns
	// the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes a report to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer and stops at the first error.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is used for timestamps in text and Markdown output.
const timeLayout = "2006-01-02 15:04:05 MST"
