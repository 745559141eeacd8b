package report

import (
	"encoding/json"
	"io"

	"github.com/keraies/antennascan/internal/model"
)

// JSONWriter outputs run reports as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent       bool
	indentPrefix string
	indentString string

	// version is recorded in the output when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the antennascan version, omitted when unknown.
	Version string `json:"version,omitempty"`

	// DurationSeconds is the crawl duration.
	DurationSeconds float64 `json:"duration_seconds"`

	*model.RunReport
}

// Write outputs the report in JSON format followed by a newline.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:         w.version,
		DurationSeconds: report.Duration().Seconds(),
		RunReport:       report,
	})
}

// WriteValue outputs any value with the writer's formatting.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
