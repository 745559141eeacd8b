// Package report renders run reports and listings.
//
// Writers for a finished run:
//   - SimpleWriter: terminal summary rendered with go-pretty tables
//   - MarkdownWriter: Markdown document with an operator pie chart
//   - JSONWriter: structured JSON for scripting
//
// Writers implement the Writer interface and can be combined with
// MultiWriter, e.g. a terminal summary plus a Markdown file.
//
// MunicipalityTable and HistoryTable render the listings printed by the
// municipalities and history commands.
package report
