// Package export writes antenna records to CSV and XLSX files.
//
// Both files carry the same header row and the same rows in sequence
// order. CSV is UTF-8 without a byte order mark; the spreadsheet holds a
// single "Antennas" sheet with a bold header row and text cells, so codes
// with leading zeros survive.
//
// A run with no records exports nothing: Export returns an error wrapping
// ErrNoRecords rather than writing files with only a header.
package export
