// Package database keeps the run history in SQLite.
//
// Each finished run is stored as one row: municipality, timestamps,
// status, counters, exported file paths, the sample record and the
// per-company tally. Antenna records themselves are never stored; the
// exported files are the data of record.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database file
// lives in the XDG data directory unless another directory is given.
package database
