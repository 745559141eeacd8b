package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/keraies/antennascan/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "antennascan.db"

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores run summaries.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		municipality TEXT NOT NULL,
		search_code TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		records_found INTEGER NOT NULL DEFAULT 0,
		rows_skipped INTEGER NOT NULL DEFAULT 0,
		pages_repeated INTEGER NOT NULL DEFAULT 0,
		csv_path TEXT,
		xlsx_path TEXT,
		sample_json TEXT,
		companies_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_municipality ON runs(municipality);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	if _, err := h.db.ExecContext(context.Background(), schema); err != nil {
		return err
	}
	return h.addMissingColumns()
}

// addMissingColumns upgrades a runs table created by an older release.
func (h *HistoryDB) addMissingColumns() error {
	rows, err := h.db.QueryContext(context.Background(), `SELECT name FROM pragma_table_info('runs')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !columns["pages_repeated"] {
		_, err := h.db.ExecContext(context.Background(),
			`ALTER TABLE runs ADD COLUMN pages_repeated INTEGER NOT NULL DEFAULT 0`)
		return err
	}
	return nil
}

// SaveRun stores a run summary and returns its id. The id is also set on
// the report.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	sampleJSON, err := marshalNullable(report.Sample)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize sample: %w", err)
	}
	var companiesJSON sql.NullString
	if len(report.Companies) > 0 {
		companiesJSON, err = marshalNullable(report.Companies)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize companies: %w", err)
		}
	}

	query := `
	INSERT INTO runs (
		municipality, search_code, started_at, finished_at, status, error,
		pages_fetched, records_found, rows_skipped, pages_repeated, csv_path, xlsx_path,
		sample_json, companies_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		report.Municipality,
		report.SearchCode,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		string(report.Status),
		report.Error,
		report.Summary.PagesFetched,
		report.Summary.RecordsFound,
		report.Summary.RowsSkipped,
		report.Summary.PagesRepeated,
		report.CSVPath,
		report.XLSXPath,
		sampleJSON,
		companiesJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	report.ID = id
	return id, nil
}

const selectRuns = `
	SELECT id, municipality, search_code, started_at, finished_at, status, error,
		pages_fetched, records_found, rows_skipped, pages_repeated, csv_path, xlsx_path,
		sample_json, companies_json
	FROM runs
`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.RunReport, error) {
	query := selectRuns + ` ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunReport
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// ListRunsFor returns the runs of one municipality, most recent first.
func (h *HistoryDB) ListRunsFor(ctx context.Context, municipality string) ([]*model.RunReport, error) {
	rows, err := h.db.QueryContext(ctx, selectRuns+` WHERE municipality = ? ORDER BY started_at DESC, id DESC`, municipality)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunReport
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run by id.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	row := h.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return r, err
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.RunReport, error) {
	var (
		r                       model.RunReport
		started, finished       string
		status                  string
		errText, csvPath, xlsx  sql.NullString
		sampleJSON, companyJSON sql.NullString
	)

	err := s.Scan(
		&r.ID, &r.Municipality, &r.SearchCode, &started, &finished, &status, &errText,
		&r.Summary.PagesFetched, &r.Summary.RecordsFound, &r.Summary.RowsSkipped,
		&r.Summary.PagesRepeated, &csvPath, &xlsx, &sampleJSON, &companyJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	r.Status = model.RunStatus(status)
	r.Error = errText.String
	r.CSVPath = csvPath.String
	r.XLSXPath = xlsx.String

	if r.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}

	if sampleJSON.Valid {
		var sample model.AntennaRecord
		if err := json.Unmarshal([]byte(sampleJSON.String), &sample); err != nil {
			return nil, fmt.Errorf("failed to decode sample of run %d: %w", r.ID, err)
		}
		r.Sample = &sample
	}
	if companyJSON.Valid {
		if err := json.Unmarshal([]byte(companyJSON.String), &r.Companies); err != nil {
			return nil, fmt.Errorf("failed to decode companies of run %d: %w", r.ID, err)
		}
	}

	return &r, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case *model.AntennaRecord:
		if x == nil {
			return sql.NullString{}, nil
		}
	case nil:
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// timeFormat has a fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
