package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/keraies/antennascan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testRun(municipality string, started time.Time) *model.RunReport {
	return &model.RunReport{
		Municipality: municipality,
		SearchCode:   "9001",
		StartedAt:    started,
		FinishedAt:   started.Add(4 * time.Second),
		Summary:      model.RunSummary{PagesFetched: 2, RecordsFound: 27, RowsSkipped: 1},
		Status:       model.RunStatusDone,
		CSVPath:      "antennas_" + municipality + ".csv",
		XLSXPath:     "antennas_" + municipality + ".xlsx",
		Sample: &model.AntennaRecord{
			Sequence:     1,
			PositionCode: "1000001",
			Company:      "COSMOTE",
			Municipality: municipality,
		},
		Companies: []model.CompanyCount{{Company: "COSMOTE", Records: 27}},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false requires an existing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveRun(context.Background(), testRun("Χαλκιδέων", time.Now())); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		_ = db.Close()

		reopened, err := Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer reopened.Close()

		runs, err := reopened.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

// TestSaveAndGetRun tests that a run survives a round trip.
func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := testRun("Χαλκιδέων", time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC))
	id, err := db.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if id == 0 || run.ID != id {
		t.Fatalf("expected id to be set, got %d / %d", id, run.ID)
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

// TestSaveRepeatedPageRun tests that the repeated page counter is stored,
// including in a runs table created before the column existed.
func TestSaveRepeatedPageRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	legacy, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("failed to open legacy database: %v", err)
	}
	_, err = legacy.ExecContext(context.Background(), `CREATE TABLE runs (
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
		csv_path TEXT,
		xlsx_path TEXT,
		sample_json TEXT,
		companies_json TEXT
	)`)
	if err != nil {
		t.Fatalf("failed to create legacy table: %v", err)
	}
	_ = legacy.Close()

	db, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	run := testRun("Χαλκιδέων", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	run.Summary = model.RunSummary{PagesFetched: 3, RecordsFound: 40, PagesRepeated: 1}

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if diff := cmp.Diff(run.Summary, got.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// TestSaveFailedRun tests a run without exports or sample.
func TestSaveFailedRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	run := &model.RunReport{
		Municipality: "Αθηναίων",
		SearchCode:   "9002",
		StartedAt:    start,
		FinishedAt:   start.Add(time.Second),
		Status:       model.RunStatusFailed,
		Error:        "page 1: network error",
	}
	id, err := db.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Sample != nil || got.Companies != nil {
		t.Errorf("expected no sample or companies, got %+v", got)
	}
	if got.Status != model.RunStatusFailed || got.Error != run.Error {
		t.Errorf("unexpected status %q / %q", got.Status, got.Error)
	}
}

// TestGetRunNotFound tests the missing-id error.
func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := db.GetRun(context.Background(), 999); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

// TestListRuns tests ordering, limits and filtering.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	names := []string{"Χαλκιδέων", "Αθηναίων", "Χαλκιδέων"}
	for i, name := range names {
		if _, err := db.SaveRun(ctx, testRun(name, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	t.Run("most recent first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		for i := 1; i < len(runs); i++ {
			if runs[i].StartedAt.After(runs[i-1].StartedAt) {
				t.Errorf("runs not in descending order at %d", i)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("per municipality", func(t *testing.T) {
		runs, err := db.ListRunsFor(ctx, "Χαλκιδέων")
		if err != nil {
			t.Fatalf("ListRunsFor() error = %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
		for _, r := range runs {
			if r.Municipality != "Χαλκιδέων" {
				t.Errorf("unexpected municipality %q", r.Municipality)
			}
		}
	})
}

func TestTimeFormatSorts(t *testing.T) {
	t.Parallel()

	whole := formatTime(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	fraction := formatTime(time.Date(2025, 3, 1, 10, 0, 0, 500, time.UTC))
	if whole >= fraction {
		t.Errorf("expected %q < %q", whole, fraction)
	}
}
