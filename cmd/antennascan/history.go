package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keraies/antennascan/internal/config"
	"github.com/keraies/antennascan/internal/database"
	"github.com/keraies/antennascan/internal/directory"
	"github.com/keraies/antennascan/internal/model"
	"github.com/keraies/antennascan/internal/report"
)

// defaultHistoryLimit is the number of runs shown by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [municipality]",
		Short: "Show previous scan runs",
		Long: `History lists the runs recorded by 'antennascan scan', most recent first.

Only run summaries are stored: municipality, page and record counts, status
and the paths of the exported files. The records themselves live in the
exported CSV and XLSX files.

Examples:
  # Show the last 20 runs
  antennascan history

  # Show every run for one municipality
  antennascan history Χαλκιδέων

  # Show a single run as JSON
  antennascan history --id 7 --json`,
		Args: cobra.ArbitraryArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to show (0 means all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show a single run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output runs in JSON format")

	return cmd
}

// historyQuery selects which runs the history command prints.
type historyQuery struct {
	municipality string
	limit        int
	id           int64
	json         bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var (
		q   historyQuery
		err error
	)
	if q.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}
	if q.limit < 0 {
		return &InvalidArgumentsError{Err: fmt.Errorf("--limit must not be negative, got %d", q.limit)}
	}
	if q.id, err = cmd.Flags().GetInt64("id"); err != nil {
		return err
	}
	if q.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if len(args) > 0 {
		q.municipality = canonicalName(joinArgs(args))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return showHistory(ctx, config.XDGDataDir(), q, cmd.OutOrStdout())
}

// canonicalName maps a loosely typed name to its display name when the
// built-in table knows it, so "χαλκιδεων" finds runs saved as "Χαλκιδέων".
func canonicalName(name string) string {
	dir, err := directory.Default()
	if err != nil {
		return name
	}
	entry, err := dir.Resolve(name)
	if err != nil {
		return name
	}
	return entry.Name
}

// showHistory prints the runs matching q from the database in dbDir.
func showHistory(ctx context.Context, dbDir string, q historyQuery, out io.Writer) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var runs []*model.RunReport
	switch {
	case q.id > 0:
		run, err := db.GetRun(ctx, q.id)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", q.id, err)
		}
		runs = []*model.RunReport{run}
	case q.municipality != "":
		runs, err = db.ListRunsFor(ctx, q.municipality)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if q.limit > 0 && len(runs) > q.limit {
			runs = runs[:q.limit]
		}
	default:
		runs, err = db.ListRuns(ctx, q.limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
	}

	if q.json {
		w := report.NewJSONWriter(out, report.WithPrettyPrint())
		if q.id > 0 {
			_, err = w.Write(runs[0])
		} else {
			_, err = w.WriteValue(runs)
		}
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet. Use 'antennascan scan <municipality>' to start one.")
		return nil
	}

	_, err = report.HistoryTable(out, runs)
	return err
}
