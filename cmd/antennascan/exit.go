package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keraies/antennascan/internal/directory"
	"github.com/keraies/antennascan/internal/export"
)

// Process exit codes.
const (
	// ExitOK means records were exported or the requested listing was printed.
	ExitOK = 0

	// ExitUnknownMunicipality means the name matched no entry or several.
	ExitUnknownMunicipality = 1

	// ExitFailure means no record was exported: the crawl failed, the
	// registry listed nothing, or another runtime error stopped the command.
	ExitFailure = 2

	// ExitInvalidArguments means the command line or configuration was rejected.
	ExitInvalidArguments = 3
)

// InvalidArgumentsError wraps a rejected flag, argument or configuration value.
type InvalidArgumentsError struct {
	Err error
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments: %v", e.Err)
}

func (e *InvalidArgumentsError) Unwrap() error {
	return e.Err
}

// errNothingToExport is returned when a run ends normally with zero records.
var errNothingToExport = fmt.Errorf("nothing to export: %w", export.ErrNoRecords)

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var argErr *InvalidArgumentsError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &argErr):
		return ExitInvalidArguments
	case errors.Is(err, directory.ErrUnknownMunicipality):
		return ExitUnknownMunicipality
	default:
		return ExitFailure
	}
}

// noArgs is cobra.NoArgs reporting an InvalidArgumentsError.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &InvalidArgumentsError{Err: err}
	}
	return nil
}
