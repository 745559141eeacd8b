// Package main provides the entry point for the antennascan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for antennascan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "antennascan",
		Short: "Export the antenna installations of a Greek municipality",
		Long: `antennascan retrieves the antenna installation records published by the
Hellenic Telecommunications and Post Commission (keraies.eett.gr) for one
municipality and exports them to CSV and XLSX.

Requests are strictly sequential with a pause of at least one second between
them. Every run is summarised on stdout and recorded in a local history.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &InvalidArgumentsError{Err: err}
	})

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewMunicipalitiesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
