package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keraies/antennascan/internal/config"
	"github.com/keraies/antennascan/internal/directory"
	"github.com/keraies/antennascan/internal/log"
	"github.com/keraies/antennascan/internal/model"
	"github.com/keraies/antennascan/internal/report"
)

// NewMunicipalitiesCmd creates the municipalities command.
func NewMunicipalitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "municipalities",
		Short: "List the municipalities and their search codes",
		Long: `Municipalities prints the municipalities offered by the registry's search
form together with their search codes.

--save writes the table in the format accepted by --directory and the
config file, so later scans can run without reading the search form.
--offline prints the table given with --directory, or the built-in list of
names without codes.

Examples:
  # Show the live table
  antennascan municipalities

  # Save the live table for offline scans
  antennascan municipalities --save municipalities.yaml

  # Show the built-in names without contacting the registry
  antennascan municipalities --offline`,
		Args: noArgs,
		RunE: runMunicipalitiesCmd,
	}

	cmd.Flags().StringP("save", "s", "",
		"Write the table as YAML to the specified file")
	cmd.Flags().Bool("offline", false,
		"Do not read the live search form")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .antennascan in current or home directory)")
	cmd.Flags().String("directory", "",
		"YAML municipality table with search codes, used instead of the live search form")

	return cmd
}

// runMunicipalitiesCmd executes the municipalities command.
func runMunicipalitiesCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	configFlag, err := flags.GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return err
	}
	if flags.Changed("directory") {
		if cfg.DirectoryFile, err = flags.GetString("directory"); err != nil {
			return err
		}
	}
	if flags.Changed("offline") {
		if cfg.Offline, err = flags.GetBool("offline"); err != nil {
			return err
		}
	}

	savePath, err := flags.GetString("save")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return listMunicipalities(ctx, cfg, savePath, logger, cmd.OutOrStdout())
}

// listMunicipalities prints the table scan would resolve against and
// optionally saves it.
func listMunicipalities(ctx context.Context, cfg *config.Config, savePath string, logger *slog.Logger, out io.Writer) error {
	src, err := newSite(cfg, logger)
	if err != nil {
		return err
	}
	dir, err := openDirectory(ctx, cfg, src)
	if err != nil {
		return err
	}
	entries := dir.List()

	if savePath != "" {
		if !dir.HasCodes() {
			return &InvalidArgumentsError{Err: errors.New("the offline table has no search codes to save")}
		}
		if err := saveDirectory(savePath, entries); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d municipalities to %s\n", len(entries), savePath)
		return nil
	}

	_, err = report.MunicipalityTable(out, entries)
	return err
}

// saveDirectory writes entries as a YAML municipality table.
func saveDirectory(path string, entries []model.MunicipalityEntry) error {
	data, err := directory.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode municipality table: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write municipality table: %w", err)
	}
	return nil
}
