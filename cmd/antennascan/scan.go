package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keraies/antennascan/internal/config"
	"github.com/keraies/antennascan/internal/crawler"
	"github.com/keraies/antennascan/internal/database"
	"github.com/keraies/antennascan/internal/directory"
	"github.com/keraies/antennascan/internal/export"
	"github.com/keraies/antennascan/internal/extract"
	"github.com/keraies/antennascan/internal/fetch"
	"github.com/keraies/antennascan/internal/log"
	"github.com/keraies/antennascan/internal/model"
	"github.com/keraies/antennascan/internal/report"
	"github.com/keraies/antennascan/internal/site"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [municipality]",
		Short: "Download and export the antennas of a municipality",
		Long: `Scan looks up the municipality's search code, walks the registry's result
pages one at a time and writes every antenna record to
antennas_<municipality>.csv and antennas_<municipality>.xlsx.

Search codes are read from the registry's search form when the run starts.
--directory uses a table saved with 'antennascan municipalities --save'
instead, and --offline never contacts the search form.

The raw markup of the first result pages is kept as
debug_response_page_<n>.html for troubleshooting layout changes.

Exit codes:
  0  records exported (also when a later page failed)
  1  unknown or ambiguous municipality
  2  no record exported: network or page structure failure, or the
     registry lists no antennas for the municipality
  3  invalid arguments

Examples:
  # Export all antennas of Chalkida
  antennascan scan Χαλκιδέων

  # Accents and case do not matter
  antennascan scan χαλκιδεων

  # Stop after the first two result pages
  antennascan scan --max-pages 2 Χαλκιδέων

  # List the municipalities offered by the registry
  antennascan scan --list

  # Scan from a saved table of search codes
  antennascan scan --directory municipalities.yaml Χαλκιδέων

  # Write the files elsewhere and print a Markdown summary
  antennascan scan -o exports --markdown Χαλκιδέων

Configuration file (.antennascan) example:
  site:
    delay: 2s
    timeout: 45s
  output:
    dir: exports
    debug_pages: 1`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behaviour flags
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of result pages to fetch (0 means all)")
	cmd.Flags().BoolP("list", "l", false,
		"List the known municipalities instead of scanning")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Pause between requests (at least 1s)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory for the CSV and XLSX files")
	cmd.Flags().String("debug-dir", "",
		"Directory for the raw page dumps (default: the output directory)")
	cmd.Flags().Int("debug-pages", config.DefaultDebugPages,
		"Number of leading result pages to dump (0 disables dumping)")

	// Configuration flags
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .antennascan in current or home directory)")
	cmd.Flags().String("directory", "",
		"YAML municipality table with search codes, used instead of the live search form")
	cmd.Flags().Bool("offline", false,
		"Do not read the live search form (without --directory only --list works)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report", "",
		"Write the run summary to the specified file instead of stdout")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return &InvalidArgumentsError{Err: fmt.Errorf("configuration error: %w", err)}
	}

	// Set up structured logging
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Cancel the crawl on interrupt; records gathered so far are still exported.
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and cobra flags,
// in that order. Only flags the user actually set override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	flags := cmd.Flags()

	configFlag, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cfg.ListMode, err = flags.GetBool("list"); err != nil {
		return nil, err
	}
	if flags.Changed("delay") {
		if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("debug-dir") {
		if cfg.DebugDir, err = flags.GetString("debug-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("debug-pages") {
		if cfg.DebugPages, err = flags.GetInt("debug-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("directory") {
		if cfg.DirectoryFile, err = flags.GetString("directory"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("offline") {
		if cfg.Offline, err = flags.GetBool("offline"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Municipality = joinArgs(args)

	return cfg, nil
}

// loadConfig returns the defaults with the config file applied.
// If the user named a config file it must exist; otherwise a missing file
// simply leaves the defaults in place.
func loadConfig(configFlag string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = configFlag

	configPath := config.FindConfigFile(configFlag)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, &InvalidArgumentsError{Err: fmt.Errorf("failed to load config file %s: %w", configPath, err)}
		}
		file.Apply(cfg)
	} else if configFlag != "" {
		return nil, &InvalidArgumentsError{Err: fmt.Errorf("configuration file not found: %s", configFlag)}
	}

	return cfg, nil
}

// municipalitySource reads the live municipality options. *site.Site
// implements it.
type municipalitySource interface {
	Municipalities(ctx context.Context) ([]model.MunicipalityEntry, error)
}

// openDirectory builds the municipality table for one process. A directory
// file replaces the live search form, and offline mode without a file falls
// back to the embedded names-only table. Otherwise the table is read once
// from the options of the registry's search form.
func openDirectory(ctx context.Context, cfg *config.Config, src municipalitySource) (*directory.Directory, error) {
	if cfg.DirectoryFile != "" {
		dir, err := directory.LoadFile(cfg.DirectoryFile)
		if err != nil {
			return nil, &InvalidArgumentsError{Err: err}
		}
		return dir, nil
	}
	if cfg.Offline {
		return directory.Default()
	}

	entries, err := src.Municipalities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read municipalities from %s: %w", cfg.BaseURL, err)
	}

	// Rebuilding through the directory checks for duplicates and sorts by name.
	dir, err := directory.New(entries)
	if err != nil {
		return nil, fmt.Errorf("registry returned an unusable municipality list: %w", err)
	}
	return dir, nil
}

// newSite wires the HTTP client and the registry endpoints for cfg.
func newSite(cfg *config.Config, logger *slog.Logger) (*site.Site, error) {
	client, err := fetch.NewClient(cfg.BaseURL,
		fetch.WithDelay(cfg.RequestDelay),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithAcceptLanguage(cfg.AcceptLanguage),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return site.New(client,
		site.WithSearchPath(cfg.SearchPath),
		site.WithDataPath(cfg.DataPath),
		site.WithLogger(logger),
	), nil
}

// runScan resolves the municipality, crawls its result pages, exports the
// records and reports the run. cfg must already be validated.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	src, err := newSite(cfg, logger)
	if err != nil {
		return err
	}

	dir, err := openDirectory(ctx, cfg, src)
	if err != nil {
		return err
	}

	if cfg.ListMode {
		_, err := report.MunicipalityTable(out, dir.List())
		return err
	}

	entry, err := dir.Resolve(cfg.Municipality)
	if err != nil {
		return err
	}
	if entry.Code == "" {
		return &InvalidArgumentsError{Err: fmt.Errorf(
			"no search code for %s in the offline table: run online, or save the live table with "+
				"'antennascan municipalities --save FILE' and pass --directory FILE", entry.Name)}
	}

	logger.Info("starting scan",
		"municipality", entry.Name,
		"code", entry.Code,
		"maxPages", cfg.MaxPages,
		"delay", cfg.RequestDelay,
		"saveHistory", cfg.SaveHistory,
	)

	paginator := crawler.NewPaginator(src,
		extract.New(extract.WithCapacity(cfg.PageSize), extract.WithLogger(logger)),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDumper(fetch.NewFilesystemDump(cfg.EffectiveDebugDir(), logger), cfg.DebugPages),
		crawler.WithLogger(logger),
	)

	runReport := &model.RunReport{
		Municipality: entry.Name,
		SearchCode:   entry.Code,
		StartedAt:    time.Now(),
		Status:       model.RunStatusDone,
	}

	result, crawlErr := paginator.Run(ctx, entry.Code, entry.Name, 0)
	runReport.FinishedAt = time.Now()
	runReport.Summary = result.Summary
	if crawlErr != nil {
		runReport.Status = model.RunStatusFailed
		runReport.Error = crawlErr.Error()
		logger.Error("scan stopped", "municipality", entry.Name, "error", crawlErr)
	}

	var exportErr error
	if len(result.Records) > 0 {
		exportErr = exportRecords(cfg, runReport, result.Records)
		if exportErr != nil {
			runReport.Status = model.RunStatusFailed
			runReport.Error = exportErr.Error()
		}
	}

	if err := outputReport(cfg, runReport, out); err != nil {
		logger.Error("report failed", "municipality", entry.Name, "error", err)
	}

	// History is best effort and never changes the outcome of the run.
	if err := saveRun(ctx, cfg, runReport, logger); err != nil {
		logger.Warn("failed to save run history", "error", err)
	}

	switch {
	case exportErr != nil:
		return exportErr
	case len(result.Records) > 0:
		if crawlErr != nil {
			logger.Warn("exported partial results", "records", len(result.Records), "error", crawlErr)
		}
		return nil
	case crawlErr != nil:
		return fmt.Errorf("scan of %s failed: %w", entry.Name, crawlErr)
	default:
		return errNothingToExport
	}
}

// exportRecords writes the CSV and XLSX files and fills the report fields.
func exportRecords(cfg *config.Config, runReport *model.RunReport, records []model.AntennaRecord) error {
	paths, err := export.NewExporter(cfg.OutputDir).Export(records, export.FileBaseName(runReport.Municipality))
	if err != nil {
		return err
	}

	sample := records[0]
	runReport.CSVPath = paths.CSV
	runReport.XLSXPath = paths.XLSX
	runReport.Sample = &sample
	runReport.Companies = model.CountCompanies(records)
	return nil
}

// outputReport outputs the run report in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport, stdout io.Writer) error {
	// Determine output destination
	output := stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(runReport)
	return err
}

// saveRun records the run summary in the history database if enabled.
func saveRun(ctx context.Context, cfg *config.Config, runReport *model.RunReport, logger *slog.Logger) error {
	if !cfg.SaveHistory {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// The crawl context may already be cancelled; the summary is still worth keeping.
	id, err := db.SaveRun(context.WithoutCancel(ctx), runReport)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to history", "id", id, "db", db.Path())
	return nil
}

// joinArgs joins positional arguments into one name so that multi-word
// municipalities work with or without quotes.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
