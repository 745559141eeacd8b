package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "antennascan"

	// DefaultBaseURL is the regulator's antenna registry.
	DefaultBaseURL = "https://keraies.eett.gr/"

	// DefaultSearchPath is the search form page. It carries the hidden form
	// fields and the municipality options.
	DefaultSearchPath = "anazhthsh.php"

	// DefaultDataPath is the endpoint that returns one page of results.
	DefaultDataPath = "getData.php"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// MinRequestDelay is the smallest pause allowed between two requests,
	// measured from the end of one request to the start of the next.
	MinRequestDelay = 1 * time.Second

	// DefaultRequestDelay is the pause between requests.
	DefaultRequestDelay = MinRequestDelay

	// DefaultPageSize is the number of rows the site lists per result page.
	// A page with fewer rows is treated as the last one.
	DefaultPageSize = 20

	// DefaultDebugPages is the number of leading result pages whose raw
	// markup is written to the debug directory on every run.
	DefaultDebugPages = 2

	// DefaultOutputDir is where the CSV and XLSX files are written.
	DefaultOutputDir = "."

	// DefaultUserAgent is a desktop browser User-Agent; the site serves
	// a reduced page to unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage asks for the Greek rendition of the site.
	DefaultAcceptLanguage = "el-GR,el;q=0.9,en;q=0.8"
)

// Config holds all configuration options for a run.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed down explicitly.
type Config struct {
	// Municipality is the display name to search for.
	Municipality string

	// ListMode prints the municipality directory instead of crawling.
	ListMode bool

	// MaxPages caps the number of result pages fetched. 0 means no cap.
	MaxPages int

	// BaseURL is the root of the site, e.g. https://keraies.eett.gr/.
	BaseURL string

	// SearchPath and DataPath are resolved against BaseURL.
	SearchPath string
	DataPath   string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RequestDelay is the pause between the end of one request and the
	// start of the next, applied regardless of the previous outcome.
	RequestDelay time.Duration

	// UserAgent and AcceptLanguage are sent with every request.
	UserAgent      string
	AcceptLanguage string

	// Headers are extra request headers from the config file.
	Headers map[string]string

	// PageSize is the declared row capacity of a result page.
	// 0 disables the short-page check.
	PageSize int

	// OutputDir is where the export files are written.
	OutputDir string

	// DebugDir receives the raw markup of the first DebugPages pages.
	// Empty means OutputDir.
	DebugDir string

	// DebugPages is how many leading pages are dumped. 0 disables dumping.
	DebugPages int

	// DirectoryFile is an optional YAML municipality table with search
	// codes. When set, the live search form is not read.
	DirectoryFile string

	// Offline resolves names against DirectoryFile, or the embedded
	// names-only table, instead of the live search form.
	Offline bool

	// ConfigFilePath is the explicit config file path from --config.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the run summary format.
	// Plain text is used when neither is set.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the run summary to a file instead of stdout.
	ReportFile string

	// SaveHistory records the run summary in the history database at DBDir.
	SaveHistory bool
	DBDir       string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		SearchPath:     DefaultSearchPath,
		DataPath:       DefaultDataPath,
		Timeout:        DefaultTimeout,
		RequestDelay:   DefaultRequestDelay,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
		PageSize:       DefaultPageSize,
		OutputDir:      DefaultOutputDir,
		DebugPages:     DefaultDebugPages,
		SaveHistory:    true,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for antennascan.
// On Linux: ~/.local/share/antennascan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for antennascan.
// On Linux: ~/.config/antennascan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EffectiveDebugDir returns DebugDir, falling back to OutputDir.
func (c *Config) EffectiveDebugDir() string {
	if c.DebugDir != "" {
		return c.DebugDir
	}
	return c.OutputDir
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Municipality == "" && !c.ListMode {
		return ErrNoMunicipality
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RequestDelay < MinRequestDelay {
		return ErrInvalidRequestDelay
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.PageSize < 0 {
		return ErrInvalidPageSize
	}

	if c.DebugPages < 0 {
		return ErrInvalidDebugPages
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
