package config

import "time"

// SiteConfig holds the site section of the configuration file.
type SiteConfig struct {
	// BaseURL overrides DefaultBaseURL, e.g. for a mirror or a local fixture.
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout overrides the per-request timeout ("45s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Delay overrides the pause between requests ("2s").
	Delay time.Duration `yaml:"delay,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// PageSize overrides the declared rows per result page.
	PageSize int `yaml:"page_size,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// OutputConfig holds the output section of the configuration file.
type OutputConfig struct {
	// Dir is where CSV and XLSX files are written.
	Dir string `yaml:"dir,omitempty"`

	// DebugDir is where raw result pages are dumped.
	DebugDir string `yaml:"debug_dir,omitempty"`

	// DebugPages is how many leading pages are dumped.
	// A pointer so that an explicit 0 can disable dumping.
	DebugPages *int `yaml:"debug_pages,omitempty"`
}

// File represents the structure of the .antennascan configuration file.
type File struct {
	Site   SiteConfig   `yaml:"site,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`

	// Directory is a YAML municipality table with search codes. It replaces
	// the live search form as the source of codes.
	Directory string `yaml:"directory,omitempty"`

	// Offline skips the live search form. See Config.Offline.
	Offline bool `yaml:"offline,omitempty"`

	// History toggles the run history database. Nil keeps the default.
	History *bool `yaml:"history,omitempty"`
}

// Apply copies every value set in the file onto cfg.
// Zero values leave the existing setting untouched.
func (f *File) Apply(cfg *Config) {
	if f.Site.BaseURL != "" {
		cfg.BaseURL = f.Site.BaseURL
	}
	if f.Site.Timeout != 0 {
		cfg.Timeout = f.Site.Timeout
	}
	if f.Site.Delay != 0 {
		cfg.RequestDelay = f.Site.Delay
	}
	if f.Site.UserAgent != "" {
		cfg.UserAgent = f.Site.UserAgent
	}
	if f.Site.PageSize != 0 {
		cfg.PageSize = f.Site.PageSize
	}
	if len(f.Site.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(f.Site.Headers))
		}
		for k, v := range f.Site.Headers {
			cfg.Headers[k] = v
		}
	}

	if f.Output.Dir != "" {
		cfg.OutputDir = f.Output.Dir
	}
	if f.Output.DebugDir != "" {
		cfg.DebugDir = f.Output.DebugDir
	}
	if f.Output.DebugPages != nil {
		cfg.DebugPages = *f.Output.DebugPages
	}

	if f.Directory != "" {
		cfg.DirectoryFile = f.Directory
	}
	if f.Offline {
		cfg.Offline = true
	}
	if f.History != nil {
		cfg.SaveHistory = *f.History
	}
}
