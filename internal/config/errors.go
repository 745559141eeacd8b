package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoMunicipality is returned when neither a municipality nor list mode
	// was requested.
	ErrNoMunicipality = errors.New("no municipality specified: provide a municipality name or use --list")

	// ErrInvalidBaseURL is returned when the site URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the delay between requests is
	// below MinRequestDelay.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be at least 1s")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive (0 means no limit)")

	// ErrInvalidPageSize is returned when the page capacity is negative.
	ErrInvalidPageSize = errors.New("invalid page size: must be non-negative")

	// ErrInvalidDebugPages is returned when the number of dumped pages is negative.
	ErrInvalidDebugPages = errors.New("invalid debug pages: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
