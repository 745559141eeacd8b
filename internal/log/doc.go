// Package log builds the slog logger used by antennascan.
//
// The registry keeps a PHP session cookie between the search form and the
// result pages. SecureHandler masks cookie and session values so that
// verbose logs and bug reports can be shared as-is.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
