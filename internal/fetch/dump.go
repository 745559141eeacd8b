package fetch

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemDump writes diagnostic artifacts into a directory.
// Write failures are logged and never returned; the artifacts are not read
// back by the program.
type FilesystemDump struct {
	directory string
	logger    *slog.Logger
}

// NewFilesystemDump creates a FilesystemDump writing to dir.
// The directory is created on first write.
func NewFilesystemDump(dir string, logger *slog.Logger) *FilesystemDump {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesystemDump{directory: dir, logger: logger}
}

// Dir returns the target directory.
func (d *FilesystemDump) Dir() string {
	return d.directory
}

// Write stores contents under name and returns the written path, or an
// empty string when writing failed.
func (d *FilesystemDump) Write(name string, contents []byte) string {
	if err := os.MkdirAll(d.directory, 0750); err != nil {
		d.logger.Warn("failed to create debug directory", "dir", d.directory, "err", err)
		return ""
	}

	path := filepath.Join(d.directory, name)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		d.logger.Warn("failed to write debug file", "path", path, "err", err)
		return ""
	}

	d.logger.Debug("saved debug file", "path", path, "bytes", len(contents))
	return path
}
