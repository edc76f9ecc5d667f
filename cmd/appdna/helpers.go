package main

import (
	"io"
	"os"
	"path/filepath"

	"appdna/internal/config"
	"appdna/internal/logging"
)

// resolveRoot returns the project root the command operates on, from the
// --root flag or the working directory.
func resolveRoot() (string, error) {
	if rootFlag != "" {
		return filepath.Abs(rootFlag)
	}
	return os.Getwd()
}

// newLogger builds a logger from the loaded configuration. Output is
// optional and defaults to stdout.
func newLogger(cfg *config.Config, output io.Writer) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: output,
	})
}

// resolvePath anchors a config-relative path at the project root.
// Absolute paths pass through untouched.
func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
