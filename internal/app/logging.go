package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/humanlog"
)

// NewLogger returns a human-readable slog logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})
	return slog.New(handler)
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
