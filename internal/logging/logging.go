// Package logging builds the slog logger used by clusterboard. The TUI owns
// the terminal, so records go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options configures New.
type Options struct {
	// Path is the log file. Empty discards all records.
	Path  string
	Level slog.Level
	JSON  bool
}

// ParseLevel maps debug/info/warn/error onto slog levels.
func ParseLevel(value string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(value) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level: %w", err)
	}
	return lvl, nil
}

// New opens (or creates) the log file in append mode and returns a logger
// writing to it along with the closer for the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(handler(file, opts)), file, nil
}

// NewWriter returns a logger writing to w, for commands that log to stderr.
func NewWriter(w io.Writer, opts Options) *slog.Logger {
	return slog.New(handler(w, opts))
}

func handler(w io.Writer, opts Options) slog.Handler {
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}
