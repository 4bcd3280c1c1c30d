// Package logging provides logging configuration with file rotation.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds log file rotation settings.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns the rotation used for the CLI log.
// Every invocation appends a few lines, so files rotate rarely and old
// ones are kept uncompressed for a month to stay greppable.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// NewRotatingWriter creates a log writer with rotation support.
func NewRotatingWriter(cfg Config) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// ParseLevel converts a config level name to a slog level.
// It accepts the names config.Validate accepts, in any case.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// NewLogger creates a structured logger that writes to the given writer.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// OpenFile returns a logger appending to the rotating log at path.
// Close the returned closer when the command finishes.
func OpenFile(path string, level slog.Level) (*slog.Logger, io.Closer) {
	w := NewRotatingWriter(DefaultConfig(path))
	return NewLogger(w, level), w
}
