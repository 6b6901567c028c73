// Package logging builds the slog loggers used across logmap. Library
// packages only log at debug level; the CLI chooses the level from
// --verbose and --quiet.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures New.
type Config struct {
	Level  slog.Level
	Format Format
	Writer io.Writer // defaults to os.Stderr
}

// New returns a logger writing to cfg.Writer.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Noop returns a logger that discards everything.
func Noop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNoop returns l, or a discarding logger when l is nil.
func OrNoop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Noop()
	}
	return l
}

// LevelFromFlags maps the CLI verbosity flags to a level. quiet wins.
func LevelFromFlags(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// ParseFormat accepts "text" or "json", case-insensitively; anything else
// is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
