// Package logging builds the slog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Verbosity controls how much the tool writes to stderr.
type Verbosity int

const (
	VerbosityInfo Verbosity = iota
	VerbosityQuiet
	VerbosityDebug
)

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityDebug:
		return "debug"
	default:
		return "info"
	}
}

// ParseVerbosity parses quiet, info or debug. The empty string is info.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info", "normal":
		return VerbosityInfo, nil
	case "quiet":
		return VerbosityQuiet, nil
	case "debug", "diagnostic":
		return VerbosityDebug, nil
	default:
		return VerbosityInfo, fmt.Errorf("unknown verbosity %q (want quiet, info or debug)", s)
	}
}

// Level maps a verbosity to the lowest slog level that is emitted.
func (v Verbosity) Level() slog.Level {
	switch v {
	case VerbosityQuiet:
		return slog.LevelWarn
	case VerbosityDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given verbosity.
func New(w io.Writer, v Verbosity) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: v.Level()}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return Discard()
	}
	return log
}
