package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level represents logging severity, wrapping [slog.Level] behind a string
// type so it can be used directly as a CLI flag value.
type Level string

const (
	// LevelError only logs errors.
	LevelError Level = "error"
	// LevelWarn logs warnings and errors.
	LevelWarn Level = "warn"
	// LevelInfo logs informational messages, warnings, and errors.
	LevelInfo Level = "info"
	// LevelDebug logs everything, including debug messages.
	LevelDebug Level = "debug"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs logs in human-readable text.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// Handler is an alias for [slog.Handler], kept so callers of this package
// never need to import log/slog just to spell the return type of
// [Config.NewHandler].
type Handler = slog.Handler

// ParseLevel parses a log level string and returns the corresponding [Level].
// Matching is case-insensitive; "warning" is accepted as an alias for "warn".
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", ErrUnknownLogLevel
}

// ParseFormat parses a log format string and returns the corresponding
// [Format]. Matching is case-insensitive.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatLogfmt):
		return FormatLogfmt, nil
	case string(FormatText):
		return FormatText, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings returns every accepted level string, in ascending
// severity-verbosity order, for use in help text and shell completions.
func GetAllLevelStrings() []string {
	return []string{string(LevelDebug), string(LevelInfo), string(LevelWarn), string(LevelError)}
}

// GetAllFormatStrings returns every accepted format string, for use in help
// text and shell completions.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText)}
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	}

	return slog.LevelInfo
}

// NewHandler creates a [Handler] that writes to w, using the given level and
// format.
func NewHandler(w io.Writer, lvl Level, format Format) Handler {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     lvl.slog(),
	}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt, FormatText:
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// NewHandlerFromStrings parses levelStr and formatStr and creates a [Handler]
// that writes to w.
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (Handler, error) {
	lvl, err := ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, format), nil
}
