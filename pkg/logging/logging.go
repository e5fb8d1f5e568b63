package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped zerolog logger writing to w at info level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// NewWithLevel is New with a level parsed by ParseLevel.
func NewWithLevel(w io.Writer, level string) zerolog.Logger {
	return New(w).Level(ParseLevel(level))
}

// ParseLevel maps a case-insensitive level name to a zerolog level.
// Unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
