// Package logger builds the zerolog loggers shared by the api, relay and
// bridgectl binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger on stdout tagged with the emitting binary. With
// pretty set it writes coloured console lines instead. Unknown levels fall
// back to info.
func New(level string, pretty bool, service string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return base(w, level).Caller().Str("service", service).Logger()
}

// NewWithWriter is New without caller and service fields, writing to w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return base(w, level).Logger()
}

// ForReader returns a child logger carrying the terminal and reader ids.
func ForReader(log zerolog.Logger, terminalID, readerID string) zerolog.Logger {
	return log.With().Str("terminal_id", terminalID).Str("reader_id", readerID).Logger()
}

func base(w io.Writer, level string) zerolog.Context {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
