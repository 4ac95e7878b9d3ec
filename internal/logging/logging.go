package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger writing to stderr.
func New(level string, pretty bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, pretty)
}

// NewWithWriter builds a logger on the given writer. Unknown levels fall back to info.
func NewWithWriter(writer io.Writer, level string, pretty bool) zerolog.Logger {
	if pretty {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.Kitchen,
		}
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}

	return zerolog.New(writer).
		Level(parsed).
		With().
		Timestamp().
		Str("app", "beep").
		Logger()
}
