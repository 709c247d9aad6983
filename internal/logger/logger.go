// Package logger builds the zerolog logger shared by the server and the
// activity consumer.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to stdout.  In dev the output is the
// human-readable console format, elsewhere one JSON object per line.  An
// unknown level falls back to info.
func New(level, env string) *zerolog.Logger {
	var w io.Writer = os.Stdout
	if env == "" || env == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &l
}
