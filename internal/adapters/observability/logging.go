package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger.
// APP_ENV=dev (or development) writes human-friendly console lines at debug
// level; every other environment writes JSON at info level.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "dev" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Str("app", "gezgi-admin").Logger()
	}
	return zerolog.New(out).Level(zerolog.InfoLevel).
		With().Timestamp().Str("app", "gezgi-admin").Logger()
}
