// Package logtrace provides logging and tracing utilities for the application.
// It integrates with zerolog for structured logging and carries a request ID
// through context so every outgoing call of one invocation can be correlated.
package logtrace

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is used when no level is configured. A CLI should stay quiet
// unless asked otherwise.
const DefaultLevel = zerolog.WarnLevel

// InitLogger initializes the global logger writing to stderr with Unix timestamps.
func InitLogger() {
	InitLoggerWithWriter(os.Stderr, false)
}

// InitLoggerWithWriter initializes the global logger on w. When pretty is set
// output goes through zerolog's console writer.
func InitLoggerWithWriter(w io.Writer, pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(DefaultLevel)
}

// SetLevel parses level and applies it to the global logger. An empty level
// keeps the current one.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	log.Logger = log.Logger.Level(l)
	return nil
}
