// Package logger builds the application's zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns a logger configured for the given environment.
//
//	dev (and anything unrecognised): human-readable console output, DEBUG level
//	staging:                         JSON output, DEBUG level
//	prod:                            JSON output, INFO level
//
// A non-empty level overrides the per-environment default.
func Setup(env, level string) zerolog.Logger {
	return setup(os.Stdout, env, level)
}

func setup(out io.Writer, env, level string) zerolog.Logger {
	defaultLevel := zerolog.DebugLevel
	if env == "prod" {
		defaultLevel = zerolog.InfoLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = defaultLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var output io.Writer = out
	if env != "prod" && env != "staging" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", "students-api").
		Logger()
}
