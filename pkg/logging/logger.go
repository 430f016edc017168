package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process wide logger. It is usable before New is called.
var Log = newLogger(os.Stderr, "development", "info")

// New builds the logger for environment and level and installs it as Log.
func New(environment, level string) *zerolog.Logger {
	Log = newLogger(os.Stdout, environment, level)
	Log.Info().Str("environment", environment).Msg("zerolog initialised")
	return Log
}

func newLogger(w io.Writer, environment, level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if environment == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}
