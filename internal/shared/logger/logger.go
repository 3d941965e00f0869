package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes a new zerolog.Logger.
// 'devMode' enables human-readable console logging. An unknown level
// falls back to info.
func New(devMode bool, level string) zerolog.Logger {
	var logger zerolog.Logger

	if devMode {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
