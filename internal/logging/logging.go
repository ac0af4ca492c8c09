package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// New creates a structured console logger for the given level string.
// Unknown levels fall back to info.
func New(level string) *log.Logger {
	return &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		},
	}
}

// Discard returns a logger that drops all output, for use in tests.
func Discard() *log.Logger {
	return &log.Logger{
		Level:  log.ErrorLevel,
		Writer: log.IOWriter{Writer: io.Discard},
	}
}
