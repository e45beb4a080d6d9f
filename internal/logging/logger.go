// Package logging builds the structured logger used by the scanner and the
// CLI, optionally writing to a timestamped file.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"unalias/internal/config"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
	Path   string // log file path, empty when logging to stderr
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// ParseLevel maps a config level name to a log level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLoggerWithWriter creates a new logger writing to w
func NewLoggerWithWriter(w io.Writer, cfg *config.Config) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           ParseLevel(cfg.LogLevel),
	})

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(cfg.LogPrefix),
		closer: closer,
	}
}

// NewLogger creates a logger from cfg. With LogToFile set it logs to
// unalias-<timestamp>-debug.log in the working directory, falling back to
// stderr when the file cannot be created.
func NewLogger(cfg *config.Config) *LoggerCloser {
	if cfg.LogToFile {
		logFile := fmt.Sprintf("unalias-%s-debug.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			lc := NewLoggerWithWriter(f, cfg)
			lc.Path = logFile
			return lc
		}
	}
	return NewLoggerWithWriter(os.Stderr, cfg)
}
