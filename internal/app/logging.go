package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogStderr as a log file sends logs to standard error. Only useful in
// non-interactive modes, since the UI owns the terminal.
const LogStderr = "-"

// NewLogger builds the root logger. An empty path discards all output.
// The returned closer releases the log file.
func NewLogger(level, path string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q", level)
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch path {
	case "":
		return zerolog.Nop(), closer, nil
	case LogStderr:
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}

	logger := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("app", "toolview").
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
