// Package logging configures the zerolog logger used across chatllm.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel converts a string level into zerolog.Level with a safe default
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	case "info":
		fallthrough
	default:
		return zerolog.InfoLevel
	}
}

// Options selects where log lines go and at which level
type Options struct {
	Level string
	File  string
	// Fallback receives logs when File is empty. Nil discards them.
	Fallback io.Writer
}

// New builds a logger. An empty level disables logging entirely, because the
// chat TUI owns the terminal. The returned closer releases the log file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(opts.Level) == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)

	switch {
	case opts.File != "":
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	case opts.Fallback != nil:
		w = zerolog.ConsoleWriter{Out: opts.Fallback, TimeFormat: time.Kitchen, NoColor: true}
	default:
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(w).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("app", "chatllm").
		Logger()

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
