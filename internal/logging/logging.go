// Package logging builds the daemon's slog logger, optionally teeing into a
// size-rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Defaults for the file sink.
const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

// Options configures New.
type Options struct {
	Level string
	// File, when set, receives a copy of every record.
	File      string
	MaxSizeMB int
	MaxFiles  int
	// Stderr is the console sink. Defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel converts a config string to a slog level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger and a closer for the file sink. The closer is
// never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var out io.Writer = opts.Stderr
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rw, err := NewRotatingWriter(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(out, rw)
		closer = rw
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
