package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// level is shared by every logger built with New, so SetLevel takes effect
// on all of them at once.
var level = new(slog.LevelVar)

// Config selects the handler and level of a logger.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Format is json (default) or text.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer

	AddSource bool

	// MaxValueLen caps string and []byte attribute values.
	// Zero means DefaultMaxValueLen.
	MaxValueLen int
}

// New builds a *slog.Logger from cfg and sets the shared level to
// cfg.Level.
func New(cfg Config) (*slog.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	maxLen := cfg.MaxValueLen
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return sanitizeAttr(a, maxLen)
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		h = slog.NewJSONHandler(out, opts)
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level.Set(lvl)
	return slog.New(h), nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// SetLevel changes the level of every logger returned by New.
func SetLevel(s string) error {
	lvl, err := ParseLevel(s)
	if err != nil {
		return err
	}
	level.Set(lvl)
	return nil
}

// Level returns the current shared level in lower case.
func Level() string {
	return strings.ToLower(level.Level().String())
}
