// Package logging builds the slog.Logger shared by the CLI and the
// compilers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Validate reports whether level and format are accepted by New.
func Validate(level, format string) error {
	if _, ok := levels[strings.ToLower(level)]; !ok {
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
	switch strings.ToLower(format) {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown log format %q (want text or json)", format)
}

// New creates a logger writing to w. Unknown levels fall back to info and
// any format other than "json" produces text. It does not set the global
// logger.
func New(level, format string, w io.Writer) *slog.Logger {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
