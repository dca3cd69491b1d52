// Package shared holds the context passed to all CLI commands.
package shared

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-ports/contextmenu/internal/compiler"
	"github.com/go-ports/contextmenu/internal/config"
	"github.com/go-ports/contextmenu/internal/logging"
	"github.com/go-ports/contextmenu/internal/platform"
)

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// Platform overrides config and host detection when set.
	Platform string
	// ConfigPath overrides $CONTEXTMENU_CONFIG and the default location.
	ConfigPath string
	// LogLevel and LogFormat override the config file's log section.
	LogLevel  string
	LogFormat string
}

// Config resolves the configuration with the root flags applied on top.
// The returned path is the config file that was consulted.
func (c *Context) Config() (*config.Config, string, error) {
	cfg, path, err := config.Resolve(c.ConfigPath)
	if err != nil {
		return nil, path, err
	}
	if c.Platform != "" {
		cfg.Platform = c.Platform
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.Log.Format = c.LogFormat
	}
	if err := logging.Validate(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Logger builds the logger for cfg writing to w.
func (*Context) Logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, w)
}

// Compiler opens the compiler for the resolved platform. Logs go to w.
// The caller must Close it.
func (c *Context) Compiler(w io.Writer) (compiler.Compiler, error) {
	cfg, _, err := c.Config()
	if err != nil {
		return nil, err
	}
	p, err := platform.Detect(cfg.Platform)
	if err != nil {
		return nil, err
	}
	logger := c.Logger(cfg, w)
	logger.Debug("compiler selected", "platform", p)

	comp, err := compiler.New(p, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s compiler: %w", p, err)
	}
	return comp, nil
}
