// Package compiler selects the menu compiler for a platform.
package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-ports/contextmenu/internal/config"
	"github.com/go-ports/contextmenu/internal/hive"
	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/menufile"
	"github.com/go-ports/contextmenu/internal/platform"
	"github.com/go-ports/contextmenu/internal/plugin"
	"github.com/go-ports/contextmenu/internal/registry"
	"github.com/go-ports/contextmenu/internal/synth"
	"github.com/go-ports/contextmenu/internal/winreg"
)

// Compiler materializes menu trees for one platform.
type Compiler interface {
	// Compile writes m, replacing an earlier compile of the same name.
	Compile(m *menu.Menu) error
	// CompileFast writes a single command without an enclosing menu.
	CompileFast(f *menu.FastCommand) error
	// Preview renders what Compile would write, without writing it.
	Preview(m *menu.Menu) (string, error)
	// PreviewFast renders what CompileFast would write.
	PreviewFast(f *menu.FastCommand) (string, error)
	// Remove deletes the top-level entry name registered for a.
	Remove(name string, a menu.ActivationType) error
	// List returns the top-level entries registered for a.
	List(a menu.ActivationType) ([]string, error)
	Close() error
}

var (
	_ Compiler = (*registry.Compiler)(nil)
	_ Compiler = (*plugin.Compiler)(nil)
)

// IsNotFound reports whether err means the entry to remove does not exist
// on either platform.
func IsNotFound(err error) bool {
	return errors.Is(err, registry.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}

// New returns the compiler for p configured from cfg. On Windows the
// native registry is used unless cfg.Registry.File names a SQLite hive;
// on Linux nautilus-python modules are written to cfg.Plugin.Dir.
func New(p platform.Platform, cfg *config.Config, logger *slog.Logger) (Compiler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	interpreter, source := config.ResolveInterpreter(cfg.Interpreter)
	logger.Debug("python interpreter resolved", "path", interpreter, "source", source)

	switch p {
	case platform.Windows:
		s := synth.New(interpreter, nil, synth.WindowsTarget)
		store, err := openStore(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("compiler.New: %w", err)
		}
		return registry.NewCompiler(store, registry.DefaultLayout(), s, logger), nil
	case platform.Linux:
		s := synth.New(interpreter, nil, synth.LinuxTarget)
		dir := cfg.Plugin.Dir
		if dir == "" {
			dir = plugin.DefaultDir()
		}
		return plugin.NewCompiler(dir, s, plugin.DefaultHooks(), logger), nil
	}
	return nil, fmt.Errorf("compiler.New: %w: %q", platform.ErrUnsupported, p)
}

// openStore prefers the configured hive file over the native registry.
func openStore(cfg *config.Config, logger *slog.Logger) (registry.Store, error) {
	if cfg.Registry.File != "" {
		logger.Debug("using registry hive file", "path", cfg.Registry.File)
		h, err := hive.Open(cfg.Registry.File)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	s, err := winreg.Open()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CompileAll compiles every menu and then every fast command of doc, in
// document order, and returns the names written. It stops at the first
// failure; entries written before it stay in place.
func CompileAll(c Compiler, doc *menufile.Document) ([]string, error) {
	done := []string{}
	for _, m := range doc.Menus {
		if err := c.Compile(m); err != nil {
			return done, err
		}
		done = append(done, m.Name)
	}
	for _, f := range doc.Fast {
		if err := c.CompileFast(f); err != nil {
			return done, err
		}
		done = append(done, f.Command.Name)
	}
	return done, nil
}

// PreviewAll renders every entry of doc, each under a "# <name>" heading.
func PreviewAll(c Compiler, doc *menufile.Document) (string, error) {
	var sb strings.Builder
	emit := func(name, body string) {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "# %s\n%s", name, body)
	}
	for _, m := range doc.Menus {
		out, err := c.Preview(m)
		if err != nil {
			return "", fmt.Errorf("preview %q: %w", m.Name, err)
		}
		emit(m.Name, out)
	}
	for _, f := range doc.Fast {
		out, err := c.PreviewFast(f)
		if err != nil {
			return "", fmt.Errorf("preview %q: %w", f.Command.Name, err)
		}
		emit(f.Command.Name, out)
	}
	return sb.String(), nil
}
