// Package plugin compiles menu trees into nautilus-python extension
// modules: one generated Python file per root menu.
package plugin

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/synth"
)

// DefaultDir returns ~/.local/share/nautilus-python/extensions.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "nautilus-python", "extensions")
}

// Compiler writes generated modules into an extensions directory.
type Compiler struct {
	dir   string
	synth *synth.Synthesizer
	hooks HookSet
	log   *slog.Logger
}

// NewCompiler returns a Compiler writing into dir. A nil logger falls back
// to slog.Default.
func NewCompiler(dir string, s *synth.Synthesizer, hooks HookSet, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{dir: dir, synth: s, hooks: hooks, log: logger}
}

// Dir returns the extensions directory.
func (c *Compiler) Dir() string { return c.dir }

// Path returns the module path for a menu called name.
func (c *Compiler) Path(name string) string {
	return filepath.Join(c.dir, SanitizeName(name)+".py")
}

// Generate returns the module source for m without writing it.
func (c *Compiler) Generate(m *menu.Menu) ([]byte, error) {
	return Generate(m, c.synth, c.hooks)
}

// Preview returns the module source for m as text.
func (c *Compiler) Preview(m *menu.Menu) (string, error) {
	src, err := c.Generate(m)
	if err != nil {
		return "", err
	}
	return string(src), nil
}

// PreviewFast returns the module CompileFast would write for f.
func (c *Compiler) PreviewFast(f *menu.FastCommand) (string, error) {
	if err := f.Validate(); err != nil {
		return "", fmt.Errorf("plugin.PreviewFast: %w", err)
	}
	return c.Preview(f.AsMenu())
}

// Compile writes the module for m, replacing any previous one. The
// extensions directory is created as needed.
func (c *Compiler) Compile(m *menu.Menu) error {
	if SanitizeName(m.Name) == "" {
		return fmt.Errorf("plugin.Compile: menu name %q has no usable characters", m.Name)
	}
	src, err := c.Generate(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("plugin.Compile: %w", err)
	}
	path := c.Path(m.Name)
	if err := os.WriteFile(path, src, 0o644); err != nil { // #nosec G306 -- extension modules must be readable by the file manager
		return fmt.Errorf("plugin.Compile: %w", err)
	}
	c.log.Info("plugin module written", "name", m.Name, "path", path)
	return nil
}

// CompileFast writes f as a one-item menu named after the command.
func (c *Compiler) CompileFast(f *menu.FastCommand) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("plugin.CompileFast: %w", err)
	}
	return c.Compile(f.AsMenu())
}

// Remove deletes the module generated for name. name may be the display
// name or the module stem List reports. The activation type is not needed
// on this platform.
func (c *Compiler) Remove(name string, _ menu.ActivationType) error {
	path, err := c.locate(name)
	if err != nil {
		return fmt.Errorf("plugin.Remove %q: %w", name, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("plugin.Remove %q: %w", name, err)
	}
	c.log.Info("plugin module removed", "name", name, "path", path)
	return nil
}

// locate finds the generated module for name. Files without the header
// marker are never returned.
func (c *Compiler) locate(name string) (string, error) {
	candidates := []string{c.Path(name)}
	if !strings.ContainsAny(name, " \t/\\") {
		candidates = append(candidates, filepath.Join(c.dir, name+".py"))
	}
	for _, p := range candidates {
		if _, ok := readHeader(p); ok {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}

// List returns the stems of generated modules whose activation type is a.
// An empty a lists every generated module. Files without the header
// marker are never reported.
func (c *Compiler) List(a menu.ActivationType) ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plugin.List: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".py" {
			continue
		}
		got, ok := readHeader(filepath.Join(c.dir, e.Name()))
		if !ok {
			continue
		}
		if a != "" && !strings.EqualFold(string(got), string(a)) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".py"))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (*Compiler) Close() error { return nil }

// readHeader reports whether path is a generated module and, if so, the
// activation type recorded in it.
func readHeader(path string) (menu.ActivationType, bool) {
	f, err := os.Open(path) // #nosec G304 -- path comes from listing the extensions directory
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() || !strings.HasPrefix(sc.Text(), HeaderMarker) {
		return "", false
	}
	if !sc.Scan() {
		return "", true
	}
	return menu.ActivationType(strings.TrimPrefix(sc.Text(), activationPrefix)), true
}
