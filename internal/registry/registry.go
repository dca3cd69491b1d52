// Package registry compiles menu trees into a hierarchical key-value store
// laid out like the Windows shell registry.
//
// Menu and command names become key names, so they may not contain a
// backslash (menu.ErrInvalidName).
//
// Writes happen one key at a time in traversal order with no transaction:
// a failure part way through leaves the keys written so far in place.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/synth"
)

// ErrKeyNotFound is returned by stores for missing keys.
var ErrKeyNotFound = errors.New("registry key not found")

// Value names written by the compiler. DefaultValue is the key's unnamed value.
const (
	DefaultValue     = ""
	MUIVerbValue     = "MUIVerb"
	SubcommandsValue = "subcommands"
	ShellKey         = "shell"
	CommandKey       = "command"
)

// Store is the set of single-key primitives the compiler needs. Paths are
// backslash-separated and relative to the store's hive.
type Store interface {
	// CreateKey creates path and any missing ancestors. Existing keys are kept.
	CreateKey(path string) error
	// SetValue sets a string value on an existing key.
	SetValue(path, name, value string) error
	// Value reads a string value; ok is false when the value is absent.
	Value(path, name string) (value string, ok bool, err error)
	// SubKeys lists the direct children of path.
	SubKeys(path string) ([]string, error)
	// DeleteKey removes a key that has no subkeys.
	DeleteKey(path string) error
	Close() error
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

// Layout maps activation types to the registry paths whose shell keys the
// desktop reads when it builds a context menu.
type Layout struct {
	Roots       map[menu.ActivationType]string
	ClassesRoot string // parent of per-extension keys
}

// DefaultLayout returns the HKEY_CURRENT_USER layout.
func DefaultLayout() Layout {
	return Layout{
		Roots: map[menu.ActivationType]string{
			menu.Files:               `Software\Classes\*\shell`,
			menu.Directory:           `Software\Classes\Directory\shell`,
			menu.DirectoryBackground: `Software\Classes\Directory\Background\shell`,
			menu.DesktopBackground:   `Software\Classes\DesktopBackground\shell`,
			menu.Drive:               `Software\Classes\Drive\shell`,
		},
		ClassesRoot: `Software\Classes`,
	}
}

// RootPath resolves the shell key for an activation type. Extension scopes
// live under ClassesRoot\<ext>\shell.
func (l Layout) RootPath(a menu.ActivationType) (string, error) {
	if a.IsExtension() {
		return JoinKeys(l.ClassesRoot, strings.ToLower(string(a)), ShellKey), nil
	}
	p, ok := l.Roots[menu.ActivationType(strings.ToUpper(string(a)))]
	if !ok {
		return "", fmt.Errorf("registry: %w: %q", menu.ErrUnknownActivation, a)
	}
	return p, nil
}

// JoinKeys joins registry path parts with backslashes on every host.
func JoinKeys(keys ...string) string {
	return strings.Join(keys, `\`)
}

// ---------------------------------------------------------------------------
// Compiler
// ---------------------------------------------------------------------------

// Compiler writes menu trees into a Store.
type Compiler struct {
	store  Store
	layout Layout
	synth  *synth.Synthesizer
	log    *slog.Logger
}

// NewCompiler returns a Compiler. A nil logger falls back to slog.Default.
func NewCompiler(store Store, layout Layout, s *synth.Synthesizer, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{store: store, layout: layout, synth: s, log: logger}
}

// Close closes the underlying store.
func (c *Compiler) Close() error { return c.store.Close() }

// Compile validates m and writes it under its activation's root path. An
// existing key tree with the same name is removed first so the result
// matches m exactly.
func (c *Compiler) Compile(m *menu.Menu) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("registry.Compile: %w", err)
	}
	root, err := c.layout.RootPath(m.Activation)
	if err != nil {
		return fmt.Errorf("registry.Compile: %w", err)
	}
	if err := c.clear(JoinKeys(root, m.Name)); err != nil {
		return fmt.Errorf("registry.Compile: %w", err)
	}
	shell, err := c.createMenu(m.Name, root)
	if err != nil {
		return fmt.Errorf("registry.Compile: %w", err)
	}
	if err := c.compileItems(m.Items, shell, m.Activation); err != nil {
		return fmt.Errorf("registry.Compile %q: %w", m.Name, err)
	}
	c.log.Info("registry menu compiled", "name", m.Name, "path", JoinKeys(root, m.Name))
	return nil
}

// CompileFast writes a single command directly under its activation's
// root path.
func (c *Compiler) CompileFast(f *menu.FastCommand) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("registry.CompileFast: %w", err)
	}
	root, err := c.layout.RootPath(f.Activation)
	if err != nil {
		return fmt.Errorf("registry.CompileFast: %w", err)
	}
	command, err := c.synth.Resolve(f.Command, f.Activation)
	if err != nil {
		return fmt.Errorf("registry.CompileFast: %w", err)
	}
	if err := c.clear(JoinKeys(root, f.Command.Name)); err != nil {
		return fmt.Errorf("registry.CompileFast: %w", err)
	}
	if err := c.createCommand(f.Command.Name, root, command); err != nil {
		return fmt.Errorf("registry.CompileFast: %w", err)
	}
	return nil
}

// compileItems writes items under the shell key at path. root is the
// activation of the top-level menu and decides how callbacks get context.
func (c *Compiler) compileItems(items []menu.Item, path string, root menu.ActivationType) error {
	for _, it := range items {
		switch item := it.(type) {
		case *menu.Menu:
			shell, err := c.createMenu(item.Name, path)
			if err != nil {
				return err
			}
			if err := c.compileItems(item.Items, shell, root); err != nil {
				return err
			}
		case *menu.Command:
			command, err := c.synth.Resolve(item, root)
			if err != nil {
				return err
			}
			if err := c.createCommand(item.Name, path, command); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported menu item %T", it)
		}
	}
	return nil
}

// createMenu writes a cascading menu key and returns the path of its
// nested shell key.
func (c *Compiler) createMenu(name, path string) (string, error) {
	key := JoinKeys(path, name)
	if err := c.store.CreateKey(key); err != nil {
		return "", err
	}
	if err := c.store.SetValue(key, MUIVerbValue, name); err != nil {
		return "", err
	}
	if err := c.store.SetValue(key, SubcommandsValue, ""); err != nil {
		return "", err
	}
	shell := JoinKeys(key, ShellKey)
	if err := c.store.CreateKey(shell); err != nil {
		return "", err
	}
	c.log.Debug("created menu key", "path", key)
	return shell, nil
}

// createCommand writes a leaf key named name whose command subkey holds
// the command line.
func (c *Compiler) createCommand(name, path, command string) error {
	key := JoinKeys(path, name)
	if err := c.store.CreateKey(key); err != nil {
		return err
	}
	if err := c.store.SetValue(key, DefaultValue, name); err != nil {
		return err
	}
	commandKey := JoinKeys(key, CommandKey)
	if err := c.store.CreateKey(commandKey); err != nil {
		return err
	}
	if err := c.store.SetValue(commandKey, DefaultValue, command); err != nil {
		return err
	}
	c.log.Debug("created command key", "path", key)
	return nil
}

// clear removes path if it exists.
func (c *Compiler) clear(path string) error {
	err := DeleteTree(c.store, path)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// Removal and listing
// ---------------------------------------------------------------------------

// Remove deletes the top-level entry name registered for activation a.
func (c *Compiler) Remove(name string, a menu.ActivationType) error {
	root, err := c.layout.RootPath(a)
	if err != nil {
		return fmt.Errorf("registry.Remove: %w", err)
	}
	if err := DeleteTree(c.store, JoinKeys(root, name)); err != nil {
		return fmt.Errorf("registry.Remove %q: %w", name, err)
	}
	c.log.Info("registry menu removed", "name", name, "path", JoinKeys(root, name))
	return nil
}

// List returns the top-level entries registered for activation a. A root
// path that does not exist yet yields an empty list.
func (c *Compiler) List(a menu.ActivationType) ([]string, error) {
	root, err := c.layout.RootPath(a)
	if err != nil {
		return nil, fmt.Errorf("registry.List: %w", err)
	}
	keys, err := c.store.SubKeys(root)
	if errors.Is(err, ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry.List: %w", err)
	}
	return keys, nil
}

// DeleteTree removes path and everything below it, children before their
// parent.
func DeleteTree(store Store, path string) error {
	children, err := store.SubKeys(path)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := DeleteTree(store, JoinKeys(path, child)); err != nil {
			return err
		}
	}
	return store.DeleteKey(path)
}
