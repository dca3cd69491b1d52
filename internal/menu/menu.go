// Package menu defines the abstract context-menu tree: menus, commands and
// the callback references that commands may point at.
package menu

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for tree construction and validation.
var (
	ErrTemplateAndCallback = errors.New("both a command template and a callback are defined")
	ErrNoAction            = errors.New("command has neither a template nor a callback")
	ErrNoActivation        = errors.New("activation type can't be empty for a top-level menu")
	ErrNestedActivation    = errors.New("only the top-level menu may specify an activation type")
	ErrUnknownActivation   = errors.New("unknown activation type")
	ErrUnknownVar          = errors.New("unknown command variable")
	ErrAlreadyAttached     = errors.New("item is already attached to a menu")
	ErrInvalidName         = errors.New("item name may not contain a backslash")
)

// ---------------------------------------------------------------------------
// Activation types
// ---------------------------------------------------------------------------

// ActivationType is the desktop event class that makes a menu appear.
// Besides the named values it may hold a dotted file extension (".txt"),
// which behaves like Files restricted to that extension.
type ActivationType string

const (
	Files               ActivationType = "FILES"
	Directory           ActivationType = "DIRECTORY"
	DirectoryBackground ActivationType = "DIRECTORY_BACKGROUND"
	DesktopBackground   ActivationType = "DESKTOP_BACKGROUND"
	Drive               ActivationType = "DRIVE"
)

// ActivationTypes lists the named activation types.
var ActivationTypes = []ActivationType{Files, Directory, DirectoryBackground, DesktopBackground, Drive}

// ParseActivation normalizes s into an ActivationType. Named types are
// matched case-insensitively; anything containing a dot is an extension
// scope and is lower-cased.
func ParseActivation(s string) (ActivationType, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		ext := strings.ToLower(s)
		if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `\/ `) {
			return "", fmt.Errorf("%w: %q", ErrUnknownActivation, s)
		}
		return ActivationType(ext), nil
	}
	up := ActivationType(strings.ToUpper(s))
	for _, a := range ActivationTypes {
		if a == up {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActivation, s)
}

// IsExtension reports whether a is a file-extension scope.
func (a ActivationType) IsExtension() bool {
	return strings.Contains(string(a), ".")
}

// IsBackground reports whether commands under a run against the current
// directory rather than a file selection.
func (a ActivationType) IsBackground() bool {
	return strings.EqualFold(string(a), string(DirectoryBackground)) ||
		strings.EqualFold(string(a), string(DesktopBackground))
}

// ---------------------------------------------------------------------------
// Command variables
// ---------------------------------------------------------------------------

// CommandVar names a value resolved when a generated command runs.
type CommandVar string

const (
	VarFileName  CommandVar = "FILENAME"
	VarDir       CommandVar = "DIR"
	VarDirectory CommandVar = "DIRECTORY"
	VarPythonLoc CommandVar = "PYTHONLOC"
)

// CommandVars lists every known command variable.
var CommandVars = []CommandVar{VarFileName, VarDir, VarDirectory, VarPythonLoc}

// ParseCommandVar matches s case-insensitively against CommandVars.
func ParseCommandVar(s string) (CommandVar, error) {
	up := CommandVar(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range CommandVars {
		if v == up {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVar, s)
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// Item is a child of a Menu: either a *Menu or a *Command.
type Item interface {
	ItemName() string
	attach() error
}

// Menu is a named, ordered group of items. Only the root carries an
// activation type.
type Menu struct {
	Name       string
	Activation ActivationType
	Items      []Item

	attached bool
}

// New creates a menu. Pass an empty activation for submenus.
func New(name string, activation ActivationType) *Menu {
	return &Menu{Name: name, Activation: activation}
}

// ItemName returns the display name.
func (m *Menu) ItemName() string { return m.Name }

func (m *Menu) attach() error {
	if m.attached {
		return fmt.Errorf("%w: %q", ErrAlreadyAttached, m.Name)
	}
	if m.Activation != "" {
		return fmt.Errorf("%w: submenu %q has %s", ErrNestedActivation, m.Name, m.Activation)
	}
	m.attached = true
	return nil
}

// Add appends items in order. It stops at the first item that cannot be
// attached; items before it stay attached.
func (m *Menu) Add(items ...Item) error {
	for _, it := range items {
		if it == nil {
			return fmt.Errorf("menu.Add %q: nil item", m.Name)
		}
		if sub, ok := it.(*Menu); ok && sub == m {
			return fmt.Errorf("menu.Add %q: %w", m.Name, ErrAlreadyAttached)
		}
		if err := it.attach(); err != nil {
			return fmt.Errorf("menu.Add %q: %w", m.Name, err)
		}
		m.Items = append(m.Items, it)
	}
	return nil
}

// MustAdd is Add for statically built trees; it panics on error.
func (m *Menu) MustAdd(items ...Item) *Menu {
	if err := m.Add(items...); err != nil {
		panic(err)
	}
	return m
}

// Validate checks the whole tree rooted at m for use as a top-level menu
// and rewrites m.Activation to its canonical form, so "directory_background"
// becomes DirectoryBackground.
func (m *Menu) Validate() error {
	if m.Activation == "" {
		return fmt.Errorf("menu %q: %w", m.Name, ErrNoActivation)
	}
	a, err := ParseActivation(string(m.Activation))
	if err != nil {
		return fmt.Errorf("menu %q: %w", m.Name, err)
	}
	m.Activation = a
	if err := checkName(m.Name); err != nil {
		return err
	}
	return Walk(m, func(it Item, _ int) error {
		switch item := it.(type) {
		case *Command:
			return item.Validate()
		case *Menu:
			if item.Activation != "" {
				return fmt.Errorf("%w: submenu %q has %s", ErrNestedActivation, item.Name, item.Activation)
			}
			return checkName(item.Name)
		}
		return nil
	})
}

// checkName rejects names that would split into several registry keys.
func checkName(name string) error {
	if strings.Contains(name, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Walk visits every descendant of m depth-first in order, passing the
// nesting depth (1 for direct children).
func Walk(m *Menu, fn func(it Item, depth int) error) error {
	return walk(m, 1, fn)
}

func walk(m *Menu, depth int, fn func(Item, int) error) error {
	for _, it := range m.Items {
		if err := fn(it, depth); err != nil {
			return err
		}
		if sub, ok := it.(*Menu); ok {
			if err := walk(sub, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
