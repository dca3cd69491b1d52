package menu

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Callback points at a Python function by its defining file. It is
// resolved once, when the tree is built.
type Callback struct {
	Func   string // function name
	Module string // file name without extension, used as the import name
	Dir    string // absolute directory of the defining file
	File   string // absolute path of the defining file
}

// ResolveCallback builds a Callback for function fn defined in file.
// Relative paths are resolved against the working directory. Off Windows,
// backslashes in the directory are turned into forward slashes.
func ResolveCallback(file, fn string) (Callback, error) {
	if strings.TrimSpace(fn) == "" {
		return Callback{}, fmt.Errorf("menu.ResolveCallback: empty function name for %q", file)
	}
	if strings.TrimSpace(file) == "" {
		return Callback{}, fmt.Errorf("menu.ResolveCallback: empty file for %q", fn)
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return Callback{}, fmt.Errorf("menu.ResolveCallback: %w", err)
	}
	dir := filepath.Dir(abs)
	if runtime.GOOS != "windows" {
		dir = strings.ReplaceAll(dir, `\`, "/")
	}
	base := filepath.Base(abs)
	return Callback{
		Func:   fn,
		Module: strings.TrimSuffix(base, filepath.Ext(base)),
		Dir:    dir,
		File:   abs,
	}, nil
}

// Command is an executable menu entry backed by either a shell template or
// a callback, never both.
type Command struct {
	Name     string
	Template string
	Callback *Callback
	Params   string
	Vars     []CommandVar

	attached bool
}

// CommandOption configures a Command in NewCommand.
type CommandOption func(*Command)

// WithTemplate sets a raw shell command. Each '?' in template is replaced by
// the matching entry of vars when the command is synthesized.
func WithTemplate(template string, vars ...CommandVar) CommandOption {
	return func(c *Command) {
		c.Template = template
		c.Vars = vars
	}
}

// WithCallback binds the command to a resolved callback.
func WithCallback(cb Callback) CommandOption {
	return func(c *Command) { c.Callback = &cb }
}

// WithParams sets the free-form parameter string passed to a callback.
func WithParams(params string) CommandOption {
	return func(c *Command) { c.Params = params }
}

// NewCommand builds and validates a Command.
func NewCommand(name string, opts ...CommandOption) (*Command, error) {
	c := &Command{Name: name}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ItemName returns the display name.
func (c *Command) ItemName() string { return c.Name }

func (c *Command) attach() error {
	if c.attached {
		return fmt.Errorf("%w: %q", ErrAlreadyAttached, c.Name)
	}
	c.attached = true
	return nil
}

// Validate enforces the template-xor-callback rule and checks variables.
func (c *Command) Validate() error {
	hasTemplate := c.Template != ""
	hasCallback := c.Callback != nil
	switch {
	case hasTemplate && hasCallback:
		return fmt.Errorf("command %q: %w", c.Name, ErrTemplateAndCallback)
	case !hasTemplate && !hasCallback:
		return fmt.Errorf("command %q: %w", c.Name, ErrNoAction)
	}
	for _, v := range c.Vars {
		if _, err := ParseCommandVar(string(v)); err != nil {
			return fmt.Errorf("command %q: %w", c.Name, err)
		}
	}
	return checkName(c.Name)
}

// FastCommand is a single command registered directly under an activation
// type, without an enclosing menu.
type FastCommand struct {
	Activation ActivationType
	Command    *Command
}

// NewFastCommand validates the activation and the command options.
func NewFastCommand(name string, activation ActivationType, opts ...CommandOption) (*FastCommand, error) {
	if activation == "" {
		return nil, fmt.Errorf("fast command %q: %w", name, ErrNoActivation)
	}
	a, err := ParseActivation(string(activation))
	if err != nil {
		return nil, fmt.Errorf("fast command %q: %w", name, err)
	}
	cmd, err := NewCommand(name, opts...)
	if err != nil {
		return nil, err
	}
	return &FastCommand{Activation: a, Command: cmd}, nil
}

// Validate checks the command and rewrites f.Activation to its canonical
// form.
func (f *FastCommand) Validate() error {
	if f.Command == nil {
		return fmt.Errorf("fast command: %w", ErrNoAction)
	}
	if f.Activation == "" {
		return fmt.Errorf("fast command %q: %w", f.Command.Name, ErrNoActivation)
	}
	a, err := ParseActivation(string(f.Activation))
	if err != nil {
		return fmt.Errorf("fast command %q: %w", f.Command.Name, err)
	}
	f.Activation = a
	return f.Command.Validate()
}

// AsMenu wraps f into a one-item top-level menu of the same name.
func (f *FastCommand) AsMenu() *Menu {
	m := New(f.Command.Name, f.Activation)
	cmd := *f.Command
	cmd.attached = false
	m.MustAdd(&cmd)
	return m
}
