// Package synth builds self-contained command lines for menu commands.
//
// Every command produced here starts a fresh Python interpreter, so nothing
// may depend on the memory of the process that generated it: selected files
// and the working directory are embedded as expressions evaluated when the
// command runs, never as values captured now.
//
// Known limitation: quote and backslash characters inside callback
// directories or parameter strings are not escaped.
package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
)

// ErrTemplateArity is returned when a template's '?' markers and its
// variable list differ in length.
var ErrTemplateArity = errors.New("template markers and variables differ in count")

// Marker is the positional placeholder in command templates.
const Marker = "?"

// Expressions evaluated by the generated interpreter for the selected files
// and the working directory.
const (
	SelectedFilesExpr = "' '.join(sys.argv[1:])"
	WorkingDirExpr    = "os.getcwd()"
)

// DefaultVars returns a fresh copy of the variable table.
func DefaultVars() map[menu.CommandVar]string {
	return map[menu.CommandVar]string{
		menu.VarFileName:  SelectedFilesExpr,
		menu.VarDir:       WorkingDirExpr,
		menu.VarDirectory: WorkingDirExpr,
		menu.VarPythonLoc: "sys.executable",
	}
}

// Target describes the OS that will run the generated commands.
type Target struct {
	// FileArg is appended to file-selection commands so the shell passes the
	// clicked path; empty when the host supplies paths as argv itself.
	FileArg string
}

// WindowsTarget and LinuxTarget are the two supported targets.
var (
	WindowsTarget = Target{FileArg: `"%1"`}
	LinuxTarget   = Target{}
)

// Synthesizer turns callbacks and templates into command lines.
type Synthesizer struct {
	interpreter string
	vars        map[menu.CommandVar]string
	target      Target
}

// New returns a Synthesizer. A nil vars table means DefaultVars. The table
// is copied so later changes by the caller have no effect.
func New(interpreter string, vars map[menu.CommandVar]string, target Target) *Synthesizer {
	if vars == nil {
		vars = DefaultVars()
	}
	cp := make(map[menu.CommandVar]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return &Synthesizer{interpreter: interpreter, vars: cp, target: target}
}

// Interpreter returns the interpreter path embedded in commands.
func (s *Synthesizer) Interpreter() string { return s.interpreter }

// Target returns the configured target.
func (s *Synthesizer) Target() Target { return s.target }

// ---------------------------------------------------------------------------
// Callback variant
// ---------------------------------------------------------------------------

// SearchPath returns the sys.path insertion for dir. The embedded path
// always uses forward slashes, which Python accepts on every target.
func SearchPath(dir string) string {
	return fmt.Sprintf("sys.path.insert(0, '%s')", strings.ReplaceAll(dir, `\`, "/"))
}

// Import returns the import statement for the callback's module.
func Import(cb menu.Callback) string {
	return "import " + cb.Module
}

// Call returns the expression invoking cb with contextExpr as its first
// argument and params as its second.
func Call(cb menu.Callback, contextExpr, params string) string {
	return fmt.Sprintf("%s.%s(%s, '%s')", cb.Module, cb.Func, contextExpr, params)
}

// FileSelect builds the command for FILES, DIRECTORY, DRIVE and extension
// menus: the callback receives the paths the shell passed on argv.
func (s *Synthesizer) FileSelect(cb menu.Callback, params string) string {
	script := strings.Join([]string{
		"import sys",
		SearchPath(cb.Dir),
		Import(cb),
		Call(cb, "["+SelectedFilesExpr+"]", params),
	}, "; ")
	return s.withFileArg(s.inline(script))
}

// Background builds the command for background menus: the callback
// receives the directory the shell started the process in.
func (s *Synthesizer) Background(cb menu.Callback, params string) string {
	script := strings.Join([]string{
		"import sys",
		"import os",
		SearchPath(cb.Dir),
		Import(cb),
		Call(cb, "["+WorkingDirExpr+"]", params),
	}, "; ")
	return s.inline(script)
}

// ---------------------------------------------------------------------------
// Template variant
// ---------------------------------------------------------------------------

// Expand replaces each marker in template, in order, with a string splice of
// the matching variable's expression. The result is meant to sit inside a
// single-quoted Python string literal.
func (s *Synthesizer) Expand(template string, vars []menu.CommandVar) (string, error) {
	if n := strings.Count(template, Marker); n != len(vars) {
		return "", fmt.Errorf("synth.Expand %q: %w (%d markers, %d variables)", template, ErrTemplateArity, n, len(vars))
	}
	var sb strings.Builder
	rest := template
	for _, v := range vars {
		expr, ok := s.vars[v]
		if !ok {
			return "", fmt.Errorf("synth.Expand %q: %w: %s", template, menu.ErrUnknownVar, v)
		}
		i := strings.Index(rest, Marker)
		sb.WriteString(rest[:i])
		sb.WriteString("' + ")
		sb.WriteString(expr)
		sb.WriteString(" + '")
		rest = rest[i+len(Marker):]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// Shell builds the command for a template. Without variables the template
// is returned unchanged; otherwise it runs through os.system in a fresh
// interpreter that evaluates the variable expressions.
func (s *Synthesizer) Shell(template string, vars []menu.CommandVar) (string, error) {
	if len(vars) == 0 {
		return template, nil
	}
	expanded, err := s.Expand(template, vars)
	if err != nil {
		return "", err
	}
	script := fmt.Sprintf("import os; import sys; os.system('%s')", expanded)
	return s.withFileArg(s.inline(script)), nil
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// Resolve picks the variant for cmd. The root's activation decides whether
// a callback receives the selection or the working directory.
func (s *Synthesizer) Resolve(cmd *menu.Command, root menu.ActivationType) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}
	if cmd.Callback == nil {
		return s.Shell(cmd.Template, cmd.Vars)
	}
	if root.IsBackground() {
		return s.Background(*cmd.Callback, cmd.Params), nil
	}
	return s.FileSelect(*cmd.Callback, cmd.Params), nil
}

func (s *Synthesizer) inline(script string) string {
	return fmt.Sprintf(`"%s" -c "%s"`, s.interpreter, script)
}

func (s *Synthesizer) withFileArg(command string) string {
	if s.target.FileArg == "" {
		return command
	}
	return command + " " + s.target.FileArg
}
