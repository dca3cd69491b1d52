package plugin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
	"github.com/go-ports/contextmenu/internal/synth"
)

// HeaderMarker is the first line of every generated module. List only
// reports files that start with it.
const HeaderMarker = "# Generated by contextmenu"

const activationPrefix = "# activation: "

const indentUnit = "    "

// Generate returns the nautilus-python module for m. Template commands are
// synthesized with s; callbacks are imported and called in-process.
func Generate(m *menu.Menu, s *synth.Synthesizer, hooks HookSet) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("plugin.Generate: %w", err)
	}
	hook, err := hooks.For(m.Activation)
	if err != nil {
		return nil, fmt.Errorf("plugin.Generate: %w", err)
	}
	g := &generator{
		synth: s,
		hooks: hooks,
		class: ClassName(m.Name),
		root:  m.Activation,
	}
	g.header(m)
	g.imports(m)
	if err := g.provider(m, hook); err != nil {
		return nil, fmt.Errorf("plugin.Generate %q: %w", m.Name, err)
	}
	return []byte(g.sb.String()), nil
}

type generator struct {
	sb       strings.Builder
	synth    *synth.Synthesizer
	hooks    HookSet
	class    string
	root     menu.ActivationType
	counter  int
	handlers []handler
}

type handler struct {
	id  int
	cmd *menu.Command
}

// next returns the next routine suffix. Every menuN and cmdN in one module
// gets a distinct N.
func (g *generator) next() int {
	n := g.counter
	g.counter++
	return n
}

func (g *generator) linef(indent int, format string, args ...any) {
	g.sb.WriteString(strings.Repeat(indentUnit, indent))
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteByte('\n')
}

func (g *generator) blank() { g.sb.WriteByte('\n') }

// py quotes s as a Python string literal.
func py(s string) string { return strconv.Quote(s) }

// ---------------------------------------------------------------------------
// Module prologue
// ---------------------------------------------------------------------------

func (g *generator) header(m *menu.Menu) {
	g.linef(0, "%s. Recompile instead of editing.", HeaderMarker)
	g.linef(0, "%s%s", activationPrefix, m.Activation)
	for _, mod := range []string{"os", "shlex", "subprocess", "sys"} {
		g.linef(0, "import %s", mod)
	}
	g.blank()
	g.linef(0, "import gi")
	g.blank()
	g.linef(0, "try:")
	g.linef(1, "gi.require_version('Nautilus', '4.0')")
	g.linef(0, "except ValueError:")
	g.linef(1, "gi.require_version('Nautilus', '3.0')")
	g.linef(0, "from gi.repository import GObject, Nautilus")
	g.blank()
}

// imports emits one search-path insertion per distinct callback directory
// and one import per distinct module, in first-use order.
func (g *generator) imports(m *menu.Menu) {
	var dirs, modules []string
	seenDir := map[string]bool{}
	seenMod := map[string]bool{}
	_ = menu.Walk(m, func(it menu.Item, _ int) error {
		cmd, ok := it.(*menu.Command)
		if !ok || cmd.Callback == nil {
			return nil
		}
		if dir := synth.SearchPath(cmd.Callback.Dir); !seenDir[dir] {
			seenDir[dir] = true
			dirs = append(dirs, dir)
		}
		if mod := synth.Import(*cmd.Callback); !seenMod[mod] {
			seenMod[mod] = true
			modules = append(modules, mod)
		}
		return nil
	})
	if len(dirs) == 0 {
		return
	}
	for _, d := range dirs {
		g.linef(0, "%s", d)
	}
	for _, mod := range modules {
		g.linef(0, "%s", mod)
	}
	g.blank()
}

// ---------------------------------------------------------------------------
// Provider class
// ---------------------------------------------------------------------------

func (g *generator) provider(m *menu.Menu, active string) error {
	g.blank()
	g.linef(0, "class %s(GObject.GObject, Nautilus.MenuProvider):", g.class)
	for i, hook := range g.hooks.All() {
		if i > 0 {
			g.blank()
		}
		g.linef(1, "def %s(self, *args):", hook)
		if hook != active {
			g.linef(2, "return []")
			continue
		}
		g.hookBody()
	}

	g.blank()
	g.linef(1, "def top(self, paths, cwd):")
	g.linef(2, "item = Nautilus.MenuItem(name=%s, label=%s)", py(g.class+"::top"), py(m.Name))
	g.linef(2, "submenu = Nautilus.Menu()")
	g.linef(2, "item.set_submenu(submenu)")
	first := g.next()
	g.linef(2, "for child in self.menu%d(paths, cwd):", first)
	g.linef(3, "submenu.append_item(child)")
	g.linef(2, "return [item]")
	g.routine(first, m.Items)

	for _, h := range g.handlers {
		if err := g.handler(h); err != nil {
			return err
		}
	}
	return nil
}

// hookBody selects the paths the user clicked, rejects selections the
// root's activation type does not cover, and builds the menu.
func (g *generator) hookBody() {
	if g.root.IsBackground() {
		g.linef(2, "folder = args[-1]")
		g.linef(2, "path = folder.get_location().get_path()")
		g.linef(2, "if path is None:")
		g.linef(3, "return []")
		g.linef(2, "return self.top([path], path)")
		return
	}

	g.linef(2, "files = args[-1]")
	g.linef(2, "paths = [f.get_location().get_path() for f in files]")
	g.linef(2, "if not paths or None in paths:")
	g.linef(3, "return []")
	switch {
	case g.root.IsExtension():
		g.linef(2, "if not all(not f.is_directory() and p.lower().endswith(%s) for f, p in zip(files, paths)):", py(string(g.root)))
		g.linef(3, "return []")
	case strings.EqualFold(string(g.root), string(menu.Files)):
		g.linef(2, "if any(f.is_directory() for f in files):")
		g.linef(3, "return []")
	case strings.EqualFold(string(g.root), string(menu.Directory)):
		g.linef(2, "if not all(f.is_directory() for f in files):")
		g.linef(3, "return []")
	}
	g.linef(2, "return self.top(paths, os.path.dirname(paths[0]))")
}

// routine emits generator menuN for one nesting level. Nested menus get
// their own routines, emitted after this one.
func (g *generator) routine(id int, items []menu.Item) {
	type nested struct {
		id    int
		items []menu.Item
	}
	var subs []nested

	g.blank()
	g.linef(1, "def menu%d(self, paths, cwd):", id)
	if len(items) == 0 {
		g.linef(2, "yield from ()")
	}
	for _, it := range items {
		switch item := it.(type) {
		case *menu.Command:
			n := g.next()
			g.linef(2, "item = Nautilus.MenuItem(name=%s, label=%s)", py(fmt.Sprintf("%s::cmd%d", g.class, n)), py(item.Name))
			g.linef(2, "item.connect('activate', self.cmd%d, paths, cwd)", n)
			g.linef(2, "yield item")
			g.handlers = append(g.handlers, handler{id: n, cmd: item})
		case *menu.Menu:
			n := g.next()
			g.linef(2, "item = Nautilus.MenuItem(name=%s, label=%s)", py(fmt.Sprintf("%s::menu%d", g.class, n)), py(item.Name))
			g.linef(2, "submenu = Nautilus.Menu()")
			g.linef(2, "item.set_submenu(submenu)")
			g.linef(2, "for child in self.menu%d(paths, cwd):", n)
			g.linef(3, "submenu.append_item(child)")
			g.linef(2, "yield item")
			subs = append(subs, nested{id: n, items: item.Items})
		}
	}
	for _, s := range subs {
		g.routine(s.id, s.items)
	}
}

// handler emits the activate callback for one command leaf.
func (g *generator) handler(h handler) error {
	g.blank()
	g.linef(1, "def cmd%d(self, menu, paths, cwd):", h.id)
	cmd := h.cmd
	if cmd.Callback != nil {
		g.linef(2, "%s", synth.Call(*cmd.Callback, "paths", cmd.Params))
		return nil
	}
	if len(cmd.Vars) == 0 {
		g.linef(2, "subprocess.Popen(%s, shell=True, cwd=cwd)", py(cmd.Template))
		return nil
	}
	line, err := g.synth.Shell(cmd.Template, cmd.Vars)
	if err != nil {
		return fmt.Errorf("command %q: %w", cmd.Name, err)
	}
	g.linef(2, "subprocess.Popen(shlex.split(%s) + paths, cwd=cwd)", py(line))
	return nil
}
