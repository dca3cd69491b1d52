package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
)

// Entry is one value held by a key.
type Entry struct {
	Path  string
	Name  string
	Value string
}

// MemStore is a Store held in memory. Keys and values keep their creation
// order, which makes it suitable for previews.
type MemStore struct {
	keys  map[string]*memKey
	order []string
}

type memKey struct {
	names  []string
	values map[string]string
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{keys: make(map[string]*memKey)}
}

func (m *MemStore) CreateKey(path string) error {
	parts := strings.Split(path, `\`)
	for i := range parts {
		p := JoinKeys(parts[:i+1]...)
		if _, ok := m.keys[p]; ok {
			continue
		}
		m.keys[p] = &memKey{values: make(map[string]string)}
		m.order = append(m.order, p)
	}
	return nil
}

func (m *MemStore) SetValue(path, name, value string) error {
	k, ok := m.keys[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if _, exists := k.values[name]; !exists {
		k.names = append(k.names, name)
	}
	k.values[name] = value
	return nil
}

func (m *MemStore) Value(path, name string) (string, bool, error) {
	k, ok := m.keys[path]
	if !ok {
		return "", false, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	v, ok := k.values[name]
	return v, ok, nil
}

func (m *MemStore) SubKeys(path string) ([]string, error) {
	if _, ok := m.keys[path]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	names := []string{}
	for _, p := range m.order {
		if rest, ok := strings.CutPrefix(p, path+`\`); ok && !strings.Contains(rest, `\`) {
			names = append(names, rest)
		}
	}
	return names, nil
}

func (m *MemStore) DeleteKey(path string) error {
	if _, ok := m.keys[path]; !ok {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if kids, _ := m.SubKeys(path); len(kids) > 0 {
		return fmt.Errorf("key %s has subkeys", path)
	}
	delete(m.keys, path)
	for i, p := range m.order {
		if p == path {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (*MemStore) Close() error { return nil }

// Entries returns every value in key creation order.
func (m *MemStore) Entries() []Entry {
	var out []Entry
	for _, p := range m.order {
		k := m.keys[p]
		for _, n := range k.names {
			out = append(out, Entry{Path: p, Name: n, Value: k.values[n]})
		}
	}
	return out
}

// Preview compiles m into a fresh MemStore with the compiler's layout and
// synthesizer and renders the result, one key per block. Nothing is
// written to the compiler's own store.
func (c *Compiler) Preview(m *menu.Menu) (string, error) {
	store := NewMemStore()
	dry := NewCompiler(store, c.layout, c.synth, slog.New(slog.DiscardHandler))
	if err := dry.Compile(m); err != nil {
		return "", err
	}
	return Render(store.Entries()), nil
}

// Render formats entries the way regedit shows them: the key path, then
// one name = value line per value. The unnamed value shows as (Default).
func Render(entries []Entry) string {
	var sb strings.Builder
	last := ""
	for _, e := range entries {
		if e.Path != last {
			if last != "" {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "[%s]\n", e.Path)
			last = e.Path
		}
		name := e.Name
		if name == DefaultValue {
			name = "(Default)"
		}
		fmt.Fprintf(&sb, "  %s = %s\n", name, e.Value)
	}
	return sb.String()
}

// PreviewFast is Preview for a fast command.
func (c *Compiler) PreviewFast(f *menu.FastCommand) (string, error) {
	store := NewMemStore()
	dry := NewCompiler(store, c.layout, c.synth, slog.New(slog.DiscardHandler))
	if err := dry.CompileFast(f); err != nil {
		return "", err
	}
	return Render(store.Entries()), nil
}
