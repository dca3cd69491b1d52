// Package menufile loads menu trees from YAML or HCL definition files.
//
// Both formats describe the same document: a list of root menus, each
// with an activation type and ordered items, and a list of fast commands.
// An item with an items list is a submenu; any other item is a command
// with either a template or a python callback. Callback files are
// resolved relative to the document's directory.
package menufile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ports/contextmenu/internal/menu"
)

// ErrUnknownFormat is returned for files that are neither YAML nor HCL.
var ErrUnknownFormat = errors.New("unknown definition file format")

// Format is a definition file syntax.
type Format string

const (
	YAML Format = "yaml"
	HCL  Format = "hcl"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".hcl":
		return HCL, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Document is a loaded definition file.
type Document struct {
	Menus []*menu.Menu
	Fast  []*menu.FastCommand
}

// Names returns the names of every root menu and fast command in order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Menus)+len(d.Fast))
	for _, m := range d.Menus {
		names = append(names, m.Name)
	}
	for _, f := range d.Fast {
		names = append(names, f.Command.Name)
	}
	return names
}

// Load reads and builds the definition file at path.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("menufile.Load: %w", err)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is a definition file named by the user
	if err != nil {
		return nil, fmt.Errorf("menufile.Load: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("menufile.Load: %w", err)
	}
	doc, err := Parse(data, format, filepath.Base(path), filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("menufile.Load %s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a document from data. filename is used in diagnostics and
// baseDir anchors relative callback files.
func Parse(data []byte, format Format, filename, baseDir string) (*Document, error) {
	var (
		def *docDef
		err error
	)
	switch format {
	case YAML:
		def, err = decodeYAML(data)
	case HCL:
		def, err = decodeHCL(data, filename, baseDir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return def.build(baseDir)
}

// ---------------------------------------------------------------------------
// Definitions shared by both formats
// ---------------------------------------------------------------------------

type docDef struct {
	Menus []menuDef `yaml:"menus"`
	Fast  []fastDef `yaml:"fast"`
}

type menuDef struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Items []itemDef `yaml:"items"`
}

type itemDef struct {
	Name     string       `yaml:"name"`
	Items    *[]itemDef   `yaml:"items"`
	Template string       `yaml:"template"`
	Vars     []string     `yaml:"vars"`
	Python   *callbackDef `yaml:"python"`
	Params   string       `yaml:"params"`
}

type fastDef struct {
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	Template string       `yaml:"template"`
	Vars     []string     `yaml:"vars"`
	Python   *callbackDef `yaml:"python"`
	Params   string       `yaml:"params"`
}

type callbackDef struct {
	File     string `yaml:"file"`
	Function string `yaml:"function"`
}

func (d *docDef) build(baseDir string) (*Document, error) {
	doc := &Document{}
	for i, md := range d.Menus {
		if md.Name == "" {
			return nil, fmt.Errorf("menu %d: missing name", i)
		}
		if md.Type == "" {
			return nil, fmt.Errorf("menu %q: %w", md.Name, menu.ErrNoActivation)
		}
		a, err := menu.ParseActivation(md.Type)
		if err != nil {
			return nil, fmt.Errorf("menu %q: %w", md.Name, err)
		}
		root := menu.New(md.Name, a)
		if err := addItems(root, md.Items, baseDir); err != nil {
			return nil, fmt.Errorf("menu %q: %w", md.Name, err)
		}
		doc.Menus = append(doc.Menus, root)
	}
	for i, fd := range d.Fast {
		if fd.Name == "" {
			return nil, fmt.Errorf("fast command %d: missing name", i)
		}
		opts, err := commandOptions(fd.Template, fd.Vars, fd.Python, fd.Params, baseDir)
		if err != nil {
			return nil, fmt.Errorf("fast command %q: %w", fd.Name, err)
		}
		f, err := menu.NewFastCommand(fd.Name, menu.ActivationType(fd.Type), opts...)
		if err != nil {
			return nil, fmt.Errorf("fast command %q: %w", fd.Name, err)
		}
		doc.Fast = append(doc.Fast, f)
	}
	return doc, nil
}

func addItems(parent *menu.Menu, items []itemDef, baseDir string) error {
	for i, it := range items {
		if it.Name == "" {
			return fmt.Errorf("item %d: missing name", i)
		}
		if it.Items != nil {
			if it.Template != "" || it.Python != nil || len(it.Vars) > 0 || it.Params != "" {
				return fmt.Errorf("submenu %q: command fields on a submenu", it.Name)
			}
			sub := menu.New(it.Name, "")
			if err := addItems(sub, *it.Items, baseDir); err != nil {
				return fmt.Errorf("submenu %q: %w", it.Name, err)
			}
			if err := parent.Add(sub); err != nil {
				return err
			}
			continue
		}
		opts, err := commandOptions(it.Template, it.Vars, it.Python, it.Params, baseDir)
		if err != nil {
			return fmt.Errorf("command %q: %w", it.Name, err)
		}
		cmd, err := menu.NewCommand(it.Name, opts...)
		if err != nil {
			return fmt.Errorf("command %q: %w", it.Name, err)
		}
		if err := parent.Add(cmd); err != nil {
			return err
		}
	}
	return nil
}

func commandOptions(template string, vars []string, python *callbackDef, params, baseDir string) ([]menu.CommandOption, error) {
	var opts []menu.CommandOption
	if template != "" {
		parsed := make([]menu.CommandVar, 0, len(vars))
		for _, v := range vars {
			cv, err := menu.ParseCommandVar(v)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, cv)
		}
		opts = append(opts, menu.WithTemplate(template, parsed...))
	} else if len(vars) > 0 {
		return nil, errors.New("vars require a template")
	}
	if python != nil {
		file := python.File
		if file != "" && !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		cb, err := menu.ResolveCallback(file, python.Function)
		if err != nil {
			return nil, err
		}
		opts = append(opts, menu.WithCallback(cb))
	}
	if params != "" {
		opts = append(opts, menu.WithParams(params))
	}
	return opts, nil
}
