package menufile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// evalContext exposes path.module (the document's directory), path.home
// and the environment as env.NAME to attribute expressions:
//
//	file = "${path.module}/scripts/tools.py"
func evalContext(baseDir string) *hcl.EvalContext {
	home, _ := os.UserHomeDir()
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && hclsyntax.ValidIdentifier(k) {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{
		"path": cty.ObjectVal(map[string]cty.Value{
			"module": cty.StringVal(baseDir),
			"home":   cty.StringVal(home),
		}),
		"env": cty.ObjectVal(env),
	}}
}

// hclDecoder holds the evaluation context shared by every attribute.
type hclDecoder struct {
	ctx *hcl.EvalContext
}

// decodeHCL walks the native-syntax body directly instead of using
// gohcl.DecodeBody so that menu and command blocks keep their source
// order when they are interleaved.
//
//	menu "Tools" {
//	  type = "FILES"
//	  command "Open" {
//	    template = "code ?"
//	    vars     = ["FILENAME"]
//	  }
//	  menu "More" {
//	    command "Run" {
//	      python {
//	        file     = "actions.py"
//	        function = "run"
//	      }
//	    }
//	  }
//	}
//
//	fast "Open Here" {
//	  type     = "DIRECTORY"
//	  template = "code ."
//	}
func decodeHCL(data []byte, filename, baseDir string) (*docDef, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("HCL file %s: unexpected body type %T", filename, file.Body)
	}
	d := &hclDecoder{ctx: evalContext(baseDir)}
	if err := d.attributes(body, nil); err != nil {
		return nil, err
	}

	def := &docDef{}
	for _, blk := range body.Blocks {
		switch blk.Type {
		case "menu":
			md, err := d.hclMenu(blk)
			if err != nil {
				return nil, err
			}
			def.Menus = append(def.Menus, md)
		case "fast":
			fd, err := d.hclFast(blk)
			if err != nil {
				return nil, err
			}
			def.Fast = append(def.Fast, fd)
		default:
			return nil, blockError(blk, "unexpected block %q", blk.Type)
		}
	}
	return def, nil
}

func (d *hclDecoder) hclMenu(blk *hclsyntax.Block) (menuDef, error) {
	name, err := label(blk)
	if err != nil {
		return menuDef{}, err
	}
	md := menuDef{Name: name}
	if err := d.attributes(blk.Body, map[string]any{"type": &md.Type}); err != nil {
		return menuDef{}, err
	}
	items, err := d.hclItems(blk.Body)
	if err != nil {
		return menuDef{}, err
	}
	md.Items = items
	return md, nil
}

func (d *hclDecoder) hclItems(body *hclsyntax.Body) ([]itemDef, error) {
	items := []itemDef{}
	for _, blk := range body.Blocks {
		name, err := label(blk)
		if err != nil {
			return nil, err
		}
		switch blk.Type {
		case "menu":
			if err := d.attributes(blk.Body, nil); err != nil {
				return nil, err
			}
			sub, err := d.hclItems(blk.Body)
			if err != nil {
				return nil, err
			}
			items = append(items, itemDef{Name: name, Items: &sub})
		case "command":
			it := itemDef{Name: name}
			attrs := map[string]any{"template": &it.Template, "vars": &it.Vars, "params": &it.Params}
			if err := d.hclCommand(blk.Body, attrs, &it.Python); err != nil {
				return nil, err
			}
			items = append(items, it)
		default:
			return nil, blockError(blk, "unexpected block %q", blk.Type)
		}
	}
	return items, nil
}

func (d *hclDecoder) hclFast(blk *hclsyntax.Block) (fastDef, error) {
	name, err := label(blk)
	if err != nil {
		return fastDef{}, err
	}
	fd := fastDef{Name: name}
	attrs := map[string]any{"type": &fd.Type, "template": &fd.Template, "vars": &fd.Vars, "params": &fd.Params}
	if err := d.hclCommand(blk.Body, attrs, &fd.Python); err != nil {
		return fastDef{}, err
	}
	return fd, nil
}

// hclCommand decodes the command attributes into attrs and the optional
// python block into python.
func (d *hclDecoder) hclCommand(body *hclsyntax.Body, attrs map[string]any, python **callbackDef) error {
	if err := d.attributes(body, attrs); err != nil {
		return err
	}
	for _, blk := range body.Blocks {
		if blk.Type != "python" {
			return blockError(blk, "unexpected block %q", blk.Type)
		}
		if *python != nil {
			return blockError(blk, "duplicate python block")
		}
		if len(blk.Labels) != 0 {
			return blockError(blk, "python block takes no labels")
		}
		cb := &callbackDef{}
		if err := d.attributes(blk.Body, map[string]any{"file": &cb.File, "function": &cb.Function}); err != nil {
			return err
		}
		if len(blk.Body.Blocks) > 0 {
			return blockError(blk.Body.Blocks[0], "unexpected block %q", blk.Body.Blocks[0].Type)
		}
		*python = cb
	}
	return nil
}

// attributes decodes each attribute of body into the target registered
// under its name and rejects any other attribute.
func (d *hclDecoder) attributes(body *hclsyntax.Body, targets map[string]any) error {
	for name, attr := range body.Attributes {
		target, ok := targets[name]
		if !ok {
			return fmt.Errorf("%s: unexpected attribute %q", attr.SrcRange, name)
		}
		if diags := gohcl.DecodeExpression(attr.Expr, d.ctx, target); diags.HasErrors() {
			return fmt.Errorf("%s: %w", attr.SrcRange, diags)
		}
	}
	return nil
}

func label(blk *hclsyntax.Block) (string, error) {
	if len(blk.Labels) != 1 || blk.Labels[0] == "" {
		return "", blockError(blk, "%s block needs exactly one name label", blk.Type)
	}
	return blk.Labels[0], nil
}

func blockError(blk *hclsyntax.Block, format string, args ...any) error {
	return fmt.Errorf("%s: %s", blk.DefRange(), fmt.Sprintf(format, args...))
}
