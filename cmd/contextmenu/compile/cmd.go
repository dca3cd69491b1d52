// Package compilecmd implements the `contextmenu compile` command.
package compilecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/compiler"
	"github.com/go-ports/contextmenu/internal/menufile"
)

// Command implements `contextmenu compile`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the compile command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile every menu in a YAML or HCL definition file",
		Long: `Compile every menu and fast command in a definition file into the
platform's context menu. An entry compiled earlier under the same name is
replaced. On failure, entries written before the failing one stay in place.`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	doc, err := menufile.Load(args[0])
	if err != nil {
		return err
	}
	comp, err := c.ctx.Compiler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer comp.Close()

	done, err := compiler.CompileAll(comp, doc)
	out := cmd.OutOrStdout()
	for _, name := range done {
		fmt.Fprintf(out, "Compiled: %s\n", name)
	}
	return err
}
