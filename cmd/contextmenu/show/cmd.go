// Package showcmd implements the `contextmenu show` command.
package showcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/compiler"
	"github.com/go-ports/contextmenu/internal/menufile"
)

// Command implements `contextmenu show`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the show command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "show <file>",
		Short: "Print the registry keys or plugin source a compile would write",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
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

	preview, err := compiler.PreviewAll(comp, doc)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), preview)
	return nil
}
