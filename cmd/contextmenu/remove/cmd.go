// Package removecmd implements the `contextmenu remove` command.
package removecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/compiler"
	"github.com/go-ports/contextmenu/internal/menu"
)

// Command implements `contextmenu remove`.
type Command struct {
	ctx        *shared.Context
	cmd        *cobra.Command
	activation string
}

// New creates the remove command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a compiled menu or fast command",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().StringVarP(&c.activation, "type", "t", "",
		"Activation type the entry was compiled for (FILES, DIRECTORY, DIRECTORY_BACKGROUND, DESKTOP_BACKGROUND, DRIVE or .ext)")
	_ = c.cmd.MarkFlagRequired("type")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	a, err := menu.ParseActivation(c.activation)
	if err != nil {
		return err
	}
	comp, err := c.ctx.Compiler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer comp.Close()

	out := cmd.OutOrStdout()
	err = comp.Remove(args[0], a)
	switch {
	case compiler.IsNotFound(err):
		fmt.Fprintf(out, "No %s entry named %s\n", a, args[0])
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "Removed: %s\n", args[0])
	return nil
}
