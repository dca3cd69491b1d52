// Package listcmd implements the `contextmenu list` command.
package listcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/menu"
)

// Command implements `contextmenu list`.
type Command struct {
	ctx        *shared.Context
	cmd        *cobra.Command
	activation string
}

// New creates the list command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "list",
		Short: "List the entries compiled for an activation type",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVarP(&c.activation, "type", "t", "", "Activation type to list")
	_ = c.cmd.MarkFlagRequired("type")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	a, err := menu.ParseActivation(c.activation)
	if err != nil {
		return err
	}
	comp, err := c.ctx.Compiler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer comp.Close()

	names, err := comp.List(a)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintf(out, "No %s entries.\n", a)
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
