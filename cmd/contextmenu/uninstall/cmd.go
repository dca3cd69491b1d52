// Package uninstallcmd implements the `contextmenu uninstall` command.
package uninstallcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	setupcmd "github.com/go-ports/contextmenu/cmd/contextmenu/setup"
	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/setup"
)

// Command implements `contextmenu uninstall`.
type Command struct {
	ctx   *shared.Context
	cmd   *cobra.Command
	flags setupcmd.Flags
}

// New creates the uninstall command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:       "uninstall <agent>",
		Short:     "Remove the contextmenu MCP server from a coding agent",
		Args:      cobra.ExactArgs(1),
		ValidArgs: setup.Agents(),
		RunE:      c.run,
	}
	c.flags.Bind(c.cmd)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	opts, err := c.flags.Options()
	if err != nil {
		return err
	}
	res, err := setup.Uninstall(args[0], opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
