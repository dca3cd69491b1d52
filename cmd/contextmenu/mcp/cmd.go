// Package mcpcmd implements the `contextmenu mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	internalmcp "github.com/go-ports/contextmenu/internal/mcp"
)

// Command implements `contextmenu mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the contextmenu MCP server (stdio transport)",
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// run keeps logs on stderr; stdout carries the protocol.
func (c *Command) run(cmd *cobra.Command, _ []string) error {
	comp, err := c.ctx.Compiler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer comp.Close()
	return internalmcp.Serve(cmd.Context(), comp)
}
