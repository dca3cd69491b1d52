// Package setupcmd implements the `contextmenu setup` command.
package setupcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/setup"
)

// Command implements `contextmenu setup`.
type Command struct {
	ctx   *shared.Context
	cmd   *cobra.Command
	flags Flags
}

// Flags locate the agent config; shared with `contextmenu uninstall`.
type Flags struct {
	ConfigDir string
	Project   bool
	Command   string
}

// Bind registers the flags on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ConfigDir, "config-dir", "", "Agent config directory (default: ~/.<agent>)")
	cmd.Flags().BoolVar(&f.Project, "project", false, "Use the project config in the current directory instead of the user one")
	cmd.Flags().StringVar(&f.Command, "command", "", "Executable the agent launches (default: contextmenu)")
}

// Options converts the flags to setup.Options.
func (f *Flags) Options() (setup.Options, error) {
	o := setup.Options{Home: f.ConfigDir, Command: f.Command}
	if f.Project {
		wd, err := os.Getwd()
		if err != nil {
			return o, err
		}
		o.ProjectDir = wd
	}
	return o, nil
}

// New creates the setup command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:       "setup <agent>",
		Short:     "Register the contextmenu MCP server with a coding agent",
		Long:      "Register the contextmenu MCP server with a coding agent.\nAgents: " + strings.Join(setup.Agents(), ", "),
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
	res, err := setup.Install(args[0], opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
