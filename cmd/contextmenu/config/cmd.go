// Package configcmd implements the `contextmenu config` command group.
package configcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	"github.com/go-ports/contextmenu/internal/config"
	"github.com/go-ports/contextmenu/internal/platform"
)

// Command implements `contextmenu config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newSet(ctx),
		newUnset(ctx),
		newPath(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	cfg, path, err := c.ctx.Config()
	if err != nil {
		return err
	}
	detected := ""
	if p, err := platform.Detect(cfg.Platform); err == nil {
		detected = string(p)
	}
	interpreter, source := config.ResolveInterpreter(cfg.Interpreter)

	data := map[string]any{
		"platform":           cfg.Platform,
		"platform_effective": detected,
		"interpreter":        interpreter,
		"interpreter_source": source,
		"registry":           map[string]any{"file": cfg.Registry.File},
		"plugin":             map[string]any{"dir": cfg.Plugin.Dir},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"config_file": path,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// configPath is the file set and unset write to.
func configPath(ctx *shared.Context) (string, error) {
	if ctx.ConfigPath != "" {
		return ctx.ConfigPath, nil
	}
	p, _, err := config.Path()
	return p, err
}

// ---------------------------------------------------------------------------
// config set
// ---------------------------------------------------------------------------

func newSet(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a config value (keys: " + strings.Join(config.Keys, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(ctx)
			if err != nil {
				return err
			}
			value, err := config.Set(path, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], value, path)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config unset
// ---------------------------------------------------------------------------

func newUnset(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a persisted config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(ctx)
			if err != nil {
				return err
			}
			changed, err := config.Unset(path, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintf(out, "Unset %s\n", args[0])
			} else {
				fmt.Fprintf(out, "%s was not set\n", args[0])
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config path
// ---------------------------------------------------------------------------

func newPath(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location and how it was chosen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, source := ctx.ConfigPath, "flag"
			if path == "" {
				var err error
				if path, source, err = config.Path(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, source)
			return nil
		},
	}
}
