// Package rootcmd wires the root cobra.Command for the contextmenu CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	compilecmd "github.com/go-ports/contextmenu/cmd/contextmenu/compile"
	configcmd "github.com/go-ports/contextmenu/cmd/contextmenu/config"
	listcmd "github.com/go-ports/contextmenu/cmd/contextmenu/list"
	mcpcmd "github.com/go-ports/contextmenu/cmd/contextmenu/mcp"
	removecmd "github.com/go-ports/contextmenu/cmd/contextmenu/remove"
	setupcmd "github.com/go-ports/contextmenu/cmd/contextmenu/setup"
	"github.com/go-ports/contextmenu/cmd/contextmenu/shared"
	showcmd "github.com/go-ports/contextmenu/cmd/contextmenu/show"
	uninstallcmd "github.com/go-ports/contextmenu/cmd/contextmenu/uninstall"
	versioncmd "github.com/go-ports/contextmenu/cmd/contextmenu/version"
)

// New creates and returns the root cobra.Command for the contextmenu CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "contextmenu",
		Short:         "Compile right-click context menus for Windows Explorer and Nautilus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&ctx.Platform, "platform", "",
		"Target platform: windows or linux (default: $CONTEXTMENU_PLATFORM → config → host)")
	flags.StringVar(&ctx.ConfigPath, "config", "",
		"Config file (default: $CONTEXTMENU_CONFIG → ~/.config/contextmenu/config.yaml)")
	flags.StringVar(&ctx.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&ctx.LogFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		compilecmd.New(ctx).Cmd(),
		showcmd.New(ctx).Cmd(),
		removecmd.New(ctx).Cmd(),
		listcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		setupcmd.New(ctx).Cmd(),
		uninstallcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
