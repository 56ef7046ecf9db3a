// Package cli implements the artboard command-line interface.
//
// Without a subcommand artboard opens the desktop editor. The mcp command
// serves one artboard to AI agents over stdio, and the remaining commands
// manage stored artboards from the shell.
//
// All commands read the YAML config given by --config (default
// ~/.config/artboard/config.yaml) and support --verbose (-v) for debug
// logging. The logger and config are passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"artboard/internal/config"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the artboard CLI. assets holds the built frontend served by
// the desktop window.
func Execute(ctx context.Context, assets fs.FS) error {
	return newRootCmd(assets).ExecuteContext(ctx)
}

func newRootCmd(assets fs.FS) *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "artboard",
		Short:        "Artboard lays out text and image blocks on a printable page",
		Long:         `Artboard is a block layout editor for posters and flyers. It runs as a desktop app, or as an MCP server so AI agents can arrange the blocks.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			ctx := withConfig(cmd.Context(), cfg)
			ctx = withLogger(ctx, newLogger(os.Stderr, levelFor(verbose, cfg.Log.Level)))
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd, assets)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("artboard %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/artboard/config.yaml)")

	root.AddCommand(newDesktopCmd(assets))
	root.AddCommand(newMCPCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newCreateCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newSnapshotCmd())

	return root
}
