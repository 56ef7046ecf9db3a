package cli

import (
	"io/fs"

	"github.com/spf13/cobra"

	"artboard/internal/app"
)

func newDesktopCmd(assets fs.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "desktop",
		Short: "Open the desktop editor (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd, assets)
		},
	}
}

func runDesktop(cmd *cobra.Command, assets fs.FS) error {
	ctx := cmd.Context()
	return app.RunDesktop(configFromContext(ctx), version, assets, loggerFromContext(ctx))
}

func newMCPCmd() *cobra.Command {
	var artboardID string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve an artboard to AI agents over MCP stdio",
		Long: `Serve one artboard as an MCP server on stdin/stdout. Without --artboard the
first stored artboard is served, or a new one is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return app.ServeMCP(ctx, configFromContext(ctx), app.MCPOptions{
				ArtboardID: artboardID,
				Version:    version,
			}, loggerFromContext(ctx))
		},
	}
	cmd.Flags().StringVarP(&artboardID, "artboard", "a", "", "artboard ID to serve")
	return cmd
}
