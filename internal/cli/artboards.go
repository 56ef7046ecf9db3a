package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"artboard/internal/app"
	"artboard/internal/domain"
)

// withBackend opens storage for the duration of fn.
func withBackend(cmd *cobra.Command, fn func(*app.Backend) error) error {
	ctx := cmd.Context()
	backend, err := app.OpenBackend(ctx, configFromContext(ctx), nil, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(ctx); err != nil {
			loggerFromContext(ctx).Warn("close storage", "err", err)
		}
	}()
	return fn(backend)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored artboards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b *app.Backend) error {
				boards, err := b.Service().ListArtboards()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(boards) == 0 {
					printInfo(out, "No artboards")
					return nil
				}
				fmt.Fprintln(out, styleTitle.Render("Artboards"))
				for _, a := range boards {
					fmt.Fprintf(out, "%s  %s\n", styleValue.Render(a.ID), a.Name)
					printDetail(out, "%s × %s %s · updated %s",
						formatSize(a.Width), formatSize(a.Height), a.Unit, a.UpdatedAt.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func formatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newCreateCmd() *cobra.Command {
	var (
		unit          string
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty artboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context()).Editor
			u := cfg.Unit
			if unit != "" {
				u = domain.Unit(unit)
			}
			if u != domain.UnitInch && u != domain.UnitPixel {
				return fmt.Errorf("unit must be %q or %q", domain.UnitInch, domain.UnitPixel)
			}
			if width <= 0 {
				width = cfg.Width
			}
			if height <= 0 {
				height = cfg.Height
			}
			return withBackend(cmd, func(b *app.Backend) error {
				a, err := b.Service().CreateArtboard(args[0], u, width, height)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Created %s (%s)", a.Name, a.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "unit: in or px (default from config)")
	cmd.Flags().Float64Var(&width, "width", 0, "artboard width in unit")
	cmd.Flags().Float64Var(&height, "height", 0, "artboard height in unit")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <artboard-id> <file.yaml>",
		Short: "Export an artboard and its blocks to YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b *app.Backend) error {
				f, err := os.Create(args[1])
				if err != nil {
					return fmt.Errorf("create %s: %w", args[1], err)
				}
				if err := b.Service().Export(args[0], f); err != nil {
					f.Close()
					os.Remove(args[1])
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Exported %s", args[0])
				printFile(cmd.OutOrStdout(), args[1])
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import an artboard from YAML, replacing one with the same ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b *app.Backend) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				a, err := b.Service().Import(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				printSuccess(cmd.OutOrStdout(), "Imported %s (%s)", a.Name, a.ID)
				return nil
			})
		},
	}
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots <artboard-id>",
		Short: "List autosave snapshots of an artboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b *app.Backend) error {
				paths, err := b.Autosave().Snapshots(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(paths) == 0 {
					printInfo(out, "No snapshots for %s", args[0])
					return nil
				}
				for _, p := range paths {
					printFile(out, p)
				}
				return nil
			})
		},
	}
}
