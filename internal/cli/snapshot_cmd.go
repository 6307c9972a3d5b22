package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/parada/internal/cli/formatter"
	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	return t
}

// confirm asks before destructive operations. Without a terminal the
// caller must pass --yes.
func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	if !a.Interactive {
		return false, errors.New("refusing to continue without a terminal; pass --yes")
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Inspect and manage stored snapshots",
	}

	cmd.AddCommand(
		newSnapshotListCmd(app),
		newSnapshotShowCmd(app),
		newSnapshotPruneCmd(app),
		newSnapshotExportCmd(app),
	)

	return cmd
}

func newSnapshotListCmd(app *App) *cobra.Command {
	var formatStr string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormatFlag(formatStr)
			if err != nil {
				return err
			}
			snaps, err := app.Snapshots.List(cmdContext(cmd), contract.SnapshotListRequest{Format: format, Limit: limit})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snaps)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshotList(snaps, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "Only list this export format")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots; 0 lists all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

// resolveSnapshot accepts an id or "latest" together with a format.
func resolveSnapshot(cmd *cobra.Command, app *App, ref, formatStr string) (*domain.Snapshot, error) {
	ctx := cmdContext(cmd)
	if ref != "latest" {
		return app.Snapshots.Get(ctx, ref)
	}
	if formatStr == "" {
		return nil, errors.New(`"latest" needs --format`)
	}
	format, err := contract.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	return app.Snapshots.Latest(ctx, format)
}

func newSnapshotShowCmd(app *App) *cobra.Command {
	var formatStr string
	var asJSON, tree bool

	cmd := &cobra.Command{
		Use:   "show <id|latest>",
		Short: "Show one snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := resolveSnapshot(cmd, app, args[0], formatStr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, snap)
			}
			fmt.Fprintln(out, formatter.FormatSnapshot(snap))
			if tree && snap.Schedule != nil {
				fmt.Fprint(out, formatter.FormatSchedule(snap.Schedule, formatter.TreeOptions{SkipEmpty: true}))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "Export format, required with latest")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full snapshot as JSON")
	cmd.Flags().BoolVar(&tree, "tree", false, "Also print the stored hierarchy")

	return cmd
}

func newSnapshotPruneCmd(app *App) *cobra.Command {
	var formatStr string
	var keep int
	var yes bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old snapshots, keeping the newest",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := contract.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("keep") {
				keep = app.Config.SnapshotKeep
			}
			if !yes {
				ok, err := app.confirm(fmt.Sprintf("Keep the newest %d %s snapshot(s) and delete the rest?", keep, format))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			n, err := app.Snapshots.Prune(cmdContext(cmd), format, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d %s snapshot(s)\n", n, format)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "Export format to prune (required)")
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of snapshots to keep (default from config)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func newSnapshotExportCmd(app *App) *cobra.Command {
	var formatStr, dest string

	cmd := &cobra.Command{
		Use:   "export <id|latest>",
		Short: "Write a snapshot as JSON to a file or s3://bucket/key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.ExportRequest{SnapshotID: args[0], Destination: dest}
			if args[0] == "latest" {
				if formatStr == "" {
					return errors.New(`"latest" needs --format`)
				}
				format, err := contract.ParseFormat(formatStr)
				if err != nil {
					return err
				}
				req.SnapshotID, req.Format = "", format
			}
			res, err := app.Snapshots.Export(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%d bytes)\n", res.SnapshotID, res.Destination, res.Bytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "Export format, required with latest")
	cmd.Flags().StringVar(&dest, "to", "", "Destination path or s3://bucket/key (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
