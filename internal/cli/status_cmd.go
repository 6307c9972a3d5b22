package cli

import (
	"fmt"

	"github.com/alexanderramin/parada/internal/cli/formatter"
	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	var at string
	var horizon int
	var asJSON, withSchedule bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the four-phase shutdown dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.NewStatusRequest()
			if cmd.Flags().Changed("horizon") {
				req.MilestoneHorizonDays = horizon
			}
			now, err := parseDate(at)
			if err != nil {
				return err
			}
			req.Now = now
			req.IncludeSchedule = withSchedule && asJSON

			resp, err := app.Status.GetStatus(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			ref := app.now()
			if now != nil {
				ref = *now
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(resp, ref))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate against this date (YYYY-MM-DD) instead of now")
	cmd.Flags().IntVar(&horizon, "horizon", 14, "Days ahead to list milestones; 0 lists all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard as JSON")
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "Include the merged hierarchy in JSON output")

	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	var phase, source string
	var depth int
	var skipEmpty bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the phase, asset and activity hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := formatter.TreeOptions{Depth: depth, SkipEmpty: skipEmpty}
			if phase != "" {
				if !domain.ValidPhaseIDs[phase] {
					return fmt.Errorf("unknown phase %q (want preparation, shutdown, maintenance or startup)", phase)
				}
				opts.Phase = domain.PhaseID(phase)
			}

			ctx := cmdContext(cmd)
			var sched *domain.Schedule
			if source == "" {
				req := contract.NewStatusRequest()
				req.IncludeSchedule = true
				resp, err := app.Status.GetStatus(ctx, req)
				if err != nil {
					return err
				}
				sched = resp.Schedule
			} else {
				format, err := contract.ParseFormat(source)
				if err != nil {
					return err
				}
				snap, err := app.Snapshots.Latest(ctx, format)
				if err != nil {
					return err
				}
				sched = snap.Schedule
			}
			if sched == nil {
				return fmt.Errorf("snapshot has no stored hierarchy")
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSchedule(sched, opts))
			return nil
		},
	}

	cmd.Flags().StringVar(&phase, "phase", "", "Only print this phase")
	cmd.Flags().StringVar(&source, "source", "", "Read one export format (preparation or pfus3) instead of the merged view")
	cmd.Flags().IntVar(&depth, "depth", 0, "Nesting depth below each phase; 0 prints everything")
	cmd.Flags().BoolVar(&skipEmpty, "skip-empty", false, "Hide phases with no records")

	return cmd
}

func newCriticalCmd(app *App) *cobra.Command {
	var formatStr string
	var onlyCritical, asJSON bool

	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Compute the critical path from predecessor links",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.CriticalPathRequest{OnlyCritical: onlyCritical}
			if formatStr != "" {
				f, err := contract.ParseFormat(formatStr)
				if err != nil {
					return err
				}
				req.Format = f
			}
			resp, err := app.CriticalPath.CriticalPath(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCriticalPath(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "", "Export format to analyse (default preparation)")
	cmd.Flags().BoolVar(&onlyCritical, "only-critical", false, "List only tasks on the critical path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")

	return cmd
}
