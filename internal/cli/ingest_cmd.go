package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/parada/internal/cli/formatter"
	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/spf13/cobra"
)

// ingestTarget is one export to read. Format is empty when it should be
// detected.
type ingestTarget struct {
	location string
	format   domain.SourceFormat
}

// configuredTargets lists the sources from the config file, preparation first.
func (a *App) configuredTargets() []ingestTarget {
	var out []ingestTarget
	if loc := a.Config.Sources.Preparation; loc != "" {
		out = append(out, ingestTarget{location: loc, format: domain.FormatPreparation})
	}
	if loc := a.Config.Sources.PFUS3; loc != "" {
		out = append(out, ingestTarget{location: loc, format: domain.FormatPFUS3})
	}
	return out
}

func resolveTargets(app *App, args []string, format domain.SourceFormat) ([]ingestTarget, error) {
	if len(args) == 0 {
		targets := app.configuredTargets()
		if len(targets) == 0 {
			return nil, errors.New("no location given and no sources configured (set sources.preparation or sources.pfus3)")
		}
		return targets, nil
	}
	targets := make([]ingestTarget, 0, len(args))
	for _, a := range args {
		targets = append(targets, ingestTarget{location: a, format: format})
	}
	return targets, nil
}

// buildIngestRequest reads stdin for "-" and leaves everything else to the
// service's loader.
func buildIngestRequest(cmd *cobra.Command, t ingestTarget, name string, dryRun bool) (contract.IngestRequest, error) {
	req := contract.IngestRequest{Format: t.format, Name: name, DryRun: dryRun}
	if t.location == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return req, fmt.Errorf("reading stdin: %w", err)
		}
		req.Data = data
		return req, nil
	}
	req.Location = t.location
	return req, nil
}

func (a *App) runIngest(cmd *cobra.Command, req contract.IngestRequest) (*contract.IngestResult, error) {
	if a.Interactive && strings.Contains(req.Location, "://") {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching "+req.Location)
		defer stop()
	}
	return a.Ingest.Ingest(cmdContext(cmd), req)
}

func newIngestCmd(app *App) *cobra.Command {
	var formatStr, name string
	var dryRun, asJSON bool

	cmd := &cobra.Command{
		Use:   "ingest [location...]",
		Short: "Ingest schedule exports and store snapshots",
		Long: `Ingest reads one or more CSV schedule exports, builds the phase hierarchy
and stores a snapshot per export format.

Locations may be file paths, http(s) URLs, s3://bucket/key references or
"-" for stdin. Without arguments the sources from the config file are read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormatFlag(formatStr)
			if err != nil {
				return err
			}
			targets, err := resolveTargets(app, args, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			results := make([]*contract.IngestResult, 0, len(targets))
			for _, t := range targets {
				req, err := buildIngestRequest(cmd, t, name, dryRun)
				if err != nil {
					return err
				}
				res, err := app.runIngest(cmd, req)
				if err != nil {
					var verr *importer.ValidationError
					if errors.As(err, &verr) && !asJSON {
						fmt.Fprint(out, formatter.FormatReport(verr.Report))
					}
					return fmt.Errorf("%s: %w", t.location, err)
				}
				if asJSON {
					results = append(results, res)
					continue
				}
				fmt.Fprint(out, formatter.FormatIngestResult(res))
			}
			if asJSON {
				return writeJSON(out, results)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "auto", "Export format: preparation, pfus3 or auto")
	cmd.Flags().StringVar(&name, "name", "", "File name used for format detection when reading stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the hierarchy without storing a snapshot")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	var formatStr, name string

	cmd := &cobra.Command{
		Use:   "validate <location>",
		Short: "Check an export without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormatFlag(formatStr)
			if err != nil {
				return err
			}
			req, err := buildIngestRequest(cmd, ingestTarget{location: args[0], format: format}, name, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			res, err := app.runIngest(cmd, req)
			if err != nil {
				var verr *importer.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprint(out, formatter.FormatReport(verr.Report))
					return fmt.Errorf("%s failed validation", args[0])
				}
				return err
			}
			if res.Report != nil {
				fmt.Fprint(out, formatter.FormatReport(res.Report))
			}
			fmt.Fprint(out, formatter.FormatIngestResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&formatStr, "format", "auto", "Export format: preparation, pfus3 or auto")
	cmd.Flags().StringVar(&name, "name", "", "File name used for format detection when reading stdin")

	return cmd
}
