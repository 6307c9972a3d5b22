package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/parada/internal/config"
	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/httpserver"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds references to the services and settings used by CLI commands.
type App struct {
	Ingest       service.IngestService
	Status       service.StatusService
	Snapshots    service.SnapshotService
	CriticalPath service.CriticalPathService

	Rules  importer.RuleSet
	Config config.Config
	DB     httpserver.Pinger
	Logger *zap.Logger

	// Interactive is set when stdin is a terminal. Prompts and spinners
	// are only shown when it is.
	Interactive bool
	// Confirm asks a yes/no question; nil uses a huh prompt.
	Confirm func(title string) (bool, error)
	Now     func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func (a *App) services() httpserver.Services {
	return httpserver.Services{
		Ingest:       a.Ingest,
		Status:       a.Status,
		Snapshots:    a.Snapshots,
		CriticalPath: a.CriticalPath,
	}
}

// NewRootCmd creates the top-level "parada" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "parada",
		Short:         "Plant shutdown schedule ingestion and dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newIngestCmd(app),
		newValidateCmd(app),
		newStatusCmd(app),
		newTreeCmd(app),
		newCriticalCmd(app),
		newSnapshotCmd(app),
		newRulesCmd(app),
		newServeCmd(app),
		newWatchCmd(app),
		newViewCmd(app),
	)

	return root
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseFormatFlag accepts an empty value or "auto" as "detect".
func parseFormatFlag(s string) (domain.SourceFormat, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return "", nil
	}
	return contract.ParseFormat(s)
}

// parseDate reads a --at style flag value.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}
