package app

import (
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
)

// IngestRequest carries one export. Data wins over Location when both are
// set. An empty Format is detected from the header and Name.
type IngestRequest struct {
	Format   domain.SourceFormat
	Location string
	Name     string
	Data     []byte
	// DryRun runs the pipeline without storing a snapshot.
	DryRun bool
}

type IngestResult struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
	Report   *importer.Report `json:"report,omitempty"`
	// Cached is set when the hierarchy came from the schedule cache.
	Cached bool `json:"cached"`
	// Deduplicated is set when a concurrent call for the same content did the work.
	Deduplicated bool `json:"deduplicated"`
	// Unchanged is set when the latest stored snapshot already has this content.
	Unchanged bool `json:"unchanged"`
	Pruned    int  `json:"pruned"`
}
