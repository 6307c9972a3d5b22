package app

import "github.com/alexanderramin/parada/internal/domain"

type SnapshotListRequest struct {
	Format domain.SourceFormat
	Limit  int
}

type ExportRequest struct {
	// SnapshotID selects a snapshot; empty means the latest of Format.
	SnapshotID  string
	Format      domain.SourceFormat
	Destination string
}

type ExportResult struct {
	SnapshotID  string `json:"snapshot_id,omitempty"`
	Destination string `json:"destination"`
	Bytes       int    `json:"bytes"`
}
