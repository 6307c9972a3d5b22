package app

import (
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/scheduler"
)

type CriticalPathRequest struct {
	// Format defaults to preparation, the export that carries predecessor links.
	Format       domain.SourceFormat
	OnlyCritical bool
}

type CriticalPathResponse struct {
	Format       domain.SourceFormat    `json:"format"`
	SnapshotID   string                 `json:"snapshot_id,omitempty"`
	ProjectHours float64                `json:"project_hours"`
	ProjectDays  float64                `json:"project_days"`
	Path         []string               `json:"path,omitempty"`
	Tasks        []scheduler.TaskTiming `json:"tasks"`
	Warnings     []string               `json:"warnings,omitempty"`
}
