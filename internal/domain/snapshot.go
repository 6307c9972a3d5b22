package domain

import "time"

// Snapshot is a persisted copy of the last successful hierarchy built from
// one export format.
type Snapshot struct {
	ID              string       `json:"id"`
	Format          SourceFormat `json:"format"`
	Source          string       `json:"source"`
	ContentHash     string       `json:"content_hash"`
	Title           string       `json:"title"`
	Records         int          `json:"records"`
	Warnings        int          `json:"warnings"`
	Unclassified    int          `json:"unclassified"`
	OverallProgress int          `json:"overall_progress"`
	Schedule        *Schedule    `json:"schedule,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewSnapshot summarises s for storage. ID and CreatedAt are left to the caller.
func NewSnapshot(source string, s *Schedule) *Snapshot {
	return &Snapshot{
		Format:          s.Format,
		Source:          source,
		ContentHash:     s.ContentHash,
		Title:           s.Metadata.Title,
		Records:         s.TotalRecords(),
		Warnings:        len(s.Warnings),
		Unclassified:    len(s.Unclassified),
		OverallProgress: s.OverallProgress(),
		Schedule:        s,
	}
}
