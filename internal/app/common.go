package app

import (
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

// SourceView describes the snapshot a merged view was built from.
type SourceView struct {
	Format       domain.SourceFormat `json:"format"`
	SnapshotID   string              `json:"snapshot_id,omitempty"`
	Title        string              `json:"title"`
	Source       string              `json:"source"`
	ContentHash  string              `json:"content_hash"`
	Records      int                 `json:"records"`
	Warnings     int                 `json:"warnings,omitempty"`
	Unclassified int                 `json:"unclassified"`
	IngestedAt   time.Time           `json:"ingested_at"`
}

// NewSourceView summarises a stored snapshot.
func NewSourceView(s *domain.Snapshot) SourceView {
	return SourceView{
		Format:       s.Format,
		SnapshotID:   s.ID,
		Title:        s.Title,
		Source:       s.Source,
		ContentHash:  s.ContentHash,
		Records:      s.Records,
		Warnings:     s.Warnings,
		Unclassified: s.Unclassified,
		IngestedAt:   s.CreatedAt,
	}
}

type ErrorCode string

const (
	ErrNoData        ErrorCode = "NO_DATA"
	ErrInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrEmptyInput    ErrorCode = "EMPTY_INPUT"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
)

// Error is a use-case failure the caller can act on.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ParseFormat accepts a format name and reports INVALID_FORMAT otherwise.
func ParseFormat(s string) (domain.SourceFormat, error) {
	if !domain.ValidSourceFormats[s] {
		return "", &Error{Code: ErrInvalidFormat, Message: fmt.Sprintf("unknown format %q (want preparation or pfus3)", s)}
	}
	return domain.SourceFormat(s), nil
}
