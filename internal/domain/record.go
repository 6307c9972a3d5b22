package domain

import (
	"strings"
	"time"
)

// ScheduleRecord is one validated row of a schedule export.
type ScheduleRecord struct {
	ID       string `json:"id"`
	UniqueID string `json:"unique_id,omitempty"`
	Row      int    `json:"row"`

	Level int    `json:"level"`
	Code  string `json:"code,omitempty"`
	// Name keeps leading whitespace; indentation-based exports encode depth there.
	Name string `json:"name"`

	Percent         float64  `json:"percent"`
	PhysicalPercent *float64 `json:"physical_percent,omitempty"`
	BaselinePercent *float64 `json:"baseline_percent,omitempty"`

	Duration       string     `json:"duration,omitempty"`
	Start          *time.Time `json:"start,omitempty"`
	Finish         *time.Time `json:"finish,omitempty"`
	BaselineStart  *time.Time `json:"baseline_start,omitempty"`
	BaselineFinish *time.Time `json:"baseline_finish,omitempty"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualFinish   *time.Time `json:"actual_finish,omitempty"`

	Predecessors string `json:"predecessors,omitempty"`
	Responsible  string `json:"responsible,omitempty"`
	Area         string `json:"area,omitempty"`
}

// DisplayName returns the record name without indentation.
func (r ScheduleRecord) DisplayName() string {
	return strings.TrimSpace(r.Name)
}

// PredecessorRefs splits the raw predecessor column into individual references.
// Both ";" and "," separate entries in the exports seen in the field.
func (r ScheduleRecord) PredecessorRefs() []string {
	raw := strings.TrimSpace(r.Predecessors)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(c rune) bool { return c == ';' || c == ',' })
	refs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	return refs
}

// CompoundPredecessors reports whether the record references more than one
// predecessor with the semicolon list syntax.
func (r ScheduleRecord) CompoundPredecessors() bool {
	return strings.Contains(r.Predecessors, ";")
}
