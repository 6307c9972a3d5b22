package domain

import (
	"math"
	"time"
)

// Metadata is read from the summary row of an export, when one exists.
type Metadata struct {
	Title    string     `json:"title"`
	Start    *time.Time `json:"start,omitempty"`
	Finish   *time.Time `json:"finish,omitempty"`
	Duration string     `json:"duration,omitempty"`
	Progress *float64   `json:"progress,omitempty"`
}

// AreaSummary groups records by their area or work-front label.
type AreaSummary struct {
	Area         string   `json:"area"`
	Records      int      `json:"records"`
	Progress     int      `json:"progress"`
	Responsibles []string `json:"responsibles,omitempty"`
}

// Milestone is a zero-duration or otherwise marked checkpoint in the schedule.
type Milestone struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Phase    PhaseID    `json:"phase"`
	Date     *time.Time `json:"date,omitempty"`
	Progress float64    `json:"progress"`
}

// RowStats counts the rows of one export as seen by the validator.
type RowStats struct {
	TotalRows     int `json:"total_rows"`
	ValidRows     int `json:"valid_rows"`
	InvalidRows   int `json:"invalid_rows"`
	Phases        int `json:"phases"`
	Assets        int `json:"assets"`
	SubActivities int `json:"sub_activities"`
}

// Schedule is the output of one ingestion pass.
type Schedule struct {
	Format      SourceFormat `json:"format"`
	ContentHash string       `json:"content_hash"`
	GeneratedAt time.Time    `json:"generated_at"`

	Metadata Metadata `json:"metadata"`
	Phases   []Phase  `json:"phases"`

	Areas      []AreaSummary `json:"areas,omitempty"`
	Milestones []Milestone   `json:"milestones,omitempty"`

	// Records holds every classified record in file order.
	Records []ScheduleRecord `json:"records,omitempty"`
	// Unclassified lists record IDs that matched no phase rule.
	Unclassified []string `json:"unclassified,omitempty"`
	// Unattached counts level-4+ records that found no asset.
	Unattached int      `json:"unattached"`
	Warnings   []string `json:"warnings,omitempty"`
	// Stats is kept so a cached schedule can reproduce its report.
	Stats RowStats `json:"stats"`
}

// Phase returns the phase with the given id, or nil.
func (s *Schedule) Phase(id PhaseID) *Phase {
	for i := range s.Phases {
		if s.Phases[i].ID == id {
			return &s.Phases[i]
		}
	}
	return nil
}

// TotalRecords sums the task counts of all phases.
func (s *Schedule) TotalRecords() int {
	total := 0
	for _, p := range s.Phases {
		total += p.Total
	}
	return total
}

// OverallProgress weights each phase's progress by its estimated duration.
// Phases without a duration count as one day so they are not ignored.
func (s *Schedule) OverallProgress() int {
	var weighted, weights float64
	for _, p := range s.Phases {
		if p.Total == 0 {
			continue
		}
		w := float64(p.EstimatedDays)
		if w <= 0 {
			w = 1
		}
		weighted += float64(p.Progress) * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return int(math.Round(weighted / weights))
}

// CurrentPhase returns the first populated phase in execution order that is
// not completed, or the last phase when all are done.
func (s *Schedule) CurrentPhase() *Phase {
	for _, id := range PhaseOrder {
		p := s.Phase(id)
		if p == nil || p.Total == 0 {
			continue
		}
		if p.Status != PhaseCompleted {
			return p
		}
	}
	if len(s.Phases) == 0 {
		return nil
	}
	return &s.Phases[len(s.Phases)-1]
}
