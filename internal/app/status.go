package app

import (
	"time"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/scheduler"
)

type StatusRequest struct {
	Now *time.Time
	// MilestoneHorizonDays bounds the upcoming milestone list.
	MilestoneHorizonDays int
	IncludeSchedule      bool
}

func NewStatusRequest() StatusRequest {
	return StatusRequest{
		MilestoneHorizonDays: 14,
	}
}

type PhaseStatusView struct {
	ID            domain.PhaseID      `json:"id"`
	Name          string              `json:"name"`
	Icon          string              `json:"icon"`
	Source        domain.SourceFormat `json:"source"`
	Status        domain.PhaseStatus  `json:"status"`
	Progress      int                 `json:"progress"`
	Total         int                 `json:"total"`
	Completed     int                 `json:"completed"`
	InProgress    int                 `json:"in_progress"`
	Pending       int                 `json:"pending"`
	Delayed       int                 `json:"delayed"`
	Critical      int                 `json:"critical"`
	OnTime        int                 `json:"on_time"`
	Assets        int                 `json:"assets"`
	Start         *time.Time          `json:"start,omitempty"`
	Finish        *time.Time          `json:"finish,omitempty"`
	EstimatedDays int                 `json:"estimated_days"`
	DaysRemaining int                 `json:"days_remaining"`
	// Pace compares progress with the elapsed share of the phase window.
	Pace scheduler.PaceResult `json:"pace"`
}

type StatusSummary struct {
	GeneratedAt     time.Time      `json:"generated_at"`
	Title           string         `json:"title"`
	OverallProgress int            `json:"overall_progress"`
	CurrentPhase    domain.PhaseID `json:"current_phase"`
	CountsTotal     int            `json:"counts_total"`
	CountsCompleted int            `json:"counts_completed"`
	CountsDelayed   int            `json:"counts_delayed"`
	CountsCritical  int            `json:"counts_critical"`
	CountsOnTime    int            `json:"counts_on_time"`
}

type StatusResponse struct {
	Summary    StatusSummary        `json:"summary"`
	Phases     []PhaseStatusView    `json:"phases"`
	Sources    []SourceView         `json:"sources"`
	Milestones []domain.Milestone   `json:"milestones,omitempty"`
	Areas      []domain.AreaSummary `json:"areas,omitempty"`
	// Schedule is the merged hierarchy; set when IncludeSchedule is requested.
	Schedule *domain.Schedule `json:"schedule,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}
