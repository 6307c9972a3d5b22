package service

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/scheduler"
)

// StatusOptions carries the keyword rules and threshold used to re-evaluate
// stored schedules. Zero values fall back to the importer defaults.
type StatusOptions struct {
	Rules            *importer.RuleSet
	CriticalDuration float64
	Clock            func() time.Time
}

type statusService struct {
	snapshots        repository.SnapshotRepo
	rules            importer.RuleSet
	criticalDuration float64
	clock            func() time.Time
	observer         UseCaseObserver
}

func NewStatusService(snapshots repository.SnapshotRepo, opts StatusOptions, observers ...UseCaseObserver) StatusService {
	s := &statusService{
		snapshots:        snapshots,
		rules:            importer.DefaultRules(),
		criticalDuration: opts.CriticalDuration,
		clock:            time.Now,
		observer:         useCaseObserverOrNoop(observers),
	}
	if opts.Rules != nil {
		s.rules = *opts.Rules
	}
	if opts.Clock != nil {
		s.clock = opts.Clock
	}
	return s
}

// GetStatus merges the latest snapshot of each format into a four-phase
// dashboard. Phase counts and statuses are re-evaluated at req.Now, so a
// task that was on time at ingest shows as delayed once its finish passes.
func (s *statusService) GetStatus(ctx context.Context, req app.StatusRequest) (resp *app.StatusResponse, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "status", fields, &err)()

	now := nowOr(req.Now, s.clock)

	prep, err := latestOrNil(ctx, s.snapshots, domain.FormatPreparation)
	if err != nil {
		return nil, err
	}
	ops, err := latestOrNil(ctx, s.snapshots, domain.FormatPFUS3)
	if err != nil {
		return nil, err
	}
	if prep == nil && ops == nil {
		return nil, noData("")
	}

	var sources []app.SourceView
	var prepSched, opsSched *domain.Schedule
	if prep != nil {
		sources = append(sources, app.NewSourceView(prep))
		prepSched = s.reevaluate(prep.Schedule, now)
	}
	if ops != nil {
		sources = append(sources, app.NewSourceView(ops))
		opsSched = s.reevaluate(ops.Schedule, now)
	}
	fields["sources"] = len(sources)

	merged, phaseSources := domain.MergeSchedules(prepSched, opsSched)

	phases := make([]app.PhaseStatusView, 0, len(merged.Phases))
	for _, p := range merged.Phases {
		phases = append(phases, phaseView(p, phaseSources[p.ID], now))
	}

	resp = &app.StatusResponse{
		Summary:    buildStatusSummary(merged, phases, now),
		Phases:     phases,
		Sources:    sources,
		Milestones: upcomingMilestones(merged.Milestones, now, req.MilestoneHorizonDays),
		Areas:      merged.Areas,
		Warnings:   merged.Warnings,
	}
	if req.IncludeSchedule {
		resp.Schedule = merged
	}
	return resp, nil
}

func (s *statusService) reevaluate(sched *domain.Schedule, now time.Time) *domain.Schedule {
	return importer.Reevaluate(sched, s.rules, s.criticalDuration, now)
}

func phaseView(p domain.Phase, src domain.SourceFormat, now time.Time) app.PhaseStatusView {
	v := app.PhaseStatusView{
		ID:            p.ID,
		Name:          p.Name,
		Icon:          p.Display.Icon,
		Source:        src,
		Status:        p.Status,
		Progress:      p.Progress,
		Total:         p.Total,
		Completed:     p.Completed,
		InProgress:    p.InProgress,
		Pending:       p.Pending,
		Delayed:       p.Delayed,
		Critical:      p.Critical,
		OnTime:        p.OnTime,
		Assets:        len(p.Assets),
		Start:         p.Start,
		Finish:        p.Finish,
		EstimatedDays: p.EstimatedDays,
	}
	if p.Finish != nil && p.Finish.After(now) {
		v.DaysRemaining = ceilDays(p.Finish.Sub(now))
	}
	v.Pace = scheduler.ComputePace(scheduler.PaceInput{Now: now, Start: p.Start, Finish: p.Finish, Progress: p.Progress})
	return v
}

func buildStatusSummary(merged *domain.Schedule, phases []app.PhaseStatusView, now time.Time) app.StatusSummary {
	sum := app.StatusSummary{
		GeneratedAt:     now,
		Title:           merged.Metadata.Title,
		OverallProgress: merged.OverallProgress(),
	}
	if cur := merged.CurrentPhase(); cur != nil {
		sum.CurrentPhase = cur.ID
	}
	for _, p := range phases {
		sum.CountsTotal += p.Total
		sum.CountsCompleted += p.Completed
		sum.CountsDelayed += p.Delayed
		sum.CountsCritical += p.Critical
		sum.CountsOnTime += p.OnTime
	}
	return sum
}

// upcomingMilestones keeps unfinished milestones due within horizonDays of
// now, plus overdue ones, ordered by date. A non-positive horizon keeps all.
func upcomingMilestones(ms []domain.Milestone, now time.Time, horizonDays int) []domain.Milestone {
	out := make([]domain.Milestone, 0, len(ms))
	limit := now.AddDate(0, 0, horizonDays)
	for _, m := range ms {
		if m.Progress >= 100 {
			continue
		}
		if horizonDays > 0 && m.Date != nil && m.Date.After(limit) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if (a == nil) != (b == nil) {
			return a != nil
		}
		if a != nil && b != nil && !a.Equal(*b) {
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func ceilDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
