package importer

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

// DefaultCriticalDuration is the duration magnitude above which a task is
// treated as critical.
const DefaultCriticalDuration = 100

// Evaluator derives per-record flags and rolls them up into assets and
// phases. It is the only part of the pipeline that depends on the clock.
type Evaluator struct {
	Now              time.Time
	CriticalDuration float64
	tables           *keywordTables
}

// NewEvaluator builds an evaluator for rs at time now.
func NewEvaluator(rs RuleSet, now time.Time, criticalDuration float64) *Evaluator {
	if criticalDuration <= 0 {
		criticalDuration = DefaultCriticalDuration
	}
	return &Evaluator{Now: now, CriticalDuration: criticalDuration, tables: newKeywordTables(rs)}
}

// Completed reports a record at 100% or named as concluded.
func (e *Evaluator) Completed(rec domain.ScheduleRecord) bool {
	return rec.Percent >= 100 || containsAny(Fold(rec.DisplayName()), e.tables.completed)
}

// Delayed reports an unfinished record whose planned or baseline finish has passed.
func (e *Evaluator) Delayed(rec domain.ScheduleRecord) bool {
	if rec.Percent >= 100 {
		return false
	}
	return e.past(rec.Finish) || e.past(rec.BaselineFinish)
}

// Critical reports a record named with a critical keyword, with a compound
// predecessor list, or longer than the critical duration.
func (e *Evaluator) Critical(rec domain.ScheduleRecord) bool {
	if containsAny(Fold(rec.DisplayName()), e.tables.critical) {
		return true
	}
	if rec.CompoundPredecessors() {
		return true
	}
	d, ok := ParseDuration(rec.Duration)
	return ok && d.Magnitude > e.CriticalDuration
}

// Milestone reports a record whose duration parses to zero.
func (e *Evaluator) Milestone(rec domain.ScheduleRecord) bool {
	d, ok := ParseDuration(rec.Duration)
	return ok && d.Magnitude == 0
}

func (e *Evaluator) past(t *time.Time) bool {
	return t != nil && t.Before(e.Now)
}

func (e *Evaluator) activityStatus(rec domain.ScheduleRecord) domain.ActivityStatus {
	switch {
	case e.Completed(rec):
		return domain.ActivityCompleted
	case e.Delayed(rec):
		return domain.ActivityDelayed
	case rec.Percent > 0:
		return domain.ActivityInProgress
	default:
		return domain.ActivityPending
	}
}

// Activity converts a record into a sub-activity with derived flags.
func (e *Evaluator) Activity(rec domain.ScheduleRecord) domain.SubActivity {
	return domain.SubActivity{
		ID:               rec.ID,
		Code:             rec.Code,
		Name:             rec.DisplayName(),
		Level:            rec.Level,
		Progress:         rec.Percent,
		PhysicalProgress: rec.PhysicalPercent,
		Duration:         rec.Duration,
		Start:            rec.Start,
		Finish:           rec.Finish,
		Responsible:      rec.Responsible,
		Status:           e.activityStatus(rec),
		Milestone:        e.Milestone(rec),
		Critical:         e.Critical(rec),
		Predecessors:     rec.PredecessorRefs(),
	}
}

// Asset rolls sub-activities up into their asset. An asset without children
// reports its own completion.
func (e *Evaluator) Asset(rec domain.ScheduleRecord, subs []domain.SubActivity) domain.Asset {
	a := domain.Asset{
		ID:            rec.ID,
		Name:          rec.DisplayName(),
		Area:          rec.Area,
		Code:          rec.Code,
		Type:          e.tables.assetType(rec.DisplayName()),
		Category:      e.tables.category(rec.DisplayName()),
		SubActivities: subs,
	}
	if a.SubActivities == nil {
		a.SubActivities = []domain.SubActivity{}
	}

	if len(subs) == 0 {
		a.Progress = roundPercent(rec.Percent)
		a.Start, a.Finish = rec.Start, rec.Finish
		switch {
		case rec.Percent >= 100:
			a.Status = domain.AssetCompleted
		case e.Delayed(rec):
			a.Status = domain.AssetDelayed
		default:
			a.Status = domain.AssetInProgress
		}
		return a
	}

	var sum float64
	allDone, anyDelayed := true, false
	for _, s := range subs {
		sum += s.Progress
		allDone = allDone && s.Progress >= 100
		anyDelayed = anyDelayed || s.Status == domain.ActivityDelayed
		a.Start = domain.EarliestTime(a.Start, s.Start)
		a.Finish = domain.LatestTime(a.Finish, s.Finish)
	}
	a.Progress = roundPercent(sum / float64(len(subs)))
	switch {
	case allDone:
		a.Status = domain.AssetCompleted
	case anyDelayed:
		a.Status = domain.AssetDelayed
	default:
		a.Status = domain.AssetInProgress
	}
	return a
}

// Phase computes the counts and status of one phase from every record
// classified into it, whether or not the record was attached to an asset.
func (e *Evaluator) Phase(id domain.PhaseID, records []domain.ScheduleRecord, assets []domain.Asset) domain.Phase {
	p := domain.NewPhase(id)
	p.Assets = assets
	if p.Assets == nil {
		p.Assets = []domain.Asset{}
	}
	p.Total = len(records)

	for _, rec := range records {
		p.RecordIDs = append(p.RecordIDs, rec.ID)
		completed := e.Completed(rec)
		delayed := e.Delayed(rec)
		switch {
		case completed:
			p.Completed++
		case rec.Percent > 0:
			p.InProgress++
		default:
			p.Pending++
		}
		if delayed {
			p.Delayed++
		}
		if e.Critical(rec) {
			p.Critical++
		}
		p.Start = domain.EarliestTime(p.Start, rec.Start)
		p.Finish = domain.LatestTime(p.Finish, rec.Finish)
	}

	p.OnTime = max(0, p.Total-p.Delayed-p.Critical)
	if p.Total > 0 {
		p.Progress = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	p.Status = domain.PhaseStatusFor(p.Completed, p.Total)

	if p.Start != nil && p.Finish != nil && p.Finish.After(*p.Start) {
		p.EstimatedDays = ceilDays(p.Finish.Sub(*p.Start))
	}
	if p.Finish != nil {
		p.DaysRemaining = max(0, ceilDays(p.Finish.Sub(e.Now)))
	}
	return p
}

// Areas groups records by area label, falling back to the activity category
// for exports without an area column.
func (e *Evaluator) Areas(records []domain.ScheduleRecord) []domain.AreaSummary {
	type acc struct {
		count int
		sum   float64
		resp  map[string]bool
	}
	byArea := make(map[string]*acc)
	var order []string
	for _, rec := range records {
		label := domain.CoalesceStr(rec.Area, e.tables.category(rec.DisplayName()))
		if label == "" {
			continue
		}
		a, ok := byArea[label]
		if !ok {
			a = &acc{resp: make(map[string]bool)}
			byArea[label] = a
			order = append(order, label)
		}
		a.count++
		a.sum += rec.Percent
		if rec.Responsible != "" {
			a.resp[rec.Responsible] = true
		}
	}

	out := make([]domain.AreaSummary, 0, len(order))
	for _, label := range order {
		a := byArea[label]
		resp := make([]string, 0, len(a.resp))
		for r := range a.resp {
			resp = append(resp, r)
		}
		sort.Strings(resp)
		out = append(out, domain.AreaSummary{
			Area:         label,
			Records:      a.count,
			Progress:     roundPercent(a.sum / float64(a.count)),
			Responsibles: resp,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Records > out[j].Records })
	return out
}

// Reevaluate rebuilds the phases of a stored schedule at now, keeping each
// record in the phase it was classified into at ingest. Delayed counts,
// asset and activity statuses and days remaining move with the clock. sched
// is not modified. A schedule whose records do not match its phase totals
// is returned as is.
func Reevaluate(sched *domain.Schedule, rs RuleSet, criticalDuration float64, now time.Time) *domain.Schedule {
	if sched == nil || len(sched.Records) == 0 {
		return sched
	}
	schema, err := SchemaFor(sched.Format)
	if err != nil {
		return sched
	}

	phaseOf := make(map[string]domain.PhaseID, len(sched.Records))
	want := 0
	for _, p := range sched.Phases {
		want += p.Total
		for _, id := range p.RecordIDs {
			phaseOf[id] = p.ID
		}
	}
	groups := make(map[domain.PhaseID][]domain.ScheduleRecord, len(domain.PhaseOrder))
	got := 0
	for _, rec := range sched.Records {
		if id, ok := phaseOf[rec.ID]; ok {
			groups[id] = append(groups[id], rec)
			got++
		}
	}
	if got != want {
		return sched
	}

	eval := NewEvaluator(rs, now, criticalDuration)
	builder := BuilderFor(schema.Hierarchy)
	out := *sched
	out.Phases = make([]domain.Phase, 0, len(domain.PhaseOrder))
	for _, id := range domain.PhaseOrder {
		assets, _ := builder.Build(groups[id], eval)
		out.Phases = append(out.Phases, eval.Phase(id, groups[id], assets))
	}
	return &out
}

// milestoneFor returns the milestone entry for rec, or false when rec is not one.
func (e *Evaluator) milestoneFor(rec domain.ScheduleRecord, phase domain.PhaseID) (domain.Milestone, bool) {
	if !e.Milestone(rec) && !containsAny(Fold(rec.DisplayName()), e.tables.milestone) {
		return domain.Milestone{}, false
	}
	return domain.Milestone{
		ID:       rec.ID,
		Name:     rec.DisplayName(),
		Phase:    phase,
		Date:     domain.CoalesceTime(rec.Finish, rec.Start),
		Progress: rec.Percent,
	}, true
}

func roundPercent(v float64) int {
	return int(math.Round(min(max(v, 0), 100)))
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
