package domain

import (
	"sort"
	"strings"
)

// MergeSchedules combines the preparation export and the operational export
// into one four-phase view. The preparation phase comes from prep when it has
// records; every other phase comes from ops. Either argument may be nil.
// The returned map records which format each phase was taken from.
func MergeSchedules(prep, ops *Schedule) (*Schedule, map[PhaseID]SourceFormat) {
	sources := make(map[PhaseID]SourceFormat, len(PhaseOrder))
	out := &Schedule{}
	if prep == nil && ops == nil {
		return out, sources
	}

	primary := ops
	if primary == nil {
		primary = prep
	}
	out.Metadata = primary.Metadata
	out.GeneratedAt = primary.GeneratedAt
	if prep != nil && ops != nil && prep.GeneratedAt.After(ops.GeneratedAt) {
		out.GeneratedAt = prep.GeneratedAt
	}

	var hashes []string
	for _, s := range []*Schedule{prep, ops} {
		if s == nil {
			continue
		}
		hashes = append(hashes, s.ContentHash)
		out.Warnings = append(out.Warnings, s.Warnings...)
		out.Unclassified = append(out.Unclassified, s.Unclassified...)
		out.Unattached += s.Unattached
	}
	out.ContentHash = strings.Join(hashes, "+")

	for _, id := range PhaseOrder {
		from := ops
		if id == PhasePreparation && prep != nil {
			if p := prep.Phase(id); p != nil && p.Total > 0 {
				from = prep
			}
		}
		if from == nil {
			from = prep
		}
		p := from.Phase(id)
		if p == nil {
			out.Phases = append(out.Phases, NewPhase(id))
			continue
		}
		out.Phases = append(out.Phases, *p)
		sources[id] = from.Format
		for _, m := range from.Milestones {
			if m.Phase == id {
				out.Milestones = append(out.Milestones, m)
			}
		}
	}

	out.Areas = mergeAreas(prep, ops)
	return out, sources
}

// mergeAreas keys areas by label; the operational export wins on conflict.
func mergeAreas(prep, ops *Schedule) []AreaSummary {
	byArea := make(map[string]AreaSummary)
	var order []string
	for _, s := range []*Schedule{prep, ops} {
		if s == nil {
			continue
		}
		for _, a := range s.Areas {
			if _, ok := byArea[a.Area]; !ok {
				order = append(order, a.Area)
			}
			byArea[a.Area] = a
		}
	}
	out := make([]AreaSummary, 0, len(order))
	for _, label := range order {
		out = append(out, byArea[label])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Records > out[j].Records })
	return out
}
