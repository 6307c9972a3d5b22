package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
)

// TreeOptions narrows what FormatSchedule prints.
type TreeOptions struct {
	// Phase limits output to one phase; empty prints all four.
	Phase domain.PhaseID
	// Depth limits nesting below the phase; 0 prints everything.
	Depth int
	// SkipEmpty hides phases with no records.
	SkipEmpty bool
}

// FormatSchedule renders the phase, asset and sub-activity hierarchy.
func FormatSchedule(s *domain.Schedule, opts TreeOptions) string {
	var items []TreeItem
	for _, p := range s.Phases {
		if opts.Phase != "" && p.ID != opts.Phase {
			continue
		}
		if opts.SkipEmpty && p.Total == 0 {
			continue
		}
		items = append(items, TreeItem{
			Title:  p.Display.Icon + " " + Bold(p.Name),
			Status: string(p.Status),
			Detail: fmt.Sprintf("%d/%d · %d%%", p.Completed, p.Total, p.Progress),
		})
		if opts.Depth == 1 {
			continue
		}
		for i, a := range p.Assets {
			path := []bool{i == len(p.Assets)-1}
			items = append(items, TreeItem{
				Title:  a.Name,
				Code:   a.Code,
				Path:   path,
				Status: string(a.Status),
				Detail: fmt.Sprintf("%d%% · %s", a.Progress, a.Type),
			})
			items = appendActivities(items, a.SubActivities, path, 2, opts.Depth)
		}
	}
	if len(items) == 0 {
		return Dim("No records.") + "\n"
	}

	var b strings.Builder
	if s.Metadata.Title != "" {
		b.WriteString(Header(s.Metadata.Title) + "\n")
	}
	b.WriteString(RenderTree(items))
	if len(s.Unclassified) > 0 {
		b.WriteString(Dim(fmt.Sprintf("\n%d record(s) matched no phase rule: %s\n",
			len(s.Unclassified), strings.Join(s.Unclassified, ", "))))
	}
	return b.String()
}

func appendActivities(items []TreeItem, acts []domain.SubActivity, parent []bool, depth, maxDepth int) []TreeItem {
	if maxDepth > 0 && depth > maxDepth {
		return items
	}
	for i, act := range acts {
		path := make([]bool, len(parent)+1)
		copy(path, parent)
		path[len(parent)] = i == len(acts)-1

		detail := fmt.Sprintf("%.0f%%", act.Progress)
		if act.Finish != nil {
			detail += " · " + ShortDate(act.Finish)
		}
		if act.Responsible != "" {
			detail += " · " + act.Responsible
		}
		items = append(items, TreeItem{
			Title:     act.Name,
			Code:      act.Code,
			Path:      path,
			Status:    string(act.Status),
			Detail:    detail,
			Critical:  act.Critical,
			Milestone: act.Milestone,
		})
		items = appendActivities(items, act.Children, path, depth+1, maxDepth)
	}
	return items
}
