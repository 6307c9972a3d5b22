package importer

import (
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
)

// HierarchyBuilder groups the records of one phase into assets and
// sub-activities. It returns the assets and the number of records that could
// not be attached to any asset.
type HierarchyBuilder interface {
	Build(records []domain.ScheduleRecord, eval *Evaluator) ([]domain.Asset, int)
}

// BuilderFor returns the builder matching a hierarchy mode.
func BuilderFor(mode HierarchyMode) HierarchyBuilder {
	if mode == HierarchyByIndent {
		return IndentHierarchy{}
	}
	return CodeHierarchy{}
}

// CodeHierarchy reads structure from structural codes. Level-3 records are
// assets; level-4+ records attach to the deepest asset whose code they
// extend. Level-4+ records without a usable code attach to the closest
// preceding asset in file order.
type CodeHierarchy struct{}

type assetSlot struct {
	rec  domain.ScheduleRecord
	subs []domain.SubActivity
}

func (CodeHierarchy) Build(records []domain.ScheduleRecord, eval *Evaluator) ([]domain.Asset, int) {
	var slots []*assetSlot
	byCode := make(map[string]*assetSlot)
	for _, rec := range records {
		if rec.Level != 3 {
			continue
		}
		slot := &assetSlot{rec: rec}
		slots = append(slots, slot)
		if rec.Code != "" {
			if _, dup := byCode[rec.Code]; !dup {
				byCode[rec.Code] = slot
			}
		}
	}

	unattached := 0
	var last *assetSlot
	next := 0
	for _, rec := range records {
		if rec.Level == 3 {
			last = slots[next]
			next++
			continue
		}
		if rec.Level < 4 {
			continue
		}
		var parent *assetSlot
		if codePattern.MatchString(rec.Code) {
			parent = deepestAncestor(rec.Code, byCode)
		} else {
			parent = last
		}
		if parent == nil {
			unattached++
			continue
		}
		parent.subs = append(parent.subs, eval.Activity(rec))
	}

	assets := make([]domain.Asset, 0, len(slots))
	for _, s := range slots {
		assets = append(assets, eval.Asset(s.rec, s.subs))
	}
	return assets, unattached
}

func deepestAncestor(code string, byCode map[string]*assetSlot) *assetSlot {
	parts := strings.Split(code, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		if slot, ok := byCode[strings.Join(parts[:i], ".")]; ok {
			return slot
		}
	}
	return nil
}

// IndentHierarchy reads structure from leading whitespace, four spaces per
// level. Top-level records become assets and everything below them nests as
// sub-activities.
type IndentHierarchy struct{}

type indentNode struct {
	rec      domain.ScheduleRecord
	children []*indentNode
}

func (IndentHierarchy) Build(records []domain.ScheduleRecord, eval *Evaluator) ([]domain.Asset, int) {
	var roots, stack []*indentNode
	for _, rec := range records {
		n := &indentNode{rec: rec}
		for len(stack) > 0 && stack[len(stack)-1].rec.Level >= rec.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
	}

	assets := make([]domain.Asset, 0, len(roots))
	for _, root := range roots {
		assets = append(assets, eval.Asset(root.rec, nestActivities(root.children, eval)))
	}
	return assets, 0
}

func nestActivities(nodes []*indentNode, eval *Evaluator) []domain.SubActivity {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]domain.SubActivity, 0, len(nodes))
	for _, n := range nodes {
		act := eval.Activity(n.rec)
		act.Children = nestActivities(n.children, eval)
		out = append(out, act)
	}
	return out
}
