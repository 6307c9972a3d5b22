package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// floatEpsilon absorbs rounding from fractional hour durations.
const floatEpsilon = 1e-6

// Task is one node of a precedence network. Hours is the working duration.
type Task struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Hours        float64  `json:"hours"`
	Predecessors []string `json:"predecessors,omitempty"`
}

// TaskTiming holds the forward and backward pass results for one task, in
// hours from the start of the network.
type TaskTiming struct {
	Task
	EarlyStart  float64 `json:"early_start"`
	EarlyFinish float64 `json:"early_finish"`
	LateStart   float64 `json:"late_start"`
	LateFinish  float64 `json:"late_finish"`
	Float       float64 `json:"float"`
	Critical    bool    `json:"critical"`
}

// CriticalPath is the outcome of Analyze.
type CriticalPath struct {
	// Tasks are returned in input order.
	Tasks        []TaskTiming
	Path         []string
	ProjectHours float64
	// MissingRefs lists predecessor references that name no task.
	MissingRefs []string
}

// CycleError reports a precedence loop. Edges holds the back edges found.
type CycleError struct {
	Edges [][2]string
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Edges))
	for _, edge := range e.Edges {
		parts = append(parts, fmt.Sprintf("circular dependency detected involving %q and %q", edge[0], edge[1]))
	}
	return strings.Join(parts, "; ")
}

var predecessorRef = regexp.MustCompile(`^\s*(\d+)`)

// PredecessorID extracts the task id from an MS Project link such as "12",
// "12FS+2 days" or "7SS". Link types and lags are not modelled; every link
// is treated as finish-to-start.
func PredecessorID(ref string) (string, bool) {
	m := predecessorRef.FindStringSubmatch(ref)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Analyze runs the critical path method over tasks.
func Analyze(tasks []Task) (*CriticalPath, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %d (%q): empty id", i+1, t.Name)
		}
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		if t.Hours < 0 || math.IsNaN(t.Hours) {
			return nil, fmt.Errorf("task %q: invalid duration %v", t.ID, t.Hours)
		}
		index[t.ID] = i
	}

	out := &CriticalPath{Tasks: make([]TaskTiming, len(tasks))}
	preds := make([][]int, len(tasks))
	succs := make([][]int, len(tasks))
	for i, t := range tasks {
		out.Tasks[i] = TaskTiming{Task: t}
		seen := make(map[int]bool, len(t.Predecessors))
		for _, ref := range t.Predecessors {
			j, ok := index[ref]
			if !ok {
				out.MissingRefs = append(out.MissingRefs, fmt.Sprintf("%s -> %s", t.ID, ref))
				continue
			}
			if j == i || seen[j] {
				continue
			}
			seen[j] = true
			preds[i] = append(preds[i], j)
			succs[j] = append(succs[j], i)
		}
	}

	if edges := detectCycles(tasks, succs); len(edges) > 0 {
		return nil, &CycleError{Edges: edges}
	}

	order := topoOrder(preds, succs)

	for _, i := range order {
		tt := &out.Tasks[i]
		for _, j := range preds[i] {
			tt.EarlyStart = math.Max(tt.EarlyStart, out.Tasks[j].EarlyFinish)
		}
		tt.EarlyFinish = tt.EarlyStart + tt.Hours
		out.ProjectHours = math.Max(out.ProjectHours, tt.EarlyFinish)
	}

	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		tt := &out.Tasks[i]
		tt.LateFinish = out.ProjectHours
		for _, j := range succs[i] {
			tt.LateFinish = math.Min(tt.LateFinish, out.Tasks[j].LateStart)
		}
		tt.LateStart = tt.LateFinish - tt.Hours
		tt.Float = tt.LateStart - tt.EarlyStart
		if math.Abs(tt.Float) < floatEpsilon {
			tt.Float = 0
		}
		tt.Critical = tt.Float <= 0
	}

	for _, i := range order {
		if out.Tasks[i].Critical {
			out.Path = append(out.Path, out.Tasks[i].ID)
		}
	}
	return out, nil
}

// topoOrder is Kahn's algorithm seeded in input order so ties resolve the
// same way on every run.
func topoOrder(preds, succs [][]int) []int {
	indeg := make([]int, len(preds))
	for i := range preds {
		indeg[i] = len(preds[i])
	}
	queue := make([]int, 0, len(preds))
	for i, d := range indeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, len(preds))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, j := range succs[i] {
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	return order
}

func detectCycles(tasks []Task, succs [][]int) [][2]string {
	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make([]int, len(tasks))
	var edges [][2]string

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		for _, j := range succs[i] {
			if color[j] == gray {
				edges = append(edges, [2]string{tasks[i].ID, tasks[j].ID})
				return true
			}
			if color[j] == white && visit(j) {
				return true
			}
		}
		color[i] = black
		return false
	}

	for i := range tasks {
		if color[i] == white {
			visit(i)
		}
	}
	return edges
}
