package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timing(t *testing.T, cp *CriticalPath, id string) TaskTiming {
	t.Helper()
	for _, tt := range cp.Tasks {
		if tt.ID == id {
			return tt
		}
	}
	t.Fatalf("task %q not in result", id)
	return TaskTiming{}
}

func diamond() []Task {
	return []Task{
		{ID: "1", Name: "Mobilizar equipe", Hours: 8},
		{ID: "2", Name: "Montar andaime", Hours: 16, Predecessors: []string{"1"}},
		{ID: "3", Name: "Isolar área", Hours: 4, Predecessors: []string{"1"}},
		{ID: "4", Name: "Liberar frente", Hours: 8, Predecessors: []string{"2", "3"}},
	}
}

func TestAnalyze_Diamond(t *testing.T) {
	cp, err := Analyze(diamond())
	require.NoError(t, err)

	assert.InDelta(t, 32, cp.ProjectHours, 1e-9)
	assert.Equal(t, []string{"1", "2", "4"}, cp.Path)
	assert.Empty(t, cp.MissingRefs)

	scaffold := timing(t, cp, "2")
	assert.InDelta(t, 8, scaffold.EarlyStart, 1e-9)
	assert.InDelta(t, 24, scaffold.EarlyFinish, 1e-9)
	assert.InDelta(t, 0, scaffold.Float, 1e-9)
	assert.True(t, scaffold.Critical)

	isolate := timing(t, cp, "3")
	assert.InDelta(t, 8, isolate.EarlyStart, 1e-9)
	assert.InDelta(t, 20, isolate.LateStart, 1e-9)
	assert.InDelta(t, 24, isolate.LateFinish, 1e-9)
	assert.InDelta(t, 12, isolate.Float, 1e-9)
	assert.False(t, isolate.Critical)
}

func TestAnalyze_PreservesInputOrder(t *testing.T) {
	tasks := diamond()
	tasks[0], tasks[3] = tasks[3], tasks[0]
	cp, err := Analyze(tasks)
	require.NoError(t, err)
	ids := make([]string, len(cp.Tasks))
	for i, tt := range cp.Tasks {
		ids[i] = tt.ID
	}
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids)
	assert.Equal(t, []string{"1", "2", "4"}, cp.Path)
}

func TestAnalyze_IndependentChains(t *testing.T) {
	cp, err := Analyze([]Task{
		{ID: "a", Hours: 10},
		{ID: "b", Hours: 4},
		{ID: "c", Hours: 2, Predecessors: []string{"b"}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 10, cp.ProjectHours, 1e-9)
	assert.Equal(t, []string{"a"}, cp.Path)
	assert.InDelta(t, 4, timing(t, cp, "c").Float, 1e-9)
}

func TestAnalyze_MilestonesHaveZeroDuration(t *testing.T) {
	cp, err := Analyze([]Task{
		{ID: "1", Hours: 8},
		{ID: "2", Name: "Início do blackout", Hours: 0, Predecessors: []string{"1"}},
	})
	require.NoError(t, err)
	ms := timing(t, cp, "2")
	assert.InDelta(t, 8, ms.EarlyStart, 1e-9)
	assert.InDelta(t, 8, ms.EarlyFinish, 1e-9)
	assert.True(t, ms.Critical)
}

func TestAnalyze_MissingPredecessorIsReported(t *testing.T) {
	cp, err := Analyze([]Task{
		{ID: "1", Hours: 8, Predecessors: []string{"99"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1 -> 99"}, cp.MissingRefs)
	assert.InDelta(t, 0, timing(t, cp, "1").EarlyStart, 1e-9)
}

func TestAnalyze_SelfAndDuplicateLinksIgnored(t *testing.T) {
	cp, err := Analyze([]Task{
		{ID: "1", Hours: 8, Predecessors: []string{"1"}},
		{ID: "2", Hours: 8, Predecessors: []string{"1", "1"}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 16, cp.ProjectHours, 1e-9)
}

func TestAnalyze_Cycle(t *testing.T) {
	_, err := Analyze([]Task{
		{ID: "1", Hours: 8, Predecessors: []string{"3"}},
		{ID: "2", Hours: 8, Predecessors: []string{"1"}},
		{ID: "3", Hours: 8, Predecessors: []string{"2"}},
	})
	require.Error(t, err)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Edges, 1)
	assert.Contains(t, err.Error(), "circular dependency detected")
}

func TestAnalyze_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  string
	}{
		{"empty id", []Task{{Name: "sem id"}}, "empty id"},
		{"duplicate id", []Task{{ID: "1"}, {ID: "1"}}, "duplicate task id"},
		{"negative duration", []Task{{ID: "1", Hours: -1}}, "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.tasks)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAnalyze_Empty(t *testing.T) {
	cp, err := Analyze(nil)
	require.NoError(t, err)
	assert.Empty(t, cp.Tasks)
	assert.Empty(t, cp.Path)
	assert.Zero(t, cp.ProjectHours)
}

func TestPredecessorID(t *testing.T) {
	tests := []struct {
		ref    string
		want   string
		wantOK bool
	}{
		{"12", "12", true},
		{" 12FS+2 days", "12", true},
		{"7SS", "7", true},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := PredecessorID(tt.ref)
		assert.Equal(t, tt.wantOK, ok, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}
