package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleWith(format SourceFormat, totals map[PhaseID]int) *Schedule {
	s := &Schedule{Format: format, ContentHash: string(format), Metadata: Metadata{Title: string(format)}}
	for _, id := range PhaseOrder {
		p := NewPhase(id)
		p.Total = totals[id]
		s.Phases = append(s.Phases, p)
	}
	return s
}

func TestMergeSchedules_PreparationFromPrepExport(t *testing.T) {
	prep := scheduleWith(FormatPreparation, map[PhaseID]int{PhasePreparation: 7})
	ops := scheduleWith(FormatPFUS3, map[PhaseID]int{PhasePreparation: 2, PhaseShutdown: 3, PhaseMaintenance: 5, PhaseStartup: 1})

	merged, sources := MergeSchedules(prep, ops)
	require.Len(t, merged.Phases, 4)
	assert.Equal(t, 7, merged.Phase(PhasePreparation).Total)
	assert.Equal(t, 3, merged.Phase(PhaseShutdown).Total)
	assert.Equal(t, 5, merged.Phase(PhaseMaintenance).Total)
	assert.Equal(t, FormatPreparation, sources[PhasePreparation])
	assert.Equal(t, FormatPFUS3, sources[PhaseStartup])
	assert.Equal(t, "pfus3", merged.Metadata.Title)
	assert.Equal(t, "preparation+pfus3", merged.ContentHash)
}

func TestMergeSchedules_EmptyPrepFallsBackToOps(t *testing.T) {
	prep := scheduleWith(FormatPreparation, nil)
	ops := scheduleWith(FormatPFUS3, map[PhaseID]int{PhasePreparation: 2})

	merged, sources := MergeSchedules(prep, ops)
	assert.Equal(t, 2, merged.Phase(PhasePreparation).Total)
	assert.Equal(t, FormatPFUS3, sources[PhasePreparation])
}

func TestMergeSchedules_OnlyOneSide(t *testing.T) {
	prep := scheduleWith(FormatPreparation, map[PhaseID]int{PhasePreparation: 4})
	merged, sources := MergeSchedules(prep, nil)
	require.Len(t, merged.Phases, 4)
	assert.Equal(t, 4, merged.Phase(PhasePreparation).Total)
	assert.Equal(t, FormatPreparation, sources[PhaseShutdown])
	assert.Equal(t, "preparation", merged.Metadata.Title)

	merged, sources = MergeSchedules(nil, nil)
	assert.Empty(t, merged.Phases)
	assert.Empty(t, sources)
}

func TestMergeSchedules_MilestonesFollowPhaseSource(t *testing.T) {
	prep := scheduleWith(FormatPreparation, map[PhaseID]int{PhasePreparation: 1})
	prep.Milestones = []Milestone{{ID: "p1", Phase: PhasePreparation}}
	ops := scheduleWith(FormatPFUS3, map[PhaseID]int{PhasePreparation: 1, PhaseShutdown: 1})
	ops.Milestones = []Milestone{{ID: "o1", Phase: PhasePreparation}, {ID: "o2", Phase: PhaseShutdown}}

	merged, _ := MergeSchedules(prep, ops)
	ids := []string{}
	for _, m := range merged.Milestones {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"p1", "o2"}, ids)
}

func TestMergeSchedules_AreasOpsWins(t *testing.T) {
	prep := scheduleWith(FormatPreparation, nil)
	prep.Areas = []AreaSummary{{Area: "Refratário", Records: 3, Progress: 10}, {Area: "Elétrica", Records: 1}}
	ops := scheduleWith(FormatPFUS3, nil)
	ops.Areas = []AreaSummary{{Area: "Refratário", Records: 5, Progress: 80}}

	merged, _ := MergeSchedules(prep, ops)
	require.Len(t, merged.Areas, 2)
	assert.Equal(t, AreaSummary{Area: "Refratário", Records: 5, Progress: 80}, merged.Areas[0])
	assert.Equal(t, "Elétrica", merged.Areas[1].Area)
}

func TestMergeSchedules_GeneratedAtIsNewest(t *testing.T) {
	prep := scheduleWith(FormatPreparation, nil)
	ops := scheduleWith(FormatPFUS3, nil)
	ops.GeneratedAt = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	prep.GeneratedAt = ops.GeneratedAt.Add(time.Hour)

	merged, _ := MergeSchedules(prep, ops)
	assert.True(t, merged.GeneratedAt.Equal(prep.GeneratedAt))
}
