package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d int) *time.Time {
	t := time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestComputePace(t *testing.T) {
	now := *date(11) // 10 of 20 days into a 1..21 window

	tests := []struct {
		name     string
		in       PaceInput
		level    PaceLevel
		expected int
	}{
		{"no finish date", PaceInput{Now: now, Start: date(1), Progress: 10}, PaceOnTrack, 10},
		{"done", PaceInput{Now: now, Start: date(1), Finish: date(5), Progress: 100}, PaceOnTrack, 100},
		{"past finish", PaceInput{Now: now, Start: date(1), Finish: date(10), Progress: 90}, PaceLate, 100},
		{"not started yet", PaceInput{Now: now, Start: date(12), Finish: date(20)}, PaceOnTrack, 0},
		{"no start date", PaceInput{Now: now, Finish: date(20), Progress: 0}, PaceOnTrack, 0},
		{"ahead", PaceInput{Now: now, Start: date(1), Finish: date(21), Progress: 60}, PaceOnTrack, 50},
		{"on the line", PaceInput{Now: now, Start: date(1), Finish: date(21), Progress: 50}, PaceOnTrack, 50},
		{"slightly behind", PaceInput{Now: now, Start: date(1), Finish: date(21), Progress: 40}, PaceAtRisk, 50},
		{"far behind", PaceInput{Now: now, Start: date(1), Finish: date(21), Progress: 20}, PaceLate, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputePace(tt.in)
			assert.Equal(t, tt.level, res.Level)
			assert.Equal(t, tt.expected, res.ExpectedProgress)
		})
	}
}

func TestComputePace_DaysLeft(t *testing.T) {
	res := ComputePace(PaceInput{Now: *date(11), Start: date(1), Finish: date(14), Progress: 50})
	require.NotNil(t, res.DaysLeft)
	assert.Equal(t, 3, *res.DaysLeft)

	res = ComputePace(PaceInput{Now: *date(11), Finish: date(9)})
	require.NotNil(t, res.DaysLeft)
	assert.Equal(t, -2, *res.DaysLeft)

	assert.Nil(t, ComputePace(PaceInput{Now: *date(11)}).DaysLeft)
}
