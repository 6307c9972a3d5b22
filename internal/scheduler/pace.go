package scheduler

import (
	"math"
	"time"
)

// PaceLevel says whether a phase is keeping up with its planned window.
type PaceLevel string

const (
	PaceOnTrack PaceLevel = "on_track"
	PaceAtRisk  PaceLevel = "at_risk"
	PaceLate    PaceLevel = "late"
)

// atRiskGap is how many percentage points progress may trail the linear
// expectation before a phase is late rather than at risk.
const atRiskGap = 15

type PaceInput struct {
	Now      time.Time
	Start    *time.Time
	Finish   *time.Time
	Progress int
}

type PaceResult struct {
	Level PaceLevel `json:"level"`
	// ExpectedProgress is the share of the window already elapsed, 0-100.
	ExpectedProgress int  `json:"expected_progress"`
	DaysLeft         *int `json:"days_left,omitempty"`
}

// ComputePace compares progress with the share of the Start..Finish window
// that has elapsed. Finished work and phases without a finish date are
// always on track.
func ComputePace(in PaceInput) PaceResult {
	if in.Progress >= 100 || in.Finish == nil {
		return PaceResult{Level: PaceOnTrack, ExpectedProgress: in.Progress}
	}

	daysLeft := int(math.Ceil(in.Finish.Sub(in.Now).Hours() / 24))
	res := PaceResult{DaysLeft: &daysLeft}

	if !in.Now.Before(*in.Finish) {
		res.Level = PaceLate
		res.ExpectedProgress = 100
		return res
	}
	if in.Start == nil || !in.Now.After(*in.Start) || !in.Finish.After(*in.Start) {
		res.Level = PaceOnTrack
		return res
	}

	window := in.Finish.Sub(*in.Start).Seconds()
	elapsed := in.Now.Sub(*in.Start).Seconds()
	res.ExpectedProgress = int(math.Round(elapsed / window * 100))

	switch gap := res.ExpectedProgress - in.Progress; {
	case gap <= 0:
		res.Level = PaceOnTrack
	case gap <= atRiskGap:
		res.Level = PaceAtRisk
	default:
		res.Level = PaceLate
	}
	return res
}
