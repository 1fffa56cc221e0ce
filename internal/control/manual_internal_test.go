package control

import (
	"testing"
	"time"
)

// TestManual_DutyFractionMatchesTarget drives a fake clock across several
// full periods and checks the measured high-fraction against the target,
// tolerating a deviation of 0.02 (0.2 s of each 10 s period).
func TestManual_DutyFractionMatchesTarget(t *testing.T) {
	base := time.Unix(0, 0)
	clock := base
	m, err := NewManual(10, 0.3)
	if err != nil {
		t.Fatalf("new manual: %v", err)
	}
	m.t0 = base
	m.now = func() time.Time { return clock }

	const step = 50 * time.Millisecond
	const periods = 3
	totalSteps := int(periods * 10 * time.Second / step)
	highSteps := 0
	for i := 0; i < totalSteps; i++ {
		clock = base.Add(time.Duration(i) * step)
		if m.Update(nil) == 1 {
			highSteps++
		}
	}

	gotFraction := float64(highSteps) / float64(totalSteps)
	if diff := gotFraction - 0.3; diff < -0.02 || diff > 0.02 {
		t.Fatalf("duty fraction %.3f too far from target 0.3", gotFraction)
	}
}

func TestManual_RejectsOutOfRangeTarget(t *testing.T) {
	if _, err := NewManual(10, 1.5); err == nil {
		t.Fatal("expected error for target > 1")
	}
	if _, err := NewManual(10, -0.1); err == nil {
		t.Fatal("expected error for target < 0")
	}
}

func TestManual_RejectsNonPositivePeriod(t *testing.T) {
	if _, err := NewManual(0, 0.5); err == nil {
		t.Fatal("expected error for zero cycle_seconds")
	}
}
