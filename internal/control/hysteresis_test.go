package control_test

import (
	"testing"

	"github.com/bryggansbryggeri/bryggio-go/internal/control"
)

func f(v float64) *float64 { return &v }

func TestHysteresis_RejectsBadGaps(t *testing.T) {
	if _, err := control.NewHysteresis(1, 1, 50); err == nil {
		t.Fatal("expected error when on_gap == off_gap")
	}
	if _, err := control.NewHysteresis(2, -1, 50); err == nil {
		t.Fatal("expected error when off_gap < 0")
	}
}

func TestHysteresis_LatchesUntilOffGap(t *testing.T) {
	h, err := control.NewHysteresis(2, 1, 50)
	if err != nil {
		t.Fatalf("new hysteresis: %v", err)
	}

	if got := h.Update(f(60)); got != 0 {
		t.Fatalf("measurement above target: got signal %v, want 0", got)
	}
	if got := h.Update(f(47)); got != 1 {
		t.Fatalf("d=3 > on_gap=2: got signal %v, want 1", got)
	}
	// In the dead zone (d between off_gap and on_gap): holds at 1.
	if got := h.Update(f(48.5)); got != 1 {
		t.Fatalf("dead zone should hold: got signal %v, want 1", got)
	}
	if got := h.Update(f(49.5)); got != 0 {
		t.Fatalf("d=0.5 <= off_gap=1: got signal %v, want 0", got)
	}
}

func TestHysteresis_HoldsOnAbsentMeasurement(t *testing.T) {
	h, _ := control.NewHysteresis(2, 1, 50)
	h.Update(f(47))
	if got := h.Update(nil); got != 1 {
		t.Fatalf("absent measurement should reuse the last one and hold: got %v", got)
	}
}

func TestHysteresis_HoldsWhenNoMeasurementEverSeen(t *testing.T) {
	h, _ := control.NewHysteresis(2, 1, 50)
	if got := h.Update(nil); got != 0 {
		t.Fatalf("never-measured hysteresis should hold at initial signal 0, got %v", got)
	}
}
