package actuator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/actuator"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

func TestActuator_RejectsAlreadyActive(t *testing.T) {
	a := actuator.New("heater", &actuator.DummyPin{}, 0)
	if err := a.SetSignal(0); !errors.Is(err, actuator.ErrAlreadyActive) {
		t.Fatalf("expected AlreadyActive going low->low, got %v", err)
	}
}

func TestActuator_RejectsOutOfRange(t *testing.T) {
	a := actuator.New("heater", &actuator.DummyPin{}, 0)
	if err := a.SetSignal(1); err != nil {
		t.Fatalf("setup transition to high: %v", err)
	}
	if err := a.SetSignal(-1); !errors.Is(err, actuator.ErrOutOfRange) {
		t.Fatalf("expected OutOfRange for negative signal once already-active/cooling-down pass, got %v", err)
	}
}

func TestActuator_EnforcesMinHold(t *testing.T) {
	a := actuator.New("heater", &actuator.DummyPin{}, model.TimeStamp(1000))

	if err := a.SetSignal(1); err != nil {
		t.Fatalf("first transition should succeed: %v", err)
	}

	var coolErr *actuator.CoolingDownError
	err := a.SetSignal(0)
	if !errors.As(err, &coolErr) {
		t.Fatalf("expected CoolingDownError within the hold window, got %v", err)
	}
	if a.State() != actuator.High {
		t.Fatal("state must not change while cooling down")
	}
}

func TestActuator_TurnOffIsIdempotent(t *testing.T) {
	a := actuator.New("heater", &actuator.DummyPin{}, 0)
	if err := a.TurnOff(); err != nil {
		t.Fatalf("turning off an already-low actuator must not error: %v", err)
	}
	if a.State() != actuator.Low {
		t.Fatal("expected low state after turn_off")
	}
}

func TestActuator_MinHoldGapBetweenTransitions(t *testing.T) {
	a := actuator.New("heater", &actuator.DummyPin{}, model.TimeStamp(50))

	if err := a.SetSignal(1); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	start := time.Now()
	for {
		if err := a.SetSignal(0); err == nil {
			break
		}
		if time.Since(start) > 2*time.Second {
			t.Fatal("min-hold never released")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if time.Since(start) < 40*time.Millisecond {
		t.Fatalf("transition allowed before min-hold elapsed: %v", time.Since(start))
	}
}
