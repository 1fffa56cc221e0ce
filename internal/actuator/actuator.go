// Package actuator implements the actuator client: a two-state output pin,
// min-hold enforcement, and the set_signal/turn_off protocol handlers.
package actuator

import (
	"errors"
	"fmt"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

// PinState is the actuator's two-state output.
type PinState int

const (
	Low PinState = iota
	High
)

func (s PinState) String() string {
	if s == High {
		return "high"
	}
	return "low"
}

// OutputPin is the hardware capability an actuator drives. The only shipped
// implementation is DummyPin; GPIO hardware is out of scope for this
// codebase, left as an extension point.
type OutputPin interface {
	SetHigh() error
	SetLow() error
}

var (
	// ErrAlreadyActive is a soft error: validate_signal rejects a
	// commanded state equal to the current one, but the caller still
	// republishes the current signal so downstream observers stay
	// consistent.
	ErrAlreadyActive = errors.New("actuator: already in requested state")
	// ErrCoolingDown is returned with the remaining hold duration when a
	// transition is requested before the min-hold interval has elapsed.
	ErrCoolingDown = errors.New("actuator: cooling down")
	// ErrOutOfRange is returned for a negative signal.
	ErrOutOfRange = errors.New("actuator: signal out of range")
)

// CoolingDownError carries the remaining hold time.
type CoolingDownError struct {
	Remaining model.TimeStamp
}

func (e *CoolingDownError) Error() string {
	return fmt.Sprintf("cooling down, %dms remaining: %v", e.Remaining, ErrCoolingDown)
}

func (e *CoolingDownError) Unwrap() error { return ErrCoolingDown }

// Actuator owns one output pin, its current state and the min-hold clock.
type Actuator struct {
	id             model.ClientID
	pin            OutputPin
	minHold        model.TimeStamp
	state          PinState
	lastTransition model.TimeStamp
}

// New constructs an actuator; minHold may be zero to disable the cooldown.
// No transition has happened yet, so the first one is never held back.
func New(id model.ClientID, pin OutputPin, minHold model.TimeStamp) *Actuator {
	return &Actuator{id: id, pin: pin, minHold: minHold, state: Low}
}

func (a *Actuator) State() PinState { return a.state }

// validateSignal applies the three rejection rules from the transition
// design, in order: AlreadyActive, CoolingDown, OutOfRange.
func (a *Actuator) validateSignal(signal float64) (PinState, error) {
	wantState := Low
	if signal > 0 {
		wantState = High
	}
	if wantState == a.state {
		return wantState, ErrAlreadyActive
	}
	elapsed := a.lastTransition.Since()
	if elapsed < a.minHold {
		return wantState, &CoolingDownError{Remaining: a.minHold - elapsed}
	}
	if signal < 0 {
		return a.state, ErrOutOfRange
	}
	return wantState, nil
}

// SetSignal validates and, if valid, drives the pin and records the
// transition. On ErrAlreadyActive the caller should still republish the
// current signal; all other errors are logged by the caller and not
// retried.
func (a *Actuator) SetSignal(signal float64) error {
	wantState, err := a.validateSignal(signal)
	if err != nil {
		return err
	}

	var hwErr error
	if wantState == High {
		hwErr = a.pin.SetHigh()
	} else {
		hwErr = a.pin.SetLow()
	}
	if hwErr != nil {
		return fmt.Errorf("actuator %s: hardware: %w", a.id, hwErr)
	}

	a.state = wantState
	a.lastTransition = model.Now()
	return nil
}

// TurnOff is set_signal(0); idempotent, and the caller always publishes an
// acknowledgement regardless of whether the actuator was already low.
func (a *Actuator) TurnOff() error {
	err := a.SetSignal(0)
	if errors.Is(err, ErrAlreadyActive) {
		return nil
	}
	return err
}

// CurrentSignal returns the ActorSignal payload for the actuator's present
// state, used for the soft-error republish and status snapshots.
func (a *Actuator) CurrentSignal(owner model.ClientID) model.ActorSignal {
	sig := 0.0
	if a.state == High {
		sig = 1.0
	}
	return model.ActorSignal{Owner: owner, Signal: sig}
}
