// Package control implements the three control laws a controller client can
// bind to an actuator: hysteresis, PID and manual/duty-cycle. Each is a pure
// state machine: update(measurement) -> signal, independent of the bus.
package control

import (
	"errors"
	"fmt"
)

// State reports whether a law is actively driving its actuator.
type State int

const (
	StateActive State = iota
	StateInactive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "inactive"
}

// ErrParam is returned by constructors when parameters fail validation.
var ErrParam = errors.New("control: invalid parameter")

// ErrInvalidTarget is returned by ValidateTarget/SetTarget when a requested
// target is out of range for the law.
var ErrInvalidTarget = errors.New("control: invalid target")

// Law is the interface every control algorithm implements.
type Law interface {
	// Update feeds a new measurement (nil if the latest reading was an
	// error) and returns the resulting signal in [0,1].
	Update(measurement *float64) float64
	SetTarget(t float64) error
	Target() float64
	Signal() float64
	ValidateTarget(t float64) (float64, error)
	State() State
	// Kind returns the tag used in status messages ("hysteresis", "pid",
	// "manual").
	Kind() string
}

func paramErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrParam)
}

func targetErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidTarget)
}
