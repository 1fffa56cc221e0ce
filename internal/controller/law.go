package controller

import (
	"fmt"

	"github.com/bryggansbryggeri/bryggio-go/internal/control"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

// NewLaw builds the control.Law named by kind's active arm, seeded with
// target as the law's initial target/duty.
func NewLaw(kind model.ControllerKind, target float64) (control.Law, error) {
	switch {
	case kind.Hysteresis != nil:
		return control.NewHysteresis(kind.Hysteresis.OnGap, kind.Hysteresis.OffGap, target)
	case kind.PID != nil:
		return control.NewPID(kind.PID.Kp, kind.PID.Ki, kind.PID.Kd, target)
	case kind.Manual != nil:
		return control.NewManual(kind.Manual.CycleSeconds, target)
	default:
		return nil, fmt.Errorf("controller: kind carries no recognized arm")
	}
}
