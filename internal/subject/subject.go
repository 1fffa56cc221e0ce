// Package subject builds and parses the dotted subject strings that every
// client publishes and subscribes on. Parsing never indexes into the split
// slice blindly; each canonical shape is matched by its fixed prefix tokens
// first, per the "do not parse subjects by index" guidance this system
// follows.
package subject

import (
	"fmt"
	"strings"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

// Kind identifies which canonical subject shape a string matches.
type Kind int

const (
	KindUnknown Kind = iota
	KindSensorMeasurement
	KindActorSetSignal
	KindActorTurnOff
	KindActorCurrentSignal
	KindControllerSetTarget
	KindControllerStatus
	KindCommand
	KindSupervisorKill
	KindSupervisorActiveClients
	KindLog
)

// ErrParse is returned by Parse when a subject doesn't match any canonical
// shape.
type ErrParse struct {
	Subject string
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("subject: %q does not match a known shape", e.Subject)
}

// SensorMeasurement builds sensor.<id>.measurement.
func SensorMeasurement(id model.ClientID) string {
	return fmt.Sprintf("sensor.%s.measurement", id)
}

// CommandSensor builds command.sensor.<id>, the sensor's own command inbox.
func CommandSensor(id model.ClientID) string {
	return fmt.Sprintf("command.sensor.%s", id)
}

// ActorSetSignal builds actor.<id>.set_signal.
func ActorSetSignal(id model.ClientID) string {
	return fmt.Sprintf("actor.%s.set_signal", id)
}

// ActorTurnOff builds actor.<id>.turn_off.
func ActorTurnOff(id model.ClientID) string {
	return fmt.Sprintf("actor.%s.turn_off", id)
}

// ActorCurrentSignal builds actor.<id>.current_signal.
func ActorCurrentSignal(id model.ClientID) string {
	return fmt.Sprintf("actor.%s.current_signal", id)
}

// ControllerSetTarget builds controller.<id>.set_target.
func ControllerSetTarget(id model.ClientID) string {
	return fmt.Sprintf("controller.%s.set_target", id)
}

// ControllerStatus builds controller.<id>.status.
func ControllerStatus(id model.ClientID) string {
	return fmt.Sprintf("controller.%s.status", id)
}

// Command builds command.<verb>.
func Command(verb string) string {
	return fmt.Sprintf("command.%s", verb)
}

// CommandAll is the wildcard subject the supervisor subscribes on.
const CommandAll = "command.>"

// SupervisorKill builds supervisor.kill.<id>.
func SupervisorKill(id model.ClientID) string {
	return fmt.Sprintf("supervisor.kill.%s", id)
}

// SupervisorActiveClients is the fixed subject for registry snapshots.
const SupervisorActiveClients = "supervisor.active_clients"

// Log builds log.<level>.<origin>.
func Log(level, origin string) string {
	return fmt.Sprintf("log.%s.%s", level, origin)
}

// LogAll is the wildcard subject the log client subscribes on.
const LogAll = "log.>"

// SensorMeasurementAll and ActorCurrentSignalAll are the wildcards the
// data logger subscribes on.
const (
	SensorMeasurementAll    = "sensor.*.measurement"
	ActorCurrentSignalAll   = "actor.*.current_signal"
)

// Parsed is the partial inverse of the Build* functions.
type Parsed struct {
	Kind Kind
	ID   model.ClientID
	Verb string
}

// Parse recovers (kind, id, verb) from a subject matching one of the
// canonical shapes. It returns *ErrParse for anything else.
func Parse(subj string) (Parsed, error) {
	toks := strings.Split(subj, ".")
	switch {
	case len(toks) == 3 && toks[0] == "sensor" && toks[2] == "measurement":
		return Parsed{Kind: KindSensorMeasurement, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 3 && toks[0] == "actor" && toks[2] == "set_signal":
		return Parsed{Kind: KindActorSetSignal, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 3 && toks[0] == "actor" && toks[2] == "turn_off":
		return Parsed{Kind: KindActorTurnOff, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 3 && toks[0] == "actor" && toks[2] == "current_signal":
		return Parsed{Kind: KindActorCurrentSignal, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 3 && toks[0] == "controller" && toks[2] == "set_target":
		return Parsed{Kind: KindControllerSetTarget, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 3 && toks[0] == "controller" && toks[2] == "status":
		return Parsed{Kind: KindControllerStatus, ID: model.ClientID(toks[1])}, nil
	case len(toks) == 2 && toks[0] == "command":
		return Parsed{Kind: KindCommand, Verb: toks[1]}, nil
	case len(toks) == 3 && toks[0] == "supervisor" && toks[1] == "kill":
		return Parsed{Kind: KindSupervisorKill, ID: model.ClientID(toks[2])}, nil
	case subj == SupervisorActiveClients:
		return Parsed{Kind: KindSupervisorActiveClients}, nil
	case len(toks) == 3 && toks[0] == "log":
		return Parsed{Kind: KindLog, Verb: toks[1], ID: model.ClientID(toks[2])}, nil
	default:
		return Parsed{}, &ErrParse{Subject: subj}
	}
}
