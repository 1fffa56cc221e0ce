package subject_test

import (
	"testing"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
)

func TestRoundTrip_CanonicalShapes(t *testing.T) {
	id := model.ClientID("fermenter_1")

	cases := []struct {
		name string
		subj string
		want subject.Parsed
	}{
		{"sensor measurement", subject.SensorMeasurement(id), subject.Parsed{Kind: subject.KindSensorMeasurement, ID: id}},
		{"actor set_signal", subject.ActorSetSignal(id), subject.Parsed{Kind: subject.KindActorSetSignal, ID: id}},
		{"actor turn_off", subject.ActorTurnOff(id), subject.Parsed{Kind: subject.KindActorTurnOff, ID: id}},
		{"actor current_signal", subject.ActorCurrentSignal(id), subject.Parsed{Kind: subject.KindActorCurrentSignal, ID: id}},
		{"controller set_target", subject.ControllerSetTarget(id), subject.Parsed{Kind: subject.KindControllerSetTarget, ID: id}},
		{"controller status", subject.ControllerStatus(id), subject.Parsed{Kind: subject.KindControllerStatus, ID: id}},
		{"command", subject.Command("start_controller"), subject.Parsed{Kind: subject.KindCommand, Verb: "start_controller"}},
		{"supervisor kill", subject.SupervisorKill(id), subject.Parsed{Kind: subject.KindSupervisorKill, ID: id}},
		{"log", subject.Log("warning", "sensor_1"), subject.Parsed{Kind: subject.KindLog, Verb: "warning", ID: model.ClientID("sensor_1")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := subject.Parse(tc.subj)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.subj, err)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.subj, got, tc.want)
			}
		})
	}
}

func TestParse_UnmatchedSubjectReturnsParseError(t *testing.T) {
	_, err := subject.Parse("not.a.known.shape.at.all")
	if err == nil {
		t.Fatal("expected a parse error for an unmatched subject")
	}
	var perr *subject.ErrParse
	if !asErrParse(err, &perr) {
		t.Fatalf("expected *subject.ErrParse, got %T", err)
	}
}

func asErrParse(err error, target **subject.ErrParse) bool {
	e, ok := err.(*subject.ErrParse)
	if !ok {
		return false
	}
	*target = e
	return true
}

func TestSupervisorActiveClients_IsFixed(t *testing.T) {
	got, err := subject.Parse(subject.SupervisorActiveClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != subject.KindSupervisorActiveClients {
		t.Fatalf("got kind %v, want KindSupervisorActiveClients", got.Kind)
	}
}
