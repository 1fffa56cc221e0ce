package controller_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/control"
	"github.com/bryggansbryggeri/bryggio-go/internal/controller"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
)

func newSilentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// TestController_KillTurnsActuatorLowBeforeReply exercises invariant I8: a
// kill always drives the actuator to LOW before the kill-reply is sent.
func TestController_KillTurnsActuatorLowBeforeReply(t *testing.T) {
	bus := busclient.NewMemory()
	defer bus.Close()

	actuatorID := model.ClientID("heater")
	controllerID := model.ClientID("mash")

	turnOffSub, err := bus.Subscribe(subject.ActorTurnOff(actuatorID))
	if err != nil {
		t.Fatalf("subscribe turn_off: %v", err)
	}

	went := false
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		msg, err := turnOffSub.Next(ctx)
		if err != nil {
			return
		}
		went = true
		_ = bus.Publish(msg.Reply, []byte("ok"))
	}()

	law, err := control.NewHysteresis(2, 1, 50)
	if err != nil {
		t.Fatalf("new hysteresis: %v", err)
	}
	c := controller.NewClient(controllerID, actuatorID, "mash_probe", law, bus, newSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	reply, err := bus.Request(context.Background(), subject.SupervisorKill(controllerID), nil, time.Second)
	if err != nil {
		t.Fatalf("kill request: %v", err)
	}
	if string(reply.Data) != "ok" {
		t.Fatalf("got reply %q, want ok", reply.Data)
	}
	if !went {
		t.Fatal("expected the actuator's turn_off to have been invoked before the kill reply")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller did not exit after kill")
	}
	cancel()
}

func TestController_SetTargetEchoesValidatedTarget(t *testing.T) {
	bus := busclient.NewMemory()
	defer bus.Close()

	law, _ := control.NewHysteresis(2, 1, 50)
	c := controller.NewClient("mash", "heater", "mash_probe", law, bus, newSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	time.Sleep(20 * time.Millisecond)
	payload, _ := json.Marshal(controller.SetTargetRequest{Target: 55})
	reply, err := bus.Request(context.Background(), subject.ControllerSetTarget("mash"), payload, time.Second)
	if err != nil {
		t.Fatalf("set_target request: %v", err)
	}
	if string(reply.Data) != "55" {
		t.Fatalf("got %q, want the echoed target 55", reply.Data)
	}
}
