package datalogger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/datalogger"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
)

func TestClient_AppendsReadingAndErrorRows(t *testing.T) {
	bus := busclient.NewMemory()
	defer bus.Close()

	var buf bytes.Buffer
	c := datalogger.NewClient(bus, &buf)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	value := 63.5
	ok := model.SensorReading{SensorID: "mash_probe", Timestamp: 1000, Value: &value}
	okPayload, _ := json.Marshal(ok)
	failed := model.SensorReading{SensorID: "mash_probe", Timestamp: 2000, Error: "read failed"}
	errPayload, _ := json.Marshal(failed)

	if err := bus.Publish(subject.SensorMeasurement("mash_probe"), okPayload); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Publish(subject.SensorMeasurement("mash_probe"), errPayload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, ",1000,63.5") {
		t.Fatalf("missing success row (sensor_id,local_ts,1000,63.5) in output:\n%s", out)
	}
	if !strings.Contains(out, ",2000,read failed") {
		t.Fatalf("missing error row (sensor_id,local_ts,2000,read failed) in output:\n%s", out)
	}
}
