package supervisor

import (
	"testing"

	"github.com/bryggansbryggeri/bryggio-go/internal/model"
)

func TestRegistry_SameIDRejectedAcrossBuckets(t *testing.T) {
	r := NewRegistry()
	id := model.ClientID("mash")

	if err := r.addSensor(model.SensorConfig{ID: id}, func() {}, make(chan struct{})); err != nil {
		t.Fatalf("first insert should succeed: %v", err)
	}
	if err := r.addController(model.ControllerConfig{ID: id}, func() {}, make(chan struct{})); err == nil {
		t.Fatal("expected rejection: id already occupies the sensor bucket")
	}
}

func TestRegistry_RemoveControllerDropsFromSnapshot(t *testing.T) {
	r := NewRegistry()
	id := model.ClientID("mash")
	done := make(chan struct{})
	close(done)

	if err := r.addController(model.ControllerConfig{ID: id}, func() {}, done); err != nil {
		t.Fatalf("insert: %v", err)
	}
	r.removeController(id)

	snap := r.snapshot()
	for _, c := range snap.Controllers {
		if c.ID == id {
			t.Fatal("removed controller still present in snapshot")
		}
	}
}
