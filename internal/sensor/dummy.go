package sensor

import (
	"math/rand/v2"
	"time"
)

// DummyDevice produces a bounded random walk around 50.0, used for
// development and the end-to-end test scenarios.
type DummyDevice struct {
	value float64
	delay time.Duration
	step  func() float64
}

// NewDummyDevice starts the walk at 50.0.
func NewDummyDevice(delay time.Duration) *DummyDevice {
	return &DummyDevice{value: 50.0, delay: delay, step: defaultStep}
}

func defaultStep() float64 {
	// Uniform step in [-1, 1): a small per-sample jitter for the
	// bounded walk.
	return (rand.Float64()*2 - 1)
}

func (d *DummyDevice) Read() (float64, error) {
	d.value += d.step()
	if d.value < 0 {
		d.value = 0
	}
	if d.value > 100 {
		d.value = 100
	}
	return d.value, nil
}

func (d *DummyDevice) Delay() time.Duration { return d.delay }
