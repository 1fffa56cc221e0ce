// Package sensor implements the sensor client: a device abstraction with
// three concrete kinds (dummy, DS18B20, Raspberry Pi CPU temperature) and the
// polling loop that samples, timestamps and publishes readings.
package sensor

import "time"

// Device is the capability every sensor kind implements: read one sample or
// report why it couldn't.
type Device interface {
	Read() (float64, error)
	// Delay is the sampling interval to sleep between reads.
	Delay() time.Duration
}
