package supervisor

import "time"

// Central place for supervisor-wide timing and protocol constants. Changing
// a value here affects every caller importing this package.
const (
	// KillTimeout bounds how long the supervisor waits for a controller's
	// kill acknowledgement, and then separately how long it waits for the
	// worker to join; only a join that exceeds it is reported as a
	// ThreadJoin error.
	KillTimeout = 2 * time.Second
)

// DefaultNATSURL is used by cmd/bryggio-supervisor when -nats-url is unset.
const DefaultNATSURL = "nats://127.0.0.1:4222"
