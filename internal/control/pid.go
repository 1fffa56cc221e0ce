package control

import "time"

// outputLimit bounds the inner PID's raw output to [-L, +L]; the public
// signal maps that range onto [0,1] via (output+L)/(2L).
const outputLimit = 100.0

// PID wraps a standard incremental PID controller. Setpoint changes go
// straight to the inner controller; no bumpless transfer is performed.
type PID struct {
	kp, ki, kd float64
	target     float64
	signal     float64

	integral  float64
	prevErr   float64
	havePrev  bool
	lastUpdate time.Time
	now        func() time.Time
}

// NewPID constructs a PID law; all gains may be zero but not negative.
func NewPID(kp, ki, kd, target float64) (*PID, error) {
	if kp < 0 || ki < 0 || kd < 0 {
		return nil, paramErr("pid gains must be non-negative (kp=%g ki=%g kd=%g)", kp, ki, kd)
	}
	return &PID{kp: kp, ki: ki, kd: kd, target: target, signal: 0.5, now: time.Now}, nil
}

func (p *PID) Update(measurement *float64) float64 {
	if measurement == nil {
		return p.signal
	}

	now := p.now()
	dt := 0.0
	if p.havePrev {
		dt = now.Sub(p.lastUpdate).Seconds()
	}
	p.lastUpdate = now

	err := p.target - *measurement
	p.integral += err * dt
	derivative := 0.0
	if p.havePrev && dt > 0 {
		derivative = (err - p.prevErr) / dt
	}
	p.prevErr = err
	p.havePrev = true

	out := p.kp*err + p.ki*p.integral + p.kd*derivative
	if out > outputLimit {
		out = outputLimit
	}
	if out < -outputLimit {
		out = -outputLimit
	}

	p.signal = (out + outputLimit) / (2 * outputLimit)
	return p.signal
}

func (p *PID) SetTarget(t float64) error {
	p.target = t
	return nil
}

func (p *PID) Target() float64 { return p.target }
func (p *PID) Signal() float64 { return p.signal }

func (p *PID) ValidateTarget(t float64) (float64, error) { return t, nil }

func (p *PID) State() State {
	if p.signal > 0 {
		return StateActive
	}
	return StateInactive
}

func (p *PID) Kind() string { return "pid" }
