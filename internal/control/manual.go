package control

import "time"

// Manual drives a duty-cycle signal: the target is the fraction of each
// cycle period spent at signal 1, phased from the law's construction time.
type Manual struct {
	period float64 // seconds
	target float64
	t0     time.Time
	now    func() time.Time
}

// NewManual validates cycleSeconds > 0 and the initial duty target.
func NewManual(cycleSeconds, target float64) (*Manual, error) {
	if cycleSeconds <= 0 {
		return nil, paramErr("cycle_seconds %g must be > 0", cycleSeconds)
	}
	m := &Manual{period: cycleSeconds, t0: time.Now(), now: time.Now}
	if _, err := m.ValidateTarget(target); err != nil {
		return nil, err
	}
	m.target = target
	return m, nil
}

// Update ignores the measurement; duty cycle is purely time-driven.
func (m *Manual) Update(_ *float64) float64 {
	elapsed := m.now().Sub(m.t0).Seconds()
	phase := elapsed
	if m.period > 0 {
		n := float64(int64(elapsed / m.period))
		phase = elapsed - n*m.period
	}
	if phase/m.period <= m.target {
		return 1
	}
	return 0
}

func (m *Manual) SetTarget(t float64) error {
	v, err := m.ValidateTarget(t)
	if err != nil {
		return err
	}
	m.target = v
	return nil
}

func (m *Manual) Target() float64 { return m.target }

func (m *Manual) Signal() float64 { return m.Update(nil) }

func (m *Manual) ValidateTarget(t float64) (float64, error) {
	if t < 0 || t > 1 {
		return 0, targetErr("duty target %g must be within [0,1]", t)
	}
	return t, nil
}

func (m *Manual) State() State {
	if m.target > 0 {
		return StateActive
	}
	return StateInactive
}

func (m *Manual) Kind() string { return "manual" }
