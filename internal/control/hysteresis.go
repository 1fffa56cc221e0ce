package control

// Hysteresis switches a signal between 0 and 1 around a target with two
// distinct gaps to avoid chattering: it raises the signal once the
// measurement falls on_gap below target, and only lowers it again once the
// measurement climbs back to within off_gap. Between the two thresholds the
// previous signal is held.
type Hysteresis struct {
	onGap  float64
	offGap float64
	target float64
	signal float64
	lastM  *float64
}

// NewHysteresis validates onGap > offGap >= 0 before constructing the law.
func NewHysteresis(onGap, offGap, target float64) (*Hysteresis, error) {
	if offGap < 0 {
		return nil, paramErr("off_gap %g must be >= 0", offGap)
	}
	if onGap <= offGap {
		return nil, paramErr("on_gap %g must be greater than off_gap %g", onGap, offGap)
	}
	return &Hysteresis{onGap: onGap, offGap: offGap, target: target}, nil
}

func (h *Hysteresis) Update(measurement *float64) float64 {
	m := measurement
	if m == nil {
		m = h.lastM
	}
	if m == nil {
		return h.signal
	}
	h.lastM = m

	d := h.target - *m
	switch {
	case d > h.onGap:
		h.signal = 1
	case d <= h.offGap:
		h.signal = 0
	}
	return h.signal
}

func (h *Hysteresis) SetTarget(t float64) error {
	h.target = t
	return nil
}

func (h *Hysteresis) Target() float64 { return h.target }
func (h *Hysteresis) Signal() float64 { return h.signal }

func (h *Hysteresis) ValidateTarget(t float64) (float64, error) { return t, nil }

func (h *Hysteresis) State() State {
	if h.signal > 0 {
		return StateActive
	}
	return StateInactive
}

func (h *Hysteresis) Kind() string { return "hysteresis" }
