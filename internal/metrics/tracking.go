package metrics

import (
	"math"

	"github.com/abe-mart/tclab-sim/internal/sim"
)

// TrackingError integrates absolute setpoint error (IAE) over both
// channels. Setpoints are fixed at construction, matching the headless
// runner where tuning does not change mid-run.
type TrackingError struct {
	sp1, sp2 float64
	iae      float64
	prevT    float64
	first    bool
}

func NewTrackingError(sp1, sp2 float64) *TrackingError {
	return &TrackingError{sp1: sp1, sp2: sp2, first: true}
}

func (e *TrackingError) Name() string {
	return "tracking_iae"
}

func (e *TrackingError) Observe(x sim.State, u sim.Control, t float64) {
	if e.first {
		e.prevT = t
		e.first = false
	}
	dt := t - e.prevT
	e.prevT = t
	if dt <= 0 {
		return
	}
	e.iae += (math.Abs(e.sp1-x[0]) + math.Abs(e.sp2-x[1])) * dt
}

func (e *TrackingError) Value() float64 {
	return e.iae
}

func (e *TrackingError) Reset() {
	e.iae = 0
	e.first = true
}

// PeakTemp records the hottest sensor reading seen.
type PeakTemp struct {
	max float64
	any bool
}

func NewPeakTemp() *PeakTemp {
	return &PeakTemp{}
}

func (p *PeakTemp) Name() string {
	return "peak_temp"
}

func (p *PeakTemp) Observe(x sim.State, u sim.Control, t float64) {
	for _, v := range x {
		if !p.any || v > p.max {
			p.max = v
			p.any = true
		}
	}
}

func (p *PeakTemp) Value() float64 {
	return p.max
}

func (p *PeakTemp) Reset() {
	p.max = 0
	p.any = false
}
