// Package pid implements a PID controller with derivative-on-measurement,
// conditional-integration anti-windup, and bumpless manual-to-automatic
// transfer.
package pid

import (
	"fmt"
	"math"

	"github.com/abe-mart/tclab-sim/internal/sim"
)

type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Setpoint float64
	OutMin   float64
	OutMax   float64

	integral float64
	prevMeas float64
}

func New(kp, ki, kd, setpoint float64) *PID {
	return &PID{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		Setpoint: setpoint,
		OutMin:   0,
		OutMax:   100,
	}
}

// Compute maps a measurement and a time increment to a bounded
// actuation command.
//
// The integral update is conditional on saturation of the output the
// update would produce, so the output is formed twice: once with the
// old integral to decide whether integrating is allowed, then again
// with the (possibly updated) integral. Saturation is defined against
// that tentative output, which is why the update cannot be folded into
// a single pass.
func (p *PID) Compute(measurement, dt float64) float64 {
	err := p.Setpoint - measurement

	derivative := 0.0
	if dt > 0 {
		derivative = (measurement - p.prevMeas) / dt
	}
	p.prevMeas = measurement

	prop := p.Kp * err
	deriv := -p.Kd * derivative

	out := prop + p.Ki*p.integral + deriv
	saturatedHigh := out > p.OutMax
	saturatedLow := out < p.OutMin

	// Integrate unless saturated against the error sign: a saturated
	// output may still integrate when the error is pulling it back
	// inside the bounds.
	if (!saturatedHigh && !saturatedLow) ||
		(saturatedHigh && err < 0) ||
		(saturatedLow && err > 0) {
		p.integral += err * dt
	}

	out = prop + p.Ki*p.integral + deriv
	return math.Min(math.Max(out, p.OutMin), p.OutMax)
}

// Initialize seeds the controller so its next Compute returns
// currentOutput, eliminating the actuation step when switching from
// manual to automatic. With Ki == 0 the integral cannot absorb the
// offset, so it is simply zeroed.
func (p *PID) Initialize(currentOutput, currentMeasurement float64) {
	p.prevMeas = currentMeasurement
	err := p.Setpoint - currentMeasurement
	if p.Ki != 0 {
		p.integral = (currentOutput - p.Kp*err) / p.Ki
	} else {
		p.integral = 0
	}
}

// Reset zeroes the accumulated state. Used on full simulation reset;
// mode switching uses Initialize instead.
func (p *PID) Reset() {
	p.integral = 0
	p.prevMeas = 0
}

// Integral exposes the accumulated integral term for inspection.
func (p *PID) Integral() float64 {
	return p.integral
}

// GetParams implements sim.Configurable.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":       p.Kp,
		"Ki":       p.Ki,
		"Kd":       p.Kd,
		"setpoint": p.Setpoint,
	}
}

// SetParam implements sim.Configurable. Takes effect on the next
// Compute call; the stored integral is left untouched.
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "setpoint":
		p.Setpoint = value
	default:
		return fmt.Errorf("%w: %q", sim.ErrUnknownParameter, name)
	}
	return nil
}
