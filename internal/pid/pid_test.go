package pid

import (
	"errors"
	"math"
	"testing"

	"github.com/abe-mart/tclab-sim/internal/sim"
)

func TestProportionalOnly(t *testing.T) {
	p := New(2.0, 0, 0, 50.0)

	out := p.Compute(40.0, 1.0)
	if math.Abs(out-20.0) > 1e-9 {
		t.Errorf("expected 20, got %f", out)
	}
}

func TestOutputClamped(t *testing.T) {
	p := New(10.0, 0, 0, 50.0)

	if out := p.Compute(0.0, 1.0); out != 100.0 {
		t.Errorf("expected output clamped to 100, got %f", out)
	}
	if out := p.Compute(100.0, 1.0); out != 0.0 {
		t.Errorf("expected output clamped to 0, got %f", out)
	}
}

func TestDerivativeOnMeasurement(t *testing.T) {
	p := New(0, 0, 2.0, 50.0)

	p.Compute(10.0, 1.0)
	// Measurement rising at 5 units/s: D = -Kd*5 = -10, clamped to 0.
	out := p.Compute(15.0, 1.0)
	if out != 0 {
		t.Errorf("expected rising measurement to push output down to 0, got %f", out)
	}

	// Setpoint change alone must not produce a derivative kick.
	p2 := New(0, 0, 2.0, 50.0)
	p2.Compute(20.0, 1.0)
	p2.Setpoint = 90.0
	out = p2.Compute(20.0, 1.0)
	if math.Abs(out) > 1e-9 {
		t.Errorf("setpoint change caused derivative kick: %f", out)
	}
}

func TestAntiWindupBoundsIntegral(t *testing.T) {
	p := New(2.0, 0.5, 0, 50.0)

	// Deep saturation: error 50, P term alone pins the output high.
	p.Compute(0.0, 1.0)
	after1 := p.Integral()

	for i := 0; i < 200; i++ {
		p.Compute(0.0, 1.0)
	}
	if p.Integral() != after1 {
		t.Errorf("integral grew during saturation: %f -> %f", after1, p.Integral())
	}
}

func TestAntiWindupRecovery(t *testing.T) {
	p := New(2.0, 0.5, 0, 50.0)

	for i := 0; i < 200; i++ {
		if out := p.Compute(0.0, 1.0); out != 100.0 {
			t.Fatalf("expected saturated output, got %f", out)
		}
	}

	// Error reverses sign: output must leave saturation on the very
	// next compute rather than burning off a wound-up integral.
	out := p.Compute(100.0, 1.0)
	if out >= 100.0 {
		t.Errorf("output stuck in saturation after error reversal: %f", out)
	}
}

func TestIntegralUnwindsWhileSaturated(t *testing.T) {
	p := New(2.0, 4.0, 0, 50.0)
	for i := 0; i < 50; i++ {
		p.Compute(0.0, 1.0)
	}
	wound := p.Integral()

	// Still saturated high, but the error is now negative: integration
	// must continue, pulling the output back inside the bounds.
	p.Compute(55.0, 1.0)
	if p.Integral() >= wound {
		t.Errorf("integral did not unwind under reversing error: %f -> %f", wound, p.Integral())
	}
}

func TestBumplessTransfer(t *testing.T) {
	tests := []struct {
		name            string
		kp, ki, kd      float64
		setpoint        float64
		output, measure float64
	}{
		{"mid range", 3.0, 0.2, 1.0, 40.0, 63.0, 35.0},
		{"low output", 5.0, 0.1, 0.5, 50.0, 5.0, 48.0},
		{"negative error", 2.0, 0.4, 0, 30.0, 20.0, 45.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.kp, tt.ki, tt.kd, tt.setpoint)
			p.Initialize(tt.output, tt.measure)

			// Continuity holds in the dt->0 limit: an unchanged
			// measurement zeroes the derivative term, and the integral
			// update contributes only Ki*err*dt.
			dt := 1e-9
			out := p.Compute(tt.measure, dt)
			if math.Abs(out-tt.output) > 1e-6 {
				t.Errorf("expected continuity at %f, got %f", tt.output, out)
			}
		})
	}
}

func TestBumplessTransferDeviationBounded(t *testing.T) {
	// At a finite step the first post-transfer output may move, but
	// only by the single integral increment Ki*err*dt.
	p := New(3.0, 0.2, 1.0, 40.0)
	p.Initialize(63.0, 35.0)

	dt := 0.1
	err := p.Setpoint - 35.0
	out := p.Compute(35.0, dt)
	if math.Abs(out-63.0) > p.Ki*math.Abs(err)*dt+1e-9 {
		t.Errorf("transfer deviation %f exceeds one integral increment", math.Abs(out-63.0))
	}
}

func TestInitializeZeroKi(t *testing.T) {
	p := New(2.0, 0, 1.0, 50.0)
	p.Initialize(75.0, 40.0)
	if p.Integral() != 0 {
		t.Errorf("expected zero integral with Ki=0, got %f", p.Integral())
	}
}

func TestReset(t *testing.T) {
	p := New(2.0, 0.5, 1.0, 50.0)
	p.Compute(30.0, 1.0)
	p.Compute(35.0, 1.0)

	p.Reset()
	if p.Integral() != 0 {
		t.Errorf("expected zero integral after reset, got %f", p.Integral())
	}
	// prevMeas zeroed too: next derivative is taken against 0.
	out := p.Compute(0.0, 1.0)
	if math.Abs(out-100.0) > 1e-9 {
		t.Errorf("unexpected output after reset: %f", out)
	}
}

func TestZeroDtSkipsDerivative(t *testing.T) {
	p := New(1.0, 0, 10.0, 50.0)
	p.Compute(10.0, 1.0)
	out := p.Compute(20.0, 0)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		t.Errorf("dt=0 produced non-finite output: %f", out)
	}
}

func TestSetParam(t *testing.T) {
	p := New(1, 1, 1, 10)
	if err := p.SetParam("Kp", 5); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if p.Kp != 5 {
		t.Errorf("Kp not updated")
	}
	if err := p.SetParam("bogus", 1); !errors.Is(err, sim.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
}
