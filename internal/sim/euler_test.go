package sim

import (
	"math"
	"testing"
)

type decayDynamics struct{}

func (d *decayDynamics) Derive(x State, u Control, t float64) State {
	return State{-x[0]}
}

func (d *decayDynamics) StateDim() int   { return 1 }
func (d *decayDynamics) ControlDim() int { return 0 }

func TestEulerDecay(t *testing.T) {
	dyn := &decayDynamics{}
	integ := NewEuler()

	x := State{1.0}
	dt := 0.001
	for i := 0; i < 1000; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	expected := math.Exp(-1.0)
	if math.Abs(x[0]-expected) > 0.01 {
		t.Errorf("expected ~%.4f after 1s of decay, got %.4f", expected, x[0])
	}
}

func TestEulerPreStepDerivative(t *testing.T) {
	// A single step must use only the pre-step state: x + dt*f(x).
	dyn := &decayDynamics{}
	integ := NewEuler()

	x := State{2.0}
	got := integ.Step(dyn, x, nil, 0, 0.5)
	want := 2.0 + 0.5*(-2.0)
	if math.Abs(got[0]-want) > 1e-12 {
		t.Errorf("expected %.6f, got %.6f", want, got[0])
	}
	if x[0] != 2.0 {
		t.Error("input state mutated by Step")
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"finite", State{1, 2}, true},
		{"nan", State{1, math.NaN()}, false},
		{"inf", State{math.Inf(1), 0}, false},
		{"empty", State{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestStateClone(t *testing.T) {
	s := State{1, 2, 3}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Error("clone shares backing array with original")
	}
}
