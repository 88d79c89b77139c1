package metrics

import (
	"math"
	"testing"

	"github.com/abe-mart/tclab-sim/internal/sim"
)

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	m.Observe(sim.State{25, 25}, sim.Control{100, 0}, 0.1)
	m.Observe(sim.State{26, 25}, sim.Control{50, 50}, 0.2)

	// (100+0+50+50)/2 observations
	if math.Abs(m.Value()-100.0) > 1e-9 {
		t.Errorf("expected 100, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear value")
	}
}

func TestTrackingError(t *testing.T) {
	m := NewTrackingError(50, 40)

	m.Observe(sim.State{30, 30}, nil, 1.0)
	m.Observe(sim.State{40, 35}, nil, 2.0)

	// First observation only anchors time; second adds (10+5)*1.
	if math.Abs(m.Value()-15.0) > 1e-9 {
		t.Errorf("expected IAE 15, got %f", m.Value())
	}

	m.Reset()
	m.Observe(sim.State{50, 40}, nil, 5.0)
	if m.Value() != 0 {
		t.Errorf("expected zero after reset+anchor, got %f", m.Value())
	}
}

func TestPeakTemp(t *testing.T) {
	m := NewPeakTemp()

	m.Observe(sim.State{25, 30}, nil, 0)
	m.Observe(sim.State{45, 28}, nil, 1)
	m.Observe(sim.State{40, 32}, nil, 2)

	if m.Value() != 45 {
		t.Errorf("expected peak 45, got %f", m.Value())
	}

	m.Reset()
	m.Observe(sim.State{-5, -8}, nil, 0)
	if m.Value() != -5 {
		t.Errorf("expected peak -5 for sub-zero readings, got %f", m.Value())
	}
}
