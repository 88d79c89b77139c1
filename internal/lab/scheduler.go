// Package lab wires the thermal plant, the two PID loops and the
// history store into a tick-driven scheduler: the digital twin of the
// two-heater lab device.
//
// All mutation happens inside Tick or the explicit setters, on the
// caller's goroutine. A Scheduler is not safe for concurrent use; the
// live view and the headless runner both drive it from a single loop.
package lab

import (
	"context"
	"fmt"
	"io"

	"github.com/abe-mart/tclab-sim/internal/config"
	"github.com/abe-mart/tclab-sim/internal/history"
	"github.com/abe-mart/tclab-sim/internal/pid"
	"github.com/abe-mart/tclab-sim/internal/plant"
	"github.com/abe-mart/tclab-sim/internal/sim"
)

// Scheduler advances the plant at a fixed physics step. Each tick is
// exactly one step of simulated time regardless of wall-clock cadence,
// so the physics stays deterministic under scheduling jitter at the
// cost of simulated time drifting from real time.
type Scheduler struct {
	cfg *config.Config

	plant   *plant.Model
	pid1    *pid.PID
	pid2    *pid.PID
	hist    *history.Store
	metrics []sim.Metric

	dt       float64
	elapsed  float64
	q1, q2   float64
	running  bool
	auto     bool
	window   float64
	diverged bool
}

// New builds a scheduler from a configuration. The plant starts at the
// configured initial temperature with the configured parameters; the
// manual duties start from the per-channel configured values.
func New(cfg *config.Config) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		hist:    history.New(),
		dt:      cfg.Dt,
		window:  cfg.Window,
		running: true,
	}
	s.rebuild()
	s.q1 = clampDuty(cfg.Heater1.Duty)
	s.q2 = clampDuty(cfg.Heater2.Duty)
	if cfg.Automatic() {
		s.auto = true
	}
	return s
}

// rebuild constructs plant and controllers fresh from the config.
func (s *Scheduler) rebuild() {
	s.plant = plant.New(s.cfg.InitialTemp)
	s.plant.SetParams(s.cfg.PlantParams())
	h1, h2 := s.cfg.Heater1, s.cfg.Heater2
	s.pid1 = pid.New(h1.Kp, h1.Ki, h1.Kd, h1.Setpoint)
	s.pid2 = pid.New(h2.Kp, h2.Ki, h2.Kd, h2.Setpoint)
}

// Tick performs one scheduler cycle: read actuation, step the plant,
// sample sensors, append history. A paused or diverged scheduler does
// nothing; simulated time does not advance.
func (s *Scheduler) Tick() {
	if !s.running || s.diverged {
		return
	}

	if s.auto {
		t1, t2 := s.plant.Sensors()
		s.q1 = s.pid1.Compute(t1, s.dt)
		s.q2 = s.pid2.Compute(t2, s.dt)
	}

	s.plant.SetHeaters(s.q1, s.q2)
	s.plant.Step(s.dt)
	s.elapsed += s.dt

	if !s.plant.State().IsValid() {
		// Explicit Euler blew up. Stop before NaNs reach the history.
		s.diverged = true
		s.running = false
		return
	}

	t1, t2 := s.plant.Sensors()
	s.hist.Append(history.Sample{Time: s.elapsed, T1: t1, T2: t2, Q1: s.q1, Q2: s.q2})

	for _, m := range s.metrics {
		m.Observe(sim.State{t1, t2}, sim.Control{s.q1, s.q2}, s.elapsed)
	}
}

// Run drives the scheduler headless for duration simulated seconds,
// honoring context cancellation between ticks.
func (s *Scheduler) Run(ctx context.Context, duration float64) error {
	if s.dt <= 0 {
		return sim.ErrInvalidStep
	}
	s.running = true

	steps := int(duration/s.dt + 1e-9)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Tick()
		if s.diverged {
			return fmt.Errorf("%w at t=%.1fs (dt=%.3g)", sim.ErrUnstable, s.elapsed, s.dt)
		}
	}
	return nil
}

// SetAutomatic switches between manual and closed-loop control. The
// manual-to-automatic edge re-seeds both controllers from the current
// actuation and sensors so the commanded duty is continuous across the
// switch. The reverse edge needs nothing: the last computed duties
// simply become the manual values.
func (s *Scheduler) SetAutomatic(on bool) {
	if on && !s.auto {
		t1, t2 := s.plant.Sensors()
		s.pid1.Initialize(s.q1, t1)
		s.pid2.Initialize(s.q2, t2)
	}
	s.auto = on
}

func (s *Scheduler) Automatic() bool {
	return s.auto
}

// SetManual stores clamped manual duties. In automatic mode they are
// overwritten on the next tick.
func (s *Scheduler) SetManual(q1, q2 float64) {
	s.q1 = clampDuty(q1)
	s.q2 = clampDuty(q2)
}

// Actuation returns the duties applied on the most recent tick.
func (s *Scheduler) Actuation() (q1, q2 float64) {
	return s.q1, s.q2
}

func (s *Scheduler) Pause() {
	s.running = false
}

// Resume restarts ticking. A diverged run stays stopped until Reset.
func (s *Scheduler) Resume() {
	if s.diverged {
		return
	}
	s.running = true
}

func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) Diverged() bool {
	return s.diverged
}

// Reset discards the plant, clears history and elapsed time, resets
// both controllers, and zeroes the actuation. The configured mode and
// the run/paused flag are left alone; an automatic loop resumes from a
// zero integral on the next tick.
func (s *Scheduler) Reset() {
	s.rebuild()
	s.elapsed = 0
	s.q1, s.q2 = 0, 0
	s.hist.Clear()
	s.diverged = false
	for _, m := range s.metrics {
		m.Reset()
	}
}

// SetWindow changes the display window length in seconds (0 means
// unbounded). Effective immediately: the next Window call reflects it.
func (s *Scheduler) SetWindow(seconds float64) {
	s.window = seconds
}

func (s *Scheduler) WindowSeconds() float64 {
	return s.window
}

// Window returns the bounded display slice of the history.
func (s *Scheduler) Window() []history.Sample {
	return s.hist.Window(s.window, s.dt)
}

func (s *Scheduler) History() *history.Store {
	return s.hist
}

// ExportCSV writes the full history in the export format.
func (s *Scheduler) ExportCSV(w io.Writer) error {
	return s.hist.WriteCSV(w)
}

func (s *Scheduler) Elapsed() float64 {
	return s.elapsed
}

func (s *Scheduler) Dt() float64 {
	return s.dt
}

func (s *Scheduler) Plant() *plant.Model {
	return s.plant
}

// Controllers returns both PID loops for live tuning.
func (s *Scheduler) Controllers() (*pid.PID, *pid.PID) {
	return s.pid1, s.pid2
}

func (s *Scheduler) AddMetric(m sim.Metric) {
	s.metrics = append(s.metrics, m)
}

// MetricValues returns the current value of every registered metric.
func (s *Scheduler) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func clampDuty(q float64) float64 {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}
