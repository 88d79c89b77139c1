// Package plant models a two-heater, two-sensor thermal lab device as
// a coupled nonlinear ODE. Each node exchanges heat with ambient and
// with the other node, by conduction and by radiation, and receives
// power from its own heater. The model implements [sim.Dynamics];
// temperatures are kept in kelvin internally and reported in celsius.
package plant

import (
	"fmt"
	"math"

	"github.com/abe-mart/tclab-sim/internal/sim"
)

// Fixed geometry and physical constants.
const (
	SurfaceArea     = 1.0e-3 // node-to-ambient exchange area, m^2
	CouplingArea    = 2.0e-4 // node-to-node exchange area, m^2
	StefanBoltzmann = 5.67e-8
	zeroCelsius     = 273.15
)

// Default physical parameters, matching the hardware the twin teaches.
const (
	DefaultU          = 10.0   // overall heat transfer coefficient, W/m^2/K
	DefaultMass       = 4.0e-3 // node thermal mass, kg
	DefaultCp         = 500.0  // specific heat, J/kg/K
	DefaultAlpha1     = 0.01   // heater 1 gain, W per % duty
	DefaultAlpha2     = 0.0075 // heater 2 gain, W per % duty
	DefaultEmissivity = 0.9
	DefaultInitialC   = 23.0 // startup temperature, celsius
)

// Params holds the tunable physical constants. Ambient is stored in
// kelvin like the node temperatures.
type Params struct {
	U          float64
	Mass       float64
	Cp         float64
	Alpha1     float64
	Alpha2     float64
	Emissivity float64
	Ambient    float64
}

// Model owns the plant state: two node temperatures and two heater
// duties. Mutation happens only through SetHeaters, SetParam and Step.
type Model struct {
	params Params
	temps  sim.State   // [T1, T2] kelvin
	duty   sim.Control // [Q1, Q2] percent
	integ  sim.Integrator
}

// New constructs a plant with both nodes, and the ambient reference,
// at initialC degrees celsius.
func New(initialC float64) *Model {
	t0 := initialC + zeroCelsius
	return &Model{
		params: Params{
			U:          DefaultU,
			Mass:       DefaultMass,
			Cp:         DefaultCp,
			Alpha1:     DefaultAlpha1,
			Alpha2:     DefaultAlpha2,
			Emissivity: DefaultEmissivity,
			Ambient:    t0,
		},
		temps: sim.State{t0, t0},
		duty:  sim.Control{0, 0},
		integ: sim.NewEuler(),
	}
}

func (m *Model) StateDim() int   { return 2 }
func (m *Model) ControlDim() int { return 2 }

// Derive computes both node temperature derivatives from the given
// state. All temperatures in kelvin.
func (m *Model) Derive(x sim.State, u sim.Control, _ float64) sim.State {
	t1, t2 := x[0], x[1]
	p := m.params

	// Node-to-node conduction and radiation.
	qc := p.U * CouplingArea * (t2 - t1)
	qr := p.Emissivity * StefanBoltzmann * CouplingArea * (pow4(t2) - pow4(t1))

	inv := 1.0 / (p.Mass * p.Cp)
	d1 := inv * (p.U*SurfaceArea*(p.Ambient-t1) +
		p.Emissivity*StefanBoltzmann*SurfaceArea*(pow4(p.Ambient)-pow4(t1)) +
		qc + qr + p.Alpha1*u[0])
	d2 := inv * (p.U*SurfaceArea*(p.Ambient-t2) +
		p.Emissivity*StefanBoltzmann*SurfaceArea*(pow4(p.Ambient)-pow4(t2)) -
		qc - qr + p.Alpha2*u[1])

	return sim.State{d1, d2}
}

func pow4(v float64) float64 {
	v2 := v * v
	return v2 * v2
}

// Step advances both node temperatures by one explicit Euler step of
// dt seconds, using the current heater duties.
func (m *Model) Step(dt float64) {
	m.temps = m.integ.Step(m, m.temps, m.duty, 0, dt)
}

// SetHeaters clamps each duty to [0,100] and stores it.
func (m *Model) SetHeaters(q1, q2 float64) {
	m.duty[0] = clamp(q1, 0, 100)
	m.duty[1] = clamp(q2, 0, 100)
}

// Heaters returns the current duties in percent.
func (m *Model) Heaters() (q1, q2 float64) {
	return m.duty[0], m.duty[1]
}

// Sensors returns both node temperatures in celsius.
func (m *Model) Sensors() (t1, t2 float64) {
	return m.temps[0] - zeroCelsius, m.temps[1] - zeroCelsius
}

// State returns the raw kelvin state vector for validity checks.
func (m *Model) State() sim.State {
	return m.temps.Clone()
}

// Energy implements sim.ThermalEnergy: joules stored above ambient.
func (m *Model) Energy(x sim.State) float64 {
	e := 0.0
	for _, t := range x {
		e += m.params.Mass * m.params.Cp * (t - m.params.Ambient)
	}
	return e
}

// GetParams implements sim.Configurable. Ambient is reported in
// celsius, matching the display convention.
func (m *Model) GetParams() map[string]float64 {
	return map[string]float64{
		"U":          m.params.U,
		"mass":       m.params.Mass,
		"Cp":         m.params.Cp,
		"alpha1":     m.params.Alpha1,
		"alpha2":     m.params.Alpha2,
		"emissivity": m.params.Emissivity,
		"ambient":    m.params.Ambient - zeroCelsius,
	}
}

// SetParam implements sim.Configurable. Ambient is given in celsius
// and converted on entry. Takes effect on the next Step.
func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "U":
		m.params.U = value
	case "mass":
		m.params.Mass = value
	case "Cp":
		m.params.Cp = value
	case "alpha1":
		m.params.Alpha1 = value
	case "alpha2":
		m.params.Alpha2 = value
	case "emissivity":
		m.params.Emissivity = value
	case "ambient":
		m.params.Ambient = value + zeroCelsius
	default:
		return fmt.Errorf("%w: %q", sim.ErrUnknownParameter, name)
	}
	return nil
}

// SetParams merges a partial parameter set; names absent from the map
// are left unchanged.
func (m *Model) SetParams(p map[string]float64) error {
	for name, value := range p {
		if err := m.SetParam(name, value); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
