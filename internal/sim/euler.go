package sim

// Euler is a fixed-step explicit first-order integrator. Both
// derivatives are evaluated once at the pre-step state, so coupled
// components see a consistent snapshot within a single step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn Dynamics, x State, u Control, t float64, dt float64) State {
	dx := dyn.Derive(x, u, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
