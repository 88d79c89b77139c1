// Package sim provides the core primitives for fixed-step simulation
// of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [Dynamics]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Metric]: per-step observation accumulator
//   - [Configurable]: runtime parameter adjustment
//
// The only integrator provided is [Euler]. The thermal plant is
// deliberately integrated with a fixed-step explicit scheme: it is
// conditionally stable, and letting students watch it diverge at a
// too-large step is part of the point. Adaptive or implicit schemes
// would hide that behavior.
package sim
