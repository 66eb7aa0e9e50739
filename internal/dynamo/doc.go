// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: fixed four-slot vector representing system state
//   - [Labels]: what each slot of a model's state means
//   - [System]: interface for ODE systems (dy/dt = f(t, y))
//   - [Integrator]: advances a state across an interval [a, b]
//   - [Sampler]: produces a whole trajectory at regular output times
//   - [Observer] and [Metric]: consumers of committed samples
//
// # Example
//
//	dyn := physics.NewLorenz(10, 28, 8.0/3.0)
//	integ := integrators.NewRK4(0.01)
//	y, err := integ.Integrate(dyn, 0, 1, dynamo.State{1, 1, 1, 0})
//
// States are plain arrays and are copied on assignment, so no caller can
// mutate a value that an integrator or trajectory has already seen.
package dynamo
