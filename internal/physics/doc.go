// Package physics provides the dynamical system models the engine can run.
//
// Each model implements [dynamo.System], defining the differential
// equations governing the system's evolution over a four-slot state:
//
//   - [Oscillator]: undamped harmonic oscillator, [x, v, -, -]
//   - [Neuron]: Hodgkin-Huxley membrane with a step current, [V, m, n, h]
//   - [Lorenz]: butterfly attractor, [x, y, z, -]
//
// Models are plain values holding only their physical constants. Derive is
// a pure function of (t, y), so a model can be shared by any number of
// integrators without coordination.
//
// # Energy Conservation
//
// The oscillator implements [dynamo.Hamiltonian] for drift monitoring:
//
//	dyn := physics.NewOscillator(1)
//	if h, ok := dyn.(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
