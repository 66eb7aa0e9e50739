package physics

import "github.com/san-kum/odestream/internal/dynamo"

const OscillatorName = "harmonic_oscillator"

// Oscillator implements the undamped harmonic oscillator.
// State: [x, v, unused, unused]
// Equations:
//
//	dx/dt = v
//	dv/dt = -ω x
type Oscillator struct {
	Omega float64
}

func NewOscillator(omega float64) Oscillator {
	return Oscillator{Omega: omega}
}

func (o Oscillator) Name() string { return OscillatorName }

func (o Oscillator) Labels() dynamo.Labels {
	return dynamo.Labels{"x (m)", "v (m/s)", dynamo.Unused, dynamo.Unused}
}

func (o Oscillator) Derive(_ float64, s dynamo.State) dynamo.State {
	return dynamo.State{s[1], -o.Omega * s[0], 0, 0}
}

// Energy is conserved along exact solutions of Derive.
func (o Oscillator) Energy(s dynamo.State) float64 {
	x, v := s[0], s[1]
	return 0.5*v*v + 0.5*o.Omega*x*x
}

func (o Oscillator) InitialState() dynamo.State {
	return dynamo.State{1.0, 0.0, 0.0, 0.0}
}

// GetParams implements dynamo.Configurable
func (o Oscillator) GetParams() map[string]float64 {
	return map[string]float64{"omega": o.Omega}
}
