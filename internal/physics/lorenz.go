package physics

import "github.com/san-kum/odestream/internal/dynamo"

const LorenzName = "lorenz_attractor"

// Lorenz is the Lorenz attractor. State: [x, y, z, unused].
type Lorenz struct{ Sigma, Rho, Beta float64 }

func NewLorenz(sigma, rho, beta float64) Lorenz { return Lorenz{sigma, rho, beta} }

func (l Lorenz) Name() string { return LorenzName }

func (l Lorenz) Labels() dynamo.Labels { return dynamo.Labels{"x", "y", "z", dynamo.Unused} }

// Derive calculates the Lorenz attractor derivatives.
func (l Lorenz) Derive(_ float64, s dynamo.State) dynamo.State {
	return dynamo.State{l.Sigma * (s[1] - s[0]), s[0]*(l.Rho-s[2]) - s[1], s[0]*s[1] - l.Beta*s[2], 0}
}

func (l Lorenz) InitialState(x0, y0, z0 float64) dynamo.State { return dynamo.State{x0, y0, z0, 0} }

func (l Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.Sigma, "rho": l.Rho, "beta": l.Beta}
}
