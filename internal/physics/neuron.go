package physics

import (
	"math"

	"github.com/san-kum/odestream/internal/dynamo"
)

const NeuronName = "hodgkin_huxley"

// Neuron is the Hodgkin-Huxley squid axon membrane, in mV, ms, mS/cm²,
// µA/cm² and µF/cm².
// State: [V, m, n, h]
// Equations:
//
//	C dV/dt = I(t) - gNa m³h (V-ENa) - gK n⁴ (V-EK) - gL (V-EL)
//	dq/dt   = αq(V)(1-q) - βq(V) q,  q ∈ {m, n, h}
//
// The injected current I(t) equals Amplitude for Start <= t <= End and zero
// otherwise.
type Neuron struct {
	GNa, GK, GL float64
	ENa, EK, EL float64
	C           float64
	Amplitude   float64
	Start, End  float64
}

func NewNeuron() Neuron {
	return Neuron{
		GNa: 120.0, GK: 36.0, GL: 0.3,
		ENa: 50.0, EK: -77.0, EL: -54.387,
		C:         1.0,
		Amplitude: 10.0,
		Start:     5.0,
		End:       30.0,
	}
}

func (n Neuron) Name() string { return NeuronName }

func (n Neuron) Labels() dynamo.Labels {
	return dynamo.Labels{"V (mV)", "m", "n", "h"}
}

// Current is the externally injected current at time t.
func (n Neuron) Current(t float64) float64 {
	if t >= n.Start && t <= n.End {
		return n.Amplitude
	}
	return 0
}

func (n Neuron) Derive(t float64, s dynamo.State) dynamo.State {
	v, m, ng, h := s[0], s[1], s[2], s[3]

	iNa := n.GNa * m * m * m * h * (v - n.ENa)
	iK := n.GK * math.Pow(ng, 4) * (v - n.EK)
	iL := n.GL * (v - n.EL)

	return dynamo.State{
		(n.Current(t) - iNa - iK - iL) / n.C,
		alphaM(v)*(1-m) - betaM(v)*m,
		alphaN(v)*(1-ng) - betaN(v)*ng,
		alphaH(v)*(1-h) - betaH(v)*h,
	}
}

// RestingGates returns the steady-state gate values at membrane voltage v.
func (n Neuron) RestingGates(v float64) (m, ng, h float64) {
	return steadyState(alphaM(v), betaM(v)),
		steadyState(alphaN(v), betaN(v)),
		steadyState(alphaH(v), betaH(v))
}

func (n Neuron) InitialState(v0, m0, n0, h0 float64) dynamo.State {
	return dynamo.State{v0, m0, n0, h0}
}

func (n Neuron) GetParams() map[string]float64 {
	return map[string]float64{
		"g_na": n.GNa, "g_k": n.GK, "g_l": n.GL,
		"e_na": n.ENa, "e_k": n.EK, "e_l": n.EL,
		"c": n.C, "i_ext": n.Amplitude,
	}
}
