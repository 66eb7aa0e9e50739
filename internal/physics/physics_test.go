package physics

import (
	"math"
	"testing"

	"github.com/san-kum/odestream/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

func TestEquilibriumHasZeroDerivative(t *testing.T) {
	tests := []struct {
		name string
		dyn  dynamo.System
		y    dynamo.State
	}{
		{"oscillator origin", NewOscillator(1.0), dynamo.State{}},
		{"oscillator stiff origin", NewOscillator(25.0), dynamo.State{}},
		{"lorenz origin", NewLorenz(10, 28, 8.0/3.0), dynamo.State{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.dyn.Derive(0, tt.y)
			if d != (dynamo.State{}) {
				t.Errorf("expected zero derivative, got %v", d)
			}
		})
	}
}

func TestLorenzNonTrivialEquilibrium(t *testing.T) {
	l := NewLorenz(10, 28, 8.0/3.0)
	c := math.Sqrt(l.Beta * (l.Rho - 1))
	for _, sign := range []float64{1, -1} {
		y := dynamo.State{sign * c, sign * c, l.Rho - 1, 0}
		d := l.Derive(0, y)
		if d.Norm() > 1e-12 {
			t.Errorf("expected zero derivative at C%+.0f, got %v", sign, d)
		}
	}
}

func TestNeuronGatesStationaryAtSteadyState(t *testing.T) {
	n := NewNeuron()
	n.Amplitude = 0
	v := -65.0
	m, ng, h := n.RestingGates(v)

	d := n.Derive(0, dynamo.State{v, m, ng, h})
	for i := 1; i < dynamo.Dim; i++ {
		if !floats.EqualWithinAbs(d[i], 0, 1e-12) {
			t.Errorf("gate %d derivative = %g, want 0", i, d[i])
		}
	}
}

func TestNeuronRestingPotentialIsFixedPoint(t *testing.T) {
	n := NewNeuron()
	n.Amplitude = 0

	// Bisect for the voltage where the membrane current vanishes with all
	// gates at steady state.
	current := func(v float64) float64 {
		m, ng, h := n.RestingGates(v)
		return n.Derive(0, dynamo.State{v, m, ng, h})[0]
	}
	lo, hi := -70.0, -60.0
	if current(lo)*current(hi) > 0 {
		t.Fatalf("no sign change in [%g, %g]", lo, hi)
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if current(lo)*current(mid) <= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	v := 0.5 * (lo + hi)
	m, ng, h := n.RestingGates(v)
	d := n.Derive(0, dynamo.State{v, m, ng, h})
	if d.Norm() > 1e-9 {
		t.Errorf("expected zero derivative at rest (V=%.4f), got %v", v, d)
	}
	if v < -66 || v > -64 {
		t.Errorf("resting potential %.3f outside expected band", v)
	}
}

func TestRateSingularities(t *testing.T) {
	tests := []struct {
		name  string
		rate  func(float64) float64
		v     float64
		limit float64
	}{
		{"alpha_m at -40", alphaM, -40, 1.0},
		{"alpha_n at -55", alphaN, -55, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rate(tt.v)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("rate is not finite at singular point: %v", got)
			}
			if got != tt.limit {
				t.Errorf("rate(%g) = %v, want limit %v", tt.v, got, tt.limit)
			}

			for _, eps := range []float64{1e-9, 1e-6, 1e-4, 1e-2} {
				for _, v := range []float64{tt.v - eps, tt.v + eps} {
					r := tt.rate(v)
					if !floats.EqualWithinRel(r, tt.limit, 1e-2) {
						t.Errorf("rate(%g) = %v, discontinuous near limit %v", v, r, tt.limit)
					}
				}
			}
		})
	}
}

func TestRateMatchesQuotientAwayFromSingularity(t *testing.T) {
	for _, v := range []float64{-80, -60, -39, 0, 30} {
		want := 0.1 * (v + 40) / (1 - math.Exp(-(v+40)/10))
		if got := alphaM(v); !floats.EqualWithinRel(got, want, 1e-12) {
			t.Errorf("alphaM(%g) = %v, want %v", v, got, want)
		}
		want = 0.01 * (v + 55) / (1 - math.Exp(-(v+55)/10))
		if got := alphaN(v); !floats.EqualWithinRel(got, want, 1e-12) {
			t.Errorf("alphaN(%g) = %v, want %v", v, got, want)
		}
	}
}

func TestNeuronDeriveAtSingularVoltages(t *testing.T) {
	n := NewNeuron()
	for _, v := range []float64{-40, -55} {
		d := n.Derive(10, dynamo.State{v, 0.1, 0.4, 0.5})
		if !d.IsValid() {
			t.Errorf("derivative at V=%g is not finite: %v", v, d)
		}
	}
}

func TestNeuronCapacitanceScalesVoltageRate(t *testing.T) {
	y := dynamo.State{-50, 0.1, 0.4, 0.5}
	unit := NewNeuron()
	double := NewNeuron()
	double.C = 2

	a, b := unit.Derive(10, y), double.Derive(10, y)
	if !floats.EqualWithinRel(b[0], a[0]/2, 1e-12) {
		t.Errorf("dV/dt with C=2 is %v, want %v", b[0], a[0]/2)
	}
	if a[1] != b[1] || a[2] != b[2] || a[3] != b[3] {
		t.Errorf("gate rates depend on C: %v vs %v", a, b)
	}

	// zero capacitance is not replaced by a default; the integrators
	// reject the non-finite rate
	zero := NewNeuron()
	zero.C = 0
	if d := zero.Derive(10, y); d.IsValid() {
		t.Errorf("C=0 produced a finite derivative %v", d)
	}
}

func TestNeuronCurrentWindow(t *testing.T) {
	n := NewNeuron()
	n.Amplitude, n.Start, n.End = 7.5, 2, 4

	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{1.999, 0},
		{2, 7.5},
		{3, 7.5},
		{4, 7.5},
		{4.001, 0},
	}
	for _, tt := range tests {
		if got := n.Current(tt.t); got != tt.want {
			t.Errorf("Current(%g) = %g, want %g", tt.t, got, tt.want)
		}
	}

	y := dynamo.State{-65, 0.05, 0.32, 0.6}
	inside := n.Derive(3, y)
	outside := n.Derive(5, y)
	if got := inside[0] - outside[0]; !floats.EqualWithinAbs(got, 7.5, 1e-12) {
		t.Errorf("current contribution = %g, want 7.5", got)
	}
}

func TestOscillatorEnergy(t *testing.T) {
	o := NewOscillator(4.0)
	if e := o.Energy(dynamo.State{1, 0}); e != 2.0 {
		t.Errorf("potential energy = %g, want 2", e)
	}
	if e := o.Energy(dynamo.State{0, 2}); e != 2.0 {
		t.Errorf("kinetic energy = %g, want 2", e)
	}
}

func TestUnusedSlotsHaveZeroDerivative(t *testing.T) {
	y := dynamo.State{0.3, -1.2, 5.0, 7.0}
	if d := NewOscillator(2).Derive(0, y); d[2] != 0 || d[3] != 0 {
		t.Errorf("oscillator unused slots moved: %v", d)
	}
	if d := NewLorenz(10, 28, 8.0/3.0).Derive(0, y); d[3] != 0 {
		t.Errorf("lorenz unused slot moved: %v", d)
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		dyn  dynamo.System
		name string
		want dynamo.Labels
	}{
		{NewOscillator(1), OscillatorName, dynamo.Labels{"x (m)", "v (m/s)", "unused", "unused"}},
		{NewNeuron(), NeuronName, dynamo.Labels{"V (mV)", "m", "n", "h"}},
		{NewLorenz(10, 28, 8.0/3.0), LorenzName, dynamo.Labels{"x", "y", "z", "unused"}},
	}
	for _, tt := range tests {
		if tt.dyn.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", tt.dyn.Name(), tt.name)
		}
		if tt.dyn.Labels() != tt.want {
			t.Errorf("%s Labels() = %v, want %v", tt.name, tt.dyn.Labels(), tt.want)
		}
	}
}
