package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/physics"
)

func TestDopri5ClosedOrbit(t *testing.T) {
	integ := NewDopri5(1e-10, 1e-12)
	y, err := integ.Integrate(physics.NewOscillator(1), 0, 2*math.Pi, dynamo.State{1, 0})
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if d := y.MaxAbsDiff(dynamo.State{1, 0}); d > 1e-7 {
		t.Errorf("orbit did not close: got %v (off by %g)", y, d)
	}
	if s := integ.Stats(); s.Accepted == 0 || s.Evaluations == 0 {
		t.Errorf("stats not recorded: %+v", s)
	}
}

func TestDopri5EnergyConservation(t *testing.T) {
	o := physics.NewOscillator(4)
	y0 := dynamo.State{1, 0}
	e0 := o.Energy(y0)

	y, err := NewDopri5(1e-9, 1e-12).Integrate(o, 0, 50, y0)
	if err != nil {
		t.Fatal(err)
	}
	if drift := math.Abs(o.Energy(y)-e0) / e0; drift > 1e-6 {
		t.Errorf("energy drift too high: %e", drift)
	}
}

func TestDopri5TighterToleranceIsMoreAccurate(t *testing.T) {
	dyn := simpleDynamics{}
	want := dynamo.State{math.Cos(10), -math.Sin(10)}

	loose, err := NewDopri5(1e-4, 1e-6).Integrate(dyn, 0, 10, dynamo.State{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	tight, err := NewDopri5(1e-10, 1e-12).Integrate(dyn, 0, 10, dynamo.State{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if tight.MaxAbsDiff(want) >= loose.MaxAbsDiff(want) {
		t.Errorf("tight error %g not below loose error %g", tight.MaxAbsDiff(want), loose.MaxAbsDiff(want))
	}
	if tight.MaxAbsDiff(want) > 1e-8 {
		t.Errorf("tight tolerance error %g", tight.MaxAbsDiff(want))
	}
}

func TestDopri5AgreesWithRK4OnLorenz(t *testing.T) {
	l := physics.NewLorenz(10, 28, 8.0/3.0)
	y0 := dynamo.State{1, 1, 1, 0}

	ref, err := NewRK4(1e-4).Integrate(l, 0, 1, y0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := NewDopri5(1e-10, 1e-12).Integrate(l, 0, 1, y0)
	if err != nil {
		t.Fatal(err)
	}
	if d := got.MaxAbsDiff(ref); d > 1e-6 {
		t.Errorf("dopri5 and rk4 disagree by %g: %v vs %v", d, got, ref)
	}
}

func TestDopri5Deterministic(t *testing.T) {
	l := physics.NewLorenz(10, 28, 8.0/3.0)
	y0 := dynamo.State{1, 1, 1, 0}
	integ := NewDopri5(1e-6, 1e-9)

	a, err := integ.Integrate(l, 0, 2, y0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := integ.Integrate(l, 0, 2, y0)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("reused integrator gave different results: %v vs %v", a, b)
	}
}

func TestDopri5StepBudget(t *testing.T) {
	integ := NewDopri5(1e-12, 1e-14).WithMaxSteps(5)
	_, err := integ.Integrate(physics.NewLorenz(10, 28, 8.0/3.0), 0, 10, dynamo.State{1, 1, 1, 0})
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Errorf("expected ErrStepBudget, got %v", err)
	}
}

func TestDopri5InvalidState(t *testing.T) {
	_, err := NewDopri5(1e-6, 1e-9).Integrate(simpleDynamics{}, 0, 1, dynamo.State{math.NaN()})
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestDopri5InvalidTolerance(t *testing.T) {
	tests := []struct {
		name       string
		rtol, atol float64
	}{
		{"both zero", 0, 0},
		{"zero atol", 1e-6, 0},
		{"zero rtol", 0, 1e-9},
		{"negative", -1e-6, 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ := NewDopri5(tt.rtol, tt.atol)
			if err := integ.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("Validate: expected ErrInvalidConfig, got %v", err)
			}
			_, err := integ.Integrate(physics.NewOscillator(1), 0, 1, dynamo.State{1, 0})
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("Integrate: expected ErrInvalidConfig, got %v", err)
			}
			if integ.Stats().Evaluations != 0 {
				t.Errorf("integrated with invalid tolerances: %+v", integ.Stats())
			}
		})
	}
}

func TestDopri5NeverSilentlyTruncates(t *testing.T) {
	_, err := NewDopri5(1e-6, 1e-9).Integrate(blowUp{}, 0, 10, dynamo.State{1e100})
	if err == nil {
		t.Fatal("expected an error for a diverging system")
	}
	if !errors.Is(err, dynamo.ErrStepTooSmall) && !errors.Is(err, dynamo.ErrStepBudget) && !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("unexpected error kind: %v", err)
	}
}

func TestDopri5SampleOutputsOnlyRequestedTimes(t *testing.T) {
	integ := NewDopri5(1e-9, 1e-12)
	samples, err := integ.Sample(simpleDynamics{}, 0, 1, 0.1, dynamo.State{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 11 {
		t.Fatalf("len(samples) = %d, want 11", len(samples))
	}
	for i, s := range samples {
		if i > 0 && s.T <= samples[i-1].T {
			t.Fatalf("times not increasing at %d: %v <= %v", i, s.T, samples[i-1].T)
		}
		if d := math.Abs(s.Y[0] - math.Cos(s.T)); d > 1e-7 {
			t.Errorf("x(%v) off by %g", s.T, d)
		}
	}
	if samples[10].T != 1 {
		t.Errorf("last sample time = %v, want 1", samples[10].T)
	}
}

func TestDopri5SampleAgreesWithIntegrate(t *testing.T) {
	l := physics.NewLorenz(10, 28, 8.0/3.0)
	y0 := dynamo.State{1, 1, 1, 0}
	integ := NewDopri5(1e-9, 1e-12)

	samples, err := integ.Sample(l, 0, 0.5, 0.05, y0)
	if err != nil {
		t.Fatal(err)
	}
	y, tt := y0, 0.0
	for i := 1; i < len(samples); i++ {
		next := dynamo.NextTime(0, tt, 0.05, 0.5)
		y, err = integ.Integrate(l, tt, next, y)
		if err != nil {
			t.Fatal(err)
		}
		tt = next
		if d := samples[i].Y.MaxAbsDiff(y); d > 1e-6 {
			t.Errorf("sample %d differs from stepwise integration by %g", i, d)
		}
	}
}
