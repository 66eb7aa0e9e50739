package dynamo

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Dim is the number of slots in every State. Models with fewer physical
// components leave the trailing slots at zero.
const Dim = 4

type State [Dim]float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s[:], 2)
}

func (s State) Add(other State) State {
	floats.Add(s[:], other[:])
	return s
}

func (s State) Scale(factor float64) State {
	floats.Scale(factor, s[:])
	return s
}

func (s State) Sub(other State) State {
	floats.Sub(s[:], other[:])
	return s
}

// MaxAbsDiff returns the largest per-slot absolute difference.
func (s State) MaxAbsDiff(other State) float64 {
	d := s.Sub(other)
	for i := range d {
		d[i] = math.Abs(d[i])
	}
	return floats.Max(d[:])
}

// Labels names what each State slot means for a given model.
type Labels [Dim]string

// Unused labels a slot the model does not use. Such slots hold zero.
const Unused = "unused"

// Slots returns the indices of the slots the model uses, in order. Empty
// labels count as unused.
func (l Labels) Slots() []int {
	slots := make([]int, 0, Dim)
	for i, name := range l {
		if name != "" && name != Unused {
			slots = append(slots, i)
		}
	}
	return slots
}

// Used returns the labels of Slots.
func (l Labels) Used() []string {
	slots := l.Slots()
	out := make([]string, len(slots))
	for i, k := range slots {
		out[i] = l[k]
	}
	return out
}

type System interface {
	Name() string
	Labels() Labels
	Derive(t float64, y State) State
}

type Hamiltonian interface {
	Energy(y State) float64
}

type Configurable interface {
	GetParams() map[string]float64
}

type Integrator interface {
	Name() string
	Integrate(dyn System, a, b float64, y State) (State, error)
}

// Sample is one recorded point of a trajectory.
type Sample struct {
	T float64
	Y State
}

// Sampler produces outputs at t0, t0+dt, ... up to and including t1.
type Sampler interface {
	Sample(dyn System, t0, t1, dt float64, y0 State) ([]Sample, error)
}

type Observer interface {
	OnSample(t float64, y State)
}

type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

type Config struct {
	T0     float64
	TEnd   float64
	Dt     float64
	RTol   float64
	ATol   float64
	Solver string
	Delay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		T0:     0,
		TEnd:   10.0,
		Dt:     0.01,
		RTol:   1e-6,
		ATol:   1e-9,
		Solver: "runge_kutta_4",
		Delay:  0,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.TEnd > c.T0) {
		return fmt.Errorf("%w: end time %g must be after start time %g", ErrInvalidConfig, c.TEnd, c.T0)
	}
	// a zero atol divides by zero on every slot that is exactly zero
	if !(c.RTol > 0) || !(c.ATol > 0) {
		return fmt.Errorf("%w: tolerances must be positive, got rtol=%g atol=%g", ErrInvalidConfig, c.RTol, c.ATol)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: realtime delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Steps is the number of macro steps between T0 and TEnd.
func (c Config) Steps() int {
	return int(math.Ceil((c.TEnd-c.T0)/c.Dt - 1e-9))
}

// NextTime is the end of the macro step starting at t on the grid
// t0 + k*dt, clamped to tEnd. Grid points are computed from t0 rather than
// accumulated, and a remainder shorter than a billionth of dt is absorbed
// into the final step.
func NextTime(t0, t, dt, tEnd float64) float64 {
	k := math.Round((t - t0) / dt)
	next := t0 + (k+1)*dt
	if next <= t {
		next = t + dt
	}
	if next >= tEnd || tEnd-next <= 1e-9*dt {
		return tEnd
	}
	return next
}
