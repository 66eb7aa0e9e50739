package sim

import (
	"fmt"

	"github.com/san-kum/odestream/internal/dynamo"
)

// View is read-only access to a trajectory. Slices returned by a View are
// copies.
type View interface {
	Len() int
	At(i int) dynamo.Sample
	Last() dynamo.Sample
	Times() []float64
	Component(slot int) []float64
	Samples() []dynamo.Sample
}

// Trajectory is an append-only sequence of samples with strictly
// increasing times.
type Trajectory struct {
	samples []dynamo.Sample
}

func NewTrajectory() *Trajectory {
	return &Trajectory{}
}

// Append adds one sample after validating it against the current tail.
func (tr *Trajectory) Append(t float64, y dynamo.State) error {
	return tr.extend([]dynamo.Sample{{T: t, Y: y}})
}

// extend appends all samples or none of them.
func (tr *Trajectory) extend(batch []dynamo.Sample) error {
	prev, have := 0.0, len(tr.samples) > 0
	if have {
		prev = tr.samples[len(tr.samples)-1].T
	}
	for _, s := range batch {
		if !s.Y.IsValid() {
			return fmt.Errorf("sample at t=%g: %w", s.T, dynamo.ErrInvalidState)
		}
		if have && !(s.T > prev) {
			return fmt.Errorf("sample at t=%g after t=%g: %w", s.T, prev, dynamo.ErrNotIncreasing)
		}
		prev, have = s.T, true
	}
	tr.samples = append(tr.samples, batch...)
	return nil
}

func (tr *Trajectory) Len() int { return len(tr.samples) }

func (tr *Trajectory) At(i int) dynamo.Sample { return tr.samples[i] }

// Last returns the most recent sample; it panics on an empty trajectory.
func (tr *Trajectory) Last() dynamo.Sample { return tr.samples[len(tr.samples)-1] }

func (tr *Trajectory) Times() []float64 {
	out := make([]float64, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = s.T
	}
	return out
}

func (tr *Trajectory) States() []dynamo.State {
	out := make([]dynamo.State, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = s.Y
	}
	return out
}

// Component returns one state slot across all samples.
func (tr *Trajectory) Component(slot int) []float64 {
	out := make([]float64, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = s.Y[slot]
	}
	return out
}

func (tr *Trajectory) Samples() []dynamo.Sample {
	out := make([]dynamo.Sample, len(tr.samples))
	copy(out, tr.samples)
	return out
}

// View returns read-only access to tr. The view follows later appends.
func (tr *Trajectory) View() View { return view{tr} }

// view hides Append from holders of an engine's trajectory.
type view struct{ tr *Trajectory }

func (v view) Len() int                     { return v.tr.Len() }
func (v view) At(i int) dynamo.Sample       { return v.tr.At(i) }
func (v view) Last() dynamo.Sample          { return v.tr.Last() }
func (v view) Times() []float64             { return v.tr.Times() }
func (v view) Component(slot int) []float64 { return v.tr.Component(slot) }
func (v view) Samples() []dynamo.Sample     { return v.tr.Samples() }
