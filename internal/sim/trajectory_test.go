package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odestream/internal/dynamo"
)

func TestTrajectoryAppend(t *testing.T) {
	tr := NewTrajectory()
	if err := tr.Append(0, dynamo.State{1}); err != nil {
		t.Fatal(err)
	}
	if err := tr.Append(0.5, dynamo.State{2}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		t    float64
		y    dynamo.State
		want error
	}{
		{"same time", 0.5, dynamo.State{3}, dynamo.ErrNotIncreasing},
		{"earlier time", 0.25, dynamo.State{3}, dynamo.ErrNotIncreasing},
		{"NaN time", math.NaN(), dynamo.State{3}, dynamo.ErrNotIncreasing},
		{"invalid state", 1, dynamo.State{math.Inf(1)}, dynamo.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tr.Append(tt.t, tt.y); !errors.Is(err, tt.want) {
				t.Errorf("Append() error = %v, want %v", err, tt.want)
			}
			if tr.Len() != 2 {
				t.Errorf("rejected sample was stored, len %d", tr.Len())
			}
		})
	}
}

func TestTrajectoryExtendIsAllOrNothing(t *testing.T) {
	tr := NewTrajectory()
	err := tr.extend([]dynamo.Sample{
		{T: 0, Y: dynamo.State{1}},
		{T: 1, Y: dynamo.State{2}},
		{T: 1, Y: dynamo.State{3}},
	})
	if !errors.Is(err, dynamo.ErrNotIncreasing) {
		t.Fatalf("expected ErrNotIncreasing, got %v", err)
	}
	if tr.Len() != 0 {
		t.Errorf("partial batch committed: len %d", tr.Len())
	}
}

func TestTrajectoryAccessorsCopy(t *testing.T) {
	tr := NewTrajectory()
	for i, v := range []float64{3, 4, 5} {
		if err := tr.Append(float64(i), dynamo.State{v, -v}); err != nil {
			t.Fatal(err)
		}
	}

	times := tr.Times()
	times[0] = 99
	xs := tr.Component(0)
	xs[1] = 99
	samples := tr.Samples()
	samples[2].Y[0] = 99
	states := tr.States()
	states[0][1] = 99

	if tr.At(0).T != 0 || tr.At(1).Y[0] != 4 || tr.At(2).Y[0] != 5 || tr.At(0).Y[1] != -3 {
		t.Errorf("trajectory mutated through accessor copies")
	}
	if got := tr.Component(1); got[2] != -5 {
		t.Errorf("Component(1) = %v", got)
	}
	if tr.Last().T != 2 {
		t.Errorf("Last().T = %v, want 2", tr.Last().T)
	}
}
