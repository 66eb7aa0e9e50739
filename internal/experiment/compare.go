package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/sim"
)

// Comparison holds the deviation between two solvers on the same problem.
type Comparison struct {
	Solvers      [2]string
	Trajectories [2]sim.View
	// MaxDeviation is the largest |a-b| per slot over matching samples.
	MaxDeviation [dynamo.Dim]float64
	// FinalDeviation is |a-b| per slot at the end time.
	FinalDeviation [dynamo.Dim]float64
}

// Compare solves cfg with two solvers concurrently.
func Compare(ctx context.Context, reg *Registry, cfg *config.Config, solverA, solverB string, opts ...sim.Option) (*Comparison, error) {
	engines := make([]*sim.Engine, 0, 2)
	for _, name := range []string{solverA, solverB} {
		c := *cfg
		c.Simulation.Solver = name
		e, err := Build(reg, &c, opts...)
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}

	ens, err := sim.NewEnsemble(engines...)
	if err != nil {
		return nil, err
	}
	views, err := ens.Solve(ctx)
	if err != nil {
		return nil, err
	}

	a, b := views[0], views[1]
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("trajectories differ in length: %d vs %d", a.Len(), b.Len())
	}

	cmp := &Comparison{
		Solvers:      [2]string{solverA, solverB},
		Trajectories: [2]sim.View{a, b},
	}
	for i := 0; i < a.Len(); i++ {
		ya, yb := a.At(i).Y, b.At(i).Y
		for k := range ya {
			d := math.Abs(ya[k] - yb[k])
			cmp.MaxDeviation[k] = math.Max(cmp.MaxDeviation[k], d)
			if i == a.Len()-1 {
				cmp.FinalDeviation[k] = d
			}
		}
	}
	return cmp, nil
}
