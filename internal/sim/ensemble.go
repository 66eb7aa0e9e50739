package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/odestream/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Ensemble solves several engines concurrently. Each engine is used by
// exactly one goroutine, so engines must not be shared between members.
type Ensemble struct {
	engines []*Engine
}

func NewEnsemble(engines ...*Engine) (*Ensemble, error) {
	seen := make(map[*Engine]bool, len(engines))
	for i, e := range engines {
		if e == nil {
			return nil, fmt.Errorf("ensemble member %d is nil: %w", i, dynamo.ErrInvalidConfig)
		}
		if seen[e] {
			return nil, fmt.Errorf("ensemble member %d appears twice: %w", i, dynamo.ErrInvalidConfig)
		}
		seen[e] = true
	}
	return &Ensemble{engines: engines}, nil
}

func (en *Ensemble) Len() int { return len(en.engines) }

// Solve runs Solve on every member and returns the trajectories in member
// order. The first failure cancels members that have not started yet.
func (en *Ensemble) Solve(ctx context.Context) ([]View, error) {
	results := make([]View, len(en.engines))

	g, ctx := errgroup.WithContext(ctx)
	for i, e := range en.engines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := e.Solve()
			if err != nil {
				return fmt.Errorf("%s with %s: %w", e.System().Name(), e.Solver(), err)
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
