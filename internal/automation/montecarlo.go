package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/odestream/internal/config"
	"github.com/san-kum/odestream/internal/dynamo"
	"github.com/san-kum/odestream/internal/experiment"
	"github.com/san-kum/odestream/internal/sim"
)

// stabilityBound marks a trial as diverged.
const stabilityBound = 1e6

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds the outcome of one perturbed trial
type MonteCarloResult struct {
	TrialID    int
	InitState  dynamo.State
	FinalState dynamo.State
	Stable     bool // Did simulation remain bounded?
}

// RunMonteCarlo solves cfg from NumTrials initial states, each labelled slot
// perturbed uniformly within ±Perturbation. Trials run concurrently; the
// same seed gives the same trials.
func RunMonteCarlo(ctx context.Context, cfg *config.Config, mc MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 || mc.Perturbation < 0 {
		return nil, fmt.Errorf("%w: trials=%d perturbation=%g", config.ErrInvalid, mc.NumTrials, mc.Perturbation)
	}
	c := *cfg
	c.Simulation.RealtimeDelay = 0

	rng := rand.New(rand.NewSource(mc.Seed))
	engines := make([]*sim.Engine, mc.NumTrials)
	inits := make([]dynamo.State, mc.NumTrials)
	for trial := range engines {
		dyn, base, err := registry.GetModel(&c)
		if err != nil {
			return nil, err
		}
		integ, err := registry.GetIntegrator(&c)
		if err != nil {
			return nil, err
		}

		// Perturb initial state
		y0 := base
		for _, k := range dyn.Labels().Slots() {
			y0[k] += (rng.Float64() - 0.5) * 2 * mc.Perturbation
		}
		inits[trial] = y0

		if engines[trial], err = sim.New(dyn, integ, y0, c.Integration()); err != nil {
			return nil, err
		}
	}

	ens, err := sim.NewEnsemble(engines...)
	if err != nil {
		return nil, err
	}
	views, err := ens.Solve(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(views))
	for trial, v := range views {
		final := v.Last().Y
		stable := true
		for _, x := range final {
			if math.Abs(x) > stabilityBound {
				stable = false
				break
			}
		}
		results[trial] = MonteCarloResult{
			TrialID:    trial,
			InitState:  inits[trial],
			FinalState: final,
			Stable:     stable,
		}
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// Spread returns, per slot, the largest minus smallest final value over all
// trials. It measures how far nearby initial states end up apart.
func Spread(results []MonteCarloResult) dynamo.State {
	var spread dynamo.State
	if len(results) == 0 {
		return spread
	}
	lo, hi := results[0].FinalState, results[0].FinalState
	for _, r := range results[1:] {
		for i, x := range r.FinalState {
			lo[i] = math.Min(lo[i], x)
			hi[i] = math.Max(hi[i], x)
		}
	}
	return hi.Sub(lo)
}
