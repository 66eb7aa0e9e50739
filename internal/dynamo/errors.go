package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a derivative or state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates integration settings that cannot be run.
	ErrInvalidConfig = errors.New("dynamo: invalid integration config")

	// ErrUnknownModel indicates a model identifier outside the supported set.
	ErrUnknownModel = errors.New("dynamo: unknown model")

	// ErrUnknownSolver indicates an integration strategy identifier outside the supported set.
	ErrUnknownSolver = errors.New("dynamo: unknown solver")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the adaptive solver ran out of internal steps
	// before reaching the requested output time.
	ErrStepBudget = errors.New("dynamo: adaptive step budget exhausted")

	// ErrNotIncreasing indicates an append that would break time ordering.
	ErrNotIncreasing = errors.New("dynamo: sample time not strictly increasing")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
