package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/odestream/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// reference trajectory and a neighbour started perturbation away in slot 0.
// After every interval of length dt the separation is measured, its log
// growth accumulated, and the neighbour pulled back to distance
// perturbation along the same direction. A positive value indicates chaos.
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	y0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if dt <= 0 || duration <= 0 || perturbation <= 0 {
		return 0, fmt.Errorf("lyapunov: %w: dt=%g duration=%g perturbation=%g",
			dynamo.ErrInvalidConfig, dt, duration, perturbation)
	}

	y, yp := y0, y0
	yp[0] += perturbation

	sumLog := 0.0
	t := 0.0
	for t < duration {
		next := dynamo.NextTime(0, t, dt, duration)
		var err error
		if y, err = integ.Integrate(dyn, t, next, y); err != nil {
			return 0, err
		}
		if yp, err = integ.Integrate(dyn, t, next, yp); err != nil {
			return 0, err
		}
		t = next

		delta := yp.Sub(y)
		sep := delta.Norm()
		if sep == 0 {
			// the neighbour collapsed onto the reference; restart it
			yp = y
			yp[0] += perturbation
			sumLog += math.Log(math.SmallestNonzeroFloat64 / perturbation)
			continue
		}
		sumLog += math.Log(sep / perturbation)
		yp = y.Add(delta.Scale(perturbation / sep))
	}
	return sumLog / t, nil
}
