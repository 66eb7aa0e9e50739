package integrators

import (
	"fmt"

	"github.com/san-kum/odestream/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

const RK4Name = "runge_kutta_4"

// landingTol is the relative slack under which a remaining sub-interval is
// merged into the current step instead of producing a sliver step.
const landingTol = 1e-9

// RK4 is the classic fixed-step fourth order Runge-Kutta method.
type RK4 struct {
	dt float64
}

func NewRK4(dt float64) *RK4 {
	return &RK4{dt: dt}
}

func (r *RK4) Name() string { return RK4Name }

func (r *RK4) Step(dyn dynamo.System, y dynamo.State, t, dt float64) dynamo.State {
	k1 := dyn.Derive(t, y)

	scratch := y
	floats.AddScaled(scratch[:], dt*0.5, k1[:])
	k2 := dyn.Derive(t+dt*0.5, scratch)

	scratch = y
	floats.AddScaled(scratch[:], dt*0.5, k2[:])
	k3 := dyn.Derive(t+dt*0.5, scratch)

	scratch = y
	floats.AddScaled(scratch[:], dt, k3[:])
	k4 := dyn.Derive(t+dt, scratch)

	result := y
	dt6 := dt / 6.0
	for i := range result {
		result[i] += dt6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
	return result
}

// Integrate advances y from a to b in steps of dt, shortening the final
// step so that it lands exactly on b.
func (r *RK4) Integrate(dyn dynamo.System, a, b float64, y dynamo.State) (dynamo.State, error) {
	if !(r.dt > 0) {
		return y, fmt.Errorf("%s: %w: step %g", RK4Name, dynamo.ErrInvalidConfig, r.dt)
	}
	t := a
	for t < b {
		h := r.dt
		rem := b - t
		last := h >= rem || rem-h <= landingTol*h
		if last {
			h = rem
		}
		y = r.Step(dyn, y, t, h)
		if !y.IsValid() {
			return y, fmt.Errorf("%s at t=%g: %w", RK4Name, t, dynamo.ErrInvalidState)
		}
		if last {
			break
		}
		t += h
	}
	return y, nil
}

// Sample records y at every macro step between t0 and t1.
func (r *RK4) Sample(dyn dynamo.System, t0, t1, dt float64, y0 dynamo.State) ([]dynamo.Sample, error) {
	return sampleEach(r, dyn, t0, t1, dt, y0)
}

// sampleEach drives Integrate across consecutive macro steps, the same way
// an incremental caller would.
func sampleEach(integ dynamo.Integrator, dyn dynamo.System, t0, t1, dt float64, y0 dynamo.State) ([]dynamo.Sample, error) {
	out := make([]dynamo.Sample, 0, int((t1-t0)/dt)+2)
	out = append(out, dynamo.Sample{T: t0, Y: y0})
	t, y := t0, y0
	for t < t1 {
		next := dynamo.NextTime(t0, t, dt, t1)
		yn, err := integ.Integrate(dyn, t, next, y)
		if err != nil {
			return out, err
		}
		t, y = next, yn
		out = append(out, dynamo.Sample{T: t, Y: y})
	}
	return out, nil
}
