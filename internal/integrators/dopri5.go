package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/odestream/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

const Dopri5Name = "dopri5"

// DefaultMaxSteps bounds the internal steps of a single Integrate call.
const DefaultMaxSteps = 100000

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Stats describes the work done by the most recent Integrate or Sample call.
type Stats struct {
	Accepted    int
	Rejected    int
	Evaluations int
	LastStep    float64
}

// Dopri5 is the adaptive Dormand-Prince 5(4) pair with local error control.
type Dopri5 struct {
	rtol, atol float64
	safety     float64
	minScale   float64
	maxScale   float64
	maxSteps   int
	stats      Stats
}

func NewDopri5(rtol, atol float64) *Dopri5 {
	return &Dopri5{
		rtol:     rtol,
		atol:     atol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		maxSteps: DefaultMaxSteps,
	}
}

// WithMaxSteps returns a copy of d with a different internal step budget.
func (d *Dopri5) WithMaxSteps(n int) *Dopri5 {
	c := *d
	c.maxSteps = n
	return &c
}

func (d *Dopri5) Name() string { return Dopri5Name }

// Validate rejects tolerances the error norm cannot use.
func (d *Dopri5) Validate() error {
	if !(d.rtol > 0) || !(d.atol > 0) {
		return fmt.Errorf("%s: %w: rtol=%g atol=%g", Dopri5Name, dynamo.ErrInvalidConfig, d.rtol, d.atol)
	}
	if d.maxSteps <= 0 {
		return fmt.Errorf("%s: %w: max steps %d", Dopri5Name, dynamo.ErrInvalidConfig, d.maxSteps)
	}
	return nil
}

func (d *Dopri5) Stats() Stats { return d.stats }

// Integrate advances y from a to b and returns only the state at b.
func (d *Dopri5) Integrate(dyn dynamo.System, a, b float64, y dynamo.State) (dynamo.State, error) {
	d.stats = Stats{}
	y, _, err := d.run(dyn, a, b, y, 0)
	return y, err
}

// Sample outputs y at t0, t0+dt, ... t1. The internal step size carries over
// from one output interval to the next.
func (d *Dopri5) Sample(dyn dynamo.System, t0, t1, dt float64, y0 dynamo.State) ([]dynamo.Sample, error) {
	d.stats = Stats{}
	out := make([]dynamo.Sample, 0, int((t1-t0)/dt)+2)
	out = append(out, dynamo.Sample{T: t0, Y: y0})
	t, y, h := t0, y0, 0.0
	for t < t1 {
		next := dynamo.NextTime(t0, t, dt, t1)
		yn, hn, err := d.run(dyn, t, next, y, h)
		if err != nil {
			return out, err
		}
		t, y, h = next, yn, hn
		out = append(out, dynamo.Sample{T: t, Y: y})
	}
	return out, nil
}

// run integrates from a to b starting with step h (0 selects one
// automatically) and returns the state at b plus the step size it would
// take next.
func (d *Dopri5) run(dyn dynamo.System, a, b float64, y dynamo.State, h float64) (dynamo.State, float64, error) {
	if b <= a {
		return y, h, nil
	}
	if err := d.Validate(); err != nil {
		return y, h, err
	}

	span := b - a
	t := a
	k1 := d.derive(dyn, t, y)
	if !k1.IsValid() || !y.IsValid() {
		return y, h, fmt.Errorf("%s at t=%g: %w", Dopri5Name, t, dynamo.ErrInvalidState)
	}
	if h <= 0 {
		h = d.initialStep(dyn, t, y, k1, span)
	}
	h = math.Min(h, span)

	rejected := false
	for steps := 0; ; steps++ {
		if steps >= d.maxSteps {
			return y, h, fmt.Errorf("%s at t=%g after %d steps: %w", Dopri5Name, t, steps, dynamo.ErrStepBudget)
		}
		if h <= 10*epsilon*math.Max(math.Abs(t), math.Abs(b)) {
			return y, h, fmt.Errorf("%s at t=%g (h=%g): %w", Dopri5Name, t, h, dynamo.ErrStepTooSmall)
		}

		hNext := h
		last := false
		if rem := b - t; h >= rem || rem-h <= landingTol*h {
			h = rem
			last = true
		}

		yNew, k7, errEst := d.attempt(dyn, t, y, k1, h)
		errNorm := d.errorNorm(y, yNew, errEst)

		if errNorm <= 1 {
			d.stats.Accepted++
			d.stats.LastStep = h
			fac := d.maxScale
			if errNorm > 0 {
				fac = math.Min(d.maxScale, d.safety*math.Pow(errNorm, -0.2))
			}
			if rejected {
				fac = math.Min(fac, 1)
			}
			rejected = false
			y, k1 = yNew, k7
			if last {
				// hNext is the step before clipping to b
				return y, hNext * math.Min(fac, 1), nil
			}
			t += h
			h *= fac
			continue
		}

		d.stats.Rejected++
		rejected = true
		fac := d.minScale
		if !math.IsNaN(errNorm) && !math.IsInf(errNorm, 0) {
			fac = math.Max(d.minScale, d.safety*math.Pow(errNorm, -0.25))
		}
		h *= fac
	}
}

func (d *Dopri5) derive(dyn dynamo.System, t float64, y dynamo.State) dynamo.State {
	d.stats.Evaluations++
	return dyn.Derive(t, y)
}

// attempt takes one trial step and returns the fifth order solution, the
// derivative there (first stage of the next step) and the error estimate.
func (d *Dopri5) attempt(dyn dynamo.System, t float64, y, k1 dynamo.State, h float64) (dynamo.State, dynamo.State, dynamo.State) {
	stage := func(coef []float64, ks ...dynamo.State) dynamo.State {
		s := y
		for i, k := range ks {
			floats.AddScaled(s[:], h*coef[i], k[:])
		}
		return s
	}

	k2 := d.derive(dyn, t+a2*h, stage([]float64{b21}, k1))
	k3 := d.derive(dyn, t+a3*h, stage([]float64{b31, b32}, k1, k2))
	k4 := d.derive(dyn, t+a4*h, stage([]float64{b41, b42, b43}, k1, k2, k3))
	k5 := d.derive(dyn, t+a5*h, stage([]float64{b51, b52, b53, b54}, k1, k2, k3, k4))
	k6 := d.derive(dyn, t+h, stage([]float64{b61, b62, b63, b64, b65}, k1, k2, k3, k4, k5))

	yNew := stage([]float64{c1, 0, c3, c4, c5, c6}, k1, k2, k3, k4, k5, k6)
	k7 := d.derive(dyn, t+h, yNew)

	var errEst dynamo.State
	for i := range errEst {
		errEst[i] = h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}
	return yNew, k7, errEst
}

// errorNorm is the RMS of the error estimate scaled by atol + rtol*|y|.
// A non-finite trial yields +Inf so the step is rejected.
func (d *Dopri5) errorNorm(y, yNew, errEst dynamo.State) float64 {
	if !yNew.IsValid() || !errEst.IsValid() {
		return math.Inf(1)
	}
	var scaled dynamo.State
	for i := range scaled {
		sk := d.atol + d.rtol*math.Max(math.Abs(y[i]), math.Abs(yNew[i]))
		scaled[i] = errEst[i] / sk
	}
	return floats.Norm(scaled[:], 2) / math.Sqrt(dynamo.Dim)
}

// initialStep picks a starting step from the size of y, its derivative and
// a trial Euler step (Hairer, Nørsett & Wanner, Solving ODEs I, II.4).
func (d *Dopri5) initialStep(dyn dynamo.System, t float64, y, f0 dynamo.State, hmax float64) float64 {
	var sk, ys, fs dynamo.State
	for i := range sk {
		sk[i] = d.atol + d.rtol*math.Abs(y[i])
		ys[i] = y[i] / sk[i]
		fs[i] = f0[i] / sk[i]
	}
	rms := func(v dynamo.State) float64 { return floats.Norm(v[:], 2) / math.Sqrt(dynamo.Dim) }
	d0, d1 := rms(ys), rms(fs)

	h0 := 0.01 * d0 / d1
	if d0 < 1e-10 || d1 < 1e-10 {
		h0 = 1e-6
	}
	h0 = math.Min(h0, hmax)

	y1 := y
	floats.AddScaled(y1[:], h0, f0[:])
	f1 := d.derive(dyn, t+h0, y1)
	var df dynamo.State
	for i := range df {
		df[i] = (f1[i] - f0[i]) / sk[i]
	}
	d2 := rms(df) / h0

	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 || math.IsNaN(m) {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 1.0/5.0)
	}
	return math.Min(math.Min(100*h0, h1), hmax)
}

const epsilon = 2.220446049250313e-16
