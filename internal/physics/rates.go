package physics

import "math"

// taylorBand is the |u/s| band around a removable singularity inside which
// the rate is evaluated from its series expansion instead of the quotient.
const taylorBand = 1e-6

// linExpRate evaluates k*u / (1 - exp(-u/s)). At u = 0 the quotient is 0/0
// and the limit k*s is used; close to it the first-order expansion
// k*s*(1 + u/(2s)) keeps the rate continuous.
func linExpRate(k, u, s float64) float64 {
	r := u / s
	if math.Abs(r) < taylorBand {
		return k * s * (1 + r/2)
	}
	return k * u / -math.Expm1(-r)
}

func alphaM(v float64) float64 { return linExpRate(0.1, v+40, 10) }
func betaM(v float64) float64  { return 4.0 * math.Exp(-(v+65)/18) }
func alphaH(v float64) float64 { return 0.07 * math.Exp(-(v+65)/20) }
func betaH(v float64) float64  { return 1.0 / (1.0 + math.Exp(-(v+35)/10)) }
func alphaN(v float64) float64 { return linExpRate(0.01, v+55, 10) }
func betaN(v float64) float64  { return 0.125 * math.Exp(-(v+65)/80) }

// steadyState is the fixed point of a gate with rates alpha and beta.
func steadyState(alpha, beta float64) float64 { return alpha / (alpha + beta) }
