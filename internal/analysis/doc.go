// Package analysis provides chaos and dynamics analysis tools.
//
// The package includes tools for characterizing dynamical systems:
//
//   - [LyapunovExponent]: largest Lyapunov exponent via renormalized separation
//   - [BifurcationDiagram]: parameter sweep recording the peaks of one slot
//   - [Project] and [ReturnMap]: 2D views of a recorded trajectory
//   - [Section]: Poincaré section through a threshold in one slot
//   - [PowerSpectrum] and [DominantFrequency]: FFT of one component
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(dyn, integ, y0, dt, duration, 1e-8)
//	if err == nil && lambda > 0 {
//	    // System is chaotic
//	}
package analysis
