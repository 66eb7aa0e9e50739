// Package viz provides the live terminal viewer for a simulation engine.
//
// The viewer is a Bubble Tea program that calls [sim.Engine.Advance] once
// per frame and draws the growing trajectory:
//
//   - [Model]: live view of one engine with several canvas modes
//   - [Picker]: menu of model/preset pairs that launches a [Model]
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial state
//	Tab   - Cycle the followed state slot
//	M     - Cycle canvas mode (series, phase, return map, 3d)
//	T     - Cycle color themes
//	x/y/z - Rotate the 3d camera, +/- zoom
package viz
