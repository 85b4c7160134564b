// Package viz renders a running simulation in the terminal.
//
// [Model] is a Bubble Tea program that steps a [sim.Simulator] a fixed
// number of steps per frame and draws bodies on a braille [Canvas].
// Trails are collected by a [Trails] observer registered on the
// simulator, so the integrator itself never draws.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	+/-   - Steps per frame
//	T     - Toggle trails
//	F     - Toggle auto-fit
//	x/y/z - Rotate 3D view
//	?     - Show help overlay
package viz
