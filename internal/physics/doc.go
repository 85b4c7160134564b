// Package physics provides the gravitational model: bodies, the system that
// owns them, and the pairwise force field.
//
//   - [Body]: point mass with validated position, velocity, mass and radius
//   - [System]: ordered bodies sharing one dimensionality (2D or 3D)
//   - [ForceField]: O(N²) pairwise Newtonian force with an injected G
//
// All quantities are plain float64 in one agreed unit system; unit
// conversion happens before construction.
//
// # Degenerate distance
//
// Two distinct bodies at exactly the same position exert no force on each
// other for that step. This is a defined tie-break, not an error.
//
// # Conservation diagnostics
//
// [System] also exposes energy, momentum and centre of mass for drift checks:
//
//	e0 := sys.Energy(ff.G())
//	// ... step ...
//	drift := math.Abs(sys.Energy(ff.G())-e0) / math.Abs(e0)
package physics
