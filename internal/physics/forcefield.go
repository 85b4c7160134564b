package physics

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// ForceField computes net Newtonian gravitational force on every body of a
// position/mass snapshot. The gravitational constant is injected.
type ForceField struct {
	g                 float64
	workers           int
	parallelThreshold int
}

type ForceOption func(*ForceField)

// WithWorkers sets how many goroutines evaluate force rows once the body
// count reaches the parallel threshold. n <= 0 selects GOMAXPROCS.
func WithWorkers(n int) ForceOption {
	return func(f *ForceField) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		f.workers = n
	}
}

// WithParallelThreshold sets the body count at which row-parallel
// evaluation replaces the sequential pairwise loop.
func WithParallelThreshold(n int) ForceOption {
	return func(f *ForceField) { f.parallelThreshold = n }
}

func NewForceField(g float64, opts ...ForceOption) (*ForceField, error) {
	if err := validatePositive("g", g); err != nil {
		return nil, err
	}
	f := &ForceField{
		g:                 g,
		workers:           1,
		parallelThreshold: 64,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *ForceField) G() float64 { return f.g }

// Pair returns the force on body i due to body j. Coincident positions give
// the zero vector. Pair(pi, pj, mi, mj) is the exact negation of
// Pair(pj, pi, mj, mi).
func (f *ForceField) Pair(pi, pj dynamo.Vector, mi, mj float64) dynamo.Vector {
	out := dynamo.NewVector(len(pi))
	f.pair(out, pi, pj, mi, mj)
	return out
}

// pair writes the force on i due to j into dst, which doubles as scratch.
func (f *ForceField) pair(dst, pi, pj dynamo.Vector, mi, mj float64) {
	floats.SubTo(dst, pj, pi)
	r2 := floats.Dot(dst, dst)
	if r2 == 0 {
		dst.Zero()
		return
	}
	r := math.Sqrt(r2)
	floats.Scale(f.g*(mi*mj)/(r2*r), dst)
}

// Compute returns the net force on each body, index-aligned with positions.
func (f *ForceField) Compute(positions []dynamo.Vector, masses []float64) ([]dynamo.Vector, error) {
	dim := 0
	if len(positions) > 0 {
		dim = len(positions[0])
	}
	dst := make([]dynamo.Vector, len(positions))
	for i := range dst {
		dst[i] = dynamo.NewVector(dim)
	}
	if err := f.ComputeInto(dst, positions, masses); err != nil {
		return nil, err
	}
	return dst, nil
}

// ComputeInto is Compute writing into caller-owned buffers.
func (f *ForceField) ComputeInto(dst, positions []dynamo.Vector, masses []float64) error {
	n := len(positions)
	if len(masses) != n || len(dst) != n {
		return &dynamo.FieldError{
			Field:  "masses",
			Reason: fmt.Sprintf("have %d masses and %d outputs for %d positions", len(masses), len(dst), n),
			Err:    dynamo.ErrInvalidDimension,
		}
	}
	if n == 0 {
		return nil
	}
	dim := len(positions[0])
	for i := range positions {
		if len(positions[i]) != dim || len(dst[i]) != dim {
			return &dynamo.FieldError{
				Field:  fmt.Sprintf("positions[%d]", i),
				Reason: fmt.Sprintf("must be %d dimensional, got %d", dim, len(positions[i])),
				Err:    dynamo.ErrInvalidDimension,
			}
		}
		dst[i].Zero()
	}

	if f.workers > 1 && n >= f.parallelThreshold {
		return f.computeRows(dst, positions, masses)
	}
	f.computePairs(dst, positions, masses)
	return nil
}

// computePairs visits each unordered pair once and applies equal and
// opposite contributions.
func (f *ForceField) computePairs(dst, positions []dynamo.Vector, masses []float64) {
	n := len(positions)
	scratch := dynamo.NewVector(len(positions[0]))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f.pair(scratch, positions[i], positions[j], masses[i], masses[j])
			floats.Add(dst[i], scratch)
			floats.Sub(dst[j], scratch)
		}
	}
}

// computeRows gives each worker whole rows so no two goroutines write the
// same output vector.
func (f *ForceField) computeRows(dst, positions []dynamo.Vector, masses []float64) error {
	n := len(positions)
	dim := len(positions[0])
	return dynamo.ParallelFor(context.Background(), n, f.workers, 8, func(start, end int) error {
		scratch := dynamo.NewVector(dim)
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				f.pair(scratch, positions[i], positions[j], masses[i], masses[j])
				floats.Add(dst[i], scratch)
			}
		}
		return nil
	})
}
