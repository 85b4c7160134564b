package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/san-kum/gravsim/internal/dynamo"
)

var approx = cmpopts.EquateApprox(1e-12, 1e-18)

func TestNewForceField_RejectsBadG(t *testing.T) {
	for _, g := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewForceField(g)
		assert.Error(t, err, "g=%v", g)
	}
}

func TestForceField_SingleBodyZero(t *testing.T) {
	ff, err := NewForceField(6.6743e-11)
	require.NoError(t, err)

	forces, err := ff.Compute([]dynamo.Vector{{1, 2, 3}}, []float64{5e24})
	require.NoError(t, err)
	require.Len(t, forces, 1)
	assert.Equal(t, dynamo.Vector{0, 0, 0}, forces[0])
}

func TestForceField_TwoBodyInverseSquare(t *testing.T) {
	ff, err := NewForceField(2.0)
	require.NoError(t, err)

	positions := []dynamo.Vector{{0, 0}, {3, 4}}
	masses := []float64{1, 5}
	forces, err := ff.Compute(positions, masses)
	require.NoError(t, err)

	// |F| = 2*1*5/25 = 0.4, along (0.6, 0.8) toward body 1.
	want := []dynamo.Vector{{0.24, 0.32}, {-0.24, -0.32}}
	if diff := cmp.Diff(want, forces, approx); diff != "" {
		t.Errorf("forces mismatch (-want +got):\n%s", diff)
	}
}

func TestForceField_PairAntisymmetric(t *testing.T) {
	ff, err := NewForceField(6.6743e-11)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		dim := 2 + trial%2
		pi, pj := dynamo.NewVector(dim), dynamo.NewVector(dim)
		for k := 0; k < dim; k++ {
			pi[k] = rng.NormFloat64() * 1e11
			pj[k] = rng.NormFloat64() * 1e11
		}
		mi := rng.Float64() * 1e30
		mj := rng.Float64() * 1e24

		fij := ff.Pair(pi, pj, mi, mj)
		fji := ff.Pair(pj, pi, mj, mi)
		for k := range fij {
			if fij[k] != -fji[k] {
				t.Fatalf("trial %d: F_ij[%d]=%v is not the negation of F_ji[%d]=%v", trial, k, fij[k], k, fji[k])
			}
		}
	}
}

func TestForceField_CoincidentBodiesZero(t *testing.T) {
	ff, err := NewForceField(1.0)
	require.NoError(t, err)

	positions := []dynamo.Vector{{1, 1, 1}, {1, 1, 1}}
	forces, err := ff.Compute(positions, []float64{1, 1})
	require.NoError(t, err)
	for i, f := range forces {
		assert.True(t, f.IsValid(), "force %d not finite: %v", i, f)
		assert.Equal(t, dynamo.Vector{0, 0, 0}, f)
	}
}

func TestForceField_CoincidentPairIgnoredOthersCount(t *testing.T) {
	ff, err := NewForceField(1.0)
	require.NoError(t, err)

	positions := []dynamo.Vector{{0, 0}, {0, 0}, {2, 0}}
	forces, err := ff.Compute(positions, []float64{1, 1, 4})
	require.NoError(t, err)

	// Bodies 0 and 1 each feel 1*4/4 = 1 toward body 2; body 2 feels both.
	want := []dynamo.Vector{{1, 0}, {1, 0}, {-2, 0}}
	if diff := cmp.Diff(want, forces, approx); diff != "" {
		t.Errorf("forces mismatch (-want +got):\n%s", diff)
	}
}

func TestForceField_NetForceSumsToZero(t *testing.T) {
	ff, err := NewForceField(1.0)
	require.NoError(t, err)

	positions, masses := randomCloud(12, 3, 11)
	forces, err := ff.Compute(positions, masses)
	require.NoError(t, err)

	total := dynamo.NewVector(3)
	scale := 0.0
	for _, f := range forces {
		total.AddScaled(1, f)
		scale += f.Norm()
	}
	assert.Less(t, total.Norm(), 1e-12*scale)
}

func TestForceField_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	seq, err := NewForceField(1.0)
	require.NoError(t, err)
	par, err := NewForceField(1.0, WithWorkers(4), WithParallelThreshold(2))
	require.NoError(t, err)

	for _, dim := range []int{2, 3} {
		positions, masses := randomCloud(50, dim, int64(dim))
		want, err := seq.Compute(positions, masses)
		require.NoError(t, err)
		got, err := par.Compute(positions, masses)
		require.NoError(t, err)

		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(1e-9, 1e-12)); diff != "" {
			t.Errorf("dim %d: parallel forces differ (-seq +par):\n%s", dim, diff)
		}
	}
}

func TestForceField_ComputeValidatesInput(t *testing.T) {
	ff, err := NewForceField(1.0)
	require.NoError(t, err)

	_, err = ff.Compute([]dynamo.Vector{{0, 0}, {1, 1}}, []float64{1})
	assert.ErrorIs(t, err, dynamo.ErrInvalidDimension)

	_, err = ff.Compute([]dynamo.Vector{{0, 0}, {1, 1, 1}}, []float64{1, 1})
	assert.ErrorIs(t, err, dynamo.ErrInvalidDimension)

	forces, err := ff.Compute(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, forces)
}

func TestForceField_ComputeIntoReusesBuffers(t *testing.T) {
	ff, err := NewForceField(1.0)
	require.NoError(t, err)

	positions := []dynamo.Vector{{0, 0}, {1, 0}}
	dst := []dynamo.Vector{{9, 9}, {9, 9}}
	require.NoError(t, ff.ComputeInto(dst, positions, []float64{1, 1}))
	want := []dynamo.Vector{{1, 0}, {-1, 0}}
	if diff := cmp.Diff(want, dst, approx); diff != "" {
		t.Errorf("ComputeInto mismatch (-want +got):\n%s", diff)
	}
}

func randomCloud(n, dim int, seed int64) ([]dynamo.Vector, []float64) {
	rng := rand.New(rand.NewSource(seed))
	positions := make([]dynamo.Vector, n)
	masses := make([]float64, n)
	for i := range positions {
		positions[i] = dynamo.NewVector(dim)
		for k := range positions[i] {
			positions[i][k] = rng.NormFloat64() * 10
		}
		masses[i] = 0.5 + rng.Float64()
	}
	return positions, masses
}

func BenchmarkForceField_Sequential64(b *testing.B) {
	ff, _ := NewForceField(1.0)
	positions, masses := randomCloud(64, 3, 1)
	dst := make([]dynamo.Vector, len(positions))
	for i := range dst {
		dst[i] = dynamo.NewVector(3)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ff.ComputeInto(dst, positions, masses)
	}
}

func BenchmarkForceField_Parallel64(b *testing.B) {
	ff, _ := NewForceField(1.0, WithWorkers(0), WithParallelThreshold(32))
	positions, masses := randomCloud(64, 3, 1)
	dst := make([]dynamo.Vector, len(positions))
	for i := range dst {
		dst[i] = dynamo.NewVector(3)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ff.ComputeInto(dst, positions, masses)
	}
}
