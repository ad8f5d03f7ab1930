// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/xinyushi/iterative/sparse"
)

var _ Normal = (*rand.Rand)(nil)

// eigResidual returns |A*x - λ*x| for the j-th eigenpair in res.
func eigResidual(a *mat.Dense, res EigsResult, j int) float64 {
	n, _ := a.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		var ax complex128
		for k := 0; k < n; k++ {
			ax += complex(a.At(i, k), 0) * res.Vectors.At(k, j)
		}
		d := ax - res.Values[j]*res.Vectors.At(i, j)
		sum += real(d)*real(d) + imag(d)*imag(d)
	}
	return math.Sqrt(sum)
}

func vectorNorm(res EigsResult, j int) float64 {
	r, _ := res.Vectors.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		v := res.Vectors.At(i, j)
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

func denseOps(a *mat.Dense) MatrixOps {
	return MatrixOps{MatVec: func(dst, x []float64) {
		n, _ := a.Dims()
		d := mat.NewVecDense(n, dst)
		d.MulVec(a, mat.NewVecDense(n, x))
	}}
}

func diagDense(d []float64) *mat.Dense {
	n := len(d)
	a := mat.NewDense(n, n, nil)
	for i, v := range d {
		a.Set(i, i, v)
	}
	return a
}

func TestEigsDiagonal(t *testing.T) {
	for _, test := range []struct {
		name  string
		d     []float64
		k     int
		ncv   int
		which Which
		want  []float64
	}{
		{
			name: "full subspace",
			d:    arange(1, 51),
			k:    3,
			ncv:  50,
			want: []float64{50, 49, 48},
		},
		{
			name: "restarted",
			d:    arange(1, 51),
			k:    3,
			want: []float64{50, 49, 48},
		},
		{
			name: "decaying",
			d:    decaying(200),
			k:    4,
			want: []float64{1, 1.0 / 4, 1.0 / 9, 1.0 / 16},
		},
		{
			name: "largest magnitude",
			d:    append([]float64{-100}, arange(1, 30)...),
			k:    1,
			ncv:  30,
			want: []float64{-100},
		},
		{
			name:  "largest real",
			d:     append([]float64{-100}, arange(1, 30)...),
			k:     2,
			ncv:   30,
			which: LargestReal,
			want:  []float64{29, 28},
		},
		{
			name:  "smallest real",
			d:     append([]float64{-100}, arange(1, 30)...),
			k:     2,
			ncv:   30,
			which: SmallestReal,
			want:  []float64{-100, 1},
		},
	} {
		a := diagDense(test.d)
		n := len(test.d)
		res, err := Eigs(denseOps(a), n, EigsSettings{
			K:     test.k,
			NCV:   test.ncv,
			Which: test.which,
			Src:   rand.New(rand.NewPCG(1, 5)),
		})
		require.NoError(t, err, test.name)
		require.Len(t, res.Values, test.k, test.name)
		r, c := res.Vectors.Dims()
		require.Equal(t, n, r, test.name)
		require.Equal(t, test.k, c, test.name)
		for j, want := range test.want {
			assert.InDelta(t, want, real(res.Values[j]), 1e-8*math.Max(1, math.Abs(want)), "%s: value %d", test.name, j)
			assert.InDelta(t, 0, imag(res.Values[j]), 1e-8, "%s: value %d", test.name, j)
			assert.InDelta(t, 1, vectorNorm(res, j), 1e-10, "%s: vector %d", test.name, j)
			assert.Less(t, eigResidual(a, res, j), 1e-7*math.Max(1, math.Abs(want)), "%s: residual %d", test.name, j)
		}
		assert.Positive(t, res.MatVec, test.name)
	}
}

func arange(from, to int) []float64 {
	d := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		d = append(d, float64(i))
	}
	// Largest first so that the matrix is not trivially ordered.
	for i, j := 0, len(d)-1; i < j; i, j = i+1, j-1 {
		d[i], d[j] = d[j], d[i]
	}
	return d
}

func decaying(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1 / float64((i+1)*(i+1))
	}
	return d
}

func TestEigsComplex(t *testing.T) {
	// A rotation block with eigenvalues 5±3i and a diagonal part with
	// eigenvalues of smaller modulus.
	const n = 10
	a := mat.NewDense(n, n, nil)
	a.Set(0, 0, 5)
	a.Set(0, 1, -3)
	a.Set(1, 0, 3)
	a.Set(1, 1, 5)
	for i := 2; i < n; i++ {
		a.Set(i, i, 0.5*float64(i-1))
	}

	res, err := Eigs(denseOps(a), n, EigsSettings{K: 2, Src: rand.New(rand.NewPCG(2, 5))})
	require.NoError(t, err)
	got := []complex128{res.Values[0], res.Values[1]}
	if imag(got[0]) < imag(got[1]) {
		got[0], got[1] = got[1], got[0]
	}
	assert.InDelta(t, 0, cmplx.Abs(got[0]-complex(5, 3)), 1e-8)
	assert.InDelta(t, 0, cmplx.Abs(got[1]-complex(5, -3)), 1e-8)
	for j := 0; j < 2; j++ {
		assert.InDelta(t, 1, vectorNorm(res, j), 1e-10)
		assert.Less(t, eigResidual(a, res, j), 1e-7)
	}

	res, err = Eigs(denseOps(a), n, EigsSettings{K: 1, Which: LargestReal, Src: rand.New(rand.NewPCG(3, 5))})
	require.NoError(t, err)
	assert.InDelta(t, 5, real(res.Values[0]), 1e-8)
	assert.InDelta(t, 3, math.Abs(imag(res.Values[0])), 1e-8)
}

func TestEigsSparse(t *testing.T) {
	// The 1-D Laplacian has eigenvalues 2 - 2cos(jπ/(n+1)).
	const n = 40
	tr := sparse.NewTriplet(n, n)
	for i := 0; i < n; i++ {
		tr.Append(i, i, 2)
		if i > 0 {
			tr.Append(i, i-1, -1)
			tr.Append(i-1, i, -1)
		}
	}
	m := tr.ToCSR()
	res, err := Eigs(MatrixOps{MatVec: m.MulVec}, n, EigsSettings{
		K:   2,
		NCV: n,
		V0:  sinVector(n),
	})
	require.NoError(t, err)
	for j := 0; j < 2; j++ {
		want := 2 - 2*math.Cos(float64(n-j)*math.Pi/(n+1))
		assert.InDelta(t, want, real(res.Values[j]), 1e-8)
	}
}

func TestEigsNoConvergence(t *testing.T) {
	d := arange(1, 101)
	res, err := Eigs(denseOps(diagDense(d)), len(d), EigsSettings{
		K:           3,
		NCV:         6,
		Tolerance:   1e-14,
		MaxRestarts: 1,
		Src:         rand.New(rand.NewPCG(4, 5)),
	})
	assert.True(t, errors.Is(err, ErrNoConvergence))
	assert.Equal(t, 1, res.Restarts)
	assert.Equal(t, 12, res.MatVec)
	assert.Len(t, res.Values, 3)
}

func TestEigsInvariantSubspace(t *testing.T) {
	// Starting from an eigenvector, the Krylov subspace has dimension one.
	d := arange(1, 11)
	v0 := make([]float64, len(d))
	v0[0] = 1
	_, err := Eigs(denseOps(diagDense(d)), len(d), EigsSettings{K: 2, V0: v0})
	assert.ErrorIs(t, err, ErrBreakdown)

	res, err := Eigs(denseOps(diagDense(d)), len(d), EigsSettings{K: 1, V0: v0})
	require.NoError(t, err)
	assert.InDelta(t, d[0], real(res.Values[0]), 1e-12)
	assert.Equal(t, 0, res.Restarts)
}

func TestEigsSource(t *testing.T) {
	// The same seeded source gives the same starting vector and hence the
	// same result.
	d := arange(1, 31)
	run := func() (EigsResult, error) {
		return Eigs(denseOps(diagDense(d)), len(d), EigsSettings{
			K:   2,
			NCV: 8,
			Src: rand.New(rand.NewPCG(9, 9)),
		})
	}
	r1, err1 := run()
	r2, err2 := run()
	assert.Equal(t, err1, err2)
	assert.Equal(t, r1.Values, r2.Values)
	assert.Equal(t, r1.MatVec, r2.MatVec)
}

func TestEigsPanics(t *testing.T) {
	ops := denseOps(diagDense(arange(1, 6)))
	assert.Panics(t, func() { Eigs(MatrixOps{}, 5, EigsSettings{K: 1}) })
	assert.Panics(t, func() { Eigs(ops, 0, EigsSettings{K: 1}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 6}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 3, NCV: 2}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 1, NCV: 6}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 1, Tolerance: -1}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 1, V0: []float64{1}}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 1, V0: make([]float64, 5)}) })
	assert.Panics(t, func() { Eigs(ops, 5, EigsSettings{K: 1, Which: Which(7)}) })
}
