// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/xinyushi/iterative/sparse"
)

type testCase struct {
	name  string
	n     int
	a     MatrixOps
	csr   *sparse.CSR // Non-nil for matrices read from testdata.
	iters int
	tol   float64
}

// randomSPD returns a test case with a random dense symmetric positive
// definite matrix of order n.
func randomSPD(n int, rnd *rand.Rand) testCase {
	a := make([]float64, n*n)
	lda := n
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a[i*lda+j] = rnd.Float64()
		}
	}
	for i := 0; i < n; i++ {
		a[i*lda+i] += float64(n)
	}
	bi := blas64.Implementation()
	matvec := func(dst, x []float64) {
		bi.Dsymv(blas.Upper, n, 1, a, lda, x, 1, 0, dst, 1)
	}
	return testCase{
		name:  "randomSPD",
		n:     n,
		a:     MatrixOps{MatVec: matvec, MatTransVec: matvec},
		iters: 2 * n,
		tol:   1e-8,
	}
}

// market returns a test case with the matrix read from testdata/name.mtx.
// The optional tol overrides the default solution tolerance.
func market(name string, tol ...float64) testCase {
	f, err := os.Open(filepath.Join("testdata", name+".mtx"))
	if err != nil {
		panic(err)
	}
	defer f.Close()
	t, err := sparse.ReadMatrixMarket(f)
	if err != nil {
		panic(err)
	}
	m := t.ToCSR()
	tc := csrCase(name, m)
	if len(tol) > 0 {
		tc.tol = tol[0]
	}
	return tc
}

func csrCase(name string, m *sparse.CSR) testCase {
	n, _ := m.Dims()
	return testCase{
		name:  name,
		n:     n,
		a:     MatrixOps{MatVec: m.MulVec, MatTransVec: m.MulTransVec},
		csr:   m,
		iters: 2 * n,
		tol:   1e-8,
	}
}

// laplacian2D returns the five-point Laplacian on a g×g grid.
func laplacian2D(g int) *sparse.CSR {
	m := sparse.NewDOK(g*g, g*g)
	for r := 0; r < g; r++ {
		for c := 0; c < g; c++ {
			i := r*g + c
			m.Set(i, i, 4)
			if c > 0 {
				m.Set(i, i-1, -1)
				m.Set(i-1, i, -1)
			}
			if r > 0 {
				m.Set(i, i-g, -1)
				m.Set(i-g, i, -1)
			}
		}
	}
	return m.ToCSR()
}

// sinVector returns the vector with elements sin(i+1).
func sinVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Sin(float64(i + 1))
	}
	return v
}

// rhsOnes returns the right-hand side for which the vector of all ones is the
// solution.
func rhsOnes(a MatrixOps, n int) (b, want []float64) {
	want = make([]float64, n)
	for i := range want {
		want[i] = 1
	}
	b = make([]float64, n)
	a.MatVec(b, want)
	return b, want
}

func spdCases(rnd *rand.Rand) []testCase {
	var cases []testCase
	for _, n := range []int{1, 2, 3, 4, 5, 10, 20, 50, 100, 200} {
		cases = append(cases, randomSPD(n, rnd))
	}
	return cases
}
