// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Which specifies the part of the spectrum computed by Eigs.
type Which int

const (
	// LargestMagnitude selects the eigenvalues of largest modulus.
	LargestMagnitude Which = iota
	// LargestReal selects the eigenvalues of largest real part.
	LargestReal
	// SmallestReal selects the eigenvalues of smallest real part.
	SmallestReal
)

// Normal is a source of standard normal random numbers. The generators in
// math/rand and math/rand/v2 implement it.
type Normal interface {
	NormFloat64() float64
}

// EigsSettings holds settings for Eigs. Zero values of the fields mean
// default values.
type EigsSettings struct {
	// K is the number of eigenvalues to compute.
	// It must be 0 < K <= dim.
	K int

	// Which selects the wanted eigenvalues.
	Which Which

	// NCV is the dimension of the Krylov subspace built before each
	// restart. It must be K <= NCV <= dim. If it is zero, it will be set
	// to min(dim, max(2*K+1, 20)).
	NCV int

	// Tolerance is the relative accuracy of the eigenvalues. If it is
	// zero, 1e-10 will be used.
	Tolerance float64

	// MaxRestarts is the limit on the number of restarts. If it is zero,
	// it will be set to 100.
	MaxRestarts int

	// V0 is the starting vector. If it is nil, a random vector will be
	// used. It must not be zero.
	V0 []float64

	// Src is the source of the random starting vector. If it is nil, the
	// global generator will be used.
	Src Normal
}

func defaultEigsSettings(s *EigsSettings, dim int) {
	if s.NCV == 0 {
		s.NCV = min(dim, max(2*s.K+1, 20))
	}
	if s.Tolerance == 0 {
		s.Tolerance = 1e-10
	}
	if s.MaxRestarts == 0 {
		s.MaxRestarts = 100
	}
}

// EigsResult holds the result of Eigs.
type EigsResult struct {
	// Values are the approximate eigenvalues ordered according to
	// EigsSettings.Which.
	Values []complex128
	// Vectors holds the corresponding approximate eigenvectors of unit
	// norm in its columns.
	Vectors *mat.CDense
	// Restarts is the number of restarts done.
	Restarts int
	// MatVec is the number of matrix-vector products.
	MatVec int
}

// Eigs computes K eigenvalues and eigenvectors of the dim×dim matrix A
// represented by a.MatVec, using the Arnoldi iteration with explicit restarts.
//
// Each cycle builds an orthonormal basis V of a Krylov subspace of dimension
// NCV and the upper Hessenberg matrix H = V^T*A*V. The eigenpairs (θ, y) of H
// give the Ritz pairs (θ, V*y). A Ritz pair is accepted when the residual
// estimate |h_{m+1,m}|*|y_m| is below Tolerance*max(ε^{2/3}, |θ|). If some
// wanted pair has not converged, the iteration restarts from the sum of the
// wanted Ritz vectors.
//
// If the eigenvalues do not converge within MaxRestarts restarts, Eigs returns
// the current approximations together with ErrNoConvergence.
func Eigs(a MatrixOps, dim int, settings EigsSettings) (EigsResult, error) {
	if a.MatVec == nil {
		panic("iterative: nil matrix-vector multiplication")
	}
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}
	if settings.K <= 0 || dim < settings.K {
		panic("iterative: invalid number of eigenvalues")
	}
	if settings.V0 != nil && len(settings.V0) != dim {
		panic("iterative: mismatched length of initial vector")
	}
	defaultEigsSettings(&settings, dim)
	if settings.NCV < settings.K || dim < settings.NCV {
		panic("iterative: invalid EigsSettings.NCV")
	}
	if settings.Tolerance < 0 {
		panic("iterative: negative tolerance")
	}

	k, ncv := settings.K, settings.NCV
	ar := arnoldi{
		a:   a,
		dim: dim,
		v:   make([]float64, dim*(ncv+1)),
		h:   mat.NewDense(ncv+1, ncv, nil),
	}

	v0 := ar.v[:dim]
	if settings.V0 != nil {
		copy(v0, settings.V0)
	} else {
		randomVector(v0, settings.Src)
	}
	if floats.Norm(v0, 2) == 0 {
		panic("iterative: zero initial vector")
	}

	var res EigsResult
	for restarts := 0; ; restarts++ {
		m := ar.factorize(ncv)
		if m < k {
			res.Restarts = restarts
			res.MatVec = ar.matVec
			return res, fmt.Errorf("%w: invariant subspace of dimension %d found, %d eigenvalues requested", ErrBreakdown, m, k)
		}
		beta := ar.h.At(m, m-1)

		var eig mat.Eigen
		hm := ar.h.Slice(0, m, 0, m)
		if !eig.Factorize(hm, mat.EigenRight) {
			return res, errors.New("iterative: eigendecomposition of Hessenberg matrix failed")
		}
		theta := eig.Values(nil)
		var y mat.CDense
		eig.VectorsTo(&y)

		idx := wanted(theta, settings.Which)[:k]
		converged := true
		for _, i := range idx {
			resid := beta * cmplx.Abs(y.At(m-1, i))
			if resid > settings.Tolerance*math.Max(eps23, cmplx.Abs(theta[i])) {
				converged = false
				break
			}
		}

		res = ar.ritz(theta, &y, idx, m)
		res.Restarts = restarts
		res.MatVec = ar.matVec
		if converged {
			return res, nil
		}
		if restarts == settings.MaxRestarts {
			return res, ErrNoConvergence
		}

		// Restart from the sum of the wanted Ritz vectors.
		for i := range v0 {
			v0[i] = 0
		}
		for j := 0; j < k; j++ {
			for i := range v0 {
				x := res.Vectors.At(i, j)
				v0[i] += real(x) + imag(x)
			}
		}
		if floats.Norm(v0, 2) == 0 {
			randomVector(v0, settings.Src)
		}
	}
}

var eps23 = math.Pow(dlamchE, 2.0/3)

// arnoldi holds the state of the Arnoldi process. The columns of V are stored
// contiguously in v, the first column is the starting vector.
type arnoldi struct {
	a      MatrixOps
	dim    int
	v      []float64
	h      *mat.Dense
	matVec int
}

func (ar *arnoldi) col(j int) []float64 {
	return ar.v[j*ar.dim : (j+1)*ar.dim]
}

// factorize normalizes the first column of V and computes up to ncv steps of
// the Arnoldi process. It returns the number m of completed steps. If m < ncv,
// an invariant subspace was found and H[m,m-1] is zero.
func (ar *arnoldi) factorize(ncv int) int {
	h := ar.h
	h.Zero()
	v0 := ar.col(0)
	floats.Scale(1/floats.Norm(v0, 2), v0)

	for j := 0; j < ncv; j++ {
		vj := ar.col(j)
		w := ar.col(j + 1)
		ar.a.MatVec(w, vj)
		ar.matVec++
		wnorm := floats.Norm(w, 2)

		// Modified Gram-Schmidt with one reorthogonalization pass.
		for pass := 0; pass < 2; pass++ {
			for i := 0; i <= j; i++ {
				vi := ar.col(i)
				hij := floats.Dot(vi, w)
				h.Set(i, j, h.At(i, j)+hij)
				floats.AddScaled(w, -hij, vi)
			}
		}
		hnorm := floats.Norm(w, 2)
		if hnorm <= 1e-12*wnorm {
			h.Set(j+1, j, 0)
			return j + 1
		}
		h.Set(j+1, j, hnorm)
		floats.Scale(1/hnorm, w)
	}
	return ncv
}

// ritz returns the Ritz pairs selected by idx.
func (ar *arnoldi) ritz(theta []complex128, y *mat.CDense, idx []int, m int) EigsResult {
	k := len(idx)
	re := mat.NewDense(m, k, nil)
	im := mat.NewDense(m, k, nil)
	values := make([]complex128, k)
	for c, i := range idx {
		values[c] = theta[i]
		for r := 0; r < m; r++ {
			yri := y.At(r, i)
			re.Set(r, c, real(yri))
			im.Set(r, c, imag(yri))
		}
	}
	// V_m is stored as the rows of vt.
	vt := mat.NewDense(m, ar.dim, ar.v[:m*ar.dim])
	var xr, xi mat.Dense
	xr.Mul(vt.T(), re)
	xi.Mul(vt.T(), im)

	x := mat.NewCDense(ar.dim, k, nil)
	for i := 0; i < ar.dim; i++ {
		for j := 0; j < k; j++ {
			x.Set(i, j, complex(xr.At(i, j), xi.At(i, j)))
		}
	}
	return EigsResult{Values: values, Vectors: x}
}

// wanted returns the indices of theta sorted so that the wanted eigenvalues
// come first.
func wanted(theta []complex128, which Which) []int {
	idx := make([]int, len(theta))
	for i := range idx {
		idx[i] = i
	}
	var less func(a, b complex128) bool
	switch which {
	case LargestMagnitude:
		less = func(a, b complex128) bool { return cmplx.Abs(a) > cmplx.Abs(b) }
	case LargestReal:
		less = func(a, b complex128) bool { return real(a) > real(b) }
	case SmallestReal:
		less = func(a, b complex128) bool { return real(a) < real(b) }
	default:
		panic("iterative: invalid Which")
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(theta[idx[i]], theta[idx[j]])
	})
	return idx
}

func randomVector(v []float64, src Normal) {
	norm := distuv.UnitNormal.Rand
	if src != nil {
		norm = src.NormFloat64
	}
	for i := range v {
		v[i] = norm()
	}
}
