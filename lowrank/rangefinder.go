// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lowrank provides a randomized range finder that approximates the
// dominant subspace of the range of a linear operator using only products of
// the operator with dense matrices.
package lowrank

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultOversample is the oversampling used when
	// RangeFinder.Oversample is zero.
	DefaultOversample = 10

	// NoOversample requests no oversampling.
	NoOversample = -1
)

// ErrSVDFailed is returned when the singular value decomposition of a sketch
// of the operator does not converge.
var ErrSVDFailed = errors.New("lowrank: SVD failed")

// Normal is a source of standard normal random numbers. The generators in
// math/rand and math/rand/v2 implement it.
type Normal interface {
	NormFloat64() float64
}

// RangeFinder computes an orthonormal basis that approximately spans the
// dominant k-dimensional subspace of the range of an m×n operator A.
//
// The operator is applied to an n×(k+p) Gaussian test matrix X, and the basis
// is the left singular factor U of the thin SVD of Y = A*X. Each power
// iteration replaces U with the left singular factor of A*U, which damps the
// directions of the smaller singular values relative to the top k.
type RangeFinder struct {
	// Oversample is the number p of random directions drawn beyond the
	// target rank. Zero means DefaultOversample and NoOversample means
	// p = 0.
	Oversample int

	// PowerIters is the number of power iterations. Power iteration
	// requires a square operator.
	PowerIters int

	// Src is the source of the test matrix entries. If it is nil, the
	// global generator is used and results are not reproducible.
	Src Normal
}

// RandomSpan returns an orthonormal basis for the approximate dominant
// k-dimensional subspace of the range of a, using oversampling p and the
// given number of power iterations. See RangeFinder for details.
//
// Unlike RangeFinder.Oversample, p = 0 means no oversampling here, not
// DefaultOversample. The test matrix is drawn from the global generator.
func RandomSpan(a Operator, k, p, power int) (*mat.Dense, error) {
	if p < 0 {
		panic("lowrank: negative oversampling")
	}
	if p == 0 {
		p = NoOversample
	}
	rf := RangeFinder{Oversample: p, PowerIters: power}
	return rf.Span(a, k)
}

// Span returns an m×min(m, k+p) matrix with orthonormal columns ordered by
// decreasing singular value of the last sketch. Requesting more columns than
// min(m, n) is not an error, the columns beyond the rank of the sketch are
// an arbitrary orthonormal completion.
//
// An error is returned only if the SVD fails.
func (rf RangeFinder) Span(a Operator, k int) (*mat.Dense, error) {
	m, n := a.Dims()
	if m == 0 || n == 0 {
		panic("lowrank: empty operator")
	}
	if k <= 0 {
		panic("lowrank: rank not positive")
	}
	p := rf.Oversample
	switch {
	case p == 0:
		p = DefaultOversample
	case p == NoOversample:
		p = 0
	case p < 0:
		panic("lowrank: negative oversampling")
	}
	if rf.PowerIters < 0 {
		panic("lowrank: negative number of power iterations")
	}
	if rf.PowerIters > 0 && m != n {
		panic("lowrank: power iteration with non-square operator")
	}

	l := k + p
	x := mat.NewDense(n, l, nil)
	rf.fill(x)
	y := mat.NewDense(m, l, nil)
	a.MulDense(y, x)
	u, err := leftSingular(y)
	if err != nil {
		return nil, err
	}

	for i := 0; i < rf.PowerIters; i++ {
		_, c := u.Dims()
		y = mat.NewDense(m, c, nil)
		a.MulDense(y, u)
		u, err = leftSingular(y)
		if err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (rf RangeFinder) fill(x *mat.Dense) {
	norm := distuv.UnitNormal.Rand
	if rf.Src != nil {
		norm = rf.Src.NormFloat64
	}
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x.Set(i, j, norm())
		}
	}
}

// leftSingular returns the left singular vectors of the thin SVD of y.
func leftSingular(y *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(y, mat.SVDThinU) {
		return nil, ErrSVDFailed
	}
	var u mat.Dense
	svd.UTo(&u)
	return &u, nil
}

// ProjectionError returns the norm of the component of v orthogonal to the
// column span of u, which must have orthonormal columns.
func ProjectionError(u *mat.Dense, v []float64) float64 {
	r, _ := u.Dims()
	if len(v) != r {
		panic("lowrank: dimension mismatch")
	}
	vv := mat.NewVecDense(r, v)
	var c mat.VecDense
	c.MulVec(u.T(), vv)
	var res mat.VecDense
	res.MulVec(u, &c)
	res.SubVec(vv, &res)
	return mat.Norm(&res, 2)
}
