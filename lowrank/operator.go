// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lowrank

import "gonum.org/v1/gonum/mat"

// Operator is a linear operator A that is accessible only through products
// with dense matrices.
type Operator interface {
	// Dims returns the dimensions of A.
	Dims() (m, n int)

	// MulDense computes A*x and stores the result into dst. x is n×c and
	// dst is m×c.
	MulDense(dst, x *mat.Dense)
}

// Matrix adapts a gonum matrix to the Operator interface.
type Matrix struct {
	mat.Matrix
}

// MulDense implements the Operator interface.
func (a Matrix) MulDense(dst, x *mat.Dense) {
	dst.Mul(a.Matrix, x)
}

// Func is an Operator defined by a function, for matrices that are never
// formed explicitly.
type Func struct {
	M, N int
	F    func(dst, x *mat.Dense)
}

// Dims implements the Operator interface.
func (f Func) Dims() (m, n int) {
	return f.M, f.N
}

// MulDense implements the Operator interface.
func (f Func) MulDense(dst, x *mat.Dense) {
	f.F(dst, x)
}
