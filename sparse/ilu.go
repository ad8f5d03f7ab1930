// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import "fmt"

// ILU0 is the incomplete LU factorization with zero fill-in of a square sparse
// matrix A. The factors L and U are restricted to the sparsity pattern of A
// and share it, L has a unit diagonal that is not stored.
//
// The PSolve and PSolveTrans methods can be used as the preconditioner
// solves of an iterative method.
type ILU0 struct {
	lu   *CSR
	diag []int
}

// Factorize computes the incomplete factorization of a. It returns an error
// wrapping ErrZeroPivot if a diagonal element of a is missing or if a zero
// pivot is encountered. a is not modified.
func (ilu *ILU0) Factorize(a *CSR) error {
	n, c := a.Dims()
	if n != c {
		panic(errSquare)
	}
	lu := &CSR{
		r:      n,
		c:      n,
		rowPtr: a.rowPtr,
		colInd: a.colInd,
		val:    make([]float64, len(a.val)),
	}
	copy(lu.val, a.val)

	diag := make([]int, n)
	for i := range diag {
		k, ok := lu.find(i, i)
		if !ok {
			return fmt.Errorf("%w: missing diagonal element in row %d", ErrZeroPivot, i)
		}
		diag[i] = k
	}

	for i := 0; i < n; i++ {
		end := lu.rowPtr[i+1]
		for kk := lu.rowPtr[i]; kk < diag[i]; kk++ {
			k := lu.colInd[kk]
			lu.val[kk] /= lu.val[diag[k]] // l_ik = a_ik / u_kk
			lik := lu.val[kk]
			for jj := kk + 1; jj < end; jj++ {
				if pos, ok := lu.find(k, lu.colInd[jj]); ok {
					lu.val[jj] -= lik * lu.val[pos]
				}
			}
		}
		if lu.val[diag[i]] == 0 {
			return fmt.Errorf("%w: row %d", ErrZeroPivot, i)
		}
	}

	ilu.lu = lu
	ilu.diag = diag
	return nil
}

// PSolve solves M*z = rhs, where M = L*U, and stores z into dst. dst and
// rhs may be the same slice.
func (ilu *ILU0) PSolve(dst, rhs []float64) error {
	lu := ilu.check(dst, rhs)
	copy(dst, rhs)
	for i := 0; i < lu.r; i++ {
		for k := lu.rowPtr[i]; k < ilu.diag[i]; k++ {
			dst[i] -= lu.val[k] * dst[lu.colInd[k]]
		}
	}
	for i := lu.r - 1; i >= 0; i-- {
		for k := ilu.diag[i] + 1; k < lu.rowPtr[i+1]; k++ {
			dst[i] -= lu.val[k] * dst[lu.colInd[k]]
		}
		dst[i] /= lu.val[ilu.diag[i]]
	}
	return nil
}

// PSolveTrans solves M^T*z = rhs, where M = L*U, and stores z into dst. dst
// and rhs may be the same slice.
func (ilu *ILU0) PSolveTrans(dst, rhs []float64) error {
	lu := ilu.check(dst, rhs)
	copy(dst, rhs)
	// U^T w = rhs.
	for i := 0; i < lu.r; i++ {
		dst[i] /= lu.val[ilu.diag[i]]
		wi := dst[i]
		for k := ilu.diag[i] + 1; k < lu.rowPtr[i+1]; k++ {
			dst[lu.colInd[k]] -= lu.val[k] * wi
		}
	}
	// L^T z = w.
	for i := lu.r - 1; i >= 0; i-- {
		zi := dst[i]
		for k := lu.rowPtr[i]; k < ilu.diag[i]; k++ {
			dst[lu.colInd[k]] -= lu.val[k] * zi
		}
	}
	return nil
}

func (ilu *ILU0) check(dst, rhs []float64) *CSR {
	if ilu.lu == nil {
		panic("sparse: ILU0 not factorized")
	}
	if len(dst) != ilu.lu.r || len(rhs) != ilu.lu.r {
		panic(errShape)
	}
	return ilu.lu
}

// Factors returns the strictly lower part of L and the upper triangular
// factor U as separate matrices.
func (ilu *ILU0) Factors() (l, u *CSR) {
	if ilu.lu == nil {
		panic("sparse: ILU0 not factorized")
	}
	n := ilu.lu.r
	lt := NewTriplet(n, n)
	ut := NewTriplet(n, n)
	ilu.lu.DoNonZero(func(i, j int, v float64) {
		if j < i {
			lt.Append(i, j, v)
		} else {
			ut.Append(i, j, v)
		}
	})
	return lt.ToCSR(), ut.ToCSR()
}
