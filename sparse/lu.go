// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSingular is returned when a matrix has no usable pivot in some
	// column.
	ErrSingular = errors.New("sparse: matrix is singular")

	// ErrZeroPivot is returned by ILU0 when a diagonal element is missing
	// or becomes zero during the factorization.
	ErrZeroPivot = errors.New("sparse: zero pivot")
)

// LU is the LU factorization with partial pivoting
//  P * A = L * U
// of a square sparse matrix A, where P is a permutation matrix, L is unit
// lower triangular and U is upper triangular. Fill-in is kept, so L and U
// may have many more non-zeros than A.
type LU struct {
	n     int
	l, u  *CSR
	perm  []int
	swaps int
}

// Factorize computes the LU factorization of a. It returns an error wrapping
// ErrSingular if a is singular. a is not modified.
func (lu *LU) Factorize(a *CSR) error {
	n, c := a.Dims()
	if n != c {
		panic(errSquare)
	}
	*lu = LU{n: n}

	// Rows of U and of the multipliers of L, as column→value maps.
	u := make([]map[int]float64, n)
	l := make([]map[int]float64, n)
	for i := range u {
		u[i] = make(map[int]float64, a.rowPtr[i+1]-a.rowPtr[i])
		l[i] = make(map[int]float64)
		for k := a.rowPtr[i]; k < a.rowPtr[i+1]; k++ {
			u[i][a.colInd[k]] = a.val[k]
		}
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var swaps int
	for k := 0; k < n; k++ {
		p := -1
		var best float64
		for i := k; i < n; i++ {
			if v, ok := u[i][k]; ok && math.Abs(v) > best {
				best = math.Abs(v)
				p = i
			}
		}
		if p < 0 {
			return fmt.Errorf("%w: no pivot in column %d", ErrSingular, k)
		}
		if p != k {
			u[p], u[k] = u[k], u[p]
			l[p], l[k] = l[k], l[p]
			perm[p], perm[k] = perm[k], perm[p]
			swaps++
		}

		pivot := u[k][k]
		for i := k + 1; i < n; i++ {
			aik, ok := u[i][k]
			if !ok {
				continue
			}
			delete(u[i], k)
			f := aik / pivot
			l[i][k] = f
			for j, ukj := range u[k] {
				if j == k {
					continue
				}
				u[i][j] -= f * ukj
			}
		}
	}

	lt := NewTriplet(n, n)
	ut := NewTriplet(n, n)
	for i := 0; i < n; i++ {
		for j, v := range l[i] {
			lt.Append(i, j, v)
		}
		for j, v := range u[i] {
			ut.Append(i, j, v)
		}
	}
	lu.l = lt.ToCSR()
	lu.u = ut.ToCSR()
	lu.perm = perm
	lu.swaps = swaps
	return nil
}

// L returns the strictly lower triangular part of the L factor. Its unit
// diagonal is not stored.
func (lu *LU) L() *CSR {
	return lu.l
}

// U returns the upper triangular factor.
func (lu *LU) U() *CSR {
	return lu.u
}

// Perm returns the row permutation: row i of P*A is row Perm()[i] of A.
func (lu *LU) Perm() []int {
	p := make([]int, len(lu.perm))
	copy(p, lu.perm)
	return p
}

// NNZ returns the number of stored entries in L (without its unit diagonal)
// and in U.
func (lu *LU) NNZ() (l, u int) {
	if lu.u == nil {
		return 0, 0
	}
	return lu.l.NNZ(), lu.u.NNZ()
}

// Det returns the determinant of the factorized matrix.
func (lu *LU) Det() float64 {
	if lu.u == nil {
		panic("sparse: LU not factorized")
	}
	det := 1.0
	if lu.swaps%2 == 1 {
		det = -1
	}
	for _, d := range lu.u.Diagonal() {
		det *= d
	}
	return det
}

// Solve solves A*x = b and stores x into dst. dst and b may be the same
// slice.
func (lu *LU) Solve(dst, b []float64) error {
	if lu.u == nil {
		panic("sparse: LU not factorized")
	}
	n := lu.n
	if len(b) != n || len(dst) != n {
		panic(errShape)
	}

	// Solve L y = P b via forward substitution.
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[lu.perm[i]]
		for k := lu.l.rowPtr[i]; k < lu.l.rowPtr[i+1]; k++ {
			sum -= lu.l.val[k] * y[lu.l.colInd[k]]
		}
		y[i] = sum
	}

	// Solve U x = y via backward substitution.
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		var div float64
		for k := lu.u.rowPtr[i]; k < lu.u.rowPtr[i+1]; k++ {
			j := lu.u.colInd[k]
			if j == i {
				div = lu.u.val[k]
			} else {
				sum -= lu.u.val[k] * y[j]
			}
		}
		if div == 0 {
			return fmt.Errorf("%w: zero diagonal in row %d of U", ErrSingular, i)
		}
		y[i] = sum / div
	}
	copy(dst, y)
	return nil
}
