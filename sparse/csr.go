// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides sparse matrix formats, Matrix Market input and
// output, a sparse LU factorization and an incomplete LU preconditioner.
//
// Matrices are assembled in Triplet or DOK format and converted to CSR, the
// format used for products and factorizations. The MulVec and MulTransVec
// methods have the signatures expected by iterative.MatrixOps, and ILU0
// provides the PSolve and PSolveTrans functions of iterative.Settings.
package sparse

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	errNegativeDim = "sparse: negative dimension"
	errRowIndex    = "sparse: row index out of range"
	errColIndex    = "sparse: column index out of range"
	errShape       = "sparse: dimension mismatch"
	errSquare      = "sparse: matrix not square"
	errCSR         = "sparse: malformed CSR data"
)

// CSR is a sparse matrix in compressed sparse row format. Column indices
// within each row are strictly increasing.
type CSR struct {
	r, c   int
	rowPtr []int
	colInd []int
	val    []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR returns an r×c CSR matrix that uses the provided slices as its
// backing data. rowPtr must have length r+1, and colInd and val must have
// length rowPtr[r]. Column indices within a row must be strictly increasing.
func NewCSR(r, c int, rowPtr, colInd []int, val []float64) *CSR {
	if r < 0 || c < 0 {
		panic(errNegativeDim)
	}
	if len(rowPtr) != r+1 || rowPtr[0] != 0 || len(colInd) != rowPtr[r] || len(val) != rowPtr[r] {
		panic(errCSR)
	}
	for i := 0; i < r; i++ {
		if rowPtr[i+1] < rowPtr[i] {
			panic(errCSR)
		}
		for k := rowPtr[i]; k < rowPtr[i+1]; k++ {
			j := colInd[k]
			if j < 0 || c <= j || (k > rowPtr[i] && j <= colInd[k-1]) {
				panic(errCSR)
			}
		}
	}
	return &CSR{r: r, c: c, rowPtr: rowPtr, colInd: colInd, val: val}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *CSR {
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
	}
	return Diag(d)
}

// Diag returns the square diagonal matrix with d on its diagonal.
func Diag(d []float64) *CSR {
	n := len(d)
	m := &CSR{
		r:      n,
		c:      n,
		rowPtr: make([]int, n+1),
		colInd: make([]int, n),
		val:    make([]float64, n),
	}
	for i, v := range d {
		m.rowPtr[i+1] = i + 1
		m.colInd[i] = i
		m.val[i] = v
	}
	return m
}

// Dims returns the dimensions of the matrix.
func (m *CSR) Dims() (r, c int) {
	return m.r, m.c
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int {
	return len(m.val)
}

// At returns the (i,j) element.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || m.r <= i {
		panic(errRowIndex)
	}
	if j < 0 || m.c <= j {
		panic(errColIndex)
	}
	if k, ok := m.find(i, j); ok {
		return m.val[k]
	}
	return 0
}

// find returns the position of the (i,j) element in val.
func (m *CSR) find(i, j int) (int, bool) {
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	k := lo + sort.SearchInts(m.colInd[lo:hi], j)
	return k, k < hi && m.colInd[k] == j
}

// T returns the transpose of the matrix as a mat.Matrix.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// DoNonZero calls fn for each stored element in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.r; i++ {
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			fn(i, m.colInd[k], m.val[k])
		}
	}
}

// MulVec computes A*x and stores the result into dst.
func (m *CSR) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic(errShape)
	}
	if m.r != len(dst) {
		panic(errShape)
	}
	for i := 0; i < m.r; i++ {
		var sum float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += m.val[k] * x[m.colInd[k]]
		}
		dst[i] = sum
	}
}

// MulTransVec computes A^T*x and stores the result into dst.
func (m *CSR) MulTransVec(dst, x []float64) {
	if m.c != len(dst) {
		panic(errShape)
	}
	if m.r != len(x) {
		panic(errShape)
	}
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.r; i++ {
		xi := x[i]
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			dst[m.colInd[k]] += m.val[k] * xi
		}
	}
}

// MulDense computes A*x for a dense matrix x and stores the result into dst.
// x must have as many rows as A has columns, and dst must have as many rows
// as A and as many columns as x.
func (m *CSR) MulDense(dst, x *mat.Dense) {
	xr, xc := x.Dims()
	dr, dc := dst.Dims()
	if xr != m.c || dr != m.r || dc != xc {
		panic(errShape)
	}
	xraw := x.RawMatrix()
	draw := dst.RawMatrix()
	for i := 0; i < m.r; i++ {
		di := draw.Data[i*draw.Stride : i*draw.Stride+dc]
		for l := range di {
			di[l] = 0
		}
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			v := m.val[k]
			xj := xraw.Data[m.colInd[k]*xraw.Stride : m.colInd[k]*xraw.Stride+xc]
			for l, xjl := range xj {
				di[l] += v * xjl
			}
		}
	}
}

// Diagonal returns the diagonal of the matrix.
func (m *CSR) Diagonal() []float64 {
	n := min(m.r, m.c)
	d := make([]float64, n)
	for i := range d {
		if k, ok := m.find(i, i); ok {
			d[i] = m.val[k]
		}
	}
	return d
}

// NormInf returns the maximum absolute row sum of the matrix.
func (m *CSR) NormInf() float64 {
	var norm float64
	for i := 0; i < m.r; i++ {
		var sum float64
		for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
			sum += math.Abs(m.val[k])
		}
		norm = math.Max(norm, sum)
	}
	return norm
}

// ToDense returns a dense copy of the matrix.
func (m *CSR) ToDense() *mat.Dense {
	if m.r == 0 || m.c == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.r, m.c, nil)
	m.DoNonZero(func(i, j int, v float64) {
		d.Set(i, j, v)
	})
	return d
}
