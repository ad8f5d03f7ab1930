// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import "sort"

type triplet struct {
	i, j int
	v    float64
}

// Triplet is a sparse matrix in coordinate (COO) format. It is meant for
// assembling a matrix entry by entry, duplicate entries are summed when the
// matrix is converted to CSR.
type Triplet struct {
	r, c int
	data []triplet
}

// NewTriplet returns an empty r×c matrix in coordinate format.
func NewTriplet(r, c int) *Triplet {
	if r < 0 || c < 0 {
		panic(errNegativeDim)
	}
	return &Triplet{
		r: r,
		c: c,
	}
}

// Dims returns the dimensions of the matrix.
func (m *Triplet) Dims() (r, c int) {
	return m.r, m.c
}

// NNZ returns the number of stored entries, counting duplicates.
func (m *Triplet) NNZ() int {
	return len(m.data)
}

// Append adds v to the (i,j) element.
func (m *Triplet) Append(i, j int, v float64) {
	if i < 0 || m.r <= i {
		panic(errRowIndex)
	}
	if j < 0 || m.c <= j {
		panic(errColIndex)
	}
	m.data = append(m.data, triplet{i, j, v})
}

// MulVec computes A*x and stores the result into dst.
func (m *Triplet) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic(errShape)
	}
	if m.r != len(dst) {
		panic(errShape)
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.i] += aij.v * x[aij.j]
	}
}

// MulTransVec computes A^T*x and stores the result into dst.
func (m *Triplet) MulTransVec(dst, x []float64) {
	if m.c != len(dst) {
		panic(errShape)
	}
	if m.r != len(x) {
		panic(errShape)
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.j] += aij.v * x[aij.i]
	}
}

// ToCSR returns the matrix in compressed sparse row format. Entries with the
// same coordinates are summed.
func (m *Triplet) ToCSR() *CSR {
	data := make([]triplet, len(m.data))
	copy(data, m.data)
	sort.SliceStable(data, func(a, b int) bool {
		if data[a].i != data[b].i {
			return data[a].i < data[b].i
		}
		return data[a].j < data[b].j
	})

	csr := &CSR{
		r:      m.r,
		c:      m.c,
		rowPtr: make([]int, m.r+1),
	}
	for k, t := range data {
		if k > 0 && data[k-1].i == t.i && data[k-1].j == t.j {
			csr.val[len(csr.val)-1] += t.v
			continue
		}
		csr.colInd = append(csr.colInd, t.j)
		csr.val = append(csr.val, t.v)
		csr.rowPtr[t.i+1]++
	}
	for i := 0; i < m.r; i++ {
		csr.rowPtr[i+1] += csr.rowPtr[i]
	}
	return csr
}
