// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

// DOK is a sparse matrix stored as a dictionary of keys. Unlike Triplet it
// supports random access and overwriting of elements.
type DOK struct {
	r, c int

	data map[index]float64
}

type index struct {
	row, col int
}

// NewDOK returns an r×c zero matrix.
func NewDOK(r, c int) *DOK {
	if r < 0 || c < 0 {
		panic(errNegativeDim)
	}
	return &DOK{
		r:    r,
		c:    c,
		data: make(map[index]float64),
	}
}

// Dims returns the dimensions of the matrix.
func (m *DOK) Dims() (r, c int) {
	return m.r, m.c
}

// NNZ returns the number of stored entries.
func (m *DOK) NNZ() int {
	return len(m.data)
}

// At returns the (i,j) element.
func (m *DOK) At(i, j int) float64 {
	m.checkIndex(i, j)
	return m.data[index{i, j}]
}

// Set sets the (i,j) element to v. Setting an element to zero removes it
// from the matrix.
func (m *DOK) Set(i, j int, v float64) {
	m.checkIndex(i, j)
	if v == 0 {
		delete(m.data, index{i, j})
		return
	}
	m.data[index{i, j}] = v
}

func (m *DOK) checkIndex(i, j int) {
	if i < 0 || m.r <= i {
		panic(errRowIndex)
	}
	if j < 0 || m.c <= j {
		panic(errColIndex)
	}
}

// MulVec computes A*x and stores the result into dst.
func (m *DOK) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic(errShape)
	}
	if m.r != len(dst) {
		panic(errShape)
	}
	for i := range dst {
		dst[i] = 0
	}
	for ij, aij := range m.data {
		dst[ij.row] += aij * x[ij.col]
	}
}

// MulTransVec computes A^T*x and stores the result into dst.
func (m *DOK) MulTransVec(dst, x []float64) {
	if m.c != len(dst) {
		panic(errShape)
	}
	if m.r != len(x) {
		panic(errShape)
	}
	for i := range dst {
		dst[i] = 0
	}
	for ij, aij := range m.data {
		dst[ij.col] += aij * x[ij.row]
	}
}

// ToCSR returns the matrix in compressed sparse row format.
func (m *DOK) ToCSR() *CSR {
	t := NewTriplet(m.r, m.c)
	for ij, v := range m.data {
		t.Append(ij.row, ij.col, v)
	}
	return t.ToCSR()
}
