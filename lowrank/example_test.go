// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lowrank_test

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/xinyushi/iterative/lowrank"
)

func ExampleRangeFinder() {
	// The 10×10 matrix of all ones has rank one, and its range is spanned
	// by the constant vector.
	const n = 10
	ones := make([]float64, n*n)
	for i := range ones {
		ones[i] = 1
	}
	a := lowrank.Matrix{Matrix: mat.NewDense(n, n, ones)}

	rf := lowrank.RangeFinder{
		Oversample: 2,
		Src:        rand.New(rand.NewPCG(1, 1)),
	}
	u, err := rf.Span(a, 1)
	if err != nil {
		log.Fatal(err)
	}
	r, c := u.Dims()
	fmt.Printf("basis: %d×%d\n", r, c)

	dominant := mat.Col(nil, 0, u)
	for i, v := range dominant {
		dominant[i] = math.Abs(v)
	}
	fmt.Printf("dominant direction: %.4f\n", dominant)

	// Output:
	// basis: 10×3
	// dominant direction: [0.3162 0.3162 0.3162 0.3162 0.3162 0.3162 0.3162 0.3162 0.3162 0.3162]
}
