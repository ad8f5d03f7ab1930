// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative_test

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/xinyushi/iterative"
	"github.com/xinyushi/iterative/sparse"
)

func ExampleGMRES() {
	// Upwind discretization of -u'' + c*u' on a uniform mesh.
	const n = 30
	t := sparse.NewTriplet(n, n)
	for i := 0; i < n; i++ {
		t.Append(i, i, 2)
		if i > 0 {
			t.Append(i, i-1, -1.1)
		}
		if i < n-1 {
			t.Append(i, i+1, -0.9)
		}
	}
	a := t.ToCSR()
	ops := iterative.MatrixOps{MatVec: a.MulVec}

	want := make([]float64, n)
	for i := range want {
		want[i] = 1
	}
	b := make([]float64, n)
	a.MulVec(b, want)

	plain, err := iterative.LinearSolve(ops, b, &iterative.GMRES{}, iterative.Settings{})
	if err != nil {
		log.Fatal(err)
	}

	// ILU(0) of a tridiagonal matrix is its exact LU factorization.
	var ilu sparse.ILU0
	if err := ilu.Factorize(a); err != nil {
		log.Fatal(err)
	}
	prec, err := iterative.LinearSolve(ops, b, &iterative.GMRES{}, iterative.Settings{
		PSolve: ilu.PSolve,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("ILU(0) saves products:", prec.Stats.MatVec < plain.Stats.MatVec)
	fmt.Println("products with ILU(0):", prec.Stats.MatVec)
	fmt.Printf("x[0] = %.6f\n", prec.X[0])

	// Output:
	// ILU(0) saves products: true
	// products with ILU(0): 2
	// x[0] = 1.000000
}

func ExampleEigs() {
	const n = 100
	d := make([]float64, n)
	for i := range d {
		d[i] = math.Pow(0.9, float64(i))
	}
	a := sparse.Diag(d)

	res, err := iterative.Eigs(iterative.MatrixOps{MatVec: a.MulVec}, n, iterative.EigsSettings{
		K:   3,
		Src: rand.New(rand.NewPCG(1, 1)),
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, v := range res.Values {
		fmt.Printf("%.4f\n", real(v))
	}

	// Output:
	// 1.0000
	// 0.9000
	// 0.8100
}
