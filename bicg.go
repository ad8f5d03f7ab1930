// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "gonum.org/v1/gonum/floats"

// BiCG implements the biconjugate gradient iterative method with
// preconditioning for solving the system of linear equations
//  Ax = b,
// where A is a non-symmetric matrix. For symmetric positive definite systems
// use CG.
//
// Alongside the residual r, BiCG updates a shadow residual r~ with A^T so
// that the two sequences stay biorthogonal. It fails with ErrBreakdown when
// r~·z or p~·Ap vanishes.
//
// BiCG needs MatVec, MatTransVec, PSolve, and PSolveTrans matrix operations.
type BiCG struct {
	first  bool
	resume int

	rho, rhoPrev float64
	alpha        float64

	r, rt []float64 // Residual and shadow residual.
	z, zt []float64
	p, pt []float64
	q, qt []float64
}

// Init implements the Method interface.
func (b *BiCG) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	b.r = reuse(b.r, dim)
	b.rt = reuse(b.rt, dim)
	b.z = reuse(b.z, dim)
	b.zt = reuse(b.zt, dim)
	b.p = reuse(b.p, dim)
	b.pt = reuse(b.pt, dim)
	b.q = reuse(b.q, dim)
	b.qt = reuse(b.qt, dim)

	b.first = true
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *BiCG) Iterate(ctx *Context) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			copy(b.r, ctx.Residual)
			copy(b.rt, ctx.Residual) // r~_0 = r_0
		}
		ctx.Src = b.r
		ctx.Dst = b.z
		b.resume = 2
		return PSolve, nil
		// Solve M z = r_{i-1}.
	case 2:
		ctx.Src = b.rt
		ctx.Dst = b.zt
		b.resume = 3
		return PSolveTrans, nil
		// Solve M^T z~ = r~_{i-1}.
	case 3:
		b.rho = floats.Dot(b.z, b.rt) // ρ_i = z · r~_{i-1}
		if negligible(b.rho) {
			b.resume = 0
			return NoOperation, breakdown("z·r~")
		}
		if b.first {
			copy(b.p, b.z)
			copy(b.pt, b.zt)
		} else {
			beta := b.rho / b.rhoPrev
			floats.AddScaledTo(b.p, b.z, beta, b.p)    // p_i = z + β p_{i-1}
			floats.AddScaledTo(b.pt, b.zt, beta, b.pt) // p~_i = z~ + β p~_{i-1}
		}
		ctx.Src = b.p
		ctx.Dst = b.q
		b.resume = 4
		return MatVec, nil
		// Compute q = A p_i.
	case 4:
		ctx.Src = b.pt
		ctx.Dst = b.qt
		b.resume = 5
		return MatTransVec, nil
		// Compute q~ = A^T p~_i.
	case 5:
		ptq := floats.Dot(b.pt, b.q)
		if negligible(ptq) {
			b.resume = 0
			return NoOperation, breakdown("p~·Ap")
		}
		b.alpha = b.rho / ptq                  // α = ρ_i / (p~_i · q)
		floats.AddScaled(ctx.X, b.alpha, b.p)  // x_i = x_{i-1} + α p_i
		floats.AddScaled(b.r, -b.alpha, b.q)   // r_i = r_{i-1} - α q
		floats.AddScaled(b.rt, -b.alpha, b.qt) // r~_i = r~_{i-1} - α q~

		copy(ctx.Residual, b.r)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = floats.Norm(b.r, 2)
		ctx.Converged = false
		b.resume = 6
		return CheckResidualNorm, nil
	case 6:
		if ctx.Converged {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil

	default:
		panic("iterative: BiCG.Init not called")
	}
}
