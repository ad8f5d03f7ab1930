// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "gonum.org/v1/gonum/floats"

// BiCGSTAB implements the BiConjugate Gradient STABilized iterative method with
// preconditioning for solving the system of linear equations
//  Ax = b,
// where A is a non-symmetric matrix. For symmetric positive definite systems
// use CG.
//
// Each iteration is a BiCG step followed by a one-dimensional residual
// minimization, and the convergence test is done after both halves. BiCGSTAB
// fails with ErrBreakdown when r~·r, r~·v or ω vanishes.
//
// BiCGSTAB needs MatVec and PSolve matrix operations.
type BiCGSTAB struct {
	first  bool
	resume int

	rho, rhoPrev float64
	alpha, omega float64

	r, rt   []float64 // Residual and fixed shadow residual.
	p, phat []float64
	v       []float64
	s, shat []float64
	t       []float64
}

// Init implements the Method interface.
func (b *BiCGSTAB) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	b.r = reuse(b.r, dim)
	b.rt = reuse(b.rt, dim)
	b.p = reuse(b.p, dim)
	b.phat = reuse(b.phat, dim)
	b.v = reuse(b.v, dim)
	b.s = reuse(b.s, dim)
	b.shat = reuse(b.shat, dim)
	b.t = reuse(b.t, dim)

	b.first = true
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *BiCGSTAB) Iterate(ctx *Context) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			copy(b.r, ctx.Residual)
			copy(b.rt, ctx.Residual)
		}
		b.rho = floats.Dot(b.rt, b.r) // ρ_i = r~ · r_{i-1}
		if negligible(b.rho) {
			b.resume = 0
			return NoOperation, breakdown("r~·r")
		}
		if b.first {
			copy(b.p, b.r)
		} else {
			if negligible(b.omega) {
				b.resume = 0
				return NoOperation, breakdown("omega")
			}
			beta := (b.rho / b.rhoPrev) * (b.alpha / b.omega)
			floats.AddScaled(b.p, -b.omega, b.v)    // p -= ω v
			floats.AddScaledTo(b.p, b.r, beta, b.p) // p_i = r_{i-1} + β p
		}
		ctx.Src = b.p
		ctx.Dst = b.phat
		b.resume = 2
		return PSolve, nil
		// Solve M p^ = p_i.
	case 2:
		ctx.Src = b.phat
		ctx.Dst = b.v
		b.resume = 3
		return MatVec, nil
		// Compute v_i = A p^.
	case 3:
		rtv := floats.Dot(b.rt, b.v)
		if negligible(rtv) {
			b.resume = 0
			return NoOperation, breakdown("r~·v")
		}
		b.alpha = b.rho / rtv
		floats.AddScaled(ctx.X, b.alpha, b.phat)    // x_{i-1/2} = x_{i-1} + α p^
		floats.AddScaledTo(b.s, b.r, -b.alpha, b.v) // s = r_{i-1} - α v_i

		// The half step may already be accurate enough.
		copy(ctx.Residual, b.s)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = floats.Norm(b.s, 2)
		ctx.Converged = false
		b.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			b.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		ctx.Src = b.s
		ctx.Dst = b.shat
		b.resume = 5
		return PSolve, nil
		// Solve M s^ = s.
	case 5:
		ctx.Src = b.shat
		ctx.Dst = b.t
		b.resume = 6
		return MatVec, nil
		// Compute t = A s^.
	case 6:
		// t = A s^ vanishes only when s does, and then the half step
		// has converged.
		b.omega = 0
		if tt := floats.Dot(b.t, b.t); tt != 0 {
			b.omega = floats.Dot(b.t, b.s) / tt
		}
		floats.AddScaled(ctx.X, b.omega, b.shat)    // x_i = x_{i-1/2} + ω s^
		floats.AddScaledTo(b.r, b.s, -b.omega, b.t) // r_i = s - ω t

		copy(ctx.Residual, b.r)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = floats.Norm(b.r, 2)
		ctx.Converged = false
		b.resume = 7
		return CheckResidualNorm, nil
	case 7:
		if ctx.Converged {
			b.resume = 0
			return EndIteration, nil
		}
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil

	default:
		panic("iterative: BiCGSTAB.Init not called")
	}
}
