// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iterative provides iterative algorithms for solving linear systems
// and for computing a few eigenvalues of large matrices that are accessible
// only through matrix-vector products.
package iterative

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIterationLimit is returned by LinearSolve when the method did not
	// converge within Settings.MaxIterations iterations.
	ErrIterationLimit = errors.New("iterative: iteration limit reached")

	// ErrBreakdown is wrapped by the errors that methods return when a
	// quantity they divide by becomes zero.
	ErrBreakdown = errors.New("iterative: breakdown")

	// ErrNoConvergence is returned by Eigs when the requested eigenpairs
	// did not converge within EigsSettings.MaxRestarts restarts.
	ErrNoConvergence = errors.New("iterative: eigenvalues did not converge")
)

// Operation specifies the type of operation.
type Operation uint64

// Operations commanded by Method.Iterate.
const (
	NoOperation Operation = 0

	// Multiply A*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatVec Operation = 1 << (iota - 1)

	// Multiply A^T*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatTransVec

	// Do the preconditioner solve
	//  M z = r,
	// where r is stored in Context.Src,
	// and store the solution z in
	// Context.Dst.
	PSolve

	// Do the preconditioner solve
	//  M^T z = r,
	// where r is stored in Context.Src,
	// and store the solution z in
	// Context.Dst.
	PSolveTrans

	// Compute b - A*x where x is stored
	// in Context.X and store the result
	// into Context.Residual.
	ComputeResidual

	// Check convergence using the
	// current approximation in Context.X
	// and the residual in Context.ResidualNorm.
	// If convergence is detected,
	// Context.Converged will be set to
	// true before Method.Iterate is
	// called again.
	CheckResidualNorm

	// EndIteration indicates that Method
	// has finished what it considers to
	// be one iteration. It can be used
	// to update an iteration counter. If
	// Context.Converged is true, the
	// iterative process must be
	// terminated, and Method.Init must
	// be called before calling
	// Method.Iterate again.
	EndIteration
)

func (op Operation) String() string {
	switch op {
	case NoOperation:
		return "NoOperation"
	case MatVec:
		return "MatVec"
	case MatTransVec:
		return "MatTransVec"
	case PSolve:
		return "PSolve"
	case PSolveTrans:
		return "PSolveTrans"
	case ComputeResidual:
		return "ComputeResidual"
	case CheckResidualNorm:
		return "CheckResidualNorm"
	case EndIteration:
		return "EndIteration"
	}
	return "Operation(invalid)"
}

// Method is an iterative method that produces a sequence of vectors converging
// to the vector x satisfying a system of linear equations
//  A x = b,
// where A is non-singular dim×dim matrix, and x and b are vectors of dimension
// dim.
//
// Method uses a reverse-communication interface between the iterative algorithm
// and the caller. Method acts as a client that commands the caller to perform
// needed operations via Operation returned from Iterate methods. This provides
// independence of Method on representation of the matrix A, and enables
// automation of common operations like checking for convergence and maintaining
// statistics.
type Method interface {
	// Init initializes the method for solving an dim×dim linear system.
	Init(dim int)

	// Iterate retrieves data from Context, updates it, and returns the next
	// operation. The caller must perform the Operation using data in
	// Context, and depending on the state call Iterate again.
	Iterate(*Context) (Operation, error)
}

// Context mediates the communication between a Method and the caller. It must
// not be modified or accessed apart from the commanded Operations.
type Context struct {
	// X is the current approximate solution. On the first call to
	// Method.Iterate, X must contain the initial estimate. Method must
	// update X with the current estimate when it commands ComputeResidual
	// and EndIteration.
	X []float64
	// Residual is the current residual b-A*x. On the first call to
	// Method.Iterate, Residual must contain the initial residual.
	Residual []float64
	// ResidualNorm is (an estimate of) the norm of the current residual.
	// Method must update it when it commands CheckResidualNorm. It does
	// not have to be equal to the norm of Residual, some methods (e.g.,
	// GMRES) can estimate the residual norm without forming the residual
	// itself.
	ResidualNorm float64
	// Converged indicates to Method that the ResidualNorm satisfies the
	// stopping criterion as a result of CheckResidualNorm operation.
	// If a Method commands EndIteration with Converged true, the caller
	// must not call Method.Iterate again without calling Method.Init first.
	Converged bool

	// Src and Dst are the source and destination vectors for various
	// Operations.
	Src, Dst []float64
}

func reuse(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	v = v[:n]
	for i := range v {
		v[i] = 0
	}
	return v
}

const dlamchE = 1.0 / (1 << 53)

// breakdown returns the error reported when a method would divide by the
// vanishing quantity q.
func breakdown(q string) error {
	return fmt.Errorf("%w: %s is zero", ErrBreakdown, q)
}

// negligible reports whether x is too small to divide by.
func negligible(x float64) bool {
	return math.Abs(x) < dlamchE*dlamchE
}
