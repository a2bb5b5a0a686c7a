// Package solver provides the preconditioned conjugate gradient method for
// the symmetric positive definite systems built by projection.
package solver

import (
	"errors"
	"fmt"
)

var (
	ErrNoConvergence = errors.New("iterative solver did not converge")
	ErrBreakdown     = errors.New("iterative solver broke down")
)

// SolverControl bounds an iterative solve. Tolerance is an absolute bound on
// the l2 norm of the residual b - Ax.
type SolverControl struct {
	MaxIterations int
	Tolerance     float64
	LogHistory    bool
	LogFrequency  int
}

func DefaultSolverControl() SolverControl {
	return SolverControl{
		MaxIterations: 4000,
		Tolerance:     1.e-16,
		LogFrequency:  1,
	}
}

// NoConvergenceError reports the state of a solve that ran out of iterations.
type NoConvergenceError struct {
	Iterations int
	Residual   float64
	Tolerance  float64
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("%v: residual %g after %d iterations, tolerance %g",
		ErrNoConvergence, e.Residual, e.Iterations, e.Tolerance)
}

func (e *NoConvergenceError) Unwrap() error { return ErrNoConvergence }

// Result describes a converged solve.
type Result struct {
	Iterations int
	Residual   float64
}
