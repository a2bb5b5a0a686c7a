package solver

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/vladimir-ch/iterative"
	"gonum.org/v1/gonum/floats"
)

// Operator is a square linear operator applied as dst = A*src.
type Operator interface {
	Dims() (r, c int)
	VMult(dst, src []float64)
}

// Preconditioner applies an approximate inverse, dst = P⁻¹ src.
type Preconditioner interface {
	VMult(dst, src []float64)
}

type PreconditionIdentity struct{}

func (PreconditionIdentity) VMult(dst, src []float64) { copy(dst, src) }

// PreconditionJacobi scales by the inverse of the operator's diagonal.
type PreconditionJacobi struct {
	invDiag []float64
}

func NewPreconditionJacobi(A interface{ Diagonal() []float64 }) (p *PreconditionJacobi) {
	p = &PreconditionJacobi{invDiag: A.Diagonal()}
	for i, d := range p.invDiag {
		if d == 0 {
			p.invDiag[i] = 1
		} else {
			p.invDiag[i] = 1 / d
		}
	}
	return
}

func (p *PreconditionJacobi) VMult(dst, src []float64) {
	floats.MulTo(dst, p.invDiag, src)
}

// CG is the preconditioned conjugate gradient method. A nil Preconditioner
// means the identity.
type CG struct {
	Control        SolverControl
	Preconditioner Preconditioner
}

func NewCG(control SolverControl) *CG {
	return &CG{Control: control}
}

// Solve iterates on x, which holds the starting guess on entry. Tolerance is
// an absolute bound on the residual norm; it is handed to the iterative
// package relative to the initial residual. The solve fails with a
// *NoConvergenceError when MaxIterations steps do not bring the residual
// norm to Tolerance, and with an error wrapping ErrBreakdown when a search
// direction has non positive curvature. x is left unchanged on failure.
func (cg *CG) Solve(A Operator, x, b []float64) (res Result, err error) {
	var (
		n, nc = A.Dims()
		prec  = cg.Preconditioner
		ctrl  = cg.Control
	)
	if n != nc || len(x) != n || len(b) != n {
		panic(fmt.Errorf("dimension mismatch: %dx%d operator, len(x) = %d, len(b) = %d", n, nc, len(x), len(b)))
	}
	if prec == nil {
		prec = PreconditionIdentity{}
	}
	// The correction d solving A d = r0 starts from zero
	r0 := make([]float64, n)
	A.VMult(r0, x)
	floats.SubTo(r0, b, r0)
	res.Residual = floats.Norm(r0, 2)
	cg.logStep(0, res.Residual)
	if res.Residual <= ctrl.Tolerance {
		return
	}
	var (
		mv = &curvatureMonitor{A: A}
		ps = &historyPreconditioner{cg: cg, prec: prec, last: res.Residual}
	)
	settings := iterative.Settings{
		Tolerance:     relativeTolerance(ctrl.Tolerance, res.Residual),
		MaxIterations: ctrl.MaxIterations,
		PreconSolve:   ps.solve,
	}
	var bd *breakdown
	func() {
		defer func() {
			if r := recover(); r != nil {
				var ok bool
				if bd, ok = r.(*breakdown); !ok {
					panic(r)
				}
			}
		}()
		ires, lerr := iterative.LinearSolve(iterative.MatrixOps{MatVec: mv.matVec}, r0, &iterative.CG{}, settings)
		if err = lerr; err == nil {
			floats.Add(x, ires.X)
			res.Iterations = ires.Stats.Iterations
		}
	}()
	switch {
	case bd != nil:
		res.Iterations = bd.step
		return res, fmt.Errorf("%w: pᵀAp = %g at iteration %d", ErrBreakdown, bd.curvature, bd.step)
	case errors.Is(err, iterative.ErrIterationLimit):
		return res, &NoConvergenceError{
			Iterations: ctrl.MaxIterations,
			Residual:   ps.last,
			Tolerance:  ctrl.Tolerance,
		}
	case err != nil:
		return res, fmt.Errorf("conjugate gradient: %w", err)
	}
	A.VMult(r0, x)
	floats.SubTo(r0, b, r0)
	res.Residual = floats.Norm(r0, 2)
	cg.logStep(res.Iterations, res.Residual)
	// The relative bound is clamped at machine precision
	if res.Residual > ctrl.Tolerance {
		return res, &NoConvergenceError{
			Iterations: res.Iterations,
			Residual:   res.Residual,
			Tolerance:  ctrl.Tolerance,
		}
	}
	return
}

// relativeTolerance turns an absolute residual bound into one relative to the
// norm of the right hand side, inside the range the iterative package accepts.
func relativeTolerance(abs, rhsNorm float64) (rel float64) {
	const eps = 0x1p-52
	if rel = abs / rhsNorm; rel < eps {
		rel = eps
	}
	return
}

type breakdown struct {
	step      int
	curvature float64
}

// curvatureMonitor applies A for the iterative package and stops the solve on
// the first search direction p with pᵀAp <= 0.
type curvatureMonitor struct {
	A     Operator
	steps int
}

func (m *curvatureMonitor) matVec(dst, src []float64) {
	m.A.VMult(dst, src)
	if floats.Norm(src, math.Inf(1)) == 0 {
		return
	}
	if pAp := floats.Dot(src, dst); !(pAp > 0) {
		panic(&breakdown{step: m.steps, curvature: pAp})
	}
	m.steps++
}

// historyPreconditioner hands the preconditioner to the iterative package and
// logs the norm of each residual it is applied to.
type historyPreconditioner struct {
	cg    *CG
	prec  Preconditioner
	calls int
	last  float64
}

func (h *historyPreconditioner) solve(dst, rhs []float64, trans bool) error {
	h.last = floats.Norm(rhs, 2)
	if h.calls > 0 {
		h.cg.logStep(h.calls, h.last)
	}
	h.calls++
	h.prec.VMult(dst, rhs)
	return nil
}

func (cg *CG) logStep(iter int, residual float64) {
	if !cg.Control.LogHistory {
		return
	}
	freq := cg.Control.LogFrequency
	if freq < 1 {
		freq = 1
	}
	if iter%freq == 0 {
		log.Printf("cg step %d value %g", iter, residual)
	}
}
