package vectortools

import (
	"github.com/notargets/femtools/constraints"
	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/matrices"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/solver"
	"github.com/notargets/femtools/utils"
)

// Project computes the L2 projection of f onto the constrained finite element
// space: it assembles the mass matrix and right hand side with q, condenses
// both with cm, solves with conjugate gradients and distributes the solution.
// A nil cm means no constraints; an open one panics. On error the content of
// vec is unspecified.
func Project(dof fe.DoFHandler, cm *constraints.ConstraintMatrix, q quadrature.Quadrature,
	boundary fe.Boundary, f fe.Function, vec *fe.NodalField, opts ...Option) (err error) {
	var (
		o     = newOptions(opts)
		nDoFs = dof.NDoFs()
	)
	if cm != nil && !cm.IsClosed() {
		panic("constraint matrix must be closed before projection")
	}
	vec.Reinit(nDoFs)

	sp := utils.NewSparsityPattern(nDoFs, nDoFs, dof.MaxCouplingsBetweenDoFs())
	fe.MakeSparsityPattern(dof, sp)
	if cm != nil {
		cm.CondensePattern(sp)
	}
	sp.Compress()

	var (
		mass = utils.NewSparseMatrix(sp)
		rhs  = make([]float64, nDoFs)
	)
	if err = matrices.CreateMassMatrix(dof, q, boundary, mass, f, rhs, o.Workers); err != nil {
		return
	}
	if cm != nil {
		cm.Condense(mass)
		cm.CondenseVector(rhs)
	}

	cg := solver.NewCG(o.Control)
	if o.Jacobi {
		cg.Preconditioner = solver.NewPreconditionJacobi(mass)
	}
	res, err := cg.Solve(mass, vec.Data(), rhs)
	if o.Result != nil {
		*o.Result = res
	}
	if err != nil {
		return
	}
	if cm != nil {
		cm.Distribute(vec.Data())
	}
	return
}
