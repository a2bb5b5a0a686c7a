package vectortools

import (
	"fmt"
	"math"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/types"
	"github.com/notargets/femtools/utils"
	"gonum.org/v1/gonum/floats"
)

// IntegrateDifference returns, for every active cell, the norm of
// d = exact - field. Mean and L1 integrate d and |d|, L2 is the root of the
// integral of d², Linfty is the largest |d| at a quadrature point, the H1
// seminorm integrates |∇d|² and the H1 norm combines the L2 and seminorm
// integrals under one root.
//
// The element must be the DoF handler's, the field must have one entry per
// DoF and the gradient norms need an exact function with gradients;
// violations panic.
func IntegrateDifference(dof fe.DoFHandler, field *fe.NodalField, exact fe.Function,
	q quadrature.Quadrature, element fe.FiniteElement, norm types.NormType,
	boundary fe.Boundary, opts ...Option) (difference []float64, err error) {
	var (
		o      = newOptions(opts)
		nCells = dof.NActiveCells()
		flags  = fe.UpdateValues | fe.UpdateQuadraturePoints | fe.UpdateJxW
		gexact fe.GradientFunction
	)
	if !fe.SameElement(element, dof.FE()) {
		panic(fmt.Errorf("element %s is not the DoF handler's element %s", element.Name(), dof.FE().Name()))
	}
	field.CheckSize(dof)
	if !norm.IsValid() {
		panic(fmt.Errorf("unknown norm type %v", norm))
	}
	if norm.NeedsGradients() {
		var ok bool
		if gexact, ok = exact.(fe.GradientFunction); !ok {
			panic(fmt.Errorf("%v needs the gradient of the exact function", norm))
		}
		flags |= fe.UpdateGradients
	}

	parts, err := o.Partitioner.PartitionCells(nCells, dof.NDoFs(), o.Workers, fe.CellDoFs(dof))
	if err != nil {
		return nil, fmt.Errorf("partitioning cells: %w", err)
	}
	if err = utils.CheckPartition(nCells, parts); err != nil {
		return nil, err
	}

	difference = make([]float64, nCells)
	err = utils.RunParallel(parts, func(bn int, cells []int) (err error) {
		ev := newCellEvaluator(element, q, flags, field, exact, gexact)
		for _, k := range cells {
			if err = ev.fev.Reinit(dof, k, boundary); err != nil {
				return
			}
			if difference[k], err = ev.cellNorm(norm); err != nil {
				return fmt.Errorf("cell %d: %w", k, err)
			}
		}
		return
	})
	if err != nil {
		return nil, err
	}
	return
}

// cellEvaluator carries one worker's evaluation context and buffers.
type cellEvaluator struct {
	fev    *fe.FEValues
	field  *fe.NodalField
	exact  fe.Function
	gexact fe.GradientFunction
	psi    []float64
	fvals  []float64
	gpsi   []geometry.Point
	fgrads []geometry.Point
}

func newCellEvaluator(element fe.FiniteElement, q quadrature.Quadrature, flags fe.UpdateFlags,
	field *fe.NodalField, exact fe.Function, gexact fe.GradientFunction) (ev *cellEvaluator) {
	var (
		nq = q.NQuadraturePoints()
	)
	ev = &cellEvaluator{
		fev:    fe.NewFEValues(element, q, flags),
		field:  field,
		exact:  exact,
		gexact: gexact,
		psi:    make([]float64, nq),
	}
	if gexact != nil {
		ev.gpsi = geometry.NewPoints(nq, element.Dim())
	}
	return
}

// cellNorm evaluates one cell. The H1 norm passes its rooted L2 value on to
// the seminorm stage, which the H1 seminorm enters with zero.
func (ev *cellEvaluator) cellNorm(norm types.NormType) (diff float64, err error) {
	switch norm {
	case types.Mean, types.L1Norm, types.L2Norm, types.LinftyNorm, types.H1Norm:
		if diff, err = ev.valueStage(norm); err != nil || norm != types.H1Norm {
			return
		}
		fallthrough
	case types.H1Seminorm:
		diff, err = ev.seminormStage(diff)
	default:
		panic(fmt.Errorf("unknown norm type %v", norm))
	}
	return
}

func (ev *cellEvaluator) valueStage(norm types.NormType) (diff float64, err error) {
	var (
		jxw = ev.fev.JxW()
	)
	if err = ev.exact.ValueList(ev.fev.QuadraturePoints(), ev.psi); err != nil {
		return
	}
	ev.fvals = ev.fev.FunctionValues(ev.field, ev.fvals)
	floats.Sub(ev.psi, ev.fvals)
	switch norm {
	case types.Mean:
		diff = floats.Dot(ev.psi, jxw)
	case types.L1Norm:
		absInPlace(ev.psi)
		diff = floats.Dot(ev.psi, jxw)
	case types.L2Norm, types.H1Norm:
		floats.Mul(ev.psi, ev.psi)
		diff = math.Sqrt(floats.Dot(ev.psi, jxw))
	case types.LinftyNorm:
		absInPlace(ev.psi)
		diff = floats.Max(ev.psi)
	}
	return
}

func (ev *cellEvaluator) seminormStage(l2 float64) (diff float64, err error) {
	var (
		jxw = ev.fev.JxW()
	)
	diff = l2 * l2
	if err = ev.gexact.GradientList(ev.fev.QuadraturePoints(), ev.gpsi); err != nil {
		return
	}
	ev.fgrads = ev.fev.FunctionGrads(ev.field, ev.fgrads)
	for iq, g := range ev.gpsi {
		diff += g.Sub(ev.fgrads[iq]).Square() * jxw[iq]
	}
	diff = math.Sqrt(diff)
	return
}

func absInPlace(x []float64) {
	for i, v := range x {
		x[i] = math.Abs(v)
	}
}

// GlobalError reduces a per cell difference vector to one number: the sum
// for mean and L1, the root of the sum of squares for L2 and the H1 kinds and
// the maximum for Linfty.
func GlobalError(difference []float64, norm types.NormType) float64 {
	switch norm {
	case types.Mean, types.L1Norm:
		return floats.Sum(difference)
	case types.L2Norm, types.H1Seminorm, types.H1Norm:
		return floats.Norm(difference, 2)
	case types.LinftyNorm:
		if len(difference) == 0 {
			return 0
		}
		return floats.Max(difference)
	}
	panic(fmt.Errorf("unknown norm type %v", norm))
}
