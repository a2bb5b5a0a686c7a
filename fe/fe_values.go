package fe

import (
	"errors"
	"fmt"

	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/quadrature"
	"gonum.org/v1/gonum/mat"
)

type UpdateFlags uint8

const (
	UpdateValues UpdateFlags = 1 << iota
	UpdateGradients
	UpdateQuadraturePoints
	UpdateJacobians
	UpdateJxW
)

var ErrDegenerateCell = errors.New("degenerate cell")

// FEValues is the per cell evaluation context: physical quadrature points,
// JxW weights and shape function values and gradients. Unit cell data is
// computed once in NewFEValues, cell data on every Reinit. One FEValues
// serves one goroutine.
type FEValues struct {
	element     FiniteElement
	q           quadrature.Quadrature
	flags       UpdateFlags
	shapeValues [][]float64        // [q][i]
	unitGrads   [][]geometry.Point // [q][i]
	shapeGrads  [][]geometry.Point // [q][i], physical
	qPoints     []geometry.Point
	jxw         []float64
	dofIndices  []int
	cell        int
	jinv        mat.Dense
}

func NewFEValues(element FiniteElement, q quadrature.Quadrature, flags UpdateFlags) (v *FEValues) {
	var (
		nq  = q.NQuadraturePoints()
		nd  = element.DoFsPerCell()
		dim = element.Dim()
	)
	if q.Dim() != dim {
		panic(fmt.Errorf("quadrature dimension %d does not match element %s", q.Dim(), element.Name()))
	}
	if flags&(UpdateGradients|UpdateJxW) != 0 {
		flags |= UpdateJacobians
	}
	v = &FEValues{
		element:     element,
		q:           q,
		flags:       flags,
		shapeValues: make([][]float64, nq),
		qPoints:     geometry.NewPoints(nq, dim),
		jxw:         make([]float64, nq),
		dofIndices:  make([]int, nd),
		cell:        -1,
	}
	for iq, p := range q.Points {
		v.shapeValues[iq] = make([]float64, nd)
		for i := 0; i < nd; i++ {
			v.shapeValues[iq][i] = element.ShapeValue(i, p)
		}
	}
	if flags&UpdateGradients != 0 {
		v.unitGrads = make([][]geometry.Point, nq)
		v.shapeGrads = make([][]geometry.Point, nq)
		for iq, p := range q.Points {
			v.unitGrads[iq] = make([]geometry.Point, nd)
			v.shapeGrads[iq] = geometry.NewPoints(nd, dim)
			for i := 0; i < nd; i++ {
				v.unitGrads[iq][i] = element.ShapeGrad(i, p)
			}
		}
	}
	return
}

// Reinit fills the context for one cell.
func (v *FEValues) Reinit(dof DoFHandler, cell int, boundary Boundary) (err error) {
	var (
		vertices = dof.CellVertices(cell)
		dim      = v.element.Dim()
	)
	v.cell = cell
	v.dofIndices = dof.CellDoFIndices(cell, v.dofIndices)
	for iq, p := range v.q.Points {
		if v.flags&UpdateQuadraturePoints != 0 {
			copy(v.qPoints[iq], boundary.MapUnitToReal(vertices, p))
		}
		if v.flags&UpdateJacobians == 0 {
			continue
		}
		J := boundary.Jacobian(vertices, p)
		det := mat.Det(J)
		if !(det > 0) {
			return fmt.Errorf("cell %d: det J = %g: %w", cell, det, ErrDegenerateCell)
		}
		v.jxw[iq] = det * v.q.Weights[iq]
		if v.flags&UpdateGradients == 0 {
			continue
		}
		if err = v.jinv.Inverse(J); err != nil {
			return fmt.Errorf("cell %d: %v: %w", cell, err, ErrDegenerateCell)
		}
		for i, gu := range v.unitGrads[iq] {
			g := v.shapeGrads[iq][i]
			for d := 0; d < dim; d++ {
				g[d] = 0
				for k := 0; k < dim; k++ {
					g[d] += v.jinv.At(k, d) * gu[k]
				}
			}
		}
	}
	return
}

func (v *FEValues) Cell() int                          { return v.cell }
func (v *FEValues) NQuadraturePoints() int             { return v.q.NQuadraturePoints() }
func (v *FEValues) DoFsPerCell() int                   { return v.element.DoFsPerCell() }
func (v *FEValues) QuadraturePoints() []geometry.Point { return v.qPoints }
func (v *FEValues) JxW() []float64                     { return v.jxw }
func (v *FEValues) DoFIndices() []int                  { return v.dofIndices }
func (v *FEValues) ShapeValue(i, q int) float64        { return v.shapeValues[q][i] }
func (v *FEValues) ShapeGrad(i, q int) geometry.Point  { return v.shapeGrads[q][i] }

// FunctionValues reconstructs the field at the quadrature points,
// psi(x_q) = sum_i u_i phi_i(x_q).
func (v *FEValues) FunctionValues(field *NodalField, dst []float64) []float64 {
	var (
		nq = v.NQuadraturePoints()
	)
	if cap(dst) < nq {
		dst = make([]float64, nq)
	}
	dst = dst[:nq]
	for iq := range dst {
		var s float64
		for i, gi := range v.dofIndices {
			s += field.At(gi) * v.shapeValues[iq][i]
		}
		dst[iq] = s
	}
	return dst
}

// FunctionGrads reconstructs the physical gradient of the field at the
// quadrature points. Requires UpdateGradients.
func (v *FEValues) FunctionGrads(field *NodalField, dst []geometry.Point) []geometry.Point {
	var (
		nq  = v.NQuadraturePoints()
		dim = v.element.Dim()
	)
	if v.flags&UpdateGradients == 0 {
		panic("FEValues built without UpdateGradients")
	}
	if len(dst) < nq {
		dst = geometry.NewPoints(nq, dim)
	}
	dst = dst[:nq]
	for iq := range dst {
		g := dst[iq]
		for d := range g {
			g[d] = 0
		}
		for i, gi := range v.dofIndices {
			u := field.At(gi)
			for d, sg := range v.shapeGrads[iq][i] {
				g[d] += u * sg
			}
		}
	}
	return dst
}
