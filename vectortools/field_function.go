package vectortools

import (
	"fmt"
	"math"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/mesh"
)

// FieldFunction evaluates a nodal field anywhere in its mesh, so a discrete
// field can stand in for an analytic one. Cells are axis aligned, so the
// unit cell gradient is scaled per direction by the cell extent.
type FieldFunction struct {
	dof   *mesh.DoFHandler
	field *fe.NodalField
}

func NewFieldFunction(dof *mesh.DoFHandler, field *fe.NodalField) *FieldFunction {
	field.CheckSize(dof)
	return &FieldFunction{dof: dof, field: field}
}

func (ff *FieldFunction) locate(p geometry.Point) (dofs []int, unit geometry.Point, verts []geometry.Point, err error) {
	var (
		tria = ff.dof.Triangulation()
		k    int
		ok   bool
	)
	if k, unit, ok = tria.Locate(p); !ok {
		return nil, nil, nil, fmt.Errorf("point %v is outside of the mesh", p)
	}
	return ff.dof.CellDoFIndices(k, nil), unit, tria.CellVertices(k), nil
}

func (ff *FieldFunction) value(p geometry.Point) (v float64, err error) {
	dofs, unit, _, err := ff.locate(p)
	if err != nil {
		return
	}
	element := ff.dof.FE()
	for i, gi := range dofs {
		v += ff.field.At(gi) * element.ShapeValue(i, unit)
	}
	return
}

func (ff *FieldFunction) gradient(p geometry.Point) (g geometry.Point, err error) {
	dofs, unit, verts, err := ff.locate(p)
	if err != nil {
		return
	}
	var (
		element = ff.dof.FE()
		far     = verts[len(verts)-1]
	)
	g = make(geometry.Point, p.Dim())
	for i, gi := range dofs {
		gu := element.ShapeGrad(i, unit)
		for d := range g {
			g[d] += ff.field.At(gi) * gu[d] / (far[d] - verts[0][d])
		}
	}
	return
}

// Value returns NaN outside of the mesh.
func (ff *FieldFunction) Value(p geometry.Point) float64 {
	v, err := ff.value(p)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (ff *FieldFunction) Gradient(p geometry.Point) geometry.Point {
	g, err := ff.gradient(p)
	if err != nil {
		g = make(geometry.Point, p.Dim())
		for d := range g {
			g[d] = math.NaN()
		}
	}
	return g
}

func (ff *FieldFunction) ValueList(points []geometry.Point, values []float64) (err error) {
	for i, p := range points {
		if values[i], err = ff.value(p); err != nil {
			return
		}
	}
	return
}

func (ff *FieldFunction) GradientList(points []geometry.Point, grads []geometry.Point) (err error) {
	for i, p := range points {
		if grads[i], err = ff.gradient(p); err != nil {
			return
		}
	}
	return
}
