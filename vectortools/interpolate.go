package vectortools

import (
	"fmt"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
)

// Interpolate sets every coefficient of vec to the value of f at the DoF's
// support point. DoFs shared between cells are written once per cell with
// the same value. The element must be nodal.
func Interpolate(dof fe.DoFHandler, boundary fe.Boundary, f fe.Function, vec *fe.NodalField) (err error) {
	var (
		element = dof.FE()
		unit    = element.UnitSupportPoints()
		points  = geometry.NewPoints(len(unit), dof.Dim())
		values  = make([]float64, len(unit))
		dofs    []int
	)
	if len(unit) == 0 {
		panic(fmt.Errorf("element %s has no support points to interpolate at", element.Name()))
	}
	vec.Reinit(dof.NDoFs())
	for k := 0; k < dof.NActiveCells(); k++ {
		vertices := dof.CellVertices(k)
		for i, p := range unit {
			copy(points[i], boundary.MapUnitToReal(vertices, p))
		}
		if err = f.ValueList(points, values); err != nil {
			return fmt.Errorf("interpolation on cell %d: %w", k, err)
		}
		dofs = dof.CellDoFIndices(k, dofs)
		for i, gi := range dofs {
			vec.Set(gi, values[i])
		}
	}
	return
}
