package fe

import (
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/utils"
)

// MakeSparsityPattern adds every pair of DoFs sharing a cell to sp.
func MakeSparsityPattern(dof DoFHandler, sp *utils.SparsityPattern) {
	var (
		dofs []int
	)
	for k := 0; k < dof.NActiveCells(); k++ {
		dofs = dof.CellDoFIndices(k, dofs)
		for _, i := range dofs {
			for _, j := range dofs {
				sp.Add(i, j)
			}
		}
	}
}

// MapDoFsToSupportPoints returns the real space support point of every DoF.
func MapDoFsToSupportPoints(dof DoFHandler, boundary Boundary) (pts []geometry.Point) {
	var (
		element = dof.FE()
		unit    = element.UnitSupportPoints()
		dofs    []int
	)
	if len(unit) == 0 {
		panic("element " + element.Name() + " has no support points")
	}
	pts = make([]geometry.Point, dof.NDoFs())
	for k := 0; k < dof.NActiveCells(); k++ {
		vertices := dof.CellVertices(k)
		dofs = dof.CellDoFIndices(k, dofs)
		for i, gi := range dofs {
			pts[gi] = boundary.MapUnitToReal(vertices, unit[i])
		}
	}
	return
}

// CellDoFs returns a closure listing the DoFs of a cell, for the cell graph
// and coloring helpers in utils. The returned slice is reused between calls.
func CellDoFs(dof DoFHandler) func(k int) []int {
	var (
		dofs []int
	)
	return func(k int) []int {
		dofs = dof.CellDoFIndices(k, dofs)
		return dofs
	}
}
