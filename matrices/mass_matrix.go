// Package matrices assembles global finite element matrices.
package matrices

import (
	"fmt"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/utils"
	"gonum.org/v1/gonum/mat"
)

// CreateMassMatrix adds M_ij = ∫ φ_i φ_j to m and, when rhs is not nil,
// b_i = ∫ φ_i f to b. Cells are colored so that no two cells of a color share
// a DoF; each color is assembled by up to workers goroutines writing straight
// into m and b.
func CreateMassMatrix(dof fe.DoFHandler, q quadrature.Quadrature, boundary fe.Boundary,
	m *utils.SparseMatrix, rhs fe.Function, b []float64, workers int) (err error) {
	var (
		element = dof.FE()
		nd      = element.DoFsPerCell()
		nDoFs   = dof.NDoFs()
		flags   = fe.UpdateValues | fe.UpdateJxW
	)
	if nr, nc := m.Dims(); nr != nDoFs || nc != nDoFs {
		panic(fmt.Errorf("mass matrix is %dx%d, have %d DoFs", nr, nc, nDoFs))
	}
	if rhs != nil {
		if len(b) != nDoFs {
			panic(fmt.Errorf("right hand side has length %d, have %d DoFs", len(b), nDoFs))
		}
		flags |= fe.UpdateQuadraturePoints
	}
	workers = utils.Workers(workers)
	type scratch struct {
		fev       *fe.FEValues
		cellM     *mat.Dense
		cellB     []float64
		rhsValues []float64
	}
	pool := make([]*scratch, workers)
	for n := range pool {
		pool[n] = &scratch{
			fev:       fe.NewFEValues(element, q, flags),
			cellM:     mat.NewDense(nd, nd, nil),
			cellB:     make([]float64, nd),
			rhsValues: make([]float64, q.NQuadraturePoints()),
		}
	}
	colors := utils.ColorCells(dof.NActiveCells(), nDoFs, fe.CellDoFs(dof))
	for _, color := range colors {
		var (
			pm    = utils.NewPartitionMap(workers, len(color))
			parts = pm.Buckets()
		)
		err = utils.RunParallel(parts, func(bn int, items []int) (err error) {
			s := pool[bn]
			for _, ic := range items {
				cell := color[ic]
				if err = s.fev.Reinit(dof, cell, boundary); err != nil {
					return
				}
				if rhs != nil {
					if err = rhs.ValueList(s.fev.QuadraturePoints(), s.rhsValues); err != nil {
						return fmt.Errorf("right hand side on cell %d: %w", cell, err)
					}
				}
				assembleCell(s.fev, s.cellM, s.cellB, s.rhsValues, rhs != nil)
				dofs := s.fev.DoFIndices()
				for i, gi := range dofs {
					for j, gj := range dofs {
						m.Add(gi, gj, s.cellM.At(i, j))
					}
					if rhs != nil {
						b[gi] += s.cellB[i]
					}
				}
			}
			return
		})
		if err != nil {
			return
		}
	}
	return
}

func assembleCell(fev *fe.FEValues, cellM *mat.Dense, cellB, rhsValues []float64, withRHS bool) {
	var (
		nd  = fev.DoFsPerCell()
		jxw = fev.JxW()
	)
	cellM.Zero()
	for i := range cellB {
		cellB[i] = 0
	}
	for iq, w := range jxw {
		for i := 0; i < nd; i++ {
			phiI := fev.ShapeValue(i, iq) * w
			for j := 0; j < nd; j++ {
				cellM.Set(i, j, cellM.At(i, j)+phiI*fev.ShapeValue(j, iq))
			}
			if withRHS {
				cellB[i] += phiI * rhsValues[iq]
			}
		}
	}
}
