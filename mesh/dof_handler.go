package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/utils"
)

// LatticeElement is a nodal element whose local DoFs sit on a tensor lattice
// of Degree()+1 nodes per direction.
type LatticeElement interface {
	fe.FiniteElement
	NodeIndex(i int) [3]int
}

// DoFHandler numbers the DoFs of a LatticeElement over a Triangulation.
// Continuous numbering follows the global node lattice of n*p+1 nodes per
// direction, x fastest. Discontinuous numbering gives every cell its own
// contiguous block of DoFs.
type DoFHandler struct {
	tria          *Triangulation
	element       LatticeElement
	discontinuous bool
	nDoFs         int
	lattice       [3]int
	cellDoFs      [][]int
}

func NewDoFHandler(tria *Triangulation, element LatticeElement, discontinuous bool) (dh *DoFHandler) {
	if element.Dim() != tria.Dim() {
		panic(fmt.Errorf("element %s does not match mesh dimension %d", element.Name(), tria.Dim()))
	}
	dh = &DoFHandler{
		tria:          tria,
		element:       element,
		discontinuous: discontinuous,
		cellDoFs:      make([][]int, tria.NumElements),
	}
	if discontinuous {
		dh.distributeDiscontinuous()
	} else {
		dh.distributeContinuous()
	}
	return
}

func (dh *DoFHandler) distributeDiscontinuous() {
	var (
		Np   = dh.element.DoFsPerCell()
		slab = make([]int, Np*dh.tria.NumElements)
	)
	for k := range dh.cellDoFs {
		dh.cellDoFs[k] = slab[k*Np : (k+1)*Np]
		for i := range dh.cellDoFs[k] {
			dh.cellDoFs[k][i] = k*Np + i
		}
	}
	dh.nDoFs = len(slab)
}

func (dh *DoFHandler) distributeContinuous() {
	var (
		p    = dh.element.Degree()
		Np   = dh.element.DoFsPerCell()
		dim  = dh.tria.Dim()
		slab = make([]int, Np*dh.tria.NumElements)
		sub  = dh.tria.Subdivisions()
	)
	dh.nDoFs = 1
	dh.lattice = [3]int{1, 1, 1}
	for d := 0; d < dim; d++ {
		dh.lattice[d] = sub[d]*p + 1
		dh.nDoFs *= dh.lattice[d]
	}
	for k := range dh.cellDoFs {
		var (
			cell = dh.tria.CellIndex(k)
		)
		dh.cellDoFs[k] = slab[k*Np : (k+1)*Np]
		for i := range dh.cellDoFs[k] {
			var (
				local = dh.element.NodeIndex(i)
				node  [3]int
			)
			for d := 0; d < dim; d++ {
				node[d] = cell[d]*p + local[d]
			}
			dh.cellDoFs[k][i] = dh.latticeIndex(node)
		}
	}
}

func (dh *DoFHandler) latticeIndex(node [3]int) int {
	return node[0] + dh.lattice[0]*(node[1]+dh.lattice[1]*node[2])
}

func (dh *DoFHandler) FE() fe.FiniteElement                { return dh.element }
func (dh *DoFHandler) Dim() int                            { return dh.tria.Dim() }
func (dh *DoFHandler) NActiveCells() int                   { return dh.tria.NumElements }
func (dh *DoFHandler) NDoFs() int                          { return dh.nDoFs }
func (dh *DoFHandler) IsDiscontinuous() bool               { return dh.discontinuous }
func (dh *DoFHandler) Triangulation() *Triangulation       { return dh.tria }
func (dh *DoFHandler) CellVertices(k int) []geometry.Point { return dh.tria.CellVertices(k) }

// MaxCouplingsBetweenDoFs bounds the row length of the DoF coupling pattern.
func (dh *DoFHandler) MaxCouplingsBetweenDoFs() int {
	if dh.discontinuous {
		return dh.element.DoFsPerCell()
	}
	return utils.IPOW(2*dh.element.Degree()+1, dh.tria.Dim())
}

func (dh *DoFHandler) CellDoFIndices(k int, dst []int) []int {
	return append(dst[:0], dh.cellDoFs[k]...)
}

// SupportPoints returns the real space position of every DoF.
func (dh *DoFHandler) SupportPoints(boundary fe.Boundary) []geometry.Point {
	return fe.MapDoFsToSupportPoints(dh, boundary)
}

// BoundaryDoFs returns the sorted DoFs lying on boundary faces of the mesh.
func (dh *DoFHandler) BoundaryDoFs() (dofs []int) {
	var (
		p    = dh.element.Degree()
		seen = make(map[int]bool)
	)
	for _, face := range dh.tria.BoundaryFaces() {
		var (
			k, f = face[0], face[1]
			d    = f / 2
			side = 0
		)
		if f%2 == 1 {
			side = p
		}
		for i, gi := range dh.cellDoFs[k] {
			if dh.element.NodeIndex(i)[d] == side && !seen[gi] {
				seen[gi] = true
				dofs = append(dofs, gi)
			}
		}
	}
	sort.Ints(dofs)
	return
}

// PeriodicDoFPairs matches every DoF on the upper face in direction d with
// its image on the lower face, as (upper, lower) pairs. Only continuous
// numbering can be made periodic this way.
func (dh *DoFHandler) PeriodicDoFPairs(d int) (pairs [][2]int) {
	if dh.discontinuous {
		panic("periodic DoF pairs need a continuous DoF numbering")
	}
	if d < 0 || d >= dh.tria.Dim() {
		panic(fmt.Errorf("direction %d outside of dimension %d", d, dh.tria.Dim()))
	}
	var (
		last = dh.lattice[d] - 1
		node [3]int
	)
	for node[2] = 0; node[2] < dh.lattice[2]; node[2]++ {
		for node[1] = 0; node[1] < dh.lattice[1]; node[1]++ {
			for node[0] = 0; node[0] < dh.lattice[0]; node[0]++ {
				if node[d] != last {
					continue
				}
				image := node
				image[d] = 0
				pairs = append(pairs, [2]int{dh.latticeIndex(node), dh.latticeIndex(image)})
			}
		}
	}
	return
}
