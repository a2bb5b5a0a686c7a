// Package mesh provides structured tensor product meshes of lines,
// quadrilaterals and hexahedra, the multilinear cell mapping and a DOF
// handler numbering Lagrange nodes over them.
package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/utils"
)

// Triangulation is a structured mesh of [lower,upper] built from one sorted
// list of vertex coordinates per direction. Cells and vertices are numbered
// lexicographically with x fastest, and the vertices of each cell are listed
// in the same order.
type Triangulation struct {
	dim         int
	Coordinates [][]float64 // Vertex coordinates per direction
	Vertices    []geometry.Point
	EToV        [][]int // Element to vertex connectivity [nelems][2^dim]
	EToE        [][]int // Element to element connectivity [nelems][2*dim], -1 on the boundary
	NumElements int
	NumVertices int

	cellVertices [][]geometry.Point
}

// NewTensorMesh builds a mesh from strictly increasing vertex coordinates in
// each direction.
func NewTensorMesh(coords [][]float64) (tr *Triangulation, err error) {
	var (
		dim = len(coords)
	)
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("mesh dimension %d not in 1..3", dim)
	}
	tr = &Triangulation{
		dim:         dim,
		Coordinates: make([][]float64, dim),
		NumElements: 1,
		NumVertices: 1,
	}
	for d, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("direction %d needs at least two vertices, have %d", d, len(c))
		}
		for i := 1; i < len(c); i++ {
			if !(c[i] > c[i-1]) {
				return nil, fmt.Errorf("vertex coordinates in direction %d are not increasing at %d", d, i)
			}
		}
		tr.Coordinates[d] = append([]float64{}, c...)
		tr.NumElements *= len(c) - 1
		tr.NumVertices *= len(c)
	}
	tr.buildVertices()
	tr.buildCells()
	tr.BuildConnectivity()
	return
}

// NewHyperRectangle subdivides [lower,upper] uniformly.
func NewHyperRectangle(dim int, subdivisions []int, lower, upper geometry.Point) (tr *Triangulation, err error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("mesh dimension %d not in 1..3", dim)
	}
	if len(subdivisions) != dim || lower.Dim() != dim || upper.Dim() != dim {
		return nil, fmt.Errorf("need %d subdivisions and corners, have %d, %d and %d",
			dim, len(subdivisions), lower.Dim(), upper.Dim())
	}
	coords := make([][]float64, dim)
	for d := 0; d < dim; d++ {
		n := subdivisions[d]
		if n < 1 {
			return nil, fmt.Errorf("subdivisions in direction %d must be positive, have %d", d, n)
		}
		if !(upper[d] > lower[d]) {
			return nil, fmt.Errorf("upper corner %v must exceed lower corner %v", upper, lower)
		}
		coords[d] = make([]float64, n+1)
		for i := 0; i <= n; i++ {
			coords[d][i] = lower[d] + (upper[d]-lower[d])*float64(i)/float64(n)
		}
		coords[d][n] = upper[d]
	}
	return NewTensorMesh(coords)
}

func NewLineMesh(vx []float64) (*Triangulation, error) {
	return NewTensorMesh([][]float64{vx})
}

// SimpleMesh1D splits [xmin,xmax] into K equal elements.
func SimpleMesh1D(xmin, xmax float64, K int) (tr *Triangulation) {
	var err error
	if tr, err = NewHyperRectangle(1, []int{K}, geometry.NewPoint(xmin), geometry.NewPoint(xmax)); err != nil {
		panic(err)
	}
	return
}

func (tr *Triangulation) Dim() int { return tr.dim }

// Subdivisions returns the number of cells in each direction.
func (tr *Triangulation) Subdivisions() (n []int) {
	n = make([]int, tr.dim)
	for d := range n {
		n[d] = len(tr.Coordinates[d]) - 1
	}
	return
}

// CellVertices returns the cell's vertices. The slice is shared and must not
// be modified.
func (tr *Triangulation) CellVertices(k int) []geometry.Point { return tr.cellVertices[k] }

// CellIndex returns the lattice position of cell k.
func (tr *Triangulation) CellIndex(k int) (idx [3]int) {
	for d := 0; d < tr.dim; d++ {
		n := len(tr.Coordinates[d]) - 1
		idx[d] = k % n
		k /= n
	}
	return
}

// CellDiameter is the length of the cell's diagonal.
func (tr *Triangulation) CellDiameter(k int) float64 {
	var (
		verts = tr.cellVertices[k]
	)
	return verts[0].Distance(verts[len(verts)-1])
}

func (tr *Triangulation) MaxCellDiameter() (h float64) {
	for k := 0; k < tr.NumElements; k++ {
		h = math.Max(h, tr.CellDiameter(k))
	}
	return
}

// Locate finds the cell containing p and the unit cell coordinates of p in
// it. Points on a shared face go to the upper cell.
func (tr *Triangulation) Locate(p geometry.Point) (k int, unit geometry.Point, ok bool) {
	var (
		stride = 1
	)
	unit = make(geometry.Point, tr.dim)
	for d := 0; d < tr.dim; d++ {
		c := tr.Coordinates[d]
		n := len(c) - 1
		if p[d] < c[0]-utils.NODETOL || p[d] > c[n]+utils.NODETOL {
			return -1, nil, false
		}
		i := sort.SearchFloat64s(c, p[d])
		if i >= len(c) || c[i] != p[d] {
			i--
		}
		i = max(0, min(i, n-1))
		unit[d] = (p[d] - c[i]) / (c[i+1] - c[i])
		k += i * stride
		stride *= n
	}
	return k, unit, true
}

// RefineGlobal returns a new mesh with every cell split in two in each direction.
func (tr *Triangulation) RefineGlobal() (fine *Triangulation) {
	coords := make([][]float64, tr.dim)
	for d, c := range tr.Coordinates {
		coords[d] = make([]float64, 0, 2*len(c)-1)
		for i := 0; i < len(c)-1; i++ {
			coords[d] = append(coords[d], c[i], 0.5*(c[i]+c[i+1]))
		}
		coords[d] = append(coords[d], c[len(c)-1])
	}
	var err error
	if fine, err = NewTensorMesh(coords); err != nil {
		panic(err)
	}
	return
}

func (tr *Triangulation) buildVertices() {
	tr.Vertices = geometry.NewPoints(tr.NumVertices, tr.dim)
	for v := range tr.Vertices {
		iv := v
		for d := 0; d < tr.dim; d++ {
			n := len(tr.Coordinates[d])
			tr.Vertices[v][d] = tr.Coordinates[d][iv%n]
			iv /= n
		}
	}
}

func (tr *Triangulation) buildCells() {
	var (
		nv      = 1 << tr.dim
		strides [3]int
	)
	strides[0] = 1
	for d := 1; d < tr.dim; d++ {
		strides[d] = strides[d-1] * len(tr.Coordinates[d-1])
	}
	tr.EToV = make([][]int, tr.NumElements)
	tr.cellVertices = make([][]geometry.Point, tr.NumElements)
	for k := 0; k < tr.NumElements; k++ {
		idx := tr.CellIndex(k)
		tr.EToV[k] = make([]int, nv)
		tr.cellVertices[k] = make([]geometry.Point, nv)
		for lv := 0; lv < nv; lv++ {
			var gv int
			for d := 0; d < tr.dim; d++ {
				gv += (idx[d] + (lv>>d)&1) * strides[d]
			}
			tr.EToV[k][lv] = gv
			tr.cellVertices[k][lv] = tr.Vertices[gv]
		}
	}
}

// BuildConnectivity finds face neighbours from the cell to vertex incidence
// matrix C: two cells share a face when (C Cᵀ)(i,j) = 2^(dim-1). Local face
// 2d is the lower face in direction d and 2d+1 the upper one.
func (tr *Triangulation) BuildConnectivity() {
	var (
		faceVerts = 1 << (tr.dim - 1)
	)
	SpEToV_Tmp := sparse.NewDOK(tr.NumElements, tr.NumVertices)
	for k, verts := range tr.EToV {
		for _, v := range verts {
			SpEToV_Tmp.Set(k, v, 1)
		}
	}
	SpEToV := SpEToV_Tmp.ToCSR()
	SpEToE := sparse.NewCSR(tr.NumElements, tr.NumElements, nil, nil, nil)
	SpEToE.Mul(SpEToV, SpEToV.T())

	tr.EToE = make([][]int, tr.NumElements)
	for k := range tr.EToE {
		tr.EToE[k] = make([]int, 2*tr.dim)
		for f := range tr.EToE[k] {
			tr.EToE[k][f] = -1
		}
	}
	SpEToE.DoNonZero(func(i, j int, v float64) {
		if i == j || int(v) != faceVerts {
			return
		}
		ii, jj := tr.CellIndex(i), tr.CellIndex(j)
		for d := 0; d < tr.dim; d++ {
			switch jj[d] - ii[d] {
			case -1:
				tr.EToE[i][2*d] = j
			case 1:
				tr.EToE[i][2*d+1] = j
			}
		}
	})
}

// BoundaryFaces lists (cell, local face) pairs on the boundary of the domain.
func (tr *Triangulation) BoundaryFaces() (faces [][2]int) {
	for k, nbrs := range tr.EToE {
		for f, nbr := range nbrs {
			if nbr == -1 {
				faces = append(faces, [2]int{k, f})
			}
		}
	}
	sort.Slice(faces, func(i, j int) bool {
		if faces[i][0] != faces[j][0] {
			return faces[i][0] < faces[j][0]
		}
		return faces[i][1] < faces[j][1]
	})
	return
}

func (tr *Triangulation) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Dimension: %d\n", tr.dim)
	fmt.Printf("  Subdivisions: %v\n", tr.Subdivisions())
	fmt.Printf("  Vertices: %d\n", tr.NumVertices)
	fmt.Printf("  Elements: %d\n", tr.NumElements)
	fmt.Printf("  Boundary faces: %d\n", len(tr.BoundaryFaces()))
	fmt.Printf("  Max cell diameter: %8.5f\n", tr.MaxCellDiameter())
}
