// Package fe holds the capability contracts that the field operators consume:
// the element, the DOF numbering over a mesh, the geometric mapping and the
// analytic functions, together with the nodal field and the per cell
// evaluation context built on top of them.
package fe

import (
	"github.com/notargets/femtools/geometry"
	"gonum.org/v1/gonum/mat"
)

// FiniteElement describes the local basis on the unit cell [0,1]^dim.
type FiniteElement interface {
	Name() string
	Dim() int
	Degree() int
	DoFsPerCell() int
	// UnitSupportPoints returns the nodal interpolation points, or nil for a
	// non-nodal basis.
	UnitSupportPoints() []geometry.Point
	ShapeValue(i int, p geometry.Point) float64
	ShapeGrad(i int, p geometry.Point) geometry.Point
}

// DoFHandler enumerates the active cells of a mesh in a stable order and
// maps each one to its global DOF indices.
type DoFHandler interface {
	FE() FiniteElement
	Dim() int
	NActiveCells() int
	NDoFs() int
	MaxCouplingsBetweenDoFs() int
	CellVertices(cell int) []geometry.Point
	// CellDoFIndices writes the global indices of the cell into dst, which is
	// grown as needed, and returns it.
	CellDoFIndices(cell int, dst []int) []int
}

// Boundary maps unit cell points to real space for a cell given by its
// vertices in lexicographic order.
type Boundary interface {
	MapUnitToReal(vertices []geometry.Point, p geometry.Point) geometry.Point
	// Jacobian returns J(i,k) = dx_i/dp_k.
	Jacobian(vertices []geometry.Point, p geometry.Point) *mat.Dense
}

// Function is a scalar function of space. Implementations must not retain
// the point slices.
type Function interface {
	Value(p geometry.Point) float64
	ValueList(points []geometry.Point, values []float64) error
}

// GradientFunction is a Function that also knows its gradient, required by
// the H1 norms.
type GradientFunction interface {
	Function
	Gradient(p geometry.Point) geometry.Point
	GradientList(points []geometry.Point, gradients []geometry.Point) error
}

// SameElement reports whether two element descriptors describe the same
// finite element.
func SameElement(a, b FiniteElement) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name() && a.Dim() == b.Dim() && a.DoFsPerCell() == b.DoFsPerCell()
}
