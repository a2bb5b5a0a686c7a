package basis

import (
	"fmt"

	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/utils"
	"gonum.org/v1/gonum/mat"
)

// FEQ is the tensor product Lagrange element of degree N on [0,1]^dim. Its
// nodes are the Gauss-Lobatto points in each direction, numbered
// lexicographically with x running fastest.
type FEQ struct {
	dim, N        int
	nodes1D       []float64
	Vinv          *mat.Dense
	supportPoints []geometry.Point
}

func NewFEQ(dim, N int) (el *FEQ) {
	var (
		err error
	)
	geometry.ValidDim(dim)
	if N < 1 {
		panic(fmt.Errorf("FE_Q needs degree >= 1, have %d", N))
	}
	R := quadrature.JacobiGL(0, 0, N)
	el = &FEQ{
		dim:     dim,
		N:       N,
		nodes1D: make([]float64, N+1),
		Vinv:    mat.NewDense(N+1, N+1, nil),
	}
	for i, r := range R {
		el.nodes1D[i] = 0.5 * (r + 1)
	}
	V := quadrature.Vandermonde1D(N, R)
	if err = el.Vinv.Inverse(V); err != nil {
		panic(fmt.Errorf("error inverting V: %w", err))
	}
	el.supportPoints = geometry.NewPoints(el.DoFsPerCell(), dim)
	for i, p := range el.supportPoints {
		idx := el.NodeIndex(i)
		for d := 0; d < dim; d++ {
			p[d] = el.nodes1D[idx[d]]
		}
	}
	return
}

func (el *FEQ) Name() string     { return fmt.Sprintf("FE_Q<%d>(%d)", el.dim, el.N) }
func (el *FEQ) Dim() int         { return el.dim }
func (el *FEQ) Degree() int      { return el.N }
func (el *FEQ) DoFsPerCell() int { return utils.IPOW(el.N+1, el.dim) }

// UnitSupportPoints are the nodal points on the unit cell. The returned
// slice is shared and must not be modified.
func (el *FEQ) UnitSupportPoints() []geometry.Point { return el.supportPoints }

// NodeIndex returns the lattice position of local node i inside the cell,
// each component in 0..N.
func (el *FEQ) NodeIndex(i int) (idx [3]int) {
	for d := 0; d < el.dim; d++ {
		idx[d] = i % (el.N + 1)
		i /= el.N + 1
	}
	return
}

func (el *FEQ) ShapeValue(i int, p geometry.Point) (v float64) {
	var (
		idx = el.NodeIndex(i)
	)
	v = 1.
	for d := 0; d < el.dim; d++ {
		v *= el.shape1D(p[d])[idx[d]]
	}
	return
}

func (el *FEQ) ShapeGrad(i int, p geometry.Point) (g geometry.Point) {
	var (
		idx   = el.NodeIndex(i)
		vals  [3][]float64
		grads [3][]float64
	)
	for d := 0; d < el.dim; d++ {
		vals[d] = el.shape1D(p[d])
		grads[d] = el.shapeGrad1D(p[d])
	}
	g = make(geometry.Point, el.dim)
	for k := 0; k < el.dim; k++ {
		gk := 1.
		for d := 0; d < el.dim; d++ {
			if d == k {
				gk *= grads[d][idx[d]]
			} else {
				gk *= vals[d][idx[d]]
			}
		}
		g[k] = gk
	}
	return
}

// shape1D returns all N+1 one dimensional Lagrange values at x in [0,1].
func (el *FEQ) shape1D(x float64) (v []float64) {
	Vx := quadrature.Vandermonde1D(el.N, []float64{2*x - 1})
	var row mat.Dense
	row.Mul(Vx, el.Vinv)
	return row.RawRowView(0)
}

func (el *FEQ) shapeGrad1D(x float64) (v []float64) {
	Vr := quadrature.GradVandermonde1D(el.N, []float64{2*x - 1})
	var row mat.Dense
	row.Mul(Vr, el.Vinv)
	v = row.RawRowView(0)
	// d/dx = 2 d/dr
	for i := range v {
		v[i] *= 2
	}
	return
}
