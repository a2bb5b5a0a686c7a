package mesh

import (
	"github.com/notargets/femtools/geometry"
	"gonum.org/v1/gonum/mat"
)

// StraightBoundary is the multilinear (Q1) map from the unit cell to a cell
// given by its 2^dim vertices in lexicographic order.
type StraightBoundary struct{}

func (StraightBoundary) MapUnitToReal(vertices []geometry.Point, p geometry.Point) (x geometry.Point) {
	var (
		dim = p.Dim()
	)
	x = make(geometry.Point, vertices[0].Dim())
	for v, X := range vertices {
		w := vertexWeight(v, dim, p, -1)
		for i := range x {
			x[i] += w * X[i]
		}
	}
	return
}

// Jacobian returns J(i,k) = dx_i/dp_k.
func (StraightBoundary) Jacobian(vertices []geometry.Point, p geometry.Point) (J *mat.Dense) {
	var (
		dim  = p.Dim()
		sdim = vertices[0].Dim()
	)
	J = mat.NewDense(sdim, dim, nil)
	for v, X := range vertices {
		for k := 0; k < dim; k++ {
			w := vertexWeight(v, dim, p, k)
			if w == 0 {
				continue
			}
			for i := 0; i < sdim; i++ {
				J.Set(i, k, J.At(i, k)+w*X[i])
			}
		}
	}
	return
}

// vertexWeight evaluates the bilinear hat function of local vertex v at p,
// differentiated in direction deriv when deriv >= 0.
func vertexWeight(v, dim int, p geometry.Point, deriv int) (w float64) {
	w = 1
	for d := 0; d < dim; d++ {
		upper := (v>>d)&1 == 1
		switch {
		case d == deriv && upper:
		case d == deriv:
			w = -w
		case upper:
			w *= p[d]
		default:
			w *= 1 - p[d]
		}
	}
	return
}
