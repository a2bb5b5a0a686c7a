package quadrature

import (
	"fmt"
	"math"

	"github.com/notargets/femtools/geometry"
)

// Quadrature is a fixed list of points and weights on the unit cell
// [0,1]^dim. The weights of every rule built here sum to one.
type Quadrature struct {
	Points  []geometry.Point
	Weights []float64
}

func (q Quadrature) NQuadraturePoints() int { return len(q.Weights) }

func (q Quadrature) Dim() int {
	if len(q.Points) == 0 {
		return 0
	}
	return q.Points[0].Dim()
}

// NewGauss returns the tensor product Gauss-Legendre rule with n points per
// direction, exact for polynomials of degree 2n-1 in each variable.
func NewGauss(dim, n int) Quadrature {
	return NewTensorProduct(NewGauss1D(n), dim)
}

// NewGaussLobatto returns the tensor product Gauss-Lobatto rule with n >= 2
// points per direction, exact to degree 2n-3.
func NewGaussLobatto(dim, n int) Quadrature {
	return NewTensorProduct(NewGaussLobatto1D(n), dim)
}

func NewGauss1D(n int) (q Quadrature) {
	if n < 1 {
		panic(fmt.Errorf("gauss rule needs at least one point, have %d", n))
	}
	R, W := JacobiGQ(0, 0, n-1)
	return fromReference(R, W)
}

func NewGaussLobatto1D(n int) (q Quadrature) {
	if n < 2 {
		panic(fmt.Errorf("gauss-lobatto rule needs at least two points, have %d", n))
	}
	var (
		N  = n - 1
		fN = float64(N)
		R  = JacobiGL(0, 0, N)
		PN = JacobiP(R, 0, 0, N)
		W  = make([]float64, n)
	)
	// JacobiP is orthonormal, P_N = PN*sqrt(2/(2N+1))
	scale := math.Sqrt(2. / (2.*fN + 1.))
	for i := range W {
		p := PN[i] * scale
		W[i] = 2. / (fN * (fN + 1) * p * p)
	}
	return fromReference(R, W)
}

// fromReference maps a rule on [-1,1] onto [0,1].
func fromReference(R, W []float64) (q Quadrature) {
	q.Points = geometry.NewPoints(len(R), 1)
	q.Weights = make([]float64, len(W))
	for i := range R {
		q.Points[i][0] = 0.5 * (R[i] + 1.)
		q.Weights[i] = 0.5 * W[i]
	}
	return
}

// NewTensorProduct builds a dim dimensional rule from a one dimensional one,
// with the x index running fastest.
func NewTensorProduct(q1 Quadrature, dim int) (q Quadrature) {
	geometry.ValidDim(dim)
	if q1.Dim() != 1 {
		panic(fmt.Errorf("tensor product base rule must be 1D, have dim %d", q1.Dim()))
	}
	var (
		n  = q1.NQuadraturePoints()
		nq = 1
	)
	for d := 0; d < dim; d++ {
		nq *= n
	}
	q.Points = geometry.NewPoints(nq, dim)
	q.Weights = make([]float64, nq)
	for iq := 0; iq < nq; iq++ {
		w := 1.
		rem := iq
		for d := 0; d < dim; d++ {
			i := rem % n
			rem /= n
			q.Points[iq][d] = q1.Points[i][0]
			w *= q1.Weights[i]
		}
		q.Weights[iq] = w
	}
	return
}
