package geometry

import (
	"fmt"
	"math"
)

// Point is a coordinate in 1, 2 or 3 dimensions. The same type carries
// gradients, which are vectors of the same dimension.
type Point []float64

func NewPoint(coords ...float64) (p Point) {
	p = make(Point, len(coords))
	copy(p, coords)
	return
}

func (p Point) Dim() int { return len(p) }

func (p Point) Copy() (r Point) {
	r = make(Point, len(p))
	copy(r, p)
	return
}

// Square returns the squared Euclidean length.
func (p Point) Square() (s float64) {
	for _, x := range p {
		s += x * x
	}
	return
}

func (p Point) Norm() float64 { return math.Sqrt(p.Square()) }

func (p Point) Sub(a Point) (r Point) {
	r = make(Point, len(p))
	for i := range p {
		r[i] = p[i] - a[i]
	}
	return
}

func (p Point) Add(a Point) (r Point) {
	r = make(Point, len(p))
	for i := range p {
		r[i] = p[i] + a[i]
	}
	return
}

func (p Point) Scale(a float64) (r Point) {
	r = make(Point, len(p))
	for i := range p {
		r[i] = a * p[i]
	}
	return
}

func (p Point) Distance(a Point) float64 { return p.Sub(a).Norm() }

func (p Point) String() string { return fmt.Sprintf("%v", []float64(p)) }

// ValidDim panics when dim is outside the supported 1..3 range.
func ValidDim(dim int) {
	if dim < 1 || dim > 3 {
		panic(fmt.Errorf("unsupported dimension %d, must be 1, 2 or 3", dim))
	}
}

// NewPoints allocates n zero points of the given dimension backed by one slab.
func NewPoints(n, dim int) (pts []Point) {
	var (
		slab = make([]float64, n*dim)
	)
	pts = make([]Point, n)
	for i := range pts {
		pts[i] = slab[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return
}
