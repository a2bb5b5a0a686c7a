package basis

import (
	"math"
	"testing"

	"github.com/notargets/femtools/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFEQ_Kronecker(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for N := 1; N <= 3; N++ {
			el := NewFEQ(dim, N)
			require.Equal(t, int(math.Pow(float64(N+1), float64(dim))), el.DoFsPerCell())
			for i := 0; i < el.DoFsPerCell(); i++ {
				for j, p := range el.UnitSupportPoints() {
					want := 0.
					if i == j {
						want = 1.
					}
					assert.InDeltaf(t, want, el.ShapeValue(i, p), 1e-12,
						"%s: phi_%d at node %d", el.Name(), i, j)
				}
			}
		}
	}
}

func TestFEQ_PartitionOfUnity(t *testing.T) {
	el := NewFEQ(2, 3)
	p := geometry.NewPoint(0.27, 0.81)
	var sum float64
	grad := geometry.NewPoint(0, 0)
	for i := 0; i < el.DoFsPerCell(); i++ {
		sum += el.ShapeValue(i, p)
		grad = grad.Add(el.ShapeGrad(i, p))
	}
	assert.InDelta(t, 1, sum, 1e-12)
	assert.InDelta(t, 0, grad.Norm(), 1e-11)
}

func TestFEQ_Gradients(t *testing.T) {
	{ // linear 1D: phi_0 = 1-x, phi_1 = x
		el := NewFEQ(1, 1)
		p := geometry.NewPoint(0.3)
		assert.InDelta(t, 0.7, el.ShapeValue(0, p), 1e-14)
		assert.InDelta(t, 0.3, el.ShapeValue(1, p), 1e-14)
		assert.InDelta(t, -1, el.ShapeGrad(0, p)[0], 1e-13)
		assert.InDelta(t, 1, el.ShapeGrad(1, p)[0], 1e-13)
	}
	{ // bilinear, node 3 is (1,1): phi = x*y
		el := NewFEQ(2, 1)
		p := geometry.NewPoint(0.25, 0.5)
		assert.InDelta(t, 0.125, el.ShapeValue(3, p), 1e-14)
		g := el.ShapeGrad(3, p)
		assert.InDelta(t, 0.5, g[0], 1e-13)
		assert.InDelta(t, 0.25, g[1], 1e-13)
	}
	{ // reproduce grad of x^2 with quadratic nodes
		el := NewFEQ(1, 2)
		p := geometry.NewPoint(0.6)
		var d float64
		for i, s := range el.UnitSupportPoints() {
			d += s[0] * s[0] * el.ShapeGrad(i, p)[0]
		}
		assert.InDelta(t, 1.2, d, 1e-12)
	}
}

func TestFEQ_Layout(t *testing.T) {
	el := NewFEQ(2, 2)
	assert.Equal(t, "FE_Q<2>(2)", el.Name())
	assert.Equal(t, [3]int{1, 2, 0}, el.NodeIndex(7))
	assert.Equal(t, geometry.Point{0.5, 1}, el.UnitSupportPoints()[7])
	assert.Panics(t, func() { NewFEQ(2, 0) })
	assert.Panics(t, func() { NewFEQ(0, 1) })
}
