package matrices

import (
	"errors"
	"testing"

	"github.com/notargets/femtools/basis"
	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/mesh"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

type testFunc struct {
	f   func(p geometry.Point) float64
	err error
}

func (tf testFunc) Value(p geometry.Point) float64 { return tf.f(p) }
func (tf testFunc) ValueList(points []geometry.Point, values []float64) error {
	if tf.err != nil {
		return tf.err
	}
	for i, p := range points {
		values[i] = tf.f(p)
	}
	return nil
}

func newSystem(dof fe.DoFHandler) *utils.SparseMatrix {
	sp := utils.NewSparsityPattern(dof.NDoFs(), dof.NDoFs(), dof.MaxCouplingsBetweenDoFs())
	fe.MakeSparsityPattern(dof, sp)
	sp.Compress()
	return utils.NewSparseMatrix(sp)
}

func TestCreateMassMatrix(t *testing.T) {
	{ // Two linear cells on [0,1]
		dof := mesh.NewDoFHandler(mesh.SimpleMesh1D(0, 1, 2), basis.NewFEQ(1, 1), false)
		m := newSystem(dof)
		b := make([]float64, 3)
		one := testFunc{f: func(p geometry.Point) float64 { return 1 }}
		require.NoError(t, CreateMassMatrix(dof, quadrature.NewGauss(1, 2), mesh.StraightBoundary{}, m, one, b, 2))
		expected := [][]float64{{1. / 6, 1. / 12, 0}, {1. / 12, 1. / 3, 1. / 12}, {0, 1. / 12, 1. / 6}}
		for i := range expected {
			for j := range expected[i] {
				assert.InDelta(t, expected[i][j], m.At(i, j), 1e-15)
			}
		}
		assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.25}, b, 1e-15)
	}
	{ // Parallel colored assembly matches sequential assembly
		tr, err := mesh.NewHyperRectangle(2, []int{3, 4}, geometry.NewPoint(0, 0), geometry.NewPoint(2, 1))
		require.NoError(t, err)
		dof := mesh.NewDoFHandler(tr, basis.NewFEQ(2, 2), false)
		q := quadrature.NewGauss(2, 3)
		f := testFunc{f: func(p geometry.Point) float64 { return p[0] * p[1] }}
		m1, m4 := newSystem(dof), newSystem(dof)
		b1, b4 := make([]float64, dof.NDoFs()), make([]float64, dof.NDoFs())
		require.NoError(t, CreateMassMatrix(dof, q, mesh.StraightBoundary{}, m1, f, b1, 1))
		require.NoError(t, CreateMassMatrix(dof, q, mesh.StraightBoundary{}, m4, f, b4, 4))
		assert.True(t, floats.EqualApprox(m1.Data(), m4.Data(), 1e-15))
		assert.True(t, floats.EqualApprox(b1, b4, 1e-15))
		assert.True(t, m4.IsSymmetric(1e-15))
		// Σ M_ij = area, Σ b_i = ∫ xy
		assert.InDelta(t, 2., floats.Sum(m4.Data()), 1e-13)
		assert.InDelta(t, 1., floats.Sum(b4), 1e-13)
	}
	{ // Function errors carry through
		dof := mesh.NewDoFHandler(mesh.SimpleMesh1D(0, 1, 4), basis.NewFEQ(1, 1), false)
		sentinel := errors.New("bad function")
		err := CreateMassMatrix(dof, quadrature.NewGauss(1, 2), mesh.StraightBoundary{}, newSystem(dof),
			testFunc{err: sentinel}, make([]float64, dof.NDoFs()), 2)
		assert.True(t, errors.Is(err, sentinel))
		assert.Panics(t, func() {
			_ = CreateMassMatrix(dof, quadrature.NewGauss(1, 2), mesh.StraightBoundary{}, newSystem(dof),
				testFunc{err: sentinel}, make([]float64, 2), 2)
		})
	}
}
