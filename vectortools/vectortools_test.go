package vectortools

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/femtools/basis"
	"github.com/notargets/femtools/constraints"
	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/functions"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/mesh"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/solver"
	"github.com/notargets/femtools/types"
	"github.com/notargets/femtools/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	boundary    = mesh.StraightBoundary{}
	tightSolver = WithSolverControl(solver.SolverControl{MaxIterations: 4000, Tolerance: 1.e-13})
	xFunc       = functions.Linear{A: geometry.Point{1}}
	xSquared    = functions.Monomial{P: []int{2}, C: 1}
)

func twoCellLine() *mesh.DoFHandler {
	return mesh.NewDoFHandler(mesh.SimpleMesh1D(0, 1, 2), basis.NewFEQ(1, 1), false)
}

func square(t *testing.T, n, degree int, discontinuous bool) *mesh.DoFHandler {
	tr, err := mesh.NewHyperRectangle(2, []int{n, n}, geometry.NewPoint(0, 0), geometry.NewPoint(1, 1))
	require.NoError(t, err)
	return mesh.NewDoFHandler(tr, basis.NewFEQ(2, degree), discontinuous)
}

type failingFunc struct{ err error }

func (f failingFunc) Value(p geometry.Point) float64 { return 0 }
func (f failingFunc) ValueList(points []geometry.Point, values []float64) error {
	return f.err
}

type panickingFunc struct{}

func (panickingFunc) Value(p geometry.Point) float64 { panic("bad point") }
func (panickingFunc) ValueList(points []geometry.Point, values []float64) error {
	panic("bad point")
}

type collapsed struct{ mesh.StraightBoundary }

func (collapsed) Jacobian(vertices []geometry.Point, p geometry.Point) *mat.Dense {
	return mat.NewDense(p.Dim(), p.Dim(), nil)
}

type reversePartitioner struct{ err error }

func (r reversePartitioner) PartitionCells(nCells, nDoFs, nParts int, cellDoFs func(k int) []int) ([][]int, error) {
	if r.err != nil {
		return nil, r.err
	}
	parts := make([][]int, 2)
	for k := nCells - 1; k >= 0; k-- {
		parts[k%2] = append(parts[k%2], k)
	}
	return parts, nil
}

func TestTwoCellScenario(t *testing.T) {
	var (
		dof   = twoCellLine()
		field = fe.NewNodalField(0)
		q     = quadrature.NewGauss(1, 3)
		el    = dof.FE()
	)
	require.NoError(t, Interpolate(dof, boundary, xFunc, field))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, field.Data(), 1e-15)

	diff, err := IntegrateDifference(dof, field, xFunc, q, el, types.L2Norm, boundary)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0}, diff, 1e-15)

	diff, err = IntegrateDifference(dof, field, xSquared, q, el, types.L2Norm, boundary)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Sqrt(1. / 960), math.Sqrt(1. / 960)}, diff, 1e-14)

	// ∫(x-a)(x-b) = -h³/6 on each cell
	diff, err = IntegrateDifference(dof, field, xSquared, q, el, types.Mean, boundary)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1. / 48, -1. / 48}, diff, 1e-15)
	assert.InDelta(t, -1./24, GlobalError(diff, types.Mean), 1e-15)

	// ∫(2x-a-b)² = h³/3 on each cell
	diff, err = IntegrateDifference(dof, field, xSquared, q, el, types.H1Seminorm, boundary)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Sqrt(1. / 24), math.Sqrt(1. / 24)}, diff, 1e-14)

	diff, err = IntegrateDifference(dof, field, xSquared, q, el, types.H1Norm, boundary)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(1./960+1./24), diff[1], 1e-14)

	diff, err = IntegrateDifference(dof, field, xSquared, q, el, types.LinftyNorm, boundary)
	require.NoError(t, err)
	for _, d := range diff {
		assert.Greater(t, d, 0.)
		assert.LessOrEqual(t, d, 1./16)
	}

	// Projection of a function in the space reproduces it
	proj := fe.NewNodalField(0)
	require.NoError(t, Project(dof, nil, q, boundary, xFunc, proj, tightSolver))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, proj.Data(), 1e-11)
}

func TestInterpolationExactness(t *testing.T) {
	for _, discontinuous := range []bool{false, true} {
		var (
			dof   = square(t, 3, 2, discontinuous)
			field = fe.NewNodalField(0)
			f     = functions.Monomial{P: []int{2, 1}, C: 3}
			q     = quadrature.NewGauss(2, 4)
		)
		require.NoError(t, Interpolate(dof, boundary, f, field))
		assert.Equal(t, dof.NDoFs(), field.Len())
		for _, norm := range []types.NormType{types.L2Norm, types.LinftyNorm, types.H1Norm} {
			diff, err := IntegrateDifference(dof, field, f, q, dof.FE(), norm, boundary, WithWorkers(3))
			require.NoError(t, err)
			assert.InDelta(t, 0., GlobalError(diff, norm), 1e-12, norm.String())
		}
		// Nodal values sit on the support points
		pts := dof.SupportPoints(boundary)
		for i, p := range pts {
			assert.InDelta(t, f.Value(p), field.At(i), 1e-13)
		}
	}
}

func TestProjection(t *testing.T) {
	q := quadrature.NewGauss(2, 4)
	{ // Constant
		dof := square(t, 4, 2, false)
		field := fe.NewNodalField(0)
		require.NoError(t, Project(dof, nil, q, boundary, functions.Constant{C: 2.5}, field, tightSolver, WithWorkers(4)))
		for _, v := range field.Data() {
			assert.InDelta(t, 2.5, v, 1e-8)
		}
	}
	{ // Functions already in the space are reproduced
		for _, discontinuous := range []bool{false, true} {
			dof := square(t, 3, 1, discontinuous)
			f := functions.GradFunc{
				F: func(p geometry.Point) float64 { return 1 + p[0] - 2*p[1] + 3*p[0]*p[1] },
				G: func(p geometry.Point) geometry.Point { return geometry.Point{1 + 3*p[1], -2 + 3*p[0]} },
			}
			interp, proj := fe.NewNodalField(0), fe.NewNodalField(0)
			require.NoError(t, Interpolate(dof, boundary, f, interp))
			var res solver.Result
			require.NoError(t, Project(dof, nil, q, boundary, f, proj, tightSolver, WithJacobi(), WithSolverResult(&res)))
			assert.Greater(t, res.Iterations, 0)
			for i := range interp.Data() {
				assert.InDelta(t, interp.At(i), proj.At(i), 1e-8)
			}
		}
	}
	{ // Zero boundary constraints
		dof := square(t, 4, 2, false)
		cm := constraints.NewZeroConstraints(dof.BoundaryDoFs())
		field := fe.NewNodalField(0)
		f := functions.Sine{K: 1, C: 1}
		require.NoError(t, Project(dof, cm, q, boundary, f, field, tightSolver))
		for _, i := range dof.BoundaryDoFs() {
			assert.Equal(t, 0., field.At(i))
		}
		diff, err := IntegrateDifference(dof, field, f, q, dof.FE(), types.L2Norm, boundary)
		require.NoError(t, err)
		assert.Less(t, GlobalError(diff, types.L2Norm), 5e-3)
	}
	{ // Periodic constraints
		dof := mesh.NewDoFHandler(mesh.SimpleMesh1D(0, 1, 8), basis.NewFEQ(1, 2), false)
		cm := constraints.NewPeriodicConstraints(dof.PeriodicDoFPairs(0))
		field := fe.NewNodalField(0)
		f := functions.GradFunc{
			F: func(p geometry.Point) float64 { return math.Cos(2 * math.Pi * p[0]) },
			G: func(p geometry.Point) geometry.Point { return geometry.Point{-2 * math.Pi * math.Sin(2*math.Pi*p[0])} },
		}
		require.NoError(t, Project(dof, cm, quadrature.NewGauss(1, 4), boundary, f, field, tightSolver))
		assert.Equal(t, field.At(0), field.At(dof.NDoFs()-1))
		assert.InDelta(t, 1., field.At(0), 1e-2)
	}
	{ // Open constraints
		dof := twoCellLine()
		cm := constraints.NewConstraintMatrix()
		cm.AddLine(0)
		assert.Panics(t, func() {
			_ = Project(dof, cm, quadrature.NewGauss(1, 2), boundary, xFunc, fe.NewNodalField(0))
		})
	}
}

func TestProjectionErrors(t *testing.T) {
	var (
		dof      = square(t, 4, 2, false)
		q        = quadrature.NewGauss(2, 3)
		sentinel = errors.New("no value here")
	)
	err := Project(dof, nil, q, boundary, functions.Sine{K: 1, C: 1}, fe.NewNodalField(0),
		WithSolverControl(solver.SolverControl{MaxIterations: 2, Tolerance: 1.e-14}))
	assert.True(t, errors.Is(err, solver.ErrNoConvergence))
	var nc *solver.NoConvergenceError
	assert.True(t, errors.As(err, &nc))

	err = Project(dof, nil, q, boundary, failingFunc{sentinel}, fe.NewNodalField(0))
	assert.True(t, errors.Is(err, sentinel))
	err = Interpolate(dof, boundary, failingFunc{sentinel}, fe.NewNodalField(0))
	assert.True(t, errors.Is(err, sentinel))

	field := fe.NewNodalField(dof.NDoFs())
	_, err = IntegrateDifference(dof, field, failingFunc{sentinel}, q, dof.FE(), types.L2Norm, boundary)
	assert.True(t, errors.Is(err, sentinel))
	_, err = IntegrateDifference(dof, field, functions.Constant{}, q, dof.FE(), types.L2Norm, collapsed{})
	assert.True(t, errors.Is(err, fe.ErrDegenerateCell))
	err = Project(dof, nil, q, collapsed{}, functions.Constant{}, fe.NewNodalField(0))
	assert.True(t, errors.Is(err, fe.ErrDegenerateCell))
}

func TestFunctionPanics(t *testing.T) {
	var (
		dof   = square(t, 4, 1, false)
		q     = quadrature.NewGauss(2, 3)
		field = fe.NewNodalField(dof.NDoFs())
	)
	assert.PanicsWithValue(t, "bad point", func() {
		_, _ = IntegrateDifference(dof, field, panickingFunc{}, q, dof.FE(), types.L2Norm, boundary, WithWorkers(3))
	})
	assert.PanicsWithValue(t, "bad point", func() {
		_ = Project(dof, nil, q, boundary, panickingFunc{}, fe.NewNodalField(0), WithWorkers(3))
	})
	assert.PanicsWithValue(t, "bad point", func() {
		_ = Interpolate(dof, boundary, panickingFunc{}, fe.NewNodalField(0))
	})
}

func TestNormProperties(t *testing.T) {
	var (
		dof   = square(t, 4, 1, false)
		q     = quadrature.NewGauss(2, 3)
		f     = functions.Sine{K: 1, C: 1}
		field = fe.NewNodalField(0)
		el    = dof.FE()
	)
	require.NoError(t, Interpolate(dof, boundary, f, field))
	get := func(norm types.NormType, opts ...Option) []float64 {
		diff, err := IntegrateDifference(dof, field, f, q, el, norm, boundary, opts...)
		require.NoError(t, err)
		require.Len(t, diff, dof.NActiveCells())
		return diff
	}
	var (
		l2   = get(types.L2Norm)
		semi = get(types.H1Seminorm)
		h1   = get(types.H1Norm)
	)
	for k := range h1 {
		assert.InDelta(t, h1[k]*h1[k], l2[k]*l2[k]+semi[k]*semi[k], 1e-14)
	}
	for _, norm := range []types.NormType{types.L1Norm, types.L2Norm, types.LinftyNorm, types.H1Seminorm, types.H1Norm} {
		for _, d := range get(norm) {
			assert.GreaterOrEqual(t, d, 0.)
		}
	}
	// Results do not depend on how the cells are split
	assert.Equal(t, get(types.H1Norm, WithWorkers(1)), get(types.H1Norm, WithWorkers(5)))
	assert.Equal(t, get(types.L1Norm, WithWorkers(1)), get(types.L1Norm, WithPartitioner(reversePartitioner{})))

	sentinel := errors.New("no partition")
	_, err := IntegrateDifference(dof, field, f, q, el, types.L2Norm, boundary, WithPartitioner(reversePartitioner{sentinel}))
	assert.True(t, errors.Is(err, sentinel))

	assert.InDelta(t, math.Sqrt(5), GlobalError([]float64{1, 2}, types.H1Norm), 1e-15)
	assert.Equal(t, 3., GlobalError([]float64{1, 2}, types.L1Norm))
	assert.Equal(t, 2., GlobalError([]float64{1, 2}, types.LinftyNorm))
	assert.Panics(t, func() { GlobalError(nil, types.NormType(42)) })
}

func TestPreconditions(t *testing.T) {
	var (
		dof   = twoCellLine()
		q     = quadrature.NewGauss(1, 2)
		field = fe.NewNodalField(dof.NDoFs())
	)
	assert.Panics(t, func() {
		_, _ = IntegrateDifference(dof, field, xFunc, q, dof.FE(), types.NormType(42), boundary)
	})
	assert.Panics(t, func() {
		_, _ = IntegrateDifference(dof, field, functions.Func(xFunc.Value), q, dof.FE(), types.H1Seminorm, boundary)
	})
	assert.Panics(t, func() {
		_, _ = IntegrateDifference(dof, field, xFunc, q, basis.NewFEQ(1, 2), types.L2Norm, boundary)
	})
	assert.Panics(t, func() {
		_, _ = IntegrateDifference(dof, fe.NewNodalField(2), xFunc, q, dof.FE(), types.L2Norm, boundary)
	})
	// Value norms do not need gradients
	_, err := IntegrateDifference(dof, field, functions.Func(xFunc.Value), q, dof.FE(), types.L2Norm, boundary)
	assert.NoError(t, err)
	assert.Panics(t, func() {
		ev := &cellEvaluator{}
		_, _ = ev.cellNorm(types.NormType(42))
	})
	var _ utils.CellPartitioner = reversePartitioner{}
}

func TestProjectionIdempotence(t *testing.T) {
	var (
		dof  = square(t, 3, 2, false)
		q    = quadrature.NewGauss(2, 4)
		once = fe.NewNodalField(0)
		f    = functions.Exp{A: 1.5, C: 1}
	)
	require.NoError(t, Project(dof, nil, q, boundary, f, once, tightSolver))
	ff := NewFieldFunction(dof, once)
	twice := fe.NewNodalField(0)
	require.NoError(t, Project(dof, nil, q, boundary, ff, twice, tightSolver, WithJacobi()))
	for i := range once.Data() {
		assert.InDelta(t, once.At(i), twice.At(i), 1e-8)
	}
	// The field function agrees with the field at the quadrature points
	diff, err := IntegrateDifference(dof, once, ff, q, dof.FE(), types.H1Norm, boundary)
	require.NoError(t, err)
	assert.InDelta(t, 0., GlobalError(diff, types.H1Norm), 1e-12)

	assert.True(t, math.IsNaN(ff.Value(geometry.NewPoint(2, 0))))
	assert.True(t, math.IsNaN(ff.Gradient(geometry.NewPoint(0, -1))[1]))
	assert.Error(t, ff.ValueList([]geometry.Point{{0.5, 2}}, make([]float64, 1)))
}
