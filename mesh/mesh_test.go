package mesh

import (
	"testing"

	"github.com/notargets/femtools/basis"
	"github.com/notargets/femtools/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangulation(t *testing.T) {
	{ // 1D
		tr := SimpleMesh1D(0, 1, 2)
		assert.Equal(t, 1, tr.Dim())
		assert.Equal(t, 2, tr.NumElements)
		assert.Equal(t, 3, tr.NumVertices)
		assert.Equal(t, [][]int{{0, 1}, {1, 2}}, tr.EToV)
		assert.Equal(t, [][]int{{-1, 1}, {0, -1}}, tr.EToE)
		assert.Equal(t, []geometry.Point{{0.5}, {1}}, tr.CellVertices(1))
		assert.InDelta(t, 0.5, tr.MaxCellDiameter(), 1e-15)
		assert.Equal(t, [][2]int{{0, 0}, {1, 1}}, tr.BoundaryFaces())
	}
	{ // 2D 2x2 on [0,2]x[0,1]
		tr, err := NewHyperRectangle(2, []int{2, 2}, geometry.NewPoint(0, 0), geometry.NewPoint(2, 1))
		require.NoError(t, err)
		assert.Equal(t, 4, tr.NumElements)
		assert.Equal(t, 9, tr.NumVertices)
		assert.Equal(t, []int{4, 5, 7, 8}, tr.EToV[3])
		assert.Equal(t, geometry.Point{1, 0.5}, tr.Vertices[4])
		assert.Equal(t, []int{-1, 1, -1, 2}, tr.EToE[0])
		assert.Equal(t, []int{2, -1, 1, -1}, tr.EToE[3])
		assert.Len(t, tr.BoundaryFaces(), 8)
		assert.Equal(t, [3]int{1, 1, 0}, tr.CellIndex(3))
		assert.Equal(t, []int{2, 2}, tr.Subdivisions())
	}
	{ // 3D 2x1x1
		tr, err := NewHyperRectangle(3, []int{2, 1, 1}, geometry.NewPoint(0, 0, 0), geometry.NewPoint(1, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, 12, tr.NumVertices)
		assert.Equal(t, []int{-1, 1, -1, -1, -1, -1}, tr.EToE[0])
		assert.Equal(t, []int{0, -1, -1, -1, -1, -1}, tr.EToE[1])
		assert.Len(t, tr.BoundaryFaces(), 10)
	}
	{ // Refinement and bad input
		tr := SimpleMesh1D(0, 1, 2).RefineGlobal()
		assert.Equal(t, [][]float64{{0, 0.25, 0.5, 0.75, 1}}, tr.Coordinates)
		_, err := NewLineMesh([]float64{0, 1, 1})
		assert.Error(t, err)
		_, err = NewHyperRectangle(4, []int{1, 1, 1, 1}, nil, nil)
		assert.Error(t, err)
		_, err = NewHyperRectangle(2, []int{1, 0}, geometry.NewPoint(0, 0), geometry.NewPoint(1, 1))
		assert.Error(t, err)
		_, err = NewHyperRectangle(1, []int{1}, geometry.NewPoint(1), geometry.NewPoint(0))
		assert.Error(t, err)
	}
}

func TestStraightBoundary(t *testing.T) {
	var (
		b     StraightBoundary
		verts = []geometry.Point{{0, 1}, {2, 1}, {0, 3}, {2, 3}}
	)
	x := b.MapUnitToReal(verts, geometry.NewPoint(0.5, 0.25))
	assert.InDeltaSlice(t, []float64{1, 1.5}, []float64(x), 1e-15)
	J := b.Jacobian(verts, geometry.NewPoint(0.3, 0.7))
	assert.InDeltaSlice(t, []float64{2, 0, 0, 2}, J.RawMatrix().Data, 1e-15)

	// Skewed quadrilateral
	verts = []geometry.Point{{0, 0}, {1, 0}, {0, 1}, {2, 2}}
	x = b.MapUnitToReal(verts, geometry.NewPoint(1, 1))
	assert.InDeltaSlice(t, []float64{2, 2}, []float64(x), 1e-15)
	J = b.Jacobian(verts, geometry.NewPoint(0.5, 0.5))
	assert.InDeltaSlice(t, []float64{1.5, 0.5, 0.5, 1.5}, J.RawMatrix().Data, 1e-15)

	// 1D and 3D
	x = b.MapUnitToReal([]geometry.Point{{1}, {3}}, geometry.NewPoint(0.25))
	assert.InDelta(t, 1.5, x[0], 1e-15)
	tr, err := NewHyperRectangle(3, []int{1, 1, 1}, geometry.NewPoint(0, 0, 0), geometry.NewPoint(1, 2, 4))
	require.NoError(t, err)
	J = b.Jacobian(tr.CellVertices(0), geometry.NewPoint(0.1, 0.2, 0.3))
	assert.InDeltaSlice(t, []float64{1, 0, 0, 0, 2, 0, 0, 0, 4}, J.RawMatrix().Data, 1e-14)
}

func TestDoFHandler(t *testing.T) {
	{ // 1D linear, two cells
		dh := NewDoFHandler(SimpleMesh1D(0, 1, 2), basis.NewFEQ(1, 1), false)
		assert.Equal(t, 3, dh.NDoFs())
		assert.Equal(t, 2, dh.NActiveCells())
		assert.Equal(t, []int{1, 2}, dh.CellDoFIndices(1, nil))
		assert.Equal(t, 3, dh.MaxCouplingsBetweenDoFs())
		assert.Equal(t, []int{0, 2}, dh.BoundaryDoFs())
		assert.Equal(t, [][2]int{{2, 0}}, dh.PeriodicDoFPairs(0))
	}
	{ // 1D quadratic support points
		dh := NewDoFHandler(SimpleMesh1D(0, 1, 2), basis.NewFEQ(1, 2), false)
		pts := dh.SupportPoints(StraightBoundary{})
		require.Len(t, pts, 5)
		for i, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
			assert.InDelta(t, x, pts[i][0], 1e-14)
		}
	}
	{ // 2D quadratic, 2x2 cells
		tr, err := NewHyperRectangle(2, []int{2, 2}, geometry.NewPoint(0, 0), geometry.NewPoint(1, 1))
		require.NoError(t, err)
		dh := NewDoFHandler(tr, basis.NewFEQ(2, 2), false)
		assert.Equal(t, 25, dh.NDoFs())
		assert.Equal(t, 25, dh.MaxCouplingsBetweenDoFs())
		assert.Equal(t, []int{2, 3, 4, 7, 8, 9, 12, 13, 14}, dh.CellDoFIndices(1, nil))
		assert.Len(t, dh.BoundaryDoFs(), 16)
		pairs := dh.PeriodicDoFPairs(1)
		assert.Len(t, pairs, 5)
		assert.Equal(t, [2]int{20, 0}, pairs[0])
		pts := dh.SupportPoints(StraightBoundary{})
		assert.InDeltaSlice(t, []float64{0.75, 0.25}, []float64(pts[8]), 1e-14)
	}
	{ // Discontinuous numbering
		tr, err := NewHyperRectangle(2, []int{2, 1}, geometry.NewPoint(0, 0), geometry.NewPoint(1, 1))
		require.NoError(t, err)
		dh := NewDoFHandler(tr, basis.NewFEQ(2, 1), true)
		assert.True(t, dh.IsDiscontinuous())
		assert.Equal(t, 8, dh.NDoFs())
		assert.Equal(t, 4, dh.MaxCouplingsBetweenDoFs())
		assert.Equal(t, []int{4, 5, 6, 7}, dh.CellDoFIndices(1, nil))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, dh.BoundaryDoFs())
		assert.Panics(t, func() { dh.PeriodicDoFPairs(0) })
	}
	assert.Panics(t, func() { NewDoFHandler(SimpleMesh1D(0, 1, 2), basis.NewFEQ(2, 1), false) })
}

func TestLocate(t *testing.T) {
	tr, err := NewTensorMesh([][]float64{{0, 1, 3}, {0, 0.5, 1}})
	require.NoError(t, err)
	k, unit, ok := tr.Locate(geometry.NewPoint(2, 0.25))
	assert.True(t, ok)
	assert.Equal(t, 1, k)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, []float64(unit), 1e-15)
	k, unit, ok = tr.Locate(geometry.NewPoint(1, 1))
	assert.True(t, ok)
	assert.Equal(t, 3, k)
	assert.InDeltaSlice(t, []float64{0, 1}, []float64(unit), 1e-15)
	k, _, ok = tr.Locate(geometry.NewPoint(0, 0))
	assert.True(t, ok)
	assert.Equal(t, 0, k)
	_, _, ok = tr.Locate(geometry.NewPoint(3.1, 0))
	assert.False(t, ok)
}
