package convergence

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/notargets/femtools/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvergenceStudy(t *testing.T) {
	cs := NewConvergenceStudy("quadratic", 1, []types.NormType{types.L2Norm, types.H1Seminorm})
	cs.Add(2, 0.5, []float64{0.04, 0.2})
	cs.Add(4, 0.25, []float64{0.01, 0.1})
	cs.Add(8, 0.125, []float64{0.0025, 0.05})
	assert.Equal(t, 3, cs.Len())
	assert.Panics(t, func() { cs.Add(16, 0.0625, []float64{1}) })

	rates := cs.Rates(0)
	assert.True(t, math.IsNaN(rates[0]))
	assert.InDelta(t, 2., rates[1], 1e-14)
	assert.InDelta(t, 2., rates[2], 1e-14)
	assert.InDelta(t, 1., cs.Rates(1)[2], 1e-14)

	var out bytes.Buffer
	cs.Print(&out)
	assert.Contains(t, out.String(), "Title = quadratic, Degree = 1")
	assert.Contains(t, out.String(), "H1Seminorm")

	var buf bytes.Buffer
	require.NoError(t, cs.WriteCSV(&buf, true))
	other := NewConvergenceStudy("cubic", 2, cs.Norms)
	other.Add(2, 0.5, []float64{1e-3, 1e-2})
	require.NoError(t, other.WriteCSV(&buf, false))
	assert.True(t, strings.HasPrefix(buf.String(), "Title,Degree,NumCells,H,L2Norm,H1Seminorm\nquadratic,1,2,0.5,0.04,0.2\n"))

	studies, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"cubic2", "quadratic1"}, SortedKeys(studies))
	assert.Equal(t, cs, studies["quadratic1"])
	assert.Equal(t, 2, studies["cubic2"].Degree)
}

func TestReadCSVErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"Title,Degree,NumCells\n",
		"Title,Degree,NumCells,H,W2\n",
		"Title,Degree,NumCells,H,L2\nq,one,2,0.5,0.1\n",
		"Title,Degree,NumCells,H,L2\nq,1,2,0.5,x\n",
		"Title,Degree,NumCells,H,L2\nq,1,2,0.5\n",
	} {
		_, err := ReadCSV(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}
