package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJacobiGQ_PartitionAndFirstMoment(t *testing.T) {
	const (
		α   = 0.3
		β   = 0.7
		N   = 5
		tol = 1e-12
	)
	x, w := JacobiGQ(α, β, N)

	// ∫_{-1}^1 (1-x)^α (1+x)^β dx = 2^{α+β+1} B(α+1, β+1)
	exactZero := math.Pow(2, α+β+1) * math.Gamma(α+1) * math.Gamma(β+1) / math.Gamma(α+β+2)
	exactOne := (β - α) / (α + β + 2) * exactZero

	var sum0, sum1 float64
	for i := range x {
		sum0 += w[i]
		sum1 += x[i] * w[i]
	}
	assert.InDeltaf(t, exactZero, sum0, tol, "sum(w) = %v, want %v", sum0, exactZero)
	assert.InDeltaf(t, exactOne, sum1, tol, "sum(x*w) = %v, want %v", sum1, exactOne)
}

func TestJacobiGQ_Roots(t *testing.T) {
	const N = 6
	X, W := JacobiGQ(0, 0, N)
	require.Len(t, X, N+1)
	require.Len(t, W, N+1)
	// Gauss nodes are the roots of P_{N+1}
	p := JacobiP(X, 0, 0, N+1)
	for i := range p {
		assert.InDeltaf(t, 0, p[i], 1e-10, "node %d = %g is not a root", i, X[i])
	}
	for i := 1; i < len(X); i++ {
		assert.True(t, X[i] > X[i-1], "nodes not ascending")
	}
}

func TestJacobiGL(t *testing.T) {
	{
		X := JacobiGL(0, 0, 1)
		assert.Equal(t, []float64{-1, 1}, X)
	}
	{
		X := JacobiGL(0, 0, 2)
		assert.InDeltaSlice(t, []float64{-1, 0, 1}, X, 1e-14)
	}
	{
		X := JacobiGL(0, 0, 4)
		s := math.Sqrt(3. / 7.)
		assert.InDeltaSlice(t, []float64{-1, -s, 0, s, 1}, X, 1e-12)
	}
}

func TestJacobiP_Orthonormal(t *testing.T) {
	const N = 5
	X, W := JacobiGQ(0, 0, N+1)
	for i := 0; i <= N; i++ {
		for j := 0; j <= N; j++ {
			pi, pj := JacobiP(X, 0, 0, i), JacobiP(X, 0, 0, j)
			var s float64
			for k := range W {
				s += W[k] * pi[k] * pj[k]
			}
			want := 0.
			if i == j {
				want = 1.
			}
			assert.InDeltaf(t, want, s, 1e-12, "<P%d,P%d> = %g", i, j, s)
		}
	}
}

func TestGradJacobiP(t *testing.T) {
	// Orthonormal P1 = sqrt(3/2) r
	r := []float64{-0.5, 0.1, 0.9}
	dp := GradJacobiP(r, 0, 0, 1)
	for _, v := range dp {
		assert.InDelta(t, math.Sqrt(1.5), v, 1e-14)
	}
	// Orthonormal P2 = sqrt(5/2) (3r^2-1)/2, derivative sqrt(5/2) 3r
	dp = GradJacobiP(r, 0, 0, 2)
	for i, v := range dp {
		assert.InDelta(t, math.Sqrt(2.5)*3*r[i], v, 1e-13)
	}
	assert.Equal(t, []float64{0, 0, 0}, GradJacobiP(r, 0, 0, 0))
}
