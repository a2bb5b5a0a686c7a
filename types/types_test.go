package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Norm names
		tokens := []string{"mean", "L1", "l2", "Linfty", "H1semi", " H1 ", "h1norm"}
		norms := []NormType{Mean, L1Norm, L2Norm, LinftyNorm, H1Seminorm, H1Norm, H1Norm}
		for i, token := range tokens {
			nt, err := NewNormType(token)
			assert.NoError(t, err)
			assert.Equal(t, norms[i], nt)
		}
		_, err := NewNormType("W2")
		assert.Error(t, err)
		assert.Equal(t, "H1Seminorm", H1Seminorm.String())
		assert.Equal(t, "NormType(9)", NormType(9).String())
		assert.False(t, NormType(9).IsValid())
		assert.True(t, H1Norm.NeedsGradients())
		assert.False(t, L2Norm.NeedsGradients())
		for nt := Mean; nt <= H1Norm; nt++ {
			back, err := NewNormType(nt.String())
			assert.NoError(t, err)
			assert.Equal(t, nt, back)
		}
	}
	{ // Methods and constraints
		mt, err := NewMethodType("Project")
		assert.NoError(t, err)
		assert.Equal(t, Projection, mt)
		_, err = NewMethodType("solve")
		assert.Error(t, err)
		ct, err := NewConstraintType("")
		assert.NoError(t, err)
		assert.Equal(t, NoConstraints, ct)
		ct, err = NewConstraintType("Zero-Boundary")
		assert.NoError(t, err)
		assert.Equal(t, ZeroBoundary, ct)
		assert.Equal(t, "Periodic", Periodic.String())
	}
}
