package fe

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NodalField holds one coefficient per global DOF.
type NodalField struct {
	data []float64
}

func NewNodalField(n int) *NodalField {
	return &NodalField{data: make([]float64, n)}
}

// NewNodalFieldFrom wraps data without copying.
func NewNodalFieldFrom(data []float64) *NodalField {
	return &NodalField{data: data}
}

// Reinit resizes the field to n coefficients, all zero.
func (f *NodalField) Reinit(n int) {
	if cap(f.data) >= n {
		f.data = f.data[:n]
		for i := range f.data {
			f.data[i] = 0
		}
		return
	}
	f.data = make([]float64, n)
}

func (f *NodalField) Len() int         { return len(f.data) }
func (f *NodalField) At(i int) float64 { return f.data[i] }

// Data returns the coefficient storage itself. It is meant for the operators
// that build a whole field, such as a solver writing its iterate in place;
// other callers change a field only through Assign or Reinit.
func (f *NodalField) Data() []float64 { return f.data }

// Set writes a single coefficient. Like Data it is for operators that fill
// every coefficient of the field before handing it back.
func (f *NodalField) Set(i int, v float64) { f.data[i] = v }

// Assign replaces the whole field with a copy of data.
func (f *NodalField) Assign(data []float64) {
	f.Reinit(len(data))
	copy(f.data, data)
}

// Vec returns a gonum view that shares storage with the field.
func (f *NodalField) Vec() *mat.VecDense {
	if len(f.data) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(f.data), f.data)
}

func (f *NodalField) Copy() *NodalField {
	r := NewNodalField(len(f.data))
	copy(r.data, f.data)
	return r
}

// CheckSize panics when the field is not sized for the handler.
func (f *NodalField) CheckSize(dof DoFHandler) {
	if f.Len() != dof.NDoFs() {
		panic(fmt.Errorf("field has %d coefficients, DoF handler has %d DoFs", f.Len(), dof.NDoFs()))
	}
}
