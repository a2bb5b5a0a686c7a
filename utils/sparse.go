package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// SparseMatrix stores values over a compressed SparsityPattern. The CSR
// arrays are shared with a sparse.CSR so the matrix can be handed to gonum
// and james-bowman/sparse code. Concurrent Add calls are safe as long as
// they touch disjoint entries.
type SparseMatrix struct {
	sp        *SparsityPattern
	csr       *sparse.CSR
	data      []float64
	condensed bool
}

func NewSparseMatrix(sp *SparsityPattern) (m *SparseMatrix) {
	if !sp.IsCompressed() {
		panic("sparse matrix needs a compressed sparsity pattern")
	}
	var (
		nr, nc = sp.Dims()
	)
	m = &SparseMatrix{
		sp:   sp,
		data: make([]float64, len(sp.Ind)),
	}
	m.csr = sparse.NewCSR(nr, nc, sp.Indptr, sp.Ind, m.data)
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m *SparseMatrix) Dims() (r, c int) { return m.sp.Dims() }
func (m *SparseMatrix) At(i, j int) float64 {
	if ind := m.index(i, j); ind >= 0 {
		return m.data[ind]
	}
	return 0
}
func (m *SparseMatrix) T() mat.Matrix { return m.csr.T() }

func (m *SparseMatrix) CSR() *sparse.CSR          { return m.csr }
func (m *SparseMatrix) Pattern() *SparsityPattern { return m.sp }
func (m *SparseMatrix) Data() []float64           { return m.data }
func (m *SparseMatrix) NNZ() int                  { return len(m.data) }

// SetCondensed marks the matrix as condensed by a constraint set, so a second
// condensation can be recognised and skipped.
func (m *SparseMatrix) SetCondensed()     { m.condensed = true }
func (m *SparseMatrix) IsCondensed() bool { return m.condensed }

func (m *SparseMatrix) Add(i, j int, val float64) { // Changes receiver
	m.data[m.mustIndex(i, j)] += val
}

func (m *SparseMatrix) Set(i, j int, val float64) { // Changes receiver
	m.data[m.mustIndex(i, j)] = val
}

// Row returns views of the column indices and values of row i.
func (m *SparseMatrix) Row(i int) (cols []int, vals []float64) {
	var (
		b, e = m.sp.Indptr[i], m.sp.Indptr[i+1]
	)
	return m.sp.Ind[b:e], m.data[b:e]
}

func (m *SparseMatrix) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
	m.condensed = false
}

// VMult computes dst = A*src.
func (m *SparseMatrix) VMult(dst, src []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(src) != nc {
		panic(fmt.Errorf("dimension mismatch: %dx%d matrix, len(dst) = %d, len(src) = %d", nr, nc, len(dst), len(src)))
	}
	for i := 0; i < nr; i++ {
		var s float64
		for ind := m.sp.Indptr[i]; ind < m.sp.Indptr[i+1]; ind++ {
			s += m.data[ind] * src[m.sp.Ind[ind]]
		}
		dst[i] = s
	}
}

func (m *SparseMatrix) Diagonal() (diag []float64) {
	var (
		nr, _ = m.Dims()
	)
	diag = make([]float64, nr)
	for i := range diag {
		diag[i] = m.At(i, i)
	}
	return
}

// IsSymmetric checks A(i,j) == A(j,i) within tol over all stored entries.
func (m *SparseMatrix) IsSymmetric(tol float64) bool {
	var (
		nr, _ = m.Dims()
	)
	for i := 0; i < nr; i++ {
		cols, vals := m.Row(i)
		for n, j := range cols {
			d := vals[n] - m.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}

func (m *SparseMatrix) index(i, j int) int {
	var (
		b, e = m.sp.Indptr[i], m.sp.Indptr[i+1]
		row  = m.sp.Ind[b:e]
	)
	n := sort.SearchInts(row, j)
	if n < len(row) && row[n] == j {
		return b + n
	}
	return -1
}

func (m *SparseMatrix) mustIndex(i, j int) (ind int) {
	m.sp.checkBounds(i, j)
	if ind = m.index(i, j); ind < 0 {
		panic(fmt.Errorf("entry (%d,%d) is not in the sparsity pattern", i, j))
	}
	return
}
