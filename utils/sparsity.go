package utils

import (
	"fmt"
	"sort"
)

// SparsityPattern records which entries of a sparse matrix may be nonzero.
// Entries are added row by row while open; Compress freezes the pattern
// into CSR index arrays, after which it can back a SparseMatrix.
type SparsityPattern struct {
	nRows, nCols int
	rows         [][]int
	Indptr, Ind  []int
	compressed   bool
}

// NewSparsityPattern allocates an open pattern with room for maxPerRow
// entries in each row. Rows grow past maxPerRow when needed.
func NewSparsityPattern(nRows, nCols, maxPerRow int) (sp *SparsityPattern) {
	var (
		slab = make([]int, nRows*maxPerRow)
	)
	sp = &SparsityPattern{
		nRows: nRows,
		nCols: nCols,
		rows:  make([][]int, nRows),
	}
	for i := range sp.rows {
		sp.rows[i] = slab[i*maxPerRow : i*maxPerRow : (i+1)*maxPerRow]
	}
	return
}

func (sp *SparsityPattern) Dims() (r, c int)   { return sp.nRows, sp.nCols }
func (sp *SparsityPattern) IsCompressed() bool { return sp.compressed }

func (sp *SparsityPattern) Add(i, j int) {
	if sp.compressed {
		panic("attempt to add an entry to a compressed sparsity pattern")
	}
	sp.checkBounds(i, j)
	row := sp.rows[i]
	n := sort.SearchInts(row, j)
	if n < len(row) && row[n] == j {
		return
	}
	row = append(row, 0)
	copy(row[n+1:], row[n:])
	row[n] = j
	sp.rows[i] = row
}

// Compress freezes the pattern. Square patterns always store the diagonal.
func (sp *SparsityPattern) Compress() {
	if sp.compressed {
		return
	}
	if sp.nRows == sp.nCols {
		for i := 0; i < sp.nRows; i++ {
			sp.Add(i, i)
		}
	}
	var nnz int
	for _, row := range sp.rows {
		nnz += len(row)
	}
	sp.Indptr = make([]int, sp.nRows+1)
	sp.Ind = make([]int, 0, nnz)
	for i, row := range sp.rows {
		sp.Ind = append(sp.Ind, row...)
		sp.Indptr[i+1] = len(sp.Ind)
	}
	sp.rows = nil
	sp.compressed = true
}

// Row returns the sorted column indices of row i. The slice is shared.
func (sp *SparsityPattern) Row(i int) []int {
	if sp.compressed {
		return sp.Ind[sp.Indptr[i]:sp.Indptr[i+1]]
	}
	return sp.rows[i]
}

func (sp *SparsityPattern) Exists(i, j int) bool {
	row := sp.Row(i)
	n := sort.SearchInts(row, j)
	return n < len(row) && row[n] == j
}

func (sp *SparsityPattern) NNZ() (nnz int) {
	if sp.compressed {
		return len(sp.Ind)
	}
	for _, row := range sp.rows {
		nnz += len(row)
	}
	return
}

func (sp *SparsityPattern) MaxRowLength() (m int) {
	for i := 0; i < sp.nRows; i++ {
		if l := len(sp.Row(i)); l > m {
			m = l
		}
	}
	return
}

func (sp *SparsityPattern) checkBounds(i, j int) {
	if i < 0 || i >= sp.nRows || j < 0 || j >= sp.nCols {
		panic(fmt.Errorf("entry (%d,%d) outside of %dx%d pattern", i, j, sp.nRows, sp.nCols))
	}
}
