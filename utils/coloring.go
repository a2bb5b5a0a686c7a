package utils

import (
	"fmt"
	"sort"
)

// ColorCells greedily colors cells so that no two cells of the same color
// share a degree of freedom. Cells of one color can then be assembled
// concurrently into a shared matrix. Colors are returned in increasing order,
// cells within a color in increasing order.
func ColorCells(nCells, nDoFs int, cellDoFs func(k int) []int) (colors [][]int) {
	var (
		dofColors = make([][]int, nDoFs)
		forbidden []bool
	)
	for k := 0; k < nCells; k++ {
		for i := range forbidden {
			forbidden[i] = false
		}
		dofs := cellDoFs(k)
		for _, dof := range dofs {
			for _, c := range dofColors[dof] {
				forbidden[c] = true
			}
		}
		color := 0
		for color < len(forbidden) && forbidden[color] {
			color++
		}
		if color == len(colors) {
			colors = append(colors, nil)
			forbidden = append(forbidden, false)
		}
		colors[color] = append(colors[color], k)
		for _, dof := range dofs {
			if n := len(dofColors[dof]); n == 0 || dofColors[dof][n-1] != color {
				dofColors[dof] = append(dofColors[dof], color)
			}
		}
	}
	return
}

// CellGraph is the cell adjacency graph in compressed form: the neighbours of
// cell k are Adjncy[Xadj[k]:Xadj[k+1]]. Two cells are adjacent when they
// share a degree of freedom.
type CellGraph struct {
	Xadj, Adjncy []int
}

func NewCellGraph(nCells, nDoFs int, cellDoFs func(k int) []int) (g CellGraph) {
	var (
		dofCells = make([][]int, nDoFs)
		mark     = make([]int, nCells)
	)
	for k := 0; k < nCells; k++ {
		for _, dof := range cellDoFs(k) {
			if n := len(dofCells[dof]); n == 0 || dofCells[dof][n-1] != k {
				dofCells[dof] = append(dofCells[dof], k)
			}
		}
	}
	for k := range mark {
		mark[k] = -1
	}
	g.Xadj = make([]int, nCells+1)
	for k := 0; k < nCells; k++ {
		var nbrs []int
		for _, dof := range cellDoFs(k) {
			for _, kk := range dofCells[dof] {
				if kk != k && mark[kk] != k {
					mark[kk] = k
					nbrs = append(nbrs, kk)
				}
			}
		}
		sort.Ints(nbrs)
		g.Adjncy = append(g.Adjncy, nbrs...)
		g.Xadj[k+1] = len(g.Adjncy)
	}
	return
}

func (g CellGraph) NCells() int { return len(g.Xadj) - 1 }

func (g CellGraph) Neighbors(k int) []int { return g.Adjncy[g.Xadj[k]:g.Xadj[k+1]] }

// CellPartitioner divides the cells of a mesh into nParts groups for parallel
// evaluation. Every cell must appear in exactly one group.
type CellPartitioner interface {
	PartitionCells(nCells, nDoFs, nParts int, cellDoFs func(k int) []int) (parts [][]int, err error)
}

// BlockPartitioner assigns contiguous blocks of cell indices using a PartitionMap.
type BlockPartitioner struct{}

func (BlockPartitioner) PartitionCells(nCells, nDoFs, nParts int, cellDoFs func(k int) []int) (parts [][]int, err error) {
	if nParts > nCells && nCells > 0 {
		nParts = nCells
	}
	parts = NewPartitionMap(nParts, nCells).Buckets()
	return
}

// CheckPartition verifies that parts covers [0,nCells) exactly once.
func CheckPartition(nCells int, parts [][]int) (err error) {
	seen := make([]bool, nCells)
	for bn, part := range parts {
		for _, k := range part {
			if k < 0 || k >= nCells {
				return fmt.Errorf("partition %d holds cell %d outside [0,%d)", bn, k, nCells)
			}
			if seen[k] {
				return fmt.Errorf("cell %d appears in more than one partition", k)
			}
			seen[k] = true
		}
	}
	for k, s := range seen {
		if !s {
			return fmt.Errorf("cell %d is not in any partition", k)
		}
	}
	return
}
