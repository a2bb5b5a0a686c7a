// Package partition splits mesh cells into groups for parallel evaluation
// using METIS.
package partition

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/notargets/femtools/utils"
	metis "github.com/notargets/go-metis"
)

// PartitionConfig holds configuration for cell partitioning
type PartitionConfig struct {
	ImbalanceFactor  float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights   bool
	UseVertexWeights bool
	Objective        string // "cut" or "vol"
	Verbose          bool
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig() *PartitionConfig {
	return &PartitionConfig{
		ImbalanceFactor:  1.05,
		UseEdgeWeights:   true,
		UseVertexWeights: true,
		Objective:        "vol", // minimize communication volume
	}
}

// MetisPartitioner is a utils.CellPartitioner. Cells are graph vertices
// weighted by their DoF count, and two cells are joined by an edge weighted
// by the number of DoFs they share.
type MetisPartitioner struct {
	config *PartitionConfig
}

func NewMetisPartitioner(config *PartitionConfig) *MetisPartitioner {
	if config == nil {
		config = DefaultPartitionConfig()
	}
	return &MetisPartitioner{config: config}
}

func (mp *MetisPartitioner) PartitionCells(nCells, nDoFs, nParts int, cellDoFs func(k int) []int) (parts [][]int, err error) {
	if nParts < 2 || nCells <= nParts {
		return utils.BlockPartitioner{}.PartitionCells(nCells, nDoFs, nParts, cellDoFs)
	}
	if mp.config.Verbose {
		log.Printf("Partitioning %d cells into %d parts", nCells, nParts)
	}
	g := buildMetisGraph(nCells, nDoFs, cellDoFs)

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if mp.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{mp.config.ImbalanceFactor}

	var vwgt, adjwgt []int32
	if mp.config.UseVertexWeights {
		vwgt = g.vwgt
	}
	if mp.config.UseEdgeWeights {
		adjwgt = g.adjwgt
	}
	part, objval, err := metis.PartGraphKwayWeighted(
		g.xadj, g.adjncy, vwgt, adjwgt,
		int32(nParts), nil, ubvec, opts,
	)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}

	parts = make([][]int, nParts)
	for k := 0; k < nCells; k++ {
		p := int(part[k])
		parts[p] = append(parts[p], k)
	}
	if mp.config.Verbose {
		analyzePartition(g, part, nParts, objval)
	}
	return
}

type metisGraph struct {
	xadj, adjncy, vwgt, adjwgt []int32
}

// buildMetisGraph converts cell to DoF connectivity to METIS format
func buildMetisGraph(nCells, nDoFs int, cellDoFs func(k int) []int) (g metisGraph) {
	var (
		dofs = make([][]int, nCells)
	)
	for k := range dofs {
		dofs[k] = append([]int{}, cellDoFs(k)...)
		sort.Ints(dofs[k])
	}
	cg := utils.NewCellGraph(nCells, nDoFs, func(k int) []int { return dofs[k] })
	g.xadj = make([]int32, nCells+1)
	g.vwgt = make([]int32, nCells)
	g.adjncy = make([]int32, 0, len(cg.Adjncy))
	g.adjwgt = make([]int32, 0, len(cg.Adjncy))
	for k := 0; k < nCells; k++ {
		g.vwgt[k] = int32(len(dofs[k]))
		for _, nbr := range cg.Neighbors(k) {
			g.adjncy = append(g.adjncy, int32(nbr))
			g.adjwgt = append(g.adjwgt, int32(sharedCount(dofs[k], dofs[nbr])))
		}
		g.xadj[k+1] = int32(len(g.adjncy))
	}
	return
}

// sharedCount counts the common entries of two sorted lists
func sharedCount(a, b []int) (n int) {
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return
}

// PartitionStats holds statistics for a single partition
type PartitionStats struct {
	ID           int
	NumCells     int
	ComputeLoad  int64
	NumNeighbors map[int]int // neighbor partition -> cut edges
}

// analyzePartition computes and reports partition quality metrics
func analyzePartition(g metisGraph, part []int32, nparts int, objval int32) (partStats []PartitionStats) {
	partStats = make([]PartitionStats, nparts)
	for i := range partStats {
		partStats[i].ID = i
		partStats[i].NumNeighbors = make(map[int]int)
	}
	var (
		cutEdges   int
		commVolume int64
	)
	for k := range part {
		p := int(part[k])
		partStats[p].NumCells++
		partStats[p].ComputeLoad += int64(g.vwgt[k])
		for e := g.xadj[k]; e < g.xadj[k+1]; e++ {
			nbr := int(g.adjncy[e])
			np := int(part[nbr])
			if nbr > k && np != p {
				cutEdges++
				commVolume += int64(g.adjwgt[e])
				partStats[p].NumNeighbors[np]++
				partStats[np].NumNeighbors[p]++
			}
		}
	}

	var (
		avgLoad float64
		maxLoad int64
		minLoad = int64(math.MaxInt64)
	)
	for _, stats := range partStats {
		avgLoad += float64(stats.ComputeLoad)
		maxLoad = max(maxLoad, stats.ComputeLoad)
		minLoad = min(minLoad, stats.ComputeLoad)
	}
	avgLoad /= float64(nparts)
	imbalance := float64(maxLoad)/avgLoad - 1.0

	log.Printf("Partition Analysis:")
	log.Printf("  Objective value: %d", objval)
	log.Printf("  Cut edges: %d", cutEdges)
	log.Printf("  Communication volume: %d", commVolume)
	log.Printf("  Load imbalance: %.2f%%", imbalance*100)
	log.Printf("  Load range: [%d, %d], avg: %.1f", minLoad, maxLoad, avgLoad)
	for _, stats := range partStats {
		log.Printf("  Partition %d: %d cells, load %d, %d neighbors",
			stats.ID, stats.NumCells, stats.ComputeLoad, len(stats.NumNeighbors))
	}
	return
}
