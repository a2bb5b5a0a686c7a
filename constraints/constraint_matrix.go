// Package constraints holds homogeneous linear constraints between DoFs,
// u_i = Σ w_ij u_j, and applies them to sparsity patterns, matrices and
// vectors.
package constraints

import (
	"fmt"
	"sort"
	"strings"

	"github.com/james-bowman/sparse"
	"github.com/notargets/femtools/utils"
)

type Entry struct {
	Column int
	Weight float64
}

// ConstraintLine constrains DoF Index to the weighted sum of Entries. A line
// without entries forces the DoF to zero.
type ConstraintLine struct {
	Index   int
	Entries []Entry
}

type ConstraintMatrix struct {
	lines  []ConstraintLine
	index  map[int]int // DoF to position in lines
	closed bool
}

func NewConstraintMatrix() *ConstraintMatrix {
	return &ConstraintMatrix{
		index: make(map[int]int),
	}
}

// NewZeroConstraints returns closed constraints forcing every listed DoF to zero.
func NewZeroConstraints(dofs []int) (cm *ConstraintMatrix) {
	cm = NewConstraintMatrix()
	for _, i := range dofs {
		cm.AddLine(i)
	}
	cm.Close()
	return
}

// NewPeriodicConstraints identifies each pair's first DoF with its second.
// Chains such as the corners of a doubly periodic box are resolved by Close.
func NewPeriodicConstraints(pairs [][2]int) (cm *ConstraintMatrix) {
	cm = NewConstraintMatrix()
	for _, pair := range pairs {
		if cm.IsConstrained(pair[0]) || pair[0] == pair[1] {
			continue
		}
		cm.AddLine(pair[0])
		cm.AddEntry(pair[0], pair[1], 1)
	}
	cm.Close()
	return
}

func (cm *ConstraintMatrix) AddLine(i int) {
	if cm.closed {
		panic("constraint matrix is closed")
	}
	if _, ok := cm.index[i]; ok {
		return
	}
	cm.index[i] = len(cm.lines)
	cm.lines = append(cm.lines, ConstraintLine{Index: i})
}

func (cm *ConstraintMatrix) AddEntry(line, column int, weight float64) {
	if cm.closed {
		panic("constraint matrix is closed")
	}
	pos, ok := cm.index[line]
	if !ok {
		panic(fmt.Errorf("DoF %d has no constraint line", line))
	}
	if column == line {
		panic(fmt.Errorf("DoF %d cannot be constrained to itself", line))
	}
	cm.lines[pos].Entries = append(cm.lines[pos].Entries, Entry{column, weight})
}

func (cm *ConstraintMatrix) IsConstrained(i int) bool {
	_, ok := cm.index[i]
	return ok
}

func (cm *ConstraintMatrix) IsClosed() bool          { return cm.closed }
func (cm *ConstraintMatrix) NConstraints() int       { return len(cm.lines) }
func (cm *ConstraintMatrix) Lines() []ConstraintLine { return cm.lines }

// Line returns the entries of the line constraining DoF i.
func (cm *ConstraintMatrix) Line(i int) (entries []Entry, ok bool) {
	var pos int
	if pos, ok = cm.index[i]; ok {
		entries = cm.lines[pos].Entries
	}
	return
}

// Close sorts the lines, replaces entries that are themselves constrained by
// their own expansion and merges duplicate columns. After Close every entry
// refers to an unconstrained DoF. Cyclic constraints panic.
func (cm *ConstraintMatrix) Close() {
	if cm.closed {
		return
	}
	const (
		unvisited = iota
		visiting
		done
	)
	var (
		state    = make([]int, len(cm.lines))
		resolved = make([][]Entry, len(cm.lines))
		resolve  func(pos int) []Entry
	)
	resolve = func(pos int) []Entry {
		switch state[pos] {
		case done:
			return resolved[pos]
		case visiting:
			panic(fmt.Errorf("cyclic constraint through DoF %d", cm.lines[pos].Index))
		}
		state[pos] = visiting
		acc := make(map[int]float64)
		for _, e := range cm.lines[pos].Entries {
			if p, ok := cm.index[e.Column]; ok {
				for _, ee := range resolve(p) {
					acc[ee.Column] += e.Weight * ee.Weight
				}
			} else {
				acc[e.Column] += e.Weight
			}
		}
		entries := make([]Entry, 0, len(acc))
		for c, w := range acc {
			entries = append(entries, Entry{c, w})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Column < entries[j].Column })
		resolved[pos] = entries
		state[pos] = done
		return entries
	}
	for pos := range cm.lines {
		resolve(pos)
	}
	for pos := range cm.lines {
		cm.lines[pos].Entries = resolved[pos]
	}
	sort.Slice(cm.lines, func(i, j int) bool { return cm.lines[i].Index < cm.lines[j].Index })
	for pos, line := range cm.lines {
		cm.index[line.Index] = pos
	}
	cm.closed = true
}

func (cm *ConstraintMatrix) mustBeClosed() {
	if !cm.closed {
		panic("constraint matrix must be closed before use")
	}
}

// CondensePattern adds the entries that condensation will write to. The
// pattern must not be compressed yet.
func (cm *ConstraintMatrix) CondensePattern(sp *utils.SparsityPattern) {
	cm.mustBeClosed()
	var (
		nr, _ = sp.Dims()
		row   []int
	)
	for i := 0; i < nr; i++ {
		row = append(row[:0], sp.Row(i)...)
		lineI, iConstrained := cm.Line(i)
		for _, j := range row {
			lineJ, jConstrained := cm.Line(j)
			switch {
			case !iConstrained && jConstrained:
				for _, e := range lineJ {
					sp.Add(i, e.Column)
				}
			case iConstrained && !jConstrained:
				for _, e := range lineI {
					sp.Add(e.Column, j)
				}
			case iConstrained && jConstrained:
				for _, ei := range lineI {
					for _, ej := range lineJ {
						sp.Add(ei.Column, ej.Column)
					}
				}
			}
		}
	}
}

// Condense eliminates the constrained rows and columns of m, distributing
// their entries onto the DoFs they depend on. Constrained rows keep only
// their diagonal, so an SPD matrix stays SPD. Condensing twice is a no-op.
func (cm *ConstraintMatrix) Condense(m *utils.SparseMatrix) {
	cm.mustBeClosed()
	if m.IsCondensed() || len(cm.lines) == 0 {
		m.SetCondensed()
		return
	}
	var (
		nr, _ = m.Dims()
	)
	for i := 0; i < nr; i++ {
		cols, vals := m.Row(i)
		lineI, iConstrained := cm.Line(i)
		for n, j := range cols {
			v := vals[n]
			lineJ, jConstrained := cm.Line(j)
			switch {
			case !iConstrained && jConstrained:
				for _, e := range lineJ {
					m.Add(i, e.Column, e.Weight*v)
				}
				vals[n] = 0
			case iConstrained && !jConstrained:
				for _, e := range lineI {
					m.Add(e.Column, j, e.Weight*v)
				}
				vals[n] = 0
			case iConstrained && jConstrained:
				for _, ei := range lineI {
					for _, ej := range lineJ {
						m.Add(ei.Column, ej.Column, ei.Weight*ej.Weight*v)
					}
				}
				if i == j {
					if v <= 0 {
						vals[n] = 1
					}
				} else {
					vals[n] = 0
				}
			}
		}
	}
	m.SetCondensed()
}

// CondenseVector moves the constrained entries of b onto the DoFs they
// depend on and zeroes them.
func (cm *ConstraintMatrix) CondenseVector(b []float64) {
	cm.mustBeClosed()
	for _, line := range cm.lines {
		v := b[line.Index]
		for _, e := range line.Entries {
			b[e.Column] += e.Weight * v
		}
		b[line.Index] = 0
	}
}

// Distribute sets every constrained entry of u from its line.
func (cm *ConstraintMatrix) Distribute(u []float64) {
	cm.mustBeClosed()
	for _, line := range cm.lines {
		var s float64
		for _, e := range line.Entries {
			s += e.Weight * u[e.Column]
		}
		u[line.Index] = s
	}
}

// Matrix returns the n x n distribution operator C, with u = C u for any
// distributed vector u.
func (cm *ConstraintMatrix) Matrix(n int) (C *sparse.DOK) {
	cm.mustBeClosed()
	C = sparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		if line, ok := cm.Line(i); ok {
			for _, e := range line {
				C.Set(i, e.Column, e.Weight)
			}
		} else {
			C.Set(i, i, 1)
		}
	}
	return
}

func (cm *ConstraintMatrix) String() string {
	var b strings.Builder
	for _, line := range cm.lines {
		fmt.Fprintf(&b, "%d:", line.Index)
		for _, e := range line.Entries {
			fmt.Fprintf(&b, " %d(%g)", e.Column, e.Weight)
		}
		b.WriteString("\n")
	}
	return b.String()
}
