// Package vectortools builds discrete fields from analytic functions, by
// nodal interpolation or L2 projection, and measures the difference between
// a discrete field and an exact function cell by cell.
package vectortools

import (
	"github.com/notargets/femtools/solver"
	"github.com/notargets/femtools/utils"
)

// Options tune the parallel evaluation and the projection solve.
type Options struct {
	Workers     int
	Partitioner utils.CellPartitioner
	Control     solver.SolverControl
	Jacobi      bool           // Precondition CG with the mass matrix diagonal
	Result      *solver.Result // When set, receives the solver statistics of Project
}

// Option sets one field of Options.
type Option func(*Options)

// WithWorkers sets the number of cell buckets evaluated in parallel; zero means one per CPU.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithPartitioner chooses how cells are split among the workers.
func WithPartitioner(p utils.CellPartitioner) Option {
	return func(o *Options) { o.Partitioner = p }
}

// WithSolverControl bounds the CG solve of Project.
func WithSolverControl(c solver.SolverControl) Option {
	return func(o *Options) { o.Control = c }
}

// WithJacobi preconditions the CG solve of Project with the mass matrix diagonal.
func WithJacobi() Option { return func(o *Options) { o.Jacobi = true } }

// WithSolverResult stores the iteration count and residual of the Project solve in res.
func WithSolverResult(res *solver.Result) Option {
	return func(o *Options) { o.Result = res }
}

func newOptions(opts []Option) (o Options) {
	o = Options{
		Partitioner: utils.BlockPartitioner{},
		Control:     solver.DefaultSolverControl(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.Workers = utils.Workers(o.Workers)
	if o.Partitioner == nil {
		o.Partitioner = utils.BlockPartitioner{}
	}
	return
}
