package ErrorAnalysis

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/notargets/femtools/InputParameters"
	"github.com/notargets/femtools/basis"
	"github.com/notargets/femtools/constraints"
	"github.com/notargets/femtools/convergence"
	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/functions"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/mesh"
	"github.com/notargets/femtools/partition"
	"github.com/notargets/femtools/quadrature"
	"github.com/notargets/femtools/solver"
	"github.com/notargets/femtools/types"
	"github.com/notargets/femtools/utils"
	"github.com/notargets/femtools/vectortools"
)

// ErrorAnalysis builds a discrete field from an analytic function on a box
// mesh and measures how far the field is from the function.
type ErrorAnalysis struct {
	Title       string
	Tria        *mesh.Triangulation
	Element     *basis.FEQ
	DoF         *mesh.DoFHandler
	Boundary    mesh.StraightBoundary
	Quadrature  quadrature.Quadrature
	Exact       fe.GradientFunction
	Constraints *constraints.ConstraintMatrix // nil without constraints
	Method      types.MethodType
	Norms       []types.NormType
	Field       *fe.NodalField
	Result      solver.Result // Solver statistics of the last projection
	Verbose     bool

	discontinuous  bool
	constraintType types.ConstraintType
	options        []vectortools.Option
}

func NewErrorAnalysis(ip *InputParameters.InputParametersFE) (ea *ErrorAnalysis, err error) {
	ip.SetDefaults()
	if err = ip.Validate(); err != nil {
		return
	}
	ea = &ErrorAnalysis{
		Title:          ip.Title,
		Element:        basis.NewFEQ(ip.Dimension, ip.Degree),
		Quadrature:     quadrature.NewGauss(ip.Dimension, ip.QuadraturePoints),
		Method:         ip.MethodType(),
		discontinuous:  ip.Discontinuous,
		constraintType: ip.ConstraintType(),
	}
	if ea.Norms, err = ip.NormTypes(); err != nil {
		return nil, err
	}
	if ea.Exact, err = functions.NewByName(ip.Function, ip.Dimension, ip.FunctionParameters); err != nil {
		return nil, err
	}
	var partitioner utils.CellPartitioner = utils.BlockPartitioner{}
	if ip.UseMetis() {
		partitioner = partition.NewMetisPartitioner(partition.DefaultPartitionConfig())
	}
	ea.options = []vectortools.Option{
		vectortools.WithWorkers(ip.Workers),
		vectortools.WithPartitioner(partitioner),
		vectortools.WithSolverControl(ip.SolverControl()),
		vectortools.WithSolverResult(&ea.Result),
	}
	if ip.UseJacobi() {
		ea.options = append(ea.options, vectortools.WithJacobi())
	}
	var tria *mesh.Triangulation
	if tria, err = mesh.NewHyperRectangle(ip.Dimension, ip.Subdivisions,
		geometry.NewPoint(ip.Lower...), geometry.NewPoint(ip.Upper...)); err != nil {
		return nil, err
	}
	ea.setMesh(tria)
	return
}

// setMesh distributes DoFs on tria and rebuilds the constraints for them.
func (ea *ErrorAnalysis) setMesh(tria *mesh.Triangulation) {
	ea.Tria = tria
	ea.DoF = mesh.NewDoFHandler(tria, ea.Element, ea.discontinuous)
	ea.Field = fe.NewNodalField(ea.DoF.NDoFs())
	switch ea.constraintType {
	case types.ZeroBoundary:
		ea.Constraints = constraints.NewZeroConstraints(ea.DoF.BoundaryDoFs())
	case types.Periodic:
		var pairs [][2]int
		for d := 0; d < tria.Dim(); d++ {
			pairs = append(pairs, ea.DoF.PeriodicDoFPairs(d)...)
		}
		ea.Constraints = constraints.NewPeriodicConstraints(pairs)
	default:
		ea.Constraints = nil
	}
}

// BuildField fills Field by interpolation or by projection. Constraints only
// take part in the projection.
func (ea *ErrorAnalysis) BuildField() (err error) {
	switch ea.Method {
	case types.Interpolation:
		err = vectortools.Interpolate(ea.DoF, ea.Boundary, ea.Exact, ea.Field)
	case types.Projection:
		err = vectortools.Project(ea.DoF, ea.Constraints, ea.Quadrature, ea.Boundary,
			ea.Exact, ea.Field, ea.options...)
	default:
		panic(fmt.Errorf("unknown method %v", ea.Method))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ea.Method, err)
	}
	return
}

// CellErrors returns the per cell difference between Field and the exact
// function in the given norm.
func (ea *ErrorAnalysis) CellErrors(norm types.NormType) ([]float64, error) {
	return vectortools.IntegrateDifference(ea.DoF, ea.Field, ea.Exact, ea.Quadrature,
		ea.Element, norm, ea.Boundary, ea.options...)
}

// Run builds the field and returns its global error for each requested norm.
func (ea *ErrorAnalysis) Run() (errs []float64, err error) {
	start := time.Now()
	if err = ea.BuildField(); err != nil {
		return
	}
	if utils.IsNan(ea.Field.Data()) {
		return nil, fmt.Errorf("%s of %s produced NaN coefficients", ea.Method, ea.Title)
	}
	errs = make([]float64, len(ea.Norms))
	for i, norm := range ea.Norms {
		var diff []float64
		if diff, err = ea.CellErrors(norm); err != nil {
			return nil, fmt.Errorf("%s: %w", norm, err)
		}
		errs[i] = vectortools.GlobalError(diff, norm)
	}
	if ea.Verbose {
		log.Printf("%d cells, %d DoFs, %d CG iterations, %v, %s", ea.Tria.NumElements,
			ea.DoF.NDoFs(), ea.Result.Iterations, time.Since(start), utils.GetMemUsage())
	}
	return
}

// Converge runs the analysis on the current mesh and on refinements globally
// refined copies of it, collecting the errors into a convergence table. The
// analysis is left on the finest mesh.
func (ea *ErrorAnalysis) Converge(refinements int) (cs *convergence.ConvergenceStudy, err error) {
	if refinements < 0 {
		panic(fmt.Errorf("negative number of refinements %d", refinements))
	}
	cs = convergence.NewConvergenceStudy(ea.Title, ea.Element.Degree(), ea.Norms)
	for level := 0; level <= refinements; level++ {
		if level > 0 {
			ea.setMesh(ea.Tria.RefineGlobal())
		}
		var errs []float64
		if errs, err = ea.Run(); err != nil {
			return nil, fmt.Errorf("refinement level %d: %w", level, err)
		}
		cs.Add(ea.Tria.NumElements, ea.Tria.MaxCellDiameter(), errs)
	}
	return
}

func (ea *ErrorAnalysis) Print(w io.Writer, errs []float64) {
	fmt.Fprintf(w, "%s, %s, %d cells, %d DoFs\n", ea.Element.Name(), ea.Method,
		ea.Tria.NumElements, ea.DoF.NDoFs())
	if ea.Method == types.Projection {
		fmt.Fprintf(w, "CG: %d iterations, residual %8.3e\n", ea.Result.Iterations, ea.Result.Residual)
	}
	for i, norm := range ea.Norms {
		fmt.Fprintf(w, "%12s = %12.6e\n", norm, errs[i])
	}
}
