package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/femtools/functions"
	"github.com/notargets/femtools/solver"
	"github.com/notargets/femtools/types"
	"github.com/notargets/femtools/utils"
)

// Parameters obtained from the YAML problem file
type InputParametersFE struct {
	Title              string             `json:"Title"`
	Dimension          int                `json:"Dimension"`
	Degree             int                `json:"Degree"`
	Discontinuous      bool               `json:"Discontinuous"`
	Subdivisions       []int              `json:"Subdivisions"`
	Lower              []float64          `json:"Lower"`
	Upper              []float64          `json:"Upper"`
	Function           string             `json:"Function"`
	FunctionParameters map[string]float64 `json:"FunctionParameters"` // Keyed by parameter name, see functions.NewByName
	Method             string             `json:"Method"`
	Norms              []string           `json:"Norms"`
	QuadraturePoints   int                `json:"QuadraturePoints"` // Per direction, zero means Degree+2
	MaxIterations      int                `json:"MaxIterations"`
	Tolerance          float64            `json:"Tolerance"`
	Preconditioner     string             `json:"Preconditioner"` // none | jacobi
	Constraints        string             `json:"Constraints"`
	Workers            int                `json:"Workers"`
	Partitioner        string             `json:"Partitioner"` // block | metis
	Refinements        int                `json:"Refinements"`
}

func (ip *InputParametersFE) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.SetDefaults()
	return ip.Validate()
}

// SetDefaults fills in every optional key left out of the file.
func (ip *InputParametersFE) SetDefaults() {
	if ip.Dimension == 0 {
		ip.Dimension = 1
	}
	if ip.Degree == 0 {
		ip.Degree = 1
	}
	if len(ip.Subdivisions) == 0 {
		ip.Subdivisions = make([]int, ip.Dimension)
		for i := range ip.Subdivisions {
			ip.Subdivisions[i] = 4
		}
	}
	if len(ip.Lower) == 0 {
		ip.Lower = utils.ConstArray(ip.Dimension, 0)
	}
	if len(ip.Upper) == 0 {
		ip.Upper = utils.ConstArray(ip.Dimension, 1)
	}
	if len(ip.Function) == 0 {
		ip.Function = "sine"
	}
	if len(ip.Method) == 0 {
		ip.Method = "interpolate"
	}
	if len(ip.Norms) == 0 {
		ip.Norms = []string{"L2"}
	}
	if ip.QuadraturePoints == 0 {
		ip.QuadraturePoints = ip.Degree + 2
	}
	def := solver.DefaultSolverControl()
	if ip.MaxIterations == 0 {
		ip.MaxIterations = def.MaxIterations
	}
	if ip.Tolerance == 0 {
		ip.Tolerance = def.Tolerance
	}
	if len(ip.Preconditioner) == 0 {
		ip.Preconditioner = "none"
	}
	if len(ip.Constraints) == 0 {
		ip.Constraints = "none"
	}
	if len(ip.Partitioner) == 0 {
		ip.Partitioner = "block"
	}
}

func (ip *InputParametersFE) Validate() (err error) {
	switch {
	case ip.Dimension < 1 || ip.Dimension > 3:
		return fmt.Errorf("dimension must be 1, 2 or 3, have %d", ip.Dimension)
	case ip.Degree < 1:
		return fmt.Errorf("degree must be positive, have %d", ip.Degree)
	case len(ip.Subdivisions) != ip.Dimension:
		return fmt.Errorf("need %d subdivisions, have %d", ip.Dimension, len(ip.Subdivisions))
	case len(ip.Lower) != ip.Dimension || len(ip.Upper) != ip.Dimension:
		return fmt.Errorf("lower and upper corners need %d coordinates", ip.Dimension)
	case ip.QuadraturePoints < 1:
		return fmt.Errorf("quadrature points must be positive, have %d", ip.QuadraturePoints)
	case ip.MaxIterations < 1 || ip.Tolerance < 0:
		return fmt.Errorf("invalid solver control: %d iterations, tolerance %g", ip.MaxIterations, ip.Tolerance)
	case ip.Refinements < 0:
		return fmt.Errorf("refinements must not be negative, have %d", ip.Refinements)
	}
	for d, n := range ip.Subdivisions {
		if n < 1 {
			return fmt.Errorf("subdivisions in direction %d must be positive, have %d", d, n)
		}
		if ip.Upper[d] <= ip.Lower[d] {
			return fmt.Errorf("upper corner must exceed lower corner in direction %d", d)
		}
	}
	if _, err = ip.NormTypes(); err != nil {
		return
	}
	if _, err = types.NewMethodType(ip.Method); err != nil {
		return
	}
	var ct types.ConstraintType
	if ct, err = types.NewConstraintType(ip.Constraints); err != nil {
		return
	}
	if ct == types.Periodic && ip.Discontinuous {
		return fmt.Errorf("periodic constraints need a continuous element")
	}
	switch strings.ToLower(ip.Preconditioner) {
	case "none", "identity", "jacobi":
	default:
		return fmt.Errorf("unknown preconditioner %q", ip.Preconditioner)
	}
	switch strings.ToLower(ip.Partitioner) {
	case "block", "metis":
	default:
		return fmt.Errorf("unknown partitioner %q", ip.Partitioner)
	}
	if _, err = functions.NewByName(ip.Function, ip.Dimension, ip.FunctionParameters); err != nil {
		return
	}
	return
}

func (ip *InputParametersFE) NormTypes() (norms []types.NormType, err error) {
	norms = make([]types.NormType, len(ip.Norms))
	for i, name := range ip.Norms {
		if norms[i], err = types.NewNormType(name); err != nil {
			return nil, err
		}
	}
	return
}

func (ip *InputParametersFE) MethodType() types.MethodType {
	mt, err := types.NewMethodType(ip.Method)
	if err != nil {
		panic(err)
	}
	return mt
}

func (ip *InputParametersFE) ConstraintType() types.ConstraintType {
	ct, err := types.NewConstraintType(ip.Constraints)
	if err != nil {
		panic(err)
	}
	return ct
}

func (ip *InputParametersFE) SolverControl() (sc solver.SolverControl) {
	sc = solver.DefaultSolverControl()
	sc.MaxIterations = ip.MaxIterations
	sc.Tolerance = ip.Tolerance
	return
}

func (ip *InputParametersFE) UseJacobi() bool {
	return strings.ToLower(ip.Preconditioner) == "jacobi"
}

func (ip *InputParametersFE) UseMetis() bool {
	return strings.ToLower(ip.Partitioner) == "metis"
}

func (ip *InputParametersFE) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Degree\n", ip.Degree)
	fmt.Printf("[%t]\t\t\t= Discontinuous\n", ip.Discontinuous)
	fmt.Printf("%v\t\t\t= Subdivisions\n", ip.Subdivisions)
	fmt.Printf("%v -> %v\t= Domain\n", ip.Lower, ip.Upper)
	fmt.Printf("[%s]\t\t\t= Function\n", ip.Function)
	fmt.Printf("[%s]\t\t= Method\n", ip.Method)
	fmt.Printf("%v\t\t= Norms\n", ip.Norms)
	fmt.Printf("[%d]\t\t\t\t= Quadrature Points\n", ip.QuadraturePoints)
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", ip.MaxIterations)
	fmt.Printf("%8.2e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("[%s]\t\t\t= Preconditioner\n", ip.Preconditioner)
	fmt.Printf("[%s]\t\t\t= Constraints\n", ip.Constraints)
	fmt.Printf("[%s]\t\t\t= Partitioner\n", ip.Partitioner)
	keys := make([]string, len(ip.FunctionParameters))
	i := 0
	for k := range ip.FunctionParameters {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("FunctionParameters[%s] = %v\n", key, ip.FunctionParameters[key])
	}
}
