// Package functions provides analytic scalar functions with gradients for
// building fields and measuring errors.
package functions

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/notargets/femtools/fe"
	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/utils"
)

type valuer interface {
	Value(p geometry.Point) float64
}

type gradienter interface {
	Gradient(p geometry.Point) geometry.Point
}

func valueList(f valuer, points []geometry.Point, values []float64) error {
	if len(values) < len(points) {
		return fmt.Errorf("have %d points and room for %d values", len(points), len(values))
	}
	for i, p := range points {
		values[i] = f.Value(p)
	}
	return nil
}

func gradientList(f gradienter, points []geometry.Point, grads []geometry.Point) error {
	if len(grads) < len(points) {
		return fmt.Errorf("have %d points and room for %d gradients", len(points), len(grads))
	}
	for i, p := range points {
		g := f.Gradient(p)
		if len(grads[i]) == len(g) {
			copy(grads[i], g)
		} else {
			grads[i] = g
		}
	}
	return nil
}

// Constant is f(x) = C.
type Constant struct {
	C float64
}

func (f Constant) Value(p geometry.Point) float64 { return f.C }
func (f Constant) Gradient(p geometry.Point) geometry.Point {
	return make(geometry.Point, p.Dim())
}
func (f Constant) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f Constant) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

// Linear is f(x) = A·x + B.
type Linear struct {
	A geometry.Point
	B float64
}

func (f Linear) Value(p geometry.Point) (v float64) {
	v = f.B
	for d := range p {
		v += f.A[d] * p[d]
	}
	return
}
func (f Linear) Gradient(p geometry.Point) geometry.Point {
	return f.A[:p.Dim()].Copy()
}
func (f Linear) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f Linear) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

// Monomial is f(x) = C Π x_d^P_d.
type Monomial struct {
	P []int
	C float64
}

func (f Monomial) Value(p geometry.Point) (v float64) {
	v = f.C
	for d := range p {
		v *= utils.POW(p[d], f.P[d])
	}
	return
}
func (f Monomial) Gradient(p geometry.Point) (g geometry.Point) {
	g = make(geometry.Point, p.Dim())
	for k := range g {
		if f.P[k] == 0 {
			continue
		}
		g[k] = f.C * float64(f.P[k])
		for d := range p {
			if d == k {
				g[k] *= utils.POW(p[d], f.P[d]-1)
			} else {
				g[k] *= utils.POW(p[d], f.P[d])
			}
		}
	}
	return
}
func (f Monomial) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f Monomial) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

// Sine is f(x) = C Π sin(K π x_d).
type Sine struct {
	K, C float64
}

func (f Sine) Value(p geometry.Point) (v float64) {
	v = f.C
	for _, x := range p {
		v *= math.Sin(f.K * math.Pi * x)
	}
	return
}
func (f Sine) Gradient(p geometry.Point) (g geometry.Point) {
	g = make(geometry.Point, p.Dim())
	for k := range g {
		g[k] = f.C * f.K * math.Pi
		for d, x := range p {
			if d == k {
				g[k] *= math.Cos(f.K * math.Pi * x)
			} else {
				g[k] *= math.Sin(f.K * math.Pi * x)
			}
		}
	}
	return
}
func (f Sine) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f Sine) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

// Exp is f(x) = C exp(A Σ x_d).
type Exp struct {
	A, C float64
}

func (f Exp) Value(p geometry.Point) float64 {
	var s float64
	for _, x := range p {
		s += x
	}
	return f.C * math.Exp(f.A*s)
}
func (f Exp) Gradient(p geometry.Point) (g geometry.Point) {
	g = make(geometry.Point, p.Dim())
	v := f.A * f.Value(p)
	for k := range g {
		g[k] = v
	}
	return
}
func (f Exp) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f Exp) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

// Func adapts a plain Go function. It has no gradient.
type Func func(p geometry.Point) float64

func (f Func) Value(p geometry.Point) float64 { return f(p) }
func (f Func) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}

// GradFunc adapts a value and a gradient function.
type GradFunc struct {
	F func(p geometry.Point) float64
	G func(p geometry.Point) geometry.Point
}

func (f GradFunc) Value(p geometry.Point) float64           { return f.F(p) }
func (f GradFunc) Gradient(p geometry.Point) geometry.Point { return f.G(p) }
func (f GradFunc) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f GradFunc) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

var names = map[string]func(dim int, params map[string]float64) fe.GradientFunction{
	"constant": func(dim int, params map[string]float64) fe.GradientFunction {
		return Constant{C: param(params, "c", 1)}
	},
	"linear": func(dim int, params map[string]float64) fe.GradientFunction {
		return Linear{
			A: geometry.Point{param(params, "ax", 1), param(params, "ay", 1), param(params, "az", 1)}[:dim],
			B: param(params, "b", 0),
		}
	},
	"monomial": func(dim int, params map[string]float64) fe.GradientFunction {
		P := []int{int(param(params, "px", 1)), int(param(params, "py", 0)), int(param(params, "pz", 0))}
		return Monomial{P: P[:dim], C: param(params, "c", 1)}
	},
	"sine": func(dim int, params map[string]float64) fe.GradientFunction {
		return Sine{K: param(params, "k", 1), C: param(params, "c", 1)}
	},
	"sod": func(dim int, params map[string]float64) fe.GradientFunction {
		return NewSod(param(params, "t", 0.2))
	},
	"exp": func(dim int, params map[string]float64) fe.GradientFunction {
		return Exp{A: param(params, "a", 1), C: param(params, "c", 1)}
	},
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// Names lists the functions known to NewByName.
func Names() (list []string) {
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)
	return
}

// NewByName builds one of the named functions. Parameter keys are lower case:
// c (scale), ax ay az b (linear), px py pz (monomial powers), k (sine wave
// number), a (exp rate), t (shock tube time).
func NewByName(name string, dim int, params map[string]float64) (f fe.GradientFunction, err error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("function dimension %d not in 1..3", dim)
	}
	lower := make(map[string]float64, len(params))
	for k, v := range params {
		lower[strings.ToLower(k)] = v
	}
	ctor, ok := names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown function %q, have %v", name, Names())
	}
	return ctor(dim, lower), nil
}
