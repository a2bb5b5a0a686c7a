package types

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=NormType,MethodType,ConstraintType

type NormType uint8

const (
	Mean NormType = iota
	L1Norm
	L2Norm
	LinftyNorm
	H1Seminorm
	H1Norm
)

var NormNameMap = map[string]NormType{
	"mean":       Mean,
	"l1":         L1Norm,
	"l1norm":     L1Norm,
	"l2":         L2Norm,
	"l2norm":     L2Norm,
	"linfty":     LinftyNorm,
	"linftynorm": LinftyNorm,
	"linf":       LinftyNorm,
	"max":        LinftyNorm,
	"h1semi":     H1Seminorm,
	"h1seminorm": H1Seminorm,
	"h1":         H1Norm,
	"h1norm":     H1Norm,
}

func NewNormType(name string) (nt NormType, err error) {
	var ok bool
	if nt, ok = NormNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown norm type %q", name)
	}
	return
}

// IsValid reports whether nt names one of the defined norms.
func (nt NormType) IsValid() bool { return nt <= H1Norm }

// NeedsGradients reports whether the norm integrates gradients of the difference.
func (nt NormType) NeedsGradients() bool { return nt == H1Seminorm || nt == H1Norm }

// MethodType selects how a discrete field is built from a function.
type MethodType uint8

const (
	Interpolation MethodType = iota
	Projection
)

var MethodNameMap = map[string]MethodType{
	"interpolate":   Interpolation,
	"interpolation": Interpolation,
	"project":       Projection,
	"projection":    Projection,
}

func NewMethodType(name string) (mt MethodType, err error) {
	var ok bool
	if mt, ok = MethodNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown method %q", name)
	}
	return
}

// ConstraintType selects the homogeneous constraints applied during projection.
type ConstraintType uint8

const (
	NoConstraints ConstraintType = iota
	ZeroBoundary
	Periodic
)

var ConstraintNameMap = map[string]ConstraintType{
	"":              NoConstraints,
	"none":          NoConstraints,
	"zero-boundary": ZeroBoundary,
	"zero":          ZeroBoundary,
	"periodic":      Periodic,
}

func NewConstraintType(name string) (ct ConstraintType, err error) {
	var ok bool
	if ct, ok = ConstraintNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown constraint type %q", name)
	}
	return
}
