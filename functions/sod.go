package functions

import (
	"fmt"
	"math"

	"github.com/notargets/femtools/geometry"
	"github.com/notargets/femtools/utils"
)

// Sod is the exact density of the Sod shock tube on [0,1] at time T, varying
// along the first coordinate: a rarefaction fan, a contact discontinuity and
// a shock moving into the low pressure state. Gradients are the classical
// ones away from the two jumps.
type Sod struct {
	T float64

	x1, x2, x3, x4 float64 // Fan head and tail, contact, shock
	rhoMiddle      float64
	rhoPost        float64
}

const (
	sodGamma = 1.4
	sodX0    = 0.5
	sodRhoL  = 1.
	sodPL    = 1.
	sodRhoR  = 0.125
	sodPR    = 0.1
)

var sodMu2 = (sodGamma - 1) / (sodGamma + 1)

func NewSod(T float64) (f *Sod) {
	if T < 0 {
		panic(fmt.Errorf("negative shock tube time %g", T))
	}
	var (
		cL      = math.Sqrt(sodGamma * sodPL / sodRhoL)
		pPost   = sodPressure()
		vPost   = 2 * (math.Sqrt(sodGamma) / (sodGamma - 1)) * (1 - math.Pow(pPost, (sodGamma-1)/(2*sodGamma)))
		rhoPost = sodRhoR * ((pPost/sodPR + sodMu2) / (1 + sodMu2*(pPost/sodPR)))
		vShock  = vPost * (rhoPost / sodRhoR) / ((rhoPost / sodRhoR) - 1)
		c2      = cL - 0.5*(sodGamma-1)*vPost
	)
	return &Sod{
		T:         T,
		x1:        sodX0 - cL*T,
		x2:        sodX0 + T*(vPost-c2),
		x3:        sodX0 + vPost*T,
		x4:        sodX0 + vShock*T,
		rhoMiddle: sodRhoL * math.Pow(pPost/sodPL, 1/sodGamma),
		rhoPost:   rhoPost,
	}
}

// ShockPosition returns the location of the shock at time T.
func (f *Sod) ShockPosition() float64 { return f.x4 }

func (f *Sod) Value(p geometry.Point) float64 {
	x := p[0]
	switch {
	case x < f.x1:
		return sodRhoL
	case x < f.x2:
		return sodRhoL * math.Pow(f.fanSound(x)/f.soundL(), 2/(sodGamma-1))
	case x < f.x3:
		return f.rhoMiddle
	case x < f.x4:
		return f.rhoPost
	}
	return sodRhoR
}

func (f *Sod) Gradient(p geometry.Point) (g geometry.Point) {
	g = make(geometry.Point, p.Dim())
	x := p[0]
	if f.T > 0 && x >= f.x1 && x < f.x2 {
		var (
			cL = f.soundL()
			e  = 2 / (sodGamma - 1)
		)
		g[0] = sodRhoL * e * math.Pow(f.fanSound(x)/cL, e-1) * (-sodMu2 / (f.T * cL))
	}
	return
}

func (f *Sod) ValueList(points []geometry.Point, values []float64) error {
	return valueList(f, points, values)
}
func (f *Sod) GradientList(points []geometry.Point, grads []geometry.Point) error {
	return gradientList(f, points, grads)
}

func (f *Sod) soundL() float64 { return math.Sqrt(sodGamma * sodPL / sodRhoL) }

// fanSound is the speed of sound inside the rarefaction fan.
func (f *Sod) fanSound(x float64) float64 {
	return sodMu2*(sodX0-x)/f.T + (1-sodMu2)*f.soundL()
}

// sodResidual vanishes at the pressure behind the shock.
func sodResidual(P float64) float64 {
	return (P-sodPR)*math.Sqrt(utils.POW(1-sodMu2, 2)/(sodRhoR*(P+sodMu2*sodPR))) -
		2*(math.Sqrt(sodGamma)/(sodGamma-1))*(1-math.Pow(P, (sodGamma-1)/(2*sodGamma)))
}

// sodPressure finds the post shock pressure by secant iteration.
func sodPressure() float64 {
	var (
		p0, p1 = sodPR, sodPL
		r0, r1 = sodResidual(p0), sodResidual(p1)
	)
	for i := 0; i < 100 && math.Abs(r1) > 1.e-14; i++ {
		p0, p1 = p1, p1-r1*(p1-p0)/(r1-r0)
		r0, r1 = r1, sodResidual(p1)
	}
	return p1
}
