package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// POW is x^p by repeated squaring for |p| <= 16 and math.Pow beyond.
func POW(x float64, p int) (y float64) {
	if p > 16 || p < -16 {
		return math.Pow(x, float64(p))
	}
	e := p
	if e < 0 {
		e = -e
	}
	y = 1
	for b := x; e > 0; e >>= 1 {
		if e&1 == 1 {
			y *= b
		}
		b *= b
	}
	if p < 0 {
		y = 1 / y
	}
	return
}

// IPOW is b^e for a non negative integer exponent.
func IPOW(b, e int) (r int) {
	if e < 0 {
		panic("negative integer power")
	}
	r = 1
	for ; e > 0; e-- {
		r *= b
	}
	return
}
