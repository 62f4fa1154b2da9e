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

// Linspace returns N equally spaced points from a to b inclusive
func Linspace(a, b float64, N int) (v []float64) {
	v = make([]float64, N)
	if N == 1 {
		v[0] = a
		return
	}
	h := (b - a) / float64(N-1)
	for i := range v {
		v[i] = a + float64(i)*h
	}
	v[N-1] = b
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		goto MATHPOW
	}

	if p < 0 {
		p = -pp
		flipped = true
	}
	switch p {
	case 0:
		y = 1
	case 1:
		y = x
	case 2:
		y = x * x
	case 3:
		y = x * x * x
	case 4:
		y = x * x
		y = y * y
	case 5:
		y = x * x
		y = y * y * x
	case 6:
		y = x * x
		y = y * y * y
	case 7:
		y = x * x
		y = y * y * y * x
	case 8:
		y = x * x
		y = y * y * y * y
	}
	if flipped {
		y = 1. / y
	}
	return

MATHPOW:
	y = math.Pow(x, float64(p))
	return
}

// Factorial is exact up to 170!, beyond which it overflows to +Inf
func Factorial(n int) (f float64) {
	if n < 0 {
		panic("negative factorial")
	}
	f = 1
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return
}

// LogFactorial returns ln(n!)
func LogFactorial(n int) float64 {
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}
