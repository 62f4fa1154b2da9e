package quadrature

import (
	"math"
)

// Modified spherical Bessel functions in the normalization used by the
// Yukawa expansion
//
//	exp(-λ r12)/r12 = λ Σ_L (2L+1) i_L(λ r<) k_L(λ r>) P_L(cos θ)
//
// with i_0(x) = sinh(x)/x and k_0(x) = exp(-x)/x.

const besselSeriesCut = 30.

// BesselIScaled returns i_L(x) exp(-x)
func BesselIScaled(L int, x float64) float64 {
	if x == 0 {
		if L == 0 {
			return 1
		}
		return 0
	}
	if x < besselSeriesCut+float64(L) {
		return besselISeries(L, x) * math.Exp(-x)
	}
	// Upward recursion is stable once x exceeds L
	var (
		e2x  = math.Exp(-2 * x)
		im1  = (1 - e2x) / (2 * x)
		i0   = (1+e2x)/(2*x) - (1-e2x)/(2*x*x)
		next float64
	)
	if L == 0 {
		return im1
	}
	for l := 1; l < L; l++ {
		next = im1 - float64(2*l+1)/x*i0
		im1, i0 = i0, next
	}
	return i0
}

// besselISeries sums x^L/(2L+1)!! Σ_k (x²/2)^k / (k! (2L+3)...(2L+2k+1))
func besselISeries(L int, x float64) (sum float64) {
	var (
		half = x * x / 2
		term = 1.
	)
	for l := 1; l <= L; l++ {
		term *= x / float64(2*l+1)
	}
	for k := 1; k < 1000; k++ {
		sum += term
		term *= half / (float64(k) * float64(2*L+2*k+1))
		if term < 1e-17*sum {
			break
		}
	}
	sum += term
	return
}

// BesselKScaled returns k_L(x) exp(x)
func BesselKScaled(L int, x float64) float64 {
	var (
		k0 = 1 / x
		k1 = 1/x + 1/(x*x)
	)
	if L == 0 {
		return k0
	}
	for l := 1; l < L; l++ {
		k0, k1 = k1, k0+float64(2*l+1)/x*k1
	}
	return k1
}

func BesselI(L int, x float64) float64 {
	if x < besselSeriesCut+float64(L) {
		if x == 0 {
			return BesselIScaled(L, 0)
		}
		return besselISeries(L, x)
	}
	return BesselIScaled(L, x) * math.Exp(x)
}

func BesselK(L int, x float64) float64 {
	return BesselKScaled(L, x) * math.Exp(-x)
}
