package radial

import (
	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

// TwoeIntegral returns the primitive two-electron matrix of multipole order L
// with both electrons inside element iel, rows i*Nprim+j and columns k*Nprim+l.
func (rb *Basis) TwoeIntegral(L, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.TwoeIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.poly[iel], L)
}

// YukawaIntegral is TwoeIntegral for the screened kernel exp(-λ r12)/r12
func (rb *Basis) YukawaIntegral(L int, lambda float64, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.YukawaIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.poly[iel], L, lambda)
}

// productIntegral returns vec(∫ B_i B_j f(r) dr) as a 1 x Nprim² row
func (rb *Basis) productIntegral(iel int, f func(r float64) float64) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.ProductIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel], f)
}

// MultipoleMoment returns vec(∫ B_i B_j r^L dr)
func (rb *Basis) MultipoleMoment(L, iel int) utils.Matrix {
	return rb.productIntegral(iel, func(r float64) float64 { return utils.POW(r, L) })
}

// MultipolePotential returns vec(∫ B_i B_j r^(-L-1) dr)
func (rb *Basis) MultipolePotential(L, iel int) utils.Matrix {
	return rb.productIntegral(iel, func(r float64) float64 { return utils.POW(r, -L-1) })
}

// YukawaMoment returns vec(∫ B_i B_j i_L(λr) dr)
func (rb *Basis) YukawaMoment(L int, lambda float64, iel int) utils.Matrix {
	return rb.productIntegral(iel, func(r float64) float64 { return quadrature.BesselI(L, lambda*r) })
}

// YukawaPotential returns vec(∫ B_i B_j (2L+1) λ k_L(λr) dr)
func (rb *Basis) YukawaPotential(L int, lambda float64, iel int) utils.Matrix {
	fac := float64(2*L+1) * lambda
	return rb.productIntegral(iel, func(r float64) float64 { return fac * quadrature.BesselK(L, lambda*r) })
}

// DisjointIntegral is the two-electron matrix of order L for electron 1 in
// iel and electron 2 in jel != iel, where the kernel factorizes.
func (rb *Basis) DisjointIntegral(L, iel, jel int) utils.Matrix {
	if iel > jel {
		return rb.MultipolePotential(L, iel).TransMul(rb.MultipoleMoment(L, jel))
	}
	return rb.MultipoleMoment(L, iel).TransMul(rb.MultipolePotential(L, jel))
}

// DisjointYukawaIntegral is DisjointIntegral for the screened kernel
func (rb *Basis) DisjointYukawaIntegral(L int, lambda float64, iel, jel int) utils.Matrix {
	if iel > jel {
		return rb.YukawaPotential(L, lambda, iel).TransMul(rb.YukawaMoment(L, lambda, jel))
	}
	return rb.YukawaMoment(L, lambda, iel).TransMul(rb.YukawaPotential(L, lambda, jel))
}

// ErfIntegral returns the long-range erf(μ r12)/r12 two-electron matrix of
// order L with electron 1 in iel and electron 2 in jel.
func (rb *Basis) ErfIntegral(L int, mu float64, iel, jel int) utils.Matrix {
	rb.checkElement(iel)
	rb.checkElement(jel)
	return quadrature.ErfIntegral(
		rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel],
		rb.rmin(jel), rb.rmax(jel), rb.rule.X, rb.rule.W, rb.bf[jel], L, mu)
}

// ErfcIntegral returns the short-range erfc(μ r12)/r12 two-electron matrix,
// the Coulomb matrix minus its long-range part.
func (rb *Basis) ErfcIntegral(L int, mu float64, iel, jel int) utils.Matrix {
	var (
		C utils.Matrix
	)
	if iel == jel {
		C = rb.TwoeIntegral(L, iel)
	} else {
		C = rb.DisjointIntegral(L, iel, jel)
	}
	return C.Subtract(rb.ErfIntegral(L, mu, iel, jel))
}
