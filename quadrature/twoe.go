package quadrature

import (
	"fmt"
	"math"

	"github.com/notargets/radfem/utils"
)

// separable is a two-body radial kernel K(r1, r2) = f(r<) g(r>). f and g are
// stored scaled by exp(-shift r) and exp(+shift r), so the product picks up
// exp(-shift (r> - r<)) which is applied during accumulation.
type separable struct {
	f, g  func(r float64) float64
	shift float64
}

func coulombKernel(L int) separable {
	return separable{
		f: func(r float64) float64 { return utils.POW(r, L) },
		g: func(r float64) float64 { return utils.POW(r, -L-1) },
	}
}

func yukawaKernel(L int, lambda float64) separable {
	fac := float64(2*L+1) * lambda
	return separable{
		f:     func(r float64) float64 { return BesselIScaled(L, lambda*r) },
		g:     func(r float64) float64 { return fac * BesselKScaled(L, lambda*r) },
		shift: lambda,
	}
}

// innerIntegral returns, for every node r_p of the element, the row
// vec(∫_{rmin}^{r_p} B_k B_l f(r) dr) g(r_p). The running integral is
// advanced one sub-interval [r_{p-1}, r_p] at a time, each with a fresh copy
// of the reference rule mapped onto the sub-interval.
func innerIntegral(rmin, rmax float64, x, w []float64, poly Evaluator, K separable) (inner utils.Matrix) {
	var (
		nbf   = poly.Nbf()
		r     = MapNodes(rmin, rmax, x)
		np    = len(r)
		sum   = make([]float64, nbf*nbf)
		rprev = rmin
	)
	inner = utils.NewMatrix(np, nbf*nbf)
	for p := 0; p < np; p++ {
		if r[p] < rprev {
			panic(fmt.Errorf("quadrature nodes must be ascending: r[%d] = %g < %g", p, r[p], rprev))
		}
		rp := r[p]
		if K.shift != 0 {
			decay := math.Exp(-K.shift * (rp - rprev))
			for i := range sum {
				sum[i] *= decay
			}
		}
		sub := subintervalKernel(rmin, rmax, rprev, rp, x, w, poly, func(rr float64) float64 {
			val := K.f(rr)
			if K.shift != 0 {
				val *= math.Exp(-K.shift * (rp - rr))
			}
			return val
		})
		for i, val := range sub.Data() {
			sum[i] += val
		}
		gp := K.g(rp)
		row := inner.M.RawRowView(p)
		for i := range row {
			row[i] = sum[i] * gp
		}
		rprev = rp
	}
	return
}

func twoeKernelIntegral(rmin, rmax float64, x, w []float64, poly Evaluator, K separable) utils.Matrix {
	if len(x) != len(w) {
		panic(fmt.Errorf("dimension mismatch: %d nodes, %d weights", len(x), len(w)))
	}
	var (
		rlen  = 0.5 * (rmax - rmin)
		inner = innerIntegral(rmin, rmax, x, w, poly, K)
		bfp   = productTable(poly.Eval(x))
		wp    = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * rlen
	}
	ints := bfp.ScaleRows(wp).TransMul(inner)
	return ints.Add(ints.Transpose())
}

// TwoeIntegral returns the nbf² x nbf² matrix of
//
//	∫∫ B_i B_j(r1) r<^L / r>^(L+1) B_k B_l(r2) dr1 dr2
//
// with both coordinates inside the element, row i*nbf+j and column k*nbf+l.
func TwoeIntegral(rmin, rmax float64, x, w []float64, poly Evaluator, L int) utils.Matrix {
	return twoeKernelIntegral(rmin, rmax, x, w, poly, coulombKernel(L))
}

// YukawaIntegral is TwoeIntegral for the kernel (2L+1) λ i_L(λ r<) k_L(λ r>)
func YukawaIntegral(rmin, rmax float64, x, w []float64, poly Evaluator, L int, lambda float64) utils.Matrix {
	return twoeKernelIntegral(rmin, rmax, x, w, poly, yukawaKernel(L, lambda))
}

// BesselILIntegral returns ∫ B_i B_j i_L(λ r) dr
func BesselILIntegral(rmin, rmax float64, x, w []float64, bf utils.Matrix, L int, lambda float64) utils.Matrix {
	return PotentialIntegral(rmin, rmax, x, w, bf, func(r float64) float64 {
		return BesselI(L, lambda*r)
	})
}

// BesselKLIntegral returns ∫ B_i B_j k_L(λ r) dr
func BesselKLIntegral(rmin, rmax float64, x, w []float64, bf utils.Matrix, L int, lambda float64) utils.Matrix {
	return PotentialIntegral(rmin, rmax, x, w, bf, func(r float64) float64 {
		return BesselK(L, lambda*r)
	})
}

// ErfKernel returns the Legendre coefficient F_L(r1, r2) of erf(μ r12)/r12,
//
//	F_L = (2L+1)/2 ∫_{-1}^{1} erf(μ r12)/r12 P_L(t) dt
//
// computed by Gauss-Legendre quadrature in t = cos θ.
func ErfKernel(L int, mu, r1, r2 float64, t, wt []float64) (F float64) {
	return erfKernel(L, mu, r1, r2, t, wt, legendreP(L, t))
}

func erfKernel(L int, mu, r1, r2 float64, t, wt, pl []float64) (F float64) {
	for i, ti := range t {
		r12 := math.Sqrt(math.Max(r1*r1+r2*r2-2*r1*r2*ti, 0))
		var val float64
		if r12 < 1e-12 {
			val = 2 * mu / math.Sqrt(math.Pi)
		} else {
			val = math.Erf(mu*r12) / r12
		}
		F += wt[i] * val * pl[i]
	}
	F *= 0.5 * float64(2*L+1)
	return
}

// ErfKernelRule returns the cos θ rule used by ErfKernel for order L
func ErfKernelRule(L int) (t, wt []float64) {
	n := 2*L + 20
	if n < 48 {
		n = 48
	}
	return GaussLegendre(n)
}

// legendreP evaluates the classical Legendre polynomial P_L at t
func legendreP(L int, t []float64) []float64 {
	p := JacobiP(t, 0, 0, L)
	norm := math.Sqrt(float64(2*L+1) / 2)
	for i := range p {
		p[i] /= norm
	}
	return p
}

// ErfIntegral returns the nbf1² x nbf2² matrix of
//
//	∫∫ B_i B_j(r1) F_L(r1, r2) B_k B_l(r2) dr1 dr2
//
// with r1 in element 1 and r2 in element 2 by plain double quadrature.
func ErfIntegral(rmin1, rmax1 float64, x1, w1 []float64, bf1 utils.Matrix,
	rmin2, rmax2 float64, x2, w2 []float64, bf2 utils.Matrix, L int, mu float64) utils.Matrix {
	checkNodes("ErfIntegral", x1, w1, bf1)
	checkNodes("ErfIntegral", x2, w2, bf2)
	var (
		r1     = MapNodes(rmin1, rmax1, x1)
		r2     = MapNodes(rmin2, rmax2, x2)
		rlen1  = 0.5 * (rmax1 - rmin1)
		rlen2  = 0.5 * (rmax2 - rmin2)
		t, wt  = ErfKernelRule(L)
		pl     = legendreP(L, t)
		F      = utils.NewMatrix(len(r1), len(r2))
		wp1    = make([]float64, len(r1))
		wp2    = make([]float64, len(r2))
		bfp1   = productTable(bf1)
		bfp2   = productTable(bf2)
		sameEl = rmin1 == rmin2 && rmax1 == rmax2 && len(x1) == len(x2)
	)
	for p := range r1 {
		wp1[p] = w1[p] * rlen1
		for q := range r2 {
			if sameEl && q < p {
				F.M.Set(p, q, F.M.At(q, p))
				continue
			}
			F.M.Set(p, q, erfKernel(L, mu, r1[p], r2[q], t, wt, pl))
		}
	}
	for q := range r2 {
		wp2[q] = w2[q] * rlen2
	}
	return bfp1.ScaleRows(wp1).TransMul(F.Mul(bfp2.ScaleRows(wp2)))
}
