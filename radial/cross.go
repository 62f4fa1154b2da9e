package radial

import (
	"sort"

	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

// crossIntegral returns ∫ B^lh_i f(r) B^rh_j dr between two radial bases over
// their common range. The range is split at the boundaries of both meshes so
// that every piece lies in one element of each basis, and integrated with a
// Gauss-Legendre rule long enough for both. lhder and rhder select d/dr.
func (rb *Basis) crossIntegral(rh *Basis, lhder, rhder bool, f func(r float64) float64) utils.Matrix {
	var (
		nq   = max(rb.NQuad(), rh.NQuad())
		x, w = quadrature.GaussLegendre(nq)
		rend = min(rb.bval[len(rb.bval)-1], rh.bval[len(rh.bval)-1])
		cuts = mergeBoundaries(rb.bval, rh.bval, rend)
		D    = utils.NewDOK(rb.nbf, rh.nbf)
	)
	for k := 0; k+1 < len(cuts); k++ {
		var (
			a, b = cuts[k], cuts[k+1]
			rmid = 0.5 * (a + b)
			hlen = 0.5 * (b - a)
			r    = quadrature.MapNodes(a, b, x)
			wp   = make([]float64, nq)
			iel  = rb.ElementOf(rmid)
			jel  = rh.ElementOf(rmid)
		)
		if iel < 0 || jel < 0 {
			continue
		}
		for i := range r {
			wp[i] = w[i] * hlen * f(r[i])
		}
		bl := rb.evalElement(iel, r, lhder)
		br := rh.evalElement(jel, r, rhder)
		D.AddBlock(rb.GlobalIndex(iel), rh.GlobalIndex(jel), bl.ScaleRows(wp).TransMul(br))
	}
	return D.ToMatrix()
}

// evalElement evaluates the local functions of iel, or their r-derivatives,
// at physical radii inside the element.
func (rb *Basis) evalElement(iel int, r []float64, deriv bool) utils.Matrix {
	var (
		rmid = 0.5 * (rb.rmin(iel) + rb.rmax(iel))
		rlen = rb.rlen(iel)
		x    = make([]float64, len(r))
	)
	for i, ri := range r {
		x[i] = (ri - rmid) / rlen
	}
	if deriv {
		return rb.poly[iel].EvalDerivN(x, 1).Scale(1 / rlen)
	}
	return rb.poly[iel].Eval(x)
}

func mergeBoundaries(b1, b2 []float64, rend float64) (cuts []float64) {
	all := append(append([]float64{}, b1...), b2...)
	sort.Float64s(all)
	for _, b := range all {
		if b > rend {
			break
		}
		if len(cuts) == 0 || b > cuts[len(cuts)-1] {
			cuts = append(cuts, b)
		}
	}
	return
}

// CrossRadialIntegral returns ∫ B^rb_i r^n B^rh_j dr, with optional
// r-derivatives on either side.
func (rb *Basis) CrossRadialIntegral(rh *Basis, n int, lhder, rhder bool) utils.Matrix {
	return rb.crossIntegral(rh, lhder, rhder, func(r float64) float64 { return utils.POW(r, n) })
}

// CrossOverlap returns ∫ B^rb_i B^rh_j dr
func (rb *Basis) CrossOverlap(rh *Basis) utils.Matrix {
	return rb.CrossRadialIntegral(rh, 0, false, false)
}

// CrossModelPotential returns ∫ B^rb_i V(r) B^rh_j dr
func (rb *Basis) CrossModelPotential(rh *Basis, pot Potential, lhder, rhder bool) utils.Matrix {
	return rb.crossIntegral(rh, lhder, rhder, pot.V)
}
