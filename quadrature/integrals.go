package quadrature

import (
	"fmt"

	"github.com/notargets/radfem/utils"
)

// Evaluator evaluates basis functions at reference points in [-1,1], one row
// per point and one column per function.
type Evaluator interface {
	Eval(x []float64) utils.Matrix
	Nbf() int
}

// MapNodes maps reference nodes onto [rmin, rmax]
func MapNodes(rmin, rmax float64, x []float64) (r []float64) {
	var (
		rmid = 0.5 * (rmax + rmin)
		rlen = 0.5 * (rmax - rmin)
	)
	r = make([]float64, len(x))
	for i, xi := range x {
		r[i] = rmid + rlen*xi
	}
	return
}

func checkNodes(name string, x, w []float64, bf utils.Matrix) {
	nr, nc := bf.Dims()
	if len(x) != len(w) || len(x) != nr {
		panic(fmt.Errorf("%s: dimension mismatch, %d nodes, %d weights, basis table %d x %d",
			name, len(x), len(w), nr, nc))
	}
}

// weighted returns (w*bf)^T bf for per-node weights w
func weighted(wp []float64, bf utils.Matrix) utils.Matrix {
	return bf.Copy().ScaleRows(wp).TransMul(bf)
}

// RadialIntegral returns ∫ B_i(r) r^n B_j(r) dr over [rmin, rmax]
func RadialIntegral(rmin, rmax float64, n int, x, w []float64, bf utils.Matrix) utils.Matrix {
	checkNodes("RadialIntegral", x, w, bf)
	var (
		rlen = 0.5 * (rmax - rmin)
		r    = MapNodes(rmin, rmax, x)
		wp   = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * rlen
		if n != 0 {
			wp[i] *= utils.POW(r[i], n)
		}
	}
	return weighted(wp, bf)
}

// DerivativeIntegral returns ∫ B'_i(r) B'_j(r) dr given reference derivatives
func DerivativeIntegral(rmin, rmax float64, x, w []float64, dbf utils.Matrix) utils.Matrix {
	checkNodes("DerivativeIntegral", x, w, dbf)
	var (
		rlen = 0.5 * (rmax - rmin)
		wp   = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] / rlen
	}
	return weighted(wp, dbf)
}

// MixedDerivativeIntegral returns ∫ B_i(r) r^n B'_j(r) dr
func MixedDerivativeIntegral(rmin, rmax float64, n int, x, w []float64, bf, dbf utils.Matrix) utils.Matrix {
	checkNodes("MixedDerivativeIntegral", x, w, bf)
	checkNodes("MixedDerivativeIntegral", x, w, dbf)
	var (
		r  = MapNodes(rmin, rmax, x)
		wp = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * utils.POW(r[i], n)
	}
	return bf.Copy().ScaleRows(wp).TransMul(dbf)
}

// PotentialIntegral returns ∫ B_i(r) V(r) B_j(r) dr for a caller supplied
// profile V, which may be singular at the origin.
func PotentialIntegral(rmin, rmax float64, x, w []float64, bf utils.Matrix, V func(r float64) float64) utils.Matrix {
	checkNodes("PotentialIntegral", x, w, bf)
	var (
		rlen = 0.5 * (rmax - rmin)
		r    = MapNodes(rmin, rmax, x)
		wp   = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * rlen * V(r[i])
	}
	return weighted(wp, bf)
}

// TabulatedIntegral is PotentialIntegral with V already evaluated at the
// mapped quadrature nodes.
func TabulatedIntegral(rmin, rmax float64, x, w []float64, bf utils.Matrix, V []float64) utils.Matrix {
	checkNodes("TabulatedIntegral", x, w, bf)
	if len(V) != len(x) {
		panic(fmt.Errorf("TabulatedIntegral: %d potential values for %d nodes", len(V), len(x)))
	}
	var (
		rlen = 0.5 * (rmax - rmin)
		wp   = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * rlen * V[i]
	}
	return weighted(wp, bf)
}

// SubintervalIntegral returns ∫ B_i(r) r^n B_j(r) dr over [a, b], a sub-range
// of the element [rmin, rmax], using the reference rule re-mapped onto [a, b].
func SubintervalIntegral(rmin, rmax, a, b float64, n int, x, w []float64, poly Evaluator) utils.Matrix {
	return subintervalKernel(rmin, rmax, a, b, x, w, poly, func(r float64) float64 {
		return utils.POW(r, n)
	})
}

func subintervalKernel(rmin, rmax, a, b float64, x, w []float64, poly Evaluator,
	f func(r float64) float64) utils.Matrix {
	var (
		rmid0 = 0.5 * (rmax + rmin)
		rlen0 = 0.5 * (rmax - rmin)
		hlen  = 0.5 * (b - a)
		r     = MapNodes(a, b, x)
		xpoly = make([]float64, len(r))
		wp    = make([]float64, len(r))
	)
	for i, ri := range r {
		xpoly[i] = (ri - rmid0) / rlen0
		wp[i] = w[i] * hlen * f(ri)
	}
	return weighted(wp, poly.Eval(xpoly))
}

// productTable returns the row-wise outer products B_i B_j, column i*nbf+j
func productTable(bf utils.Matrix) utils.Matrix {
	var (
		np, nbf = bf.Dims()
		R       = utils.NewMatrix(np, nbf*nbf)
	)
	for p := 0; p < np; p++ {
		row := bf.M.RawRowView(p)
		rowR := R.M.RawRowView(p)
		for fi := 0; fi < nbf; fi++ {
			for fj := 0; fj < nbf; fj++ {
				rowR[fi*nbf+fj] = row[fi] * row[fj]
			}
		}
	}
	return R
}

// ProductIntegral returns vec(∫ B_i B_j f(r) dr) as a 1 x nbf² row
func ProductIntegral(rmin, rmax float64, x, w []float64, bf utils.Matrix, f func(r float64) float64) utils.Matrix {
	checkNodes("ProductIntegral", x, w, bf)
	var (
		rlen = 0.5 * (rmax - rmin)
		r    = MapNodes(rmin, rmax, x)
		wp   = make([]float64, len(w))
	)
	for i := range w {
		wp[i] = w[i] * rlen * f(r[i])
	}
	return utils.NewMatrix(1, len(wp), wp).Mul(productTable(bf))
}
