package polybasis

import (
	"math"

	"github.com/notargets/radfem/utils"
)

// LegendreBasis holds the two hat functions (1-x)/2 and (1+x)/2 and the
// integrated Legendre bubbles (P_k - P_k-2)/sqrt(2(2k-1)), k=2..lmax, which
// vanish at both ends. Function order is [left hat, bubbles, right hat].
type LegendreBasis struct {
	lmax    int
	T       utils.Matrix // orthonormal Legendre -> basis transformation
	enabled enabledSet
}

func NewLegendreBasis(nfuncs int) (lb *LegendreBasis) {
	var (
		lmax = nfuncs - 1
		T    = utils.NewMatrix(lmax+1, nfuncs)
		// classical P_k = sqrt(2/(2k+1)) times the orthonormal polynomial
		cl = func(k int) float64 { return math.Sqrt(2 / float64(2*k+1)) }
	)
	// (1 -/+ x)/2 = P_0/2 -/+ P_1/2
	T.Set(0, 0, 0.5*cl(0))
	T.Set(1, 0, -0.5*cl(1))
	T.Set(0, nfuncs-1, 0.5*cl(0))
	T.Set(1, nfuncs-1, 0.5*cl(1))
	for k := 2; k <= lmax; k++ {
		norm := 1 / math.Sqrt(2*float64(2*k-1))
		T.Set(k, k-1, norm*cl(k))
		T.Set(k-2, k-1, -norm*cl(k-2))
	}
	lb = &LegendreBasis{
		lmax:    lmax,
		T:       T,
		enabled: newEnabledSet(nfuncs, 0, nfuncs-1),
	}
	return
}

func (lb *LegendreBasis) Kind() Kind    { return Legendre }
func (lb *LegendreBasis) Nbf() int      { return len(lb.enabled.idx) }
func (lb *LegendreBasis) NOverlap() int { return 1 }
func (lb *LegendreBasis) Order() int    { return lb.lmax }
func (lb *LegendreBasis) DropFirst()    { lb.enabled.dropFirst() }
func (lb *LegendreBasis) DropLast()     { lb.enabled.dropLast() }

func (lb *LegendreBasis) Copy() Basis {
	c := *lb
	c.T = lb.T.Copy()
	c.enabled = lb.enabled.copy()
	return &c
}

func (lb *LegendreBasis) EvalDerivN(x []float64, n int) utils.Matrix {
	return lb.enabled.columns(legendreDerivs(x, lb.lmax, n).Mul(lb.T))
}

func (lb *LegendreBasis) Eval(x []float64) utils.Matrix { return lb.EvalDerivN(x, 0) }

func (lb *LegendreBasis) EvalDeriv(x []float64) (f, df utils.Matrix) {
	return lb.EvalDerivN(x, 0), lb.EvalDerivN(x, 1)
}

func (lb *LegendreBasis) EvalLapl(x []float64) utils.Matrix { return lb.EvalDerivN(x, 2) }
