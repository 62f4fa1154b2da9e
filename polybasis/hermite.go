package polybasis

import (
	"fmt"

	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

// HermiteBasis interpolates the value and the first derOrder derivatives at
// every control node. Functions are ordered node by node, value first:
// node 0 is x=-1 and the last node is x=+1. The functions are expanded in
// orthonormal Legendre polynomials, coefficients from the inverse of the
// nodal constraint matrix.
type HermiteBasis struct {
	nnodes   int
	derOrder int
	x0       []float64
	C        utils.Matrix // Legendre coefficients, one column per function
	scale    []float64    // per function scale factor, see Rescale
	enabled  enabledSet
}

func NewHermiteBasis(nnodes, derOrder int) (hb *HermiteBasis, err error) {
	var (
		nfun = nnodes * (derOrder + 1)
		kmax = nfun - 1
		A    = utils.NewMatrix(nfun, nfun)
	)
	if derOrder < 1 {
		err = fmt.Errorf("%w: Hermite basis needs a derivative order of at least one, got %d",
			ErrUnsupportedBasis, derOrder)
		return
	}
	hb = &HermiteBasis{
		nnodes:   nnodes,
		derOrder: derOrder,
		x0:       quadrature.JacobiGL(0, 0, nnodes-1),
		scale:    utils.ConstArray(nfun, 1),
	}
	// Row (node, d) holds the d-th derivative of every Legendre polynomial
	for d := 0; d <= derOrder; d++ {
		P := legendreDerivs(hb.x0, kmax, d)
		for n := 0; n < nnodes; n++ {
			A.SetRow(n*(derOrder+1)+d, P.Row(n).Data())
		}
	}
	if hb.C, err = A.Inverse(); err != nil {
		err = fmt.Errorf("hermite constraint matrix: %w", err)
		return
	}
	hb.enabled = newEnabledSet(nfun, 0, nfun-(derOrder+1))
	return
}

func (hb *HermiteBasis) Kind() Kind {
	if hb.derOrder == 1 {
		return HermiteD1
	}
	return HermiteD2
}

func (hb *HermiteBasis) Nbf() int      { return len(hb.enabled.idx) }
func (hb *HermiteBasis) NOverlap() int { return hb.derOrder + 1 }
func (hb *HermiteBasis) Order() int    { return hb.nnodes*(hb.derOrder+1) - 1 }
func (hb *HermiteBasis) DropFirst()    { hb.enabled.dropFirst() }
func (hb *HermiteBasis) DropLast()     { hb.enabled.dropLast() }

func (hb *HermiteBasis) Copy() Basis {
	c := *hb
	c.C = hb.C.Copy()
	c.scale = append([]float64{}, hb.scale...)
	c.enabled = hb.enabled.copy()
	return &c
}

// Rescale multiplies the k-th derivative functions by rlen^k so that they
// carry unit k-th derivatives in r = rmid + rlen x.
func (hb *HermiteBasis) Rescale(rlen float64) {
	for n := 0; n < hb.nnodes; n++ {
		for d := 0; d <= hb.derOrder; d++ {
			hb.scale[n*(hb.derOrder+1)+d] = utils.POW(rlen, d)
		}
	}
}

func (hb *HermiteBasis) EvalDerivN(x []float64, n int) utils.Matrix {
	var (
		kmax = hb.nnodes*(hb.derOrder+1) - 1
		F    = legendreDerivs(x, kmax, n).Mul(hb.C)
	)
	for i := range x {
		row := F.M.RawRowView(i)
		for j := range row {
			row[j] *= hb.scale[j]
		}
	}
	return hb.enabled.columns(F)
}

func (hb *HermiteBasis) Eval(x []float64) utils.Matrix { return hb.EvalDerivN(x, 0) }

func (hb *HermiteBasis) EvalDeriv(x []float64) (f, df utils.Matrix) {
	return hb.EvalDerivN(x, 0), hb.EvalDerivN(x, 1)
}

func (hb *HermiteBasis) EvalLapl(x []float64) utils.Matrix { return hb.EvalDerivN(x, 2) }
