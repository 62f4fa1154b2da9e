package polybasis

import (
	"github.com/notargets/radfem/utils"
)

// LIPBasis is the set of Lagrange cardinal polynomials through the control
// nodes x0, which must include -1 and +1 as first and last entries.
type LIPBasis struct {
	kind    Kind
	x0      []float64
	D       utils.Matrix // D[i][j] = l_j'(x0[i])
	enabled enabledSet
}

func NewLIPBasis(x0 []float64, kind Kind) (lb *LIPBasis) {
	var (
		n  = len(x0)
		bw = make([]float64, n) // barycentric weights
		D  = utils.NewMatrix(n, n)
	)
	for j := range x0 {
		bw[j] = 1
		for m := range x0 {
			if m != j {
				bw[j] /= x0[j] - x0[m]
			}
		}
	}
	for i := 0; i < n; i++ {
		var diag float64
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			val := bw[j] / bw[i] / (x0[i] - x0[j])
			D.M.Set(i, j, val)
			diag -= val
		}
		D.M.Set(i, i, diag)
	}
	lb = &LIPBasis{
		kind:    kind,
		x0:      append([]float64{}, x0...),
		D:       D,
		enabled: newEnabledSet(n, 0, n-1),
	}
	return
}

func (lb *LIPBasis) Kind() Kind    { return lb.kind }
func (lb *LIPBasis) Nbf() int      { return len(lb.enabled.idx) }
func (lb *LIPBasis) NOverlap() int { return 1 }
func (lb *LIPBasis) Order() int    { return len(lb.x0) - 1 }
func (lb *LIPBasis) DropFirst()    { lb.enabled.dropFirst() }
func (lb *LIPBasis) DropLast()     { lb.enabled.dropLast() }

// Nodes returns the control nodes
func (lb *LIPBasis) Nodes() []float64 { return lb.x0 }

func (lb *LIPBasis) Copy() Basis {
	c := *lb
	c.x0 = append([]float64{}, lb.x0...)
	c.D = lb.D.Copy()
	c.enabled = lb.enabled.copy()
	return &c
}

// cardinal evaluates every cardinal polynomial at x
func (lb *LIPBasis) cardinal(x []float64) (F utils.Matrix) {
	var (
		n = len(lb.x0)
	)
	F = utils.NewMatrix(len(x), n)
	for i, xi := range x {
		row := F.M.RawRowView(i)
		for j, xj := range lb.x0 {
			val := 1.
			for m, xm := range lb.x0 {
				if m != j {
					val *= (xi - xm) / (xj - xm)
				}
			}
			row[j] = val
		}
	}
	return
}

// EvalDerivN uses l_j^(n)(x) = Σ_m l_m(x) (D^n)[m][j], exact because the
// derivative of a cardinal polynomial is again interpolated by the nodes.
func (lb *LIPBasis) EvalDerivN(x []float64, n int) utils.Matrix {
	F := lb.cardinal(x)
	for k := 0; k < n; k++ {
		F = F.Mul(lb.D)
	}
	return lb.enabled.columns(F)
}

func (lb *LIPBasis) Eval(x []float64) utils.Matrix { return lb.EvalDerivN(x, 0) }

func (lb *LIPBasis) EvalDeriv(x []float64) (f, df utils.Matrix) {
	var (
		F = lb.cardinal(x)
	)
	return lb.enabled.columns(F), lb.enabled.columns(F.Mul(lb.D))
}

func (lb *LIPBasis) EvalLapl(x []float64) utils.Matrix { return lb.EvalDerivN(x, 2) }
