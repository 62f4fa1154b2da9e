package polybasis

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

var ErrUnsupportedBasis = errors.New("unsupported polynomial basis")

type Kind int

const (
	HermiteD1 Kind = iota
	HermiteD2
	Legendre
	LIPEquidistant
	LIPLobatto
)

func (k Kind) String() string {
	switch k {
	case HermiteD1:
		return "Hermite (first derivative)"
	case HermiteD2:
		return "Hermite (second derivative)"
	case Legendre:
		return "Legendre"
	case LIPEquidistant:
		return "LIP (equidistant nodes)"
	case LIPLobatto:
		return "LIP (Gauss-Lobatto nodes)"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Basis is a reference polynomial basis on [-1,1]. Evaluations return one
// row per point and one column per enabled function.
type Basis interface {
	Kind() Kind
	Nbf() int
	NOverlap() int
	Order() int
	Copy() Basis
	// DropFirst removes the function that is non-zero at x=-1, DropLast the
	// one non-zero at x=+1. Each may be called at most once.
	DropFirst()
	DropLast()
	Eval(x []float64) utils.Matrix
	EvalDeriv(x []float64) (f, df utils.Matrix)
	EvalLapl(x []float64) utils.Matrix
	// EvalDerivN returns the n-th derivative with respect to x
	EvalDerivN(x []float64, n int) utils.Matrix
}

// Rescaler is implemented by bases whose functions carry derivative degrees
// of freedom; Rescale makes them continuous in a physical coordinate for an
// element of half-length rlen.
type Rescaler interface {
	Rescale(rlen float64)
}

// New returns the basis selected by kind with nnodes control nodes
func New(kind Kind, nnodes int) (b Basis, err error) {
	if nnodes < 2 {
		err = fmt.Errorf("%w: %s needs at least two nodes, got %d", ErrUnsupportedBasis, kind, nnodes)
		return
	}
	switch kind {
	case HermiteD1:
		b, err = NewHermiteBasis(nnodes, 1)
	case HermiteD2:
		b, err = NewHermiteBasis(nnodes, 2)
	case Legendre:
		b = NewLegendreBasis(nnodes)
	case LIPEquidistant:
		b = NewLIPBasis(utils.Linspace(-1, 1, nnodes), kind)
	case LIPLobatto:
		b = NewLIPBasis(quadrature.JacobiGL(0, 0, nnodes-1), kind)
	default:
		err = fmt.Errorf("%w: selector %d", ErrUnsupportedBasis, int(kind))
	}
	return
}

// PrimitiveIndices lists the functions kept out of nnodes*noverlap nodal
// functions when the first and/or last value functions are dropped.
func PrimitiveIndices(nnodes, noverlap int, dropFirst, dropLast bool) (idx utils.Index) {
	var (
		nprim = nnodes * noverlap
	)
	for i := 0; i < nprim; i++ {
		if dropFirst && i == 0 {
			continue
		}
		if dropLast && i == nprim-noverlap {
			continue
		}
		idx = append(idx, i)
	}
	return
}

// enabledSet tracks which functions of a full basis remain after drops
type enabledSet struct {
	full        int
	first, last int // full indices of the value functions at -1 and +1
	idx         utils.Index
	droppedF    bool
	droppedL    bool
}

func newEnabledSet(full, first, last int) enabledSet {
	return enabledSet{
		full:  full,
		first: first,
		last:  last,
		idx:   utils.NewRange(0, full-1),
	}
}

func (es *enabledSet) copy() enabledSet {
	c := *es
	c.idx = append(utils.Index{}, es.idx...)
	return c
}

func (es *enabledSet) remove(full int) {
	for i, val := range es.idx {
		if val == full {
			es.idx = append(es.idx[:i], es.idx[i+1:]...)
			return
		}
	}
}

func (es *enabledSet) dropFirst() {
	if es.droppedF {
		panic("first function has already been dropped")
	}
	es.droppedF = true
	es.remove(es.first)
}

func (es *enabledSet) dropLast() {
	if es.droppedL {
		panic("last function has already been dropped")
	}
	es.droppedL = true
	es.remove(es.last)
}

// columns returns the enabled columns of a full evaluation
func (es *enabledSet) columns(F utils.Matrix) utils.Matrix {
	var (
		nr, _ = F.Dims()
	)
	if len(es.idx) == es.full {
		return F
	}
	return F.SubMatrix(utils.NewRange(0, nr-1), es.idx)
}

// legendreDerivs returns the n-th derivative of the orthonormal Legendre
// polynomials of degree 0..kmax, one row per point.
func legendreDerivs(x []float64, kmax, n int) (P utils.Matrix) {
	P = utils.NewMatrix(len(x), kmax+1)
	for k := n; k <= kmax; k++ {
		// d^n/dx^n P^(a,b)_k = prod_i sqrt((k-i)(k+i+1)) P^(a+n,b+n)_(k-n)
		fac := 1.
		for i := 0; i < n; i++ {
			fac *= math.Sqrt(float64((k - i) * (k + i + 1)))
		}
		col := quadrature.JacobiP(x, float64(n), float64(n), k-n)
		for i, val := range col {
			P.M.Set(i, k, fac*val)
		}
	}
	return
}
