package radial

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notargets/radfem/polybasis"
	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

var ErrInsufficientQuadrature = errors.New("insufficient quadrature order")

// Basis is a finite-element radial basis: one copy of a reference polynomial
// basis per element of the mesh bval, stitched into globally continuous
// functions by sharing the NOverlap functions at every interior boundary.
type Basis struct {
	proto     polybasis.Basis
	rule      quadrature.Rule
	bval      []float64
	dropFirst bool
	dropLast  bool
	poly      []polybasis.Basis
	bf, df    []utils.Matrix // per element at the quadrature nodes, df in x
	ifirst    []int
	nbf       int
}

// NewBasis builds a basis that vanishes at both ends of the mesh
func NewBasis(poly polybasis.Basis, nquad int, rule quadrature.RuleType, bval []float64) (rb *Basis, err error) {
	return NewBasisBC(poly, nquad, rule, bval, true, true)
}

// NewBasisBC builds a basis, dropping the function that is non-zero at the
// first and/or the last boundary.
func NewBasisBC(poly polybasis.Basis, nquad int, rule quadrature.RuleType, bval []float64,
	dropFirst, dropLast bool) (rb *Basis, err error) {
	if err = CheckBoundaries(bval); err != nil {
		return
	}
	if nquad < poly.Order()+1 {
		err = fmt.Errorf("%w: %d points cannot integrate products of a degree %d basis",
			ErrInsufficientQuadrature, nquad, poly.Order())
		return
	}
	rb = &Basis{
		proto:     poly.Copy(),
		bval:      append([]float64{}, bval...),
		dropFirst: dropFirst,
		dropLast:  dropLast,
	}
	if rb.rule, err = quadrature.NewRule(rule, nquad); err != nil {
		return nil, err
	}
	rb.build()
	return
}

func (rb *Basis) build() {
	var (
		Nel = len(rb.bval) - 1
		nov = rb.proto.NOverlap()
	)
	rb.poly = make([]polybasis.Basis, Nel)
	rb.bf = make([]utils.Matrix, Nel)
	rb.df = make([]utils.Matrix, Nel)
	rb.ifirst = make([]int, Nel)
	rb.nbf = 0
	for iel := 0; iel < Nel; iel++ {
		p := rb.proto.Copy()
		if rs, ok := p.(polybasis.Rescaler); ok {
			rs.Rescale(0.5 * (rb.bval[iel+1] - rb.bval[iel]))
		}
		if iel == 0 && rb.dropFirst {
			p.DropFirst()
		}
		if iel == Nel-1 && rb.dropLast {
			p.DropLast()
		}
		rb.poly[iel] = p
		rb.bf[iel], rb.df[iel] = p.EvalDeriv(rb.rule.X)
		rb.bf[iel].SetReadOnly("bf")
		rb.df[iel].SetReadOnly("df")
		if iel > 0 {
			rb.ifirst[iel] = rb.ifirst[iel-1] + rb.poly[iel-1].Nbf() - nov
		}
		rb.nbf += p.Nbf()
	}
	rb.nbf -= (Nel - 1) * nov
}

// AddBoundary inserts a new element boundary at r and rebuilds the elements
func (rb *Basis) AddBoundary(r float64) (err error) {
	var (
		bval = append([]float64{}, rb.bval...)
		i    = sort.SearchFloat64s(bval, r)
	)
	bval = append(bval[:i], append([]float64{r}, bval[i:]...)...)
	if err = CheckBoundaries(bval); err != nil {
		return
	}
	rb.bval = bval
	rb.build()
	return
}

func (rb *Basis) checkElement(iel int) {
	if iel < 0 || iel >= rb.Nel() {
		panic(fmt.Errorf("element index %d out of range [0, %d)", iel, rb.Nel()))
	}
}

func (rb *Basis) rmin(iel int) float64 { return rb.bval[iel] }
func (rb *Basis) rmax(iel int) float64 { return rb.bval[iel+1] }
func (rb *Basis) rlen(iel int) float64 { return 0.5 * (rb.bval[iel+1] - rb.bval[iel]) }

func (rb *Basis) Nel() int                  { return len(rb.bval) - 1 }
func (rb *Basis) Nbf() int                  { return rb.nbf }
func (rb *Basis) NQuad() int                { return rb.rule.Len() }
func (rb *Basis) NOverlap() int             { return rb.proto.NOverlap() }
func (rb *Basis) Boundaries() []float64     { return rb.bval }
func (rb *Basis) PolyKind() polybasis.Kind  { return rb.proto.Kind() }
func (rb *Basis) Rule() quadrature.RuleType { return rb.rule.Type }
func (rb *Basis) DropsFirst() bool          { return rb.dropFirst }
func (rb *Basis) DropsLast() bool           { return rb.dropLast }

// Nprim is the number of local functions on element iel
func (rb *Basis) Nprim(iel int) int {
	rb.checkElement(iel)
	return rb.poly[iel].Nbf()
}

// GetIdx returns the first and last global index of the functions on iel
func (rb *Basis) GetIdx(iel int) (ifirst, ilast int) {
	rb.checkElement(iel)
	ifirst = rb.ifirst[iel]
	ilast = ifirst + rb.poly[iel].Nbf() - 1
	return
}

// GlobalIndex lists the global index of every local function on iel
func (rb *Basis) GlobalIndex(iel int) utils.Index {
	ifirst, ilast := rb.GetIdx(iel)
	return utils.NewRange(ifirst, ilast)
}

// GetR returns the quadrature nodes mapped into element iel
func (rb *Basis) GetR(iel int) []float64 {
	rb.checkElement(iel)
	return quadrature.MapNodes(rb.rmin(iel), rb.rmax(iel), rb.rule.X)
}

// GetWrad returns the quadrature weights including the element Jacobian
func (rb *Basis) GetWrad(iel int) []float64 {
	rb.checkElement(iel)
	w := make([]float64, rb.rule.Len())
	for i, wi := range rb.rule.W {
		w[i] = wi * rb.rlen(iel)
	}
	return w
}

func (rb *Basis) GetBf(iel int) utils.Matrix {
	rb.checkElement(iel)
	return rb.bf[iel]
}

// GetDf returns d/dr of the local functions at the quadrature nodes
func (rb *Basis) GetDf(iel int) utils.Matrix {
	rb.checkElement(iel)
	return rb.df[iel].Copy().Scale(1 / rb.rlen(iel))
}

// GetLf returns d²/dr² of the local functions at the quadrature nodes
func (rb *Basis) GetLf(iel int) utils.Matrix {
	rb.checkElement(iel)
	rlen := rb.rlen(iel)
	return rb.poly[iel].EvalLapl(rb.rule.X).Scale(1 / (rlen * rlen))
}

// Poly returns the polynomial basis of element iel
func (rb *Basis) Poly(iel int) polybasis.Basis {
	rb.checkElement(iel)
	return rb.poly[iel]
}

// ElementOf returns the element containing r, the last element holding its
// right boundary, or -1 outside the mesh.
func (rb *Basis) ElementOf(r float64) int {
	if r < rb.bval[0] || r > rb.bval[len(rb.bval)-1] {
		return -1
	}
	iel := sort.SearchFloat64s(rb.bval, r) - 1
	if iel < 0 {
		iel = 0
	}
	if iel >= rb.Nel() {
		iel = rb.Nel() - 1
	}
	return iel
}

// EvalDerivN returns the n-th r-derivative of every global function at
// the radii r, one row per radius. Radii outside the mesh give zeros.
func (rb *Basis) EvalDerivN(r []float64, n int) (F utils.Matrix) {
	F = utils.NewMatrix(len(r), rb.nbf)
	for i, ri := range r {
		iel := rb.ElementOf(ri)
		if iel < 0 {
			continue
		}
		var (
			x    = (ri - 0.5*(rb.rmin(iel)+rb.rmax(iel))) / rb.rlen(iel)
			vals = rb.poly[iel].EvalDerivN([]float64{x}, n).Scale(1 / utils.POW(rb.rlen(iel), n))
		)
		ifirst, _ := rb.GetIdx(iel)
		F.SetSub(i, ifirst, vals)
	}
	return
}

// Eval returns every global function at the radii r
func (rb *Basis) Eval(r []float64) utils.Matrix { return rb.EvalDerivN(r, 0) }

// Assemble sums per-element matrices into the global Nbf x Nbf matrix
func (rb *Basis) Assemble(elem func(iel int) utils.Matrix) utils.Matrix {
	D := utils.NewDOK(rb.nbf, rb.nbf)
	for iel := 0; iel < rb.Nel(); iel++ {
		idx := rb.GlobalIndex(iel)
		D.AddBlock(idx, idx, elem(iel))
	}
	return D.ToMatrix()
}

// AssembleVector sums per-element vectors into a global vector
func (rb *Basis) AssembleVector(elem func(iel int) []float64) (v []float64) {
	v = make([]float64, rb.nbf)
	for iel := 0; iel < rb.Nel(); iel++ {
		ifirst, _ := rb.GetIdx(iel)
		for i, val := range elem(iel) {
			v[ifirst+i] += val
		}
	}
	return
}
