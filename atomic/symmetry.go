package atomic

import (
	"fmt"
	"math"

	"github.com/notargets/radfem/utils"
)

// Symmetry selects how basis functions are grouped into blocks that the
// Hamiltonian does not couple.
type Symmetry uint8

const (
	SymNone   Symmetry = iota // A single block
	SymM                      // One block per m
	SymLM                     // One block per (l, m)
	// SymParity groups by (m, l mod 2). This is inversion symmetry only for a
	// single center or equal charges Zl = Zr, otherwise the blocks couple.
	SymParity
)

func (s Symmetry) String() string {
	switch s {
	case SymNone:
		return "none"
	case SymM:
		return "m"
	case SymLM:
		return "lm"
	case SymParity:
		return "parity"
	}
	return fmt.Sprintf("Symmetry(%d)", uint8(s))
}

// angularIndices lists every radial function of the angular function iang
func (b *TwoDBasis) angularIndices(iang int) utils.Index {
	Nrad := b.Nrad()
	return utils.NewRange(iang*Nrad, (iang+1)*Nrad-1)
}

// MIndices lists the functions with magnetic quantum number m
func (b *TwoDBasis) MIndices(m int) (idx utils.Index) {
	for iang, mm := range b.mval {
		if mm == m {
			idx = append(idx, b.angularIndices(iang)...)
		}
	}
	return
}

// LMIndices lists the functions of the angular function (l, m)
func (b *TwoDBasis) LMIndices(l, m int) (idx utils.Index) {
	for iang := range b.lval {
		if b.lval[iang] == l && b.mval[iang] == m {
			idx = append(idx, b.angularIndices(iang)...)
		}
	}
	return
}

// GetSymIdx returns the function blocks of sym in order of first appearance
func (b *TwoDBasis) GetSymIdx(sym Symmetry) (blocks []utils.Index, err error) {
	var label func(iang int) [2]int
	switch sym {
	case SymNone:
		return []utils.Index{utils.NewRange(0, b.Nbf()-1)}, nil
	case SymM:
		label = func(iang int) [2]int { return [2]int{b.mval[iang], 0} }
	case SymLM:
		label = func(iang int) [2]int { return [2]int{b.lval[iang], b.mval[iang]} }
	case SymParity:
		label = func(iang int) [2]int { return [2]int{b.mval[iang], b.lval[iang] % 2} }
	default:
		err = fmt.Errorf("unknown symmetry %s", sym)
		return
	}
	var (
		order = make(map[[2]int]int)
	)
	for iang := range b.lval {
		key := label(iang)
		ib, ok := order[key]
		if !ok {
			ib = len(blocks)
			order[key] = ib
			blocks = append(blocks, nil)
		}
		blocks[ib] = append(blocks[ib], b.angularIndices(iang)...)
	}
	return
}

// Shalf returns X with X^T X = S, block diagonal in sym. With chol X is the
// Cholesky factor, otherwise the symmetric square root.
func (b *TwoDBasis) Shalf(chol bool, sym Symmetry) (utils.Matrix, error) {
	return b.orthonormalizer(chol, sym, false)
}

// Sinvh returns X with X^T S X = I, block diagonal in sym, the inverse of
// Shalf.
func (b *TwoDBasis) Sinvh(chol bool, sym Symmetry) (utils.Matrix, error) {
	return b.orthonormalizer(chol, sym, true)
}

func (b *TwoDBasis) orthonormalizer(chol bool, sym Symmetry, inverse bool) (X utils.Matrix, err error) {
	var (
		S      = b.Overlap()
		blocks []utils.Index
	)
	if blocks, err = b.GetSymIdx(sym); err != nil {
		return
	}
	X = utils.NewMatrix(b.Nbf(), b.Nbf())
	for _, idx := range blocks {
		var Xb utils.Matrix
		if Xb, err = halfPower(S.SubMatrix(idx, idx), chol, inverse); err != nil {
			err = fmt.Errorf("symmetry block of %d functions: %w", len(idx), err)
			return
		}
		for ii, i := range idx {
			for jj, j := range idx {
				X.Set(i, j, Xb.At(ii, jj))
			}
		}
	}
	return
}

// halfPower factors S after scaling it to unit diagonal, S = D Sn D
func halfPower(S utils.Matrix, chol, inverse bool) (X utils.Matrix, err error) {
	var (
		n, _    = S.Dims()
		d, dinv = make([]float64, n), make([]float64, n)
	)
	for i := range d {
		if S.At(i, i) <= 0 {
			err = fmt.Errorf("overlap matrix has non-positive diagonal %g at %d", S.At(i, i), i)
			return
		}
		d[i] = math.Sqrt(S.At(i, i))
		dinv[i] = 1 / d[i]
	}
	var (
		Dinv = utils.NewDiagonal(dinv)
		Sn   = Dinv.Mul(S).Mul(Dinv).Symmetrize()
	)
	switch {
	case chol && inverse:
		var U utils.Matrix
		if U, err = Sn.CholeskyUpper(); err != nil {
			return
		}
		if X, err = U.UpperTriInverse(); err != nil {
			return
		}
		X = Dinv.Mul(X)
	case chol:
		if X, err = Sn.CholeskyUpper(); err != nil {
			return
		}
		X = X.Mul(utils.NewDiagonal(d))
	case inverse:
		if X, err = Sn.SymPower(-0.5); err != nil {
			return
		}
		X = Dinv.Mul(X)
	default:
		if X, err = Sn.SymPower(0.5); err != nil {
			return
		}
		X = X.Mul(utils.NewDiagonal(d))
	}
	return
}
