package atomic

import (
	"fmt"

	"github.com/notargets/radfem/utils"
)

// radialDummies lists the radial functions left non-zero at a mesh end
func (b *TwoDBasis) radialDummies() (idx utils.Index) {
	if !b.radial.DropsFirst() {
		idx = append(idx, 0)
	}
	if !b.radial.DropsLast() && b.Nrad() > len(idx) {
		idx = append(idx, b.Nrad()-1)
	}
	return
}

// Ndummy is the number of functions removed to enforce the boundary
// conditions, one per kept mesh end and angular function.
func (b *TwoDBasis) Ndummy() int { return b.Nang() * len(b.radialDummies()) }

// PureIndices lists the functions satisfying the boundary conditions
func (b *TwoDBasis) PureIndices() (idx utils.Index) {
	var (
		Nrad   = b.Nrad()
		pure   = b.radialDummies().Complement(Nrad)
		blocks = make([]utils.Index, b.Nang())
	)
	for iang := range blocks {
		blocks[iang] = pure.Add(iang * Nrad)
	}
	return idx.Append(blocks...)
}

// RemoveBoundaries restricts the operator H to the pure functions
func (b *TwoDBasis) RemoveBoundaries(H utils.Matrix) utils.Matrix {
	if nr, nc := H.Dims(); nr != b.Nbf() || nc != b.Nbf() {
		panic(fmt.Errorf("operator is %d x %d, basis has %d functions", nr, nc, b.Nbf()))
	}
	if b.Ndummy() == 0 {
		return H.Copy()
	}
	idx := b.PureIndices()
	return H.SubMatrix(idx, idx)
}

// ExpandBoundaries maps coefficients over the pure functions, one column
// per orbital, back to the full basis with zero dummy coefficients.
func (b *TwoDBasis) ExpandBoundaries(C utils.Matrix) (F utils.Matrix) {
	var (
		idx    = b.PureIndices()
		nr, nc = C.Dims()
	)
	if nr != len(idx) {
		panic(fmt.Errorf("coefficients have %d rows, basis has %d pure functions", nr, len(idx)))
	}
	F = utils.NewMatrix(b.Nbf(), nc)
	for ii, i := range idx {
		for j := 0; j < nc; j++ {
			F.Set(i, j, C.At(ii, j))
		}
	}
	return
}
