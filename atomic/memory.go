package atomic

import (
	"fmt"

	"github.com/notargets/radfem/utils"
)

const sizeofFloat = 8

// Mem1El is the size of one dense one-electron matrix
func (b *TwoDBasis) Mem1El() int64 {
	n := int64(b.Nbf())
	return n * n * sizeofFloat
}

// Mem1ElAux is the size of the radial multipole matrices of the off-center
// nuclear attraction.
func (b *TwoDBasis) Mem1ElAux() int64 {
	if b.Rhalf == 0 {
		return 0
	}
	n := int64(b.Nrad())
	return int64(b.maxL+1) * n * n * sizeofFloat
}

// Mem2ElAux is the size of the disjoint-element moment and potential factors
func (b *TwoDBasis) Mem2ElAux() (mem int64) {
	for iel := 0; iel < b.radial.Nel(); iel++ {
		n := int64(b.radial.Nprim(iel))
		mem += 2 * n * n
	}
	return int64(b.maxL+1) * mem * sizeofFloat
}

// MemTEI is the size of the in-element 1/r12 tensors, doubled by the
// exchange ordered copy.
func (b *TwoDBasis) MemTEI(exchange bool) (mem int64) {
	for iel := 0; iel < b.radial.Nel(); iel++ {
		n := int64(b.radial.Nprim(iel))
		mem += n * n * n * n
	}
	mem *= int64(b.maxL+1) * sizeofFloat
	if exchange {
		mem *= 2
	}
	return
}

// MemErfc is the size of the short-range tensors over all element pairs
func (b *TwoDBasis) MemErfc() int64 {
	var n2 int64
	for iel := 0; iel < b.radial.Nel(); iel++ {
		n := int64(b.radial.Nprim(iel))
		n2 += n * n
	}
	return int64(b.maxL+1) * n2 * n2 * sizeofFloat
}

// MemYukawa is the size of the screened cache: in-element tensors with
// their exchange ordered copies and the disjoint factors.
func (b *TwoDBasis) MemYukawa() int64 {
	return b.MemTEI(true) + b.Mem2ElAux()
}

// CheckMemory estimates the storage of the integrals a calculation will
// allocate, returning ErrMemoryLimit above limit bytes. rs names the planned
// range-separated kernel, RSYukawa or RSErfc, or is empty for none; a kernel
// already computed is counted as well. A non-positive limit disables the
// check.
func (b *TwoDBasis) CheckMemory(limit int64, exchange bool, rs string) (total int64, err error) {
	if rs == "" {
		rs = b.rs.kind
	}
	// Fock, density and overlap matrices plus the core Hamiltonian
	total = 4*b.Mem1El() + b.Mem1ElAux() + b.Mem2ElAux() + b.MemTEI(exchange)
	switch rs {
	case "":
	case RSYukawa:
		total += b.MemYukawa()
	case RSErfc:
		total += b.MemErfc()
	default:
		err = fmt.Errorf("unknown range separation %q", rs)
		return
	}
	if limit > 0 && total > limit {
		err = fmt.Errorf("%w: integrals need %s, limit is %s", ErrMemoryLimit,
			utils.FormatBytes(total), utils.FormatBytes(limit))
	}
	return
}
