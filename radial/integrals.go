package radial

import (
	"fmt"

	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

// Potential is a radial potential profile V(r)
type Potential interface {
	V(r float64) float64
}

// RadialIntegral returns ∫ B_i r^n B_j dr on element iel
func (rb *Basis) RadialIntegral(n, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.RadialIntegral(rb.rmin(iel), rb.rmax(iel), n, rb.rule.X, rb.rule.W, rb.bf[iel])
}

func (rb *Basis) Overlap(iel int) utils.Matrix { return rb.RadialIntegral(0, iel) }

// Kinetic returns ½ ∫ B'_i B'_j dr
func (rb *Basis) Kinetic(iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.DerivativeIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.df[iel]).Scale(0.5)
}

// KineticL returns ½ ∫ B_i B_j / r² dr, the centrifugal term per l(l+1)
func (rb *Basis) KineticL(iel int) utils.Matrix { return rb.RadialIntegral(-2, iel).Scale(0.5) }

// Nuclear returns ∫ B_i B_j / r dr; the attraction of charge Z is -Z times this
func (rb *Basis) Nuclear(iel int) utils.Matrix { return rb.RadialIntegral(-1, iel) }

// ModelPotential returns ∫ B_i V(r) B_j dr
func (rb *Basis) ModelPotential(pot Potential, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.PotentialIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel], pot.V)
}

// SphericalPotential returns ∫ B_i V B_j dr for V tabulated at GetR(iel)
func (rb *Basis) SphericalPotential(iel int, V []float64) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.TabulatedIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel], V)
}

// NuclearOffcenter returns ∫ B_i B_j r<^L / r>^(L+1) dr for a nucleus at
// distance Rhalf from the origin, r< = min(r, Rhalf), r> = max(r, Rhalf).
func (rb *Basis) NuclearOffcenter(iel int, Rhalf float64, L int) utils.Matrix {
	rb.checkElement(iel)
	var (
		rmin, rmax = rb.rmin(iel), rb.rmax(iel)
		x, w       = rb.rule.X, rb.rule.W
	)
	if Rhalf <= 0 {
		panic(fmt.Errorf("off-center distance must be positive, got %g", Rhalf))
	}
	switch {
	case rmax <= Rhalf:
		return rb.RadialIntegral(L, iel).Scale(utils.POW(Rhalf, -L-1))
	case rmin >= Rhalf:
		return rb.RadialIntegral(-L-1, iel).Scale(utils.POW(Rhalf, L))
	}
	inner := quadrature.SubintervalIntegral(rmin, rmax, rmin, Rhalf, L, x, w, rb.poly[iel])
	outer := quadrature.SubintervalIntegral(rmin, rmax, Rhalf, rmax, -L-1, x, w, rb.poly[iel])
	return inner.Scale(utils.POW(Rhalf, -L-1)).AddScaled(utils.POW(Rhalf, L), outer)
}

// BesselILIntegral returns ∫ B_i B_j i_L(λr) dr
func (rb *Basis) BesselILIntegral(L int, lambda float64, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.BesselILIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel], L, lambda)
}

// BesselKLIntegral returns ∫ B_i B_j k_L(λr) dr
func (rb *Basis) BesselKLIntegral(L int, lambda float64, iel int) utils.Matrix {
	rb.checkElement(iel)
	return quadrature.BesselKLIntegral(rb.rmin(iel), rb.rmax(iel), rb.rule.X, rb.rule.W, rb.bf[iel], L, lambda)
}

// Global assembly of the one-electron radial matrices

func (rb *Basis) OverlapMatrix() utils.Matrix { return rb.Assemble(rb.Overlap) }
func (rb *Basis) KineticMatrix() utils.Matrix { return rb.Assemble(rb.Kinetic) }

func (rb *Basis) KineticLMatrix() utils.Matrix { return rb.Assemble(rb.KineticL) }
func (rb *Basis) NuclearMatrix() utils.Matrix  { return rb.Assemble(rb.Nuclear) }

func (rb *Basis) RadialMatrix(n int) utils.Matrix {
	return rb.Assemble(func(iel int) utils.Matrix { return rb.RadialIntegral(n, iel) })
}

func (rb *Basis) ModelPotentialMatrix(pot Potential) utils.Matrix {
	return rb.Assemble(func(iel int) utils.Matrix { return rb.ModelPotential(pot, iel) })
}

func (rb *Basis) NuclearOffcenterMatrix(Rhalf float64, L int) utils.Matrix {
	return rb.Assemble(func(iel int) utils.Matrix { return rb.NuclearOffcenter(iel, Rhalf, L) })
}
