package radial

import (
	"fmt"

	"github.com/notargets/radfem/utils"
)

// FormDensity returns P = Cl[:, :nocc] Cr[:, :nocc]^T
func FormDensity(Cl, Cr utils.Matrix, nocc int) utils.Matrix {
	var (
		nrl, ncl = Cl.Dims()
		nrr, ncr = Cr.Dims()
	)
	if nocc < 0 || nocc > ncl || nocc > ncr {
		panic(fmt.Errorf("%d occupied orbitals requested from %d and %d columns", nocc, ncl, ncr))
	}
	if nocc == 0 {
		return utils.NewMatrix(nrl, nrr)
	}
	return Cl.Slice(0, nrl, 0, nocc).Mul(Cr.Slice(0, nrr, 0, nocc).Transpose())
}

// derivativesAtOrigin returns B_i^(d)(0) for d = 0..nder, one row per order
func (rb *Basis) derivativesAtOrigin(nder int) (D [][]float64) {
	if rb.bval[0] != 0 || !rb.dropFirst {
		panic(fmt.Errorf("values at the origin need a basis vanishing at r = 0, mesh starts at %g", rb.bval[0]))
	}
	D = make([][]float64, nder+1)
	for d := range D {
		D[d] = rb.EvalDerivN([]float64{0}, d).Row(0).Data()
	}
	return
}

// evalAtOrigin evaluates Σ_ij P_ij [expansion]_ij at r=0 for symmetric P
func (rb *Basis) evalAtOrigin(pe ProductExpansion, P utils.Matrix) (val float64) {
	var (
		red = pe.Reduce()
		D   = rb.derivativesAtOrigin(red.MaxDerivative())
	)
	for _, t := range red.Terms() {
		if t.RPow != 0 {
			continue
		}
		var (
			a = utils.NewVectorFrom(D[t.IDer])
			b = utils.NewMatrix(rb.nbf, 1, D[t.JDer])
		)
		val += red[t] * a.Dot(P.Mul(b).Col(0))
	}
	return
}

func (rb *Basis) checkDensity(P utils.Matrix) {
	if nr, nc := P.Dims(); nr != rb.nbf || nc != rb.nbf {
		panic(fmt.Errorf("density matrix is %d x %d, basis has %d functions", nr, nc, rb.nbf))
	}
}

// NuclearDensity returns lim_{r->0} Σ_ij P_ij B_i(r) B_j(r) / r²
func (rb *Basis) NuclearDensity(P utils.Matrix) float64 {
	rb.checkDensity(P)
	return rb.evalAtOrigin(ProductTerms(0, 0), P)
}

// NuclearDensityGradient returns the radial derivative of the density at r=0
func (rb *Basis) NuclearDensityGradient(P utils.Matrix) float64 {
	rb.checkDensity(P)
	pe := ProductTerms(1, 0)
	for t, c := range ProductTerms(0, 1) {
		pe.Increment(t, c)
	}
	return rb.evalAtOrigin(pe, P)
}

// NuclearOrbital returns lim_{r->0} B_i(r)/r contracted with the orbital
// coefficients, one entry per column of C.
func (rb *Basis) NuclearOrbital(C utils.Matrix) []float64 {
	var (
		nr, nc = C.Dims()
	)
	if nr != rb.nbf {
		panic(fmt.Errorf("orbital matrix has %d rows, basis has %d functions", nr, rb.nbf))
	}
	// B(r)/r -> B'(0)
	d := utils.NewMatrix(1, nr, rb.derivativesAtOrigin(1)[1])
	return d.Mul(C).Reshape(1, nc).Data()
}
