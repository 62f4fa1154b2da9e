package atomic

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/radfem/gaunt"
	"github.com/notargets/radfem/modelpotential"
	"github.com/notargets/radfem/radial"
	"github.com/notargets/radfem/utils"
)

var (
	ErrAlreadyComputed = errors.New("two-electron integrals already computed")
	ErrMemoryLimit     = errors.New("memory limit exceeded")
)

// Geometry places a charge Z at the origin and the charges Zl and Zr on the
// z axis at -Rhalf and +Rhalf.
type Geometry struct {
	Z      int
	Zl, Zr int
	Rhalf  float64
}

// TwoDBasis is the product of a finite-element radial basis with a list of
// spherical harmonics. Function iang*Nrad + irad is B_irad(r)/r Y_lm with
// (l, m) = (lval[iang], mval[iang]).
type TwoDBasis struct {
	Geometry
	NP         int // Goroutines for the two-electron integrals, <= 0 selects GOMAXPROCS
	radial     *radial.Basis
	lval, mval []int
	gt         *gaunt.Table
	lmax, maxL int

	tei *coulombCache
	rs  rangeSeparated
}

func NewTwoDBasis(geom Geometry, rb *radial.Basis, lval, mval []int) (b *TwoDBasis, err error) {
	if err = checkAngular(lval, mval); err != nil {
		return
	}
	if geom.Rhalf < 0 || math.IsNaN(geom.Rhalf) {
		err = fmt.Errorf("invalid nuclear half-distance %g", geom.Rhalf)
		return
	}
	if geom.Rhalf == 0 && (geom.Zl != 0 || geom.Zr != 0) {
		err = fmt.Errorf("off-center charges Zl=%d, Zr=%d need a positive half-distance", geom.Zl, geom.Zr)
		return
	}
	b = &TwoDBasis{
		Geometry: geom,
		radial:   rb,
		lval:     append([]int{}, lval...),
		mval:     append([]int{}, mval...),
	}
	for _, l := range lval {
		b.lmax = max(b.lmax, l)
	}
	b.maxL = 2 * b.lmax
	b.gt = gaunt.NewTable(b.lmax, b.maxL)
	return
}

func (b *TwoDBasis) Radial() *radial.Basis { return b.radial }
func (b *TwoDBasis) Nrad() int             { return b.radial.Nbf() }
func (b *TwoDBasis) Nang() int             { return len(b.lval) }
func (b *TwoDBasis) Nbf() int              { return b.Nang() * b.Nrad() }
func (b *TwoDBasis) Lval() []int           { return b.lval }
func (b *TwoDBasis) Mval() []int           { return b.mval }
func (b *TwoDBasis) LMax() int             { return b.lmax }

// MaxL is the highest multipole order in the two-electron expansion
func (b *TwoDBasis) MaxL() int { return b.maxL }

// angularOperator couples the radial matrix R between every pair of angular
// functions with weight c(iang, jang).
func (b *TwoDBasis) angularOperator(R utils.Matrix, c func(iang, jang int) float64) utils.Matrix {
	var (
		Nang, Nrad = b.Nang(), b.Nrad()
		bm         = utils.NewBlockMatrix(Nang, Nang, Nrad, Nrad)
	)
	for iang := 0; iang < Nang; iang++ {
		for jang := 0; jang < Nang; jang++ {
			if v := c(iang, jang); v != 0 {
				bm.AddBlock(iang, jang, R.Copy().Scale(v))
			}
		}
	}
	return bm.Assemble()
}

func diagonal(iang, jang int) float64 {
	if iang == jang {
		return 1
	}
	return 0
}

// coupling returns <Y_i | Y_LM | Y_j>, zero beyond L = 2 lmax
func (b *TwoDBasis) coupling(L, M, iang, jang int) float64 {
	if L > b.maxL {
		return 0
	}
	return b.gt.Coeff(L, M, b.lval[iang], b.mval[iang], b.lval[jang], b.mval[jang])
}

// RadialIntegral is the matrix of r^n
func (b *TwoDBasis) RadialIntegral(n int) utils.Matrix {
	return b.angularOperator(b.radial.RadialMatrix(n), diagonal)
}

func (b *TwoDBasis) Overlap() utils.Matrix {
	return b.angularOperator(b.radial.OverlapMatrix(), diagonal)
}

// Kinetic includes the centrifugal term l(l+1)/(2r²)
func (b *TwoDBasis) Kinetic() utils.Matrix {
	var (
		T    = b.radial.KineticMatrix()
		Tl   = b.radial.KineticLMatrix()
		Nrad = b.Nrad()
		bm   = utils.NewBlockMatrix(b.Nang(), b.Nang(), Nrad, Nrad)
	)
	for iang, l := range b.lval {
		bm.AddBlock(iang, iang, T)
		if l > 0 {
			bm.AddBlock(iang, iang, Tl.Copy().Scale(float64(l*(l+1))))
		}
	}
	return bm.Assemble()
}

// Nuclear is the attraction to the central charge and, for a positive
// half-distance, to the multipole expansion of the off-center charges.
func (b *TwoDBasis) Nuclear() (V utils.Matrix) {
	V = b.angularOperator(b.radial.NuclearMatrix(), diagonal).Scale(-float64(b.Z))
	if b.Rhalf == 0 || (b.Zl == 0 && b.Zr == 0) {
		return
	}
	for L := 0; L <= b.maxL; L++ {
		// The charge on -z sees P_L(-cos θ) = (-1)^L P_L(cos θ)
		q := float64(b.Zr)
		if L%2 == 0 {
			q += float64(b.Zl)
		} else {
			q -= float64(b.Zl)
		}
		if q == 0 {
			continue
		}
		var (
			R    = b.radial.NuclearOffcenterMatrix(b.Rhalf, L)
			norm = math.Sqrt(4 * math.Pi / float64(2*L+1))
		)
		V.Add(b.angularOperator(R, func(iang, jang int) float64 {
			return -q * norm * b.coupling(L, 0, iang, jang)
		}))
	}
	return
}

// ModelPotential replaces the central point charge with pot
func (b *TwoDBasis) ModelPotential(pot modelpotential.ModelPotential) utils.Matrix {
	return b.angularOperator(b.radial.ModelPotentialMatrix(pot), diagonal)
}

// DipoleZ is the matrix of z = r cos θ
func (b *TwoDBasis) DipoleZ() utils.Matrix {
	norm := math.Sqrt(4 * math.Pi / 3)
	return b.angularOperator(b.radial.RadialMatrix(1), func(iang, jang int) float64 {
		return norm * b.coupling(1, 0, iang, jang)
	})
}

// QuadrupoleZZ is the matrix of r² P_2(cos θ) = (3z² - r²)/2
func (b *TwoDBasis) QuadrupoleZZ() utils.Matrix {
	norm := math.Sqrt(4 * math.Pi / 5)
	return b.angularOperator(b.radial.RadialMatrix(2), func(iang, jang int) float64 {
		return norm * b.coupling(2, 0, iang, jang)
	})
}

// BzField is the orbital Zeeman and diamagnetic coupling to a field B along
// z, (B/2) L_z + (B²/8) r² sin²θ.
func (b *TwoDBasis) BzField(B float64) utils.Matrix {
	var (
		S    = b.radial.OverlapMatrix()
		R2   = b.radial.RadialMatrix(2)
		norm = math.Sqrt(4 * math.Pi / 5)
	)
	H := b.angularOperator(S, func(iang, jang int) float64 {
		if iang != jang {
			return 0
		}
		return 0.5 * B * float64(b.mval[iang])
	})
	// r² sin²θ / 8 = r² (1 - P_2(cos θ)) / 12
	return H.Add(b.angularOperator(R2, func(iang, jang int) float64 {
		return B * B / 12 * (diagonal(iang, jang) - norm*b.coupling(2, 0, iang, jang))
	}))
}

// CrossOverlap is the overlap of this basis (rows) with rh (columns)
// between matching angular functions.
func (b *TwoDBasis) CrossOverlap(rh *TwoDBasis) utils.Matrix {
	var (
		S  = b.radial.CrossOverlap(rh.radial)
		bm = utils.NewBlockMatrix(b.Nang(), rh.Nang(), b.Nrad(), rh.Nrad())
	)
	for iang := range b.lval {
		for jang := range rh.lval {
			if b.lval[iang] == rh.lval[jang] && b.mval[iang] == rh.mval[jang] {
				bm.AddBlock(iang, jang, S)
			}
		}
	}
	return bm.Assemble()
}

// FormDensity returns C[:, :nocc] C[:, :nocc]^T
func (b *TwoDBasis) FormDensity(C utils.Matrix, nocc int) utils.Matrix {
	return radial.FormDensity(C, C, nocc)
}

func (b *TwoDBasis) checkDensity(P utils.Matrix) {
	if nr, nc := P.Dims(); nr != b.Nbf() || nc != b.Nbf() {
		panic(fmt.Errorf("density matrix is %d x %d, basis has %d functions", nr, nc, b.Nbf()))
	}
}

// angularBlock returns the radial block (iang, jang) of a full matrix
func (b *TwoDBasis) angularBlock(P utils.Matrix, iang, jang int) utils.Matrix {
	Nrad := b.Nrad()
	return P.Slice(iang*Nrad, (iang+1)*Nrad, jang*Nrad, (jang+1)*Nrad)
}

// NuclearDensity returns the electron density at the nuclei: at the origin
// for a single center, at -Rhalf and +Rhalf on the z axis otherwise.
func (b *TwoDBasis) NuclearDensity(P utils.Matrix) []float64 {
	b.checkDensity(P)
	if b.Rhalf == 0 {
		// Only s functions are non-zero at the origin
		var rho float64
		for iang, l := range b.lval {
			if l == 0 {
				rho += b.radial.NuclearDensity(b.angularBlock(P, iang, iang))
			}
		}
		return []float64{rho / (4 * math.Pi)}
	}
	return []float64{b.densityOnAxis(P, -1), b.densityOnAxis(P, 1)}
}

// densityOnAxis evaluates the density at z = sign*Rhalf
func (b *TwoDBasis) densityOnAxis(P utils.Matrix, sign int) float64 {
	var (
		Nrad = b.Nrad()
		Br   = b.radial.Eval([]float64{b.Rhalf}).Scale(1 / b.Rhalf)
		phi  = make([]float64, b.Nbf())
	)
	for iang, l := range b.lval {
		if b.mval[iang] != 0 {
			continue
		}
		// Y_l0 on the z axis
		y := math.Sqrt(float64(2*l+1) / (4 * math.Pi))
		if sign < 0 && l%2 != 0 {
			y = -y
		}
		for irad := 0; irad < Nrad; irad++ {
			phi[iang*Nrad+irad] = y * Br.At(0, irad)
		}
	}
	v := utils.NewMatrix(b.Nbf(), 1, phi)
	return v.TransMul(P.Mul(v)).At(0, 0)
}

// NuclearDensityGradient is the radial derivative of the spherically
// averaged density at the origin.
func (b *TwoDBasis) NuclearDensityGradient(P utils.Matrix) float64 {
	b.checkDensity(P)
	var grad float64
	for iang, l := range b.lval {
		if l == 0 {
			grad += b.radial.NuclearDensityGradient(b.angularBlock(P, iang, iang))
		}
	}
	return grad / (4 * math.Pi)
}
