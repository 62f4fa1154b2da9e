package atomic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/radfem/polybasis"
	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/radial"
	"github.com/notargets/radfem/utils"
)

func newTestBasis(t *testing.T, geom Geometry, lval, mval []int, bval []float64, nnodes int, drop bool) *TwoDBasis {
	poly, err := polybasis.New(polybasis.LIPLobatto, nnodes)
	require.NoError(t, err)
	rb, err := radial.NewBasisBC(poly, 50, quadrature.Legendre, bval, drop, drop)
	require.NoError(t, err)
	b, err := NewTwoDBasis(geom, rb, lval, mval)
	require.NoError(t, err)
	return b
}

func hydrogenBasis(t *testing.T, lmax, mmax int) *TwoDBasis {
	bval, err := radial.NormalGrid(5, 40, radial.ExponentialGrid, 2)
	require.NoError(t, err)
	lval, mval := AngularBasis(lmax, mmax)
	return newTestBasis(t, Geometry{Z: 1}, lval, mval, bval, 15, true)
}

// orbitals diagonalizes H within the (l, m) functions, returning the
// energies and full-length orbital coefficients in columns.
func orbitals(t *testing.T, b *TwoDBasis, H utils.Matrix, l, m int) (E []float64, C utils.Matrix) {
	var (
		idx = b.LMIndices(l, m)
		S   = b.Overlap().SubMatrix(idx, idx)
	)
	X, err := S.SymPower(-0.5)
	require.NoError(t, err)
	E, V, err := X.Mul(H.SubMatrix(idx, idx)).Mul(X).Symmetrize().SymEigen()
	require.NoError(t, err)
	Cb := X.Mul(V)
	C = utils.NewMatrix(b.Nbf(), len(idx))
	for ii, i := range idx {
		for j := range idx {
			C.Set(i, j, Cb.At(ii, j))
		}
	}
	return
}

func column(C utils.Matrix, j int) utils.Matrix {
	nr, _ := C.Dims()
	return C.Slice(0, nr, j, j+1)
}

func expectation(a, M, b utils.Matrix) float64 {
	return a.TransMul(M.Mul(b)).At(0, 0)
}

func TestAngularBasis(t *testing.T) {
	lval, mval := AngularBasis(2, 1)
	assert.Equal(t, []int{0, 1, 1, 1, 2, 2, 2}, lval)
	assert.Equal(t, []int{0, -1, 0, 1, -1, 0, 1}, mval)

	lval, mval = AngularBasisLM([]int{2, 1})
	assert.Equal(t, []int{0, 1, 1, 1, 2}, lval)
	assert.Equal(t, []int{0, -1, 0, 1, 0}, mval)

	rb := hydrogenBasis(t, 0, 0).Radial()
	for _, tc := range []struct {
		lval, mval []int
	}{
		{[]int{0, 1}, []int{0}},
		{[]int{1}, []int{2}},
		{[]int{1, 1}, []int{0, 0}},
		{nil, nil},
	} {
		_, err := NewTwoDBasis(Geometry{Z: 1}, rb, tc.lval, tc.mval)
		assert.Error(t, err)
	}
	_, err := NewTwoDBasis(Geometry{Z: 1, Zl: 1}, rb, []int{0}, []int{0})
	assert.Error(t, err)
	_, err = NewTwoDBasis(Geometry{Z: 1, Rhalf: -1}, rb, []int{0}, []int{0})
	assert.Error(t, err)
}

func TestHydrogenSpectrum(t *testing.T) {
	var (
		b = hydrogenBasis(t, 2, 2)
		H = b.Kinetic().Add(b.Nuclear())
	)
	assert.Equal(t, 9, b.Nang())
	assert.Equal(t, b.Nang()*b.Nrad(), b.Nbf())

	X, err := b.Sinvh(false, SymNone)
	require.NoError(t, err)
	E, _, err := X.TransMul(H).Mul(X).Symmetrize().SymEigen()
	require.NoError(t, err)
	// Variational and converged: 1s, then the four n = 2 states
	assert.GreaterOrEqual(t, E[0], -0.5-1e-10)
	assert.InDelta(t, -0.5, E[0], 1e-6)
	for i := 1; i <= 4; i++ {
		assert.InDelta(t, -0.125, E[i], 1e-6)
	}
	for i := 5; i <= 13; i++ {
		assert.InDelta(t, -1./18, E[i], 1e-4)
	}

	// Angular momentum enters only through the centrifugal term
	for _, lm := range [][2]int{{1, -1}, {1, 1}, {2, 0}, {2, 2}} {
		El, _ := orbitals(t, b, H, lm[0], lm[1])
		n := lm[0] + 1
		assert.InDelta(t, -0.5/float64(n*n), El[0], 1e-6, "l=%d m=%d", lm[0], lm[1])
	}
}

func TestOneElectronOperators(t *testing.T) {
	var (
		b       = hydrogenBasis(t, 1, 1)
		H       = b.Kinetic().Add(b.Nuclear())
		_, Cs   = orbitals(t, b, H, 0, 0)
		_, Cp0  = orbitals(t, b, H, 1, 0)
		_, Cp1  = orbitals(t, b, H, 1, 1)
		c1s     = column(Cs, 0)
		c2s     = column(Cs, 1)
		c2p     = column(Cp0, 0)
		c2p1    = column(Cp1, 0)
		S       = b.Overlap()
		Z       = b.DipoleZ()
		Q       = b.QuadrupoleZZ()
		R2      = b.RadialIntegral(2)
		Bfield  = 0.1
		Zeeman  = b.BzField(Bfield)
		Rm1     = b.RadialIntegral(-1)
		density = b.FormDensity(c1s, 1)
	)
	assert.InDelta(t, 1, expectation(c1s, S, c1s), 1e-12)
	assert.InDelta(t, 0, expectation(c1s, S, c2s), 1e-12)
	assert.InDelta(t, 1, Rm1.Dot(density), 1e-6)
	assert.InDelta(t, 3, expectation(c1s, R2, c1s), 1e-6)

	// Dipole couples s and p only
	assert.InDelta(t, 0, expectation(c1s, Z, c1s), 1e-12)
	assert.InDelta(t, 3, math.Abs(expectation(c2s, Z, c2p)), 1e-5)
	assert.InDelta(t, 128*math.Sqrt(2)/243, math.Abs(expectation(c1s, Z, c2p)), 1e-6)

	// <r² P_2> vanishes for s and is 2/5 <r²> for p_0
	assert.InDelta(t, 0, expectation(c1s, Q, c1s), 1e-12)
	assert.InDelta(t, 12, expectation(c2p, Q, c2p), 1e-5)

	// (B/2) m + B²/8 <r² sin²θ>
	assert.InDelta(t, Bfield*Bfield/4, expectation(c1s, Zeeman, c1s), 1e-7)
	assert.InDelta(t, Bfield/2+3*Bfield*Bfield, expectation(c2p1, Zeeman, c2p1), 1e-6)

	// Cross overlap with itself is the overlap
	assert.InDeltaSlice(t, S.Data(), b.CrossOverlap(b).Data(), 1e-12)

	// Density at the nucleus follows Kato's cusp
	rho := b.NuclearDensity(density)
	require.Len(t, rho, 1)
	assert.InDelta(t, 1/math.Pi, rho[0], 1e-4)
	assert.InDelta(t, -2/math.Pi, b.NuclearDensityGradient(density), 1e-3)

	// A point nucleus model gives the bare attraction
	assert.InDeltaSlice(t, b.Nuclear().Data(), b.ModelPotential(pointNucleus(1)).Data(), 1e-12)
}

type pointNucleus float64

func (z pointNucleus) V(r float64) float64 { return -float64(z) / r }

func TestTwoElectron(t *testing.T) {
	var (
		b      = hydrogenBasis(t, 1, 0)
		H      = b.Kinetic().Add(b.Nuclear())
		_, Cs  = orbitals(t, b, H, 0, 0)
		_, Cp  = orbitals(t, b, H, 1, 0)
		c1s    = column(Cs, 0)
		c2s    = column(Cs, 1)
		c2p    = column(Cp, 0)
		P1s    = b.FormDensity(c1s, 1)
		dummyP = utils.NewMatrix(b.Nbf(), b.Nbf())
	)
	b.NP = 3
	assert.Panics(t, func() { b.Coulomb(dummyP) })
	require.NoError(t, b.ComputeTEI(true))
	assert.ErrorIs(t, b.ComputeTEI(true), ErrAlreadyComputed)

	var (
		J = b.Coulomb(P1s)
		K = b.Exchange(P1s)
	)
	assert.InDeltaSlice(t, J.Data(), J.Transpose().Data(), 1e-12)
	assert.InDeltaSlice(t, K.Data(), K.Transpose().Data(), 1e-12)
	assert.InDelta(t, 5./8, expectation(c1s, J, c1s), 1e-7)
	assert.InDelta(t, 5./8, expectation(c1s, K, c1s), 1e-7)
	assert.InDelta(t, 17./81, expectation(c2s, J, c2s), 1e-6)
	assert.InDelta(t, 16./729, expectation(c2s, K, c2s), 1e-6)
	assert.InDelta(t, 59./243, expectation(c2p, J, c2p), 1e-6)
	assert.InDelta(t, 112./6561, expectation(c2p, K, c2p), 1e-6)

	// Energy is linear in the density
	P2p := b.FormDensity(c2p, 1)
	assert.InDelta(t, expectation(c1s, b.Coulomb(P2p), c1s), expectation(c2p, J, c2p), 1e-9)
	Jsum := b.Coulomb(P1s.Copy().Add(P2p))
	assert.InDeltaSlice(t, J.Copy().Add(b.Coulomb(P2p)).Data(), Jsum.Data(), 1e-10)

	// Primitive tensors are available after the computation
	n := b.Radial().Nprim(0)
	nr, nc := b.GetPrimTEI(0, 0).Dims()
	assert.Equal(t, n*n, nr)
	assert.Equal(t, n*n, nc)

	// Coulomb only: no exchange ordering
	bj := hydrogenBasis(t, 0, 0)
	require.NoError(t, bj.ComputeTEI(false))
	Pj := bj.FormDensity(column(mustOrbitals(t, bj), 0), 1)
	assert.NotPanics(t, func() { bj.Coulomb(Pj) })
	assert.Panics(t, func() { bj.Exchange(Pj) })
	assert.Panics(t, func() { bj.RSExchange(Pj) })
}

func mustOrbitals(t *testing.T, b *TwoDBasis) utils.Matrix {
	_, C := orbitals(t, b, b.Kinetic().Add(b.Nuclear()), 0, 0)
	return C
}

func TestRangeSeparatedExchange(t *testing.T) {
	var (
		by  = hydrogenBasis(t, 1, 0)
		be  = hydrogenBasis(t, 1, 0)
		c1s = column(mustOrbitals(t, by), 0)
		P   = by.FormDensity(c1s, 1)
	)
	require.NoError(t, by.ComputeTEI(true))
	K := expectation(c1s, by.Exchange(P), c1s)

	// Weak screening reproduces the bare interaction
	require.NoError(t, by.ComputeYukawa(1e-6))
	assert.ErrorIs(t, by.ComputeErfc(0.4), ErrAlreadyComputed)
	kind, lambda := by.RangeSeparation()
	assert.Equal(t, "Yukawa", kind)
	assert.Equal(t, 1e-6, lambda)
	assert.InDelta(t, K, expectation(c1s, by.RSExchange(P), c1s), 1e-5)

	require.Error(t, be.ComputeErfc(-1))
	require.NoError(t, be.ComputeErfc(1e-9))
	assert.ErrorIs(t, be.ComputeYukawa(0.5), ErrAlreadyComputed)
	assert.InDelta(t, K, expectation(c1s, be.RSExchange(P), c1s), 1e-7)

	// Screening lowers the interaction
	for _, screened := range []func(b *TwoDBasis) error{
		func(b *TwoDBasis) error { return b.ComputeYukawa(0.5) },
		func(b *TwoDBasis) error { return b.ComputeErfc(0.5) },
	} {
		b := hydrogenBasis(t, 0, 0)
		require.NoError(t, screened(b))
		Ks := expectation(c1s.Slice(0, b.Nbf(), 0, 1), b.RSExchange(P.Slice(0, b.Nbf(), 0, b.Nbf())), c1s.Slice(0, b.Nbf(), 0, 1))
		assert.Greater(t, Ks, 0.)
		assert.Less(t, Ks, K)
	}
}

func TestSymmetryAndOrthogonalization(t *testing.T) {
	b := hydrogenBasis(t, 1, 1)
	Nrad := b.Nrad()
	for _, tc := range []struct {
		sym    Symmetry
		blocks int
	}{
		{SymNone, 1}, {SymM, 3}, {SymLM, 4}, {SymParity, 4},
	} {
		blocks, err := b.GetSymIdx(tc.sym)
		require.NoError(t, err)
		assert.Len(t, blocks, tc.blocks, tc.sym.String())
		var n int
		for _, idx := range blocks {
			n += len(idx)
		}
		assert.Equal(t, b.Nbf(), n)
	}
	_, err := b.GetSymIdx(Symmetry(9))
	assert.Error(t, err)
	assert.Len(t, b.MIndices(0), 2*Nrad)
	assert.Len(t, b.MIndices(1), Nrad)
	assert.Equal(t, utils.NewRange(Nrad, 2*Nrad-1), b.LMIndices(1, -1))
	assert.Empty(t, b.LMIndices(2, 0))

	var (
		S = b.Overlap()
		I = utils.NewIdentity(b.Nbf())
	)
	for _, chol := range []bool{false, true} {
		for _, sym := range []Symmetry{SymNone, SymLM} {
			X, err := b.Sinvh(chol, sym)
			require.NoError(t, err)
			Y, err := b.Shalf(chol, sym)
			require.NoError(t, err)
			assert.InDeltaSlice(t, I.Data(), X.TransMul(S).Mul(X).Data(), 1e-10)
			assert.InDeltaSlice(t, S.Data(), Y.TransMul(Y).Data(), 1e-10)
			assert.InDeltaSlice(t, I.Data(), Y.Mul(X).Data(), 1e-10)
		}
	}
}

func TestOffcenterNuclei(t *testing.T) {
	lowest := func(b *TwoDBasis) float64 {
		X, err := b.Sinvh(true, SymM)
		require.NoError(t, err)
		E, _, err := X.TransMul(b.Kinetic().Add(b.Nuclear())).Mul(X).Symmetrize().SymEigen()
		require.NoError(t, err)
		return E[0]
	}
	// Two protons a short distance apart resemble He+
	bval, err := radial.OffcenterGrid(1, 1e-3, 6, 40, radial.ExponentialGrid, 2)
	require.NoError(t, err)
	lval, mval := AngularBasis(2, 0)
	ua := newTestBasis(t, Geometry{Zl: 1, Zr: 1, Rhalf: 1e-3}, lval, mval, bval, 12, true)
	assert.InDelta(t, -2, lowest(ua), 1e-4)

	// H2+ at the equilibrium distance converges from above in l
	bval, err = radial.OffcenterGrid(3, 1, 6, 40, radial.ExponentialGrid, 2)
	require.NoError(t, err)
	var (
		prev  = 0.
		exact = -1.1026342144949
	)
	for _, lmax := range []int{0, 2, 6} {
		lval, mval = AngularBasis(lmax, 0)
		b := newTestBasis(t, Geometry{Zl: 1, Zr: 1, Rhalf: 1}, lval, mval, bval, 10, true)
		E := lowest(b)
		assert.GreaterOrEqual(t, E, exact-1e-8)
		assert.LessOrEqual(t, E, prev+1e-12)
		prev = E
		if lmax == 6 {
			assert.Less(t, E, -1.05)
			// Equal charges do not mix parities
			H := b.Nuclear()
			even, odd := b.LMIndices(0, 0), b.LMIndices(1, 0)
			assert.InDelta(t, 0, H.SubMatrix(even, odd).MaxAbs(), 1e-14)
			rho := b.NuclearDensity(b.FormDensity(column(mustGround(t, b), 0), 1))
			require.Len(t, rho, 2)
			assert.InDelta(t, rho[0], rho[1], 1e-8)
			assert.Greater(t, rho[0], 0.)
		}
	}

	// An unequal pair polarizes toward the larger charge
	lval, mval = AngularBasis(2, 0)
	hep := newTestBasis(t, Geometry{Zl: 1, Zr: 2, Rhalf: 1}, lval, mval, bval, 10, true)
	C := column(mustGround(t, hep), 0)
	assert.Greater(t, expectation(C, hep.DipoleZ(), C), 0.)
	// and its parity blocks couple
	even, odd := hep.LMIndices(0, 0), hep.LMIndices(1, 0)
	assert.Greater(t, hep.Nuclear().SubMatrix(even, odd).MaxAbs(), 1e-3)
}

// mustGround returns the orbitals of the full Hamiltonian
func mustGround(t *testing.T, b *TwoDBasis) utils.Matrix {
	X, err := b.Sinvh(false, SymNone)
	require.NoError(t, err)
	_, V, err := X.TransMul(b.Kinetic().Add(b.Nuclear())).Mul(X).Symmetrize().SymEigen()
	require.NoError(t, err)
	return X.Mul(V)
}

func TestBoundariesAndMemory(t *testing.T) {
	lval, mval := AngularBasis(1, 0)
	var (
		kept    = newTestBasis(t, Geometry{Z: 1}, lval, mval, []float64{0, 1, 3}, 5, false)
		dropped = newTestBasis(t, Geometry{Z: 1}, lval, mval, []float64{0, 1, 3}, 5, true)
	)
	assert.Equal(t, 0, dropped.Ndummy())
	assert.Equal(t, 4, kept.Ndummy())
	assert.Equal(t, dropped.Nbf(), kept.Nbf()-kept.Ndummy())

	pure := kept.PureIndices()
	assert.Len(t, pure, dropped.Nbf())
	assert.NotContains(t, pure, 0)
	assert.NotContains(t, pure, kept.Nrad()-1)
	assert.NotContains(t, pure, kept.Nrad())
	assert.Equal(t, utils.NewRange(1, kept.Nrad()-2), pure[:kept.Nrad()-2])
	assert.Equal(t, utils.NewRange(kept.Nrad()+1, 2*kept.Nrad()-2), pure[kept.Nrad()-2:])

	// Removing the dummies of the kept basis yields the dropped basis
	assert.InDeltaSlice(t, dropped.Overlap().Data(), kept.RemoveBoundaries(kept.Overlap()).Data(), 1e-12)
	C := utils.NewMatrix(len(pure), 2).AddScalar(1)
	F := kept.ExpandBoundaries(C)
	assert.Equal(t, 0., F.At(0, 0))
	assert.Equal(t, 1., F.At(1, 1))
	assert.InDeltaSlice(t, C.Mul(C.Transpose()).Data(), kept.RemoveBoundaries(F.Mul(F.Transpose())).Data(), 1e-14)
	assert.Panics(t, func() { kept.ExpandBoundaries(utils.NewMatrix(3, 1)) })

	// Two elements of four functions each, L = 0..2
	assert.Equal(t, int64(8*dropped.Nbf()*dropped.Nbf()), dropped.Mem1El())
	assert.Equal(t, int64(0), dropped.Mem1ElAux())
	assert.Equal(t, int64(3*2*(16+16)*8), dropped.Mem2ElAux())
	assert.Equal(t, int64(3*(256+256)*8), dropped.MemTEI(false))
	assert.Equal(t, 2*dropped.MemTEI(false), dropped.MemTEI(true))
	assert.Equal(t, int64(3*32*32*8), dropped.MemErfc())

	assert.Equal(t, dropped.MemTEI(true)+dropped.Mem2ElAux(), dropped.MemYukawa())

	total, err := dropped.CheckMemory(0, true, "")
	require.NoError(t, err)
	assert.Greater(t, total, dropped.MemTEI(true))
	_, err = dropped.CheckMemory(total-1, true, "")
	assert.ErrorIs(t, err, ErrMemoryLimit)
	_, err = dropped.CheckMemory(0, true, "gaussian")
	assert.Error(t, err)

	// Range-separated storage is counted before it is allocated
	withYukawa, err := dropped.CheckMemory(0, true, RSYukawa)
	require.NoError(t, err)
	assert.Equal(t, total+dropped.MemYukawa(), withYukawa)
	withErfc, err := dropped.CheckMemory(0, true, RSErfc)
	require.NoError(t, err)
	assert.Equal(t, total+dropped.MemErfc(), withErfc)
	_, err = dropped.CheckMemory(withErfc-1, true, RSErfc)
	assert.ErrorIs(t, err, ErrMemoryLimit)

	// and stays counted once it is
	require.NoError(t, dropped.ComputeErfc(0.5))
	after, err := dropped.CheckMemory(0, true, "")
	require.NoError(t, err)
	assert.Equal(t, withErfc, after)
}
