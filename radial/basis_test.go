package radial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/radfem/polybasis"
	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/utils"
)

func newTestBasis(t *testing.T, kind polybasis.Kind, nnodes, nquad int, bval []float64, drop bool) *Basis {
	poly, err := polybasis.New(kind, nnodes)
	require.NoError(t, err)
	rb, err := NewBasisBC(poly, nquad, quadrature.Legendre, bval, drop, drop)
	require.NoError(t, err)
	return rb
}

func TestBasisCounting(t *testing.T) {
	bval := []float64{0, 1, 2.5, 5}
	for _, tc := range []struct {
		kind   polybasis.Kind
		nnodes int
		k, s   int
	}{
		{polybasis.LIPLobatto, 5, 5, 1},
		{polybasis.Legendre, 6, 6, 1},
		{polybasis.HermiteD1, 3, 6, 2},
		{polybasis.HermiteD2, 3, 9, 3},
	} {
		M := len(bval) - 1
		rb := newTestBasis(t, tc.kind, tc.nnodes, 20, bval, false)
		assert.Equal(t, M*tc.k-(M-1)*tc.s, rb.Nbf(), tc.kind.String())
		for iel := 0; iel < M-1; iel++ {
			_, ilast := rb.GetIdx(iel)
			ifirst, _ := rb.GetIdx(iel + 1)
			assert.Equal(t, tc.s, ilast-ifirst+1, "shared functions")
		}
		_, ilast := rb.GetIdx(M - 1)
		assert.Equal(t, rb.Nbf()-1, ilast)

		rb = newTestBasis(t, tc.kind, tc.nnodes, 20, bval, true)
		assert.Equal(t, M*tc.k-(M-1)*tc.s-2, rb.Nbf(), tc.kind.String())
		assert.Equal(t, tc.k-1, rb.Nprim(0))
	}
}

func TestNewBasisErrors(t *testing.T) {
	poly, err := polybasis.New(polybasis.LIPLobatto, 5)
	require.NoError(t, err)
	_, err = NewBasis(poly, 4, quadrature.Legendre, []float64{0, 1})
	assert.ErrorIs(t, err, ErrInsufficientQuadrature)
	_, err = NewBasis(poly, 10, quadrature.Legendre, []float64{0, 1, 1})
	assert.ErrorIs(t, err, ErrBadBoundaries)
	_, err = NewBasis(poly, 10, quadrature.RuleType(42), []float64{0, 1})
	assert.ErrorIs(t, err, quadrature.ErrUnsupportedRule)

	rb, err := NewBasis(poly, 10, quadrature.Legendre, []float64{0, 1})
	require.NoError(t, err)
	assert.Panics(t, func() { rb.Overlap(1) })
	assert.Panics(t, func() { rb.GetIdx(-1) })
	assert.Panics(t, func() { rb.SphericalPotential(0, []float64{1, 2}) })
}

func TestOneElectronIntegrals(t *testing.T) {
	var (
		rmax = 5.
		bval = []float64{0, 1, 2.5, rmax}
	)
	for _, kind := range []polybasis.Kind{polybasis.LIPLobatto, polybasis.LIPEquidistant} {
		// Without dropped boundaries the LIP functions sum to one
		rb := newTestBasis(t, kind, 6, 20, bval, false)
		S := rb.OverlapMatrix()
		assert.InDelta(t, rmax, S.Dot(utils.NewMatrix(rb.Nbf(), rb.Nbf()).AddScalar(1)), 1e-12, kind.String())
		R1 := rb.RadialMatrix(1)
		assert.InDelta(t, rmax*rmax/2, R1.Dot(utils.NewMatrix(rb.Nbf(), rb.Nbf()).AddScalar(1)), 1e-12)
		T := rb.KineticMatrix()
		assert.InDelta(t, 0, T.Dot(utils.NewMatrix(rb.Nbf(), rb.Nbf()).AddScalar(1)), 1e-10)
		for iel := 0; iel < rb.Nel(); iel++ {
			assert.Equal(t, rb.Overlap(iel).Data(), rb.RadialIntegral(0, iel).Data())
		}
		assert.InDeltaSlice(t, S.Data(), S.Transpose().Data(), 1e-14)
	}
	{ // Tabulated and functional potentials agree
		rb := newTestBasis(t, polybasis.LIPLobatto, 6, 20, bval, true)
		for iel := 0; iel < rb.Nel(); iel++ {
			r := rb.GetR(iel)
			V := make([]float64, len(r))
			for i, ri := range r {
				V[i] = -1 / ri
			}
			A := rb.SphericalPotential(iel, V)
			B := rb.Nuclear(iel).Scale(-1)
			assert.InDeltaSlice(t, B.Data(), A.Data(), 1e-12)
			w := rb.GetWrad(iel)
			var wsum float64
			for _, wi := range w {
				wsum += wi
			}
			assert.InDelta(t, bval[iel+1]-bval[iel], wsum, 1e-12)
		}
	}
}

func TestNuclearOffcenter(t *testing.T) {
	var (
		Rhalf = 0.8
		a, b  = 0.5, 2.0
	)
	rb := newTestBasis(t, polybasis.LIPLobatto, 2, 60, []float64{a, b}, false)
	// The linear hats sum to one
	sum := func(M utils.Matrix) (s float64) {
		for _, val := range M.Data() {
			s += val
		}
		return
	}
	assert.InDelta(t, (Rhalf-a)/Rhalf+math.Log(b/Rhalf), sum(rb.NuclearOffcenter(0, Rhalf, 0)), 1e-8)
	assert.InDelta(t, (b-a)/3, sum(rb.NuclearOffcenter(0, 3, 0)), 1e-12)
	assert.InDelta(t, 0.25*(1/a-1/b), sum(rb.NuclearOffcenter(0, 0.25, 1)), 1e-10)
	assert.Panics(t, func() { rb.NuclearOffcenter(0, 0, 0) })
}

func TestHydrogenCoreHamiltonian(t *testing.T) {
	lowest := func(rb *Basis) float64 {
		var (
			S    = rb.OverlapMatrix()
			H    = rb.KineticMatrix().Subtract(rb.NuclearMatrix())
			X, _ = S.SymPower(-0.5)
		)
		vals, _, err := X.Mul(H).Mul(X).Symmetrize().SymEigen()
		require.NoError(t, err)
		return vals[0]
	}
	coarse := lowest(newTestBasis(t, polybasis.LIPLobatto, 11, 50, []float64{0, 20}, true))
	bval, err := NormalGrid(5, 40, ExponentialGrid, 2)
	require.NoError(t, err)
	fine := lowest(newTestBasis(t, polybasis.LIPLobatto, 15, 50, bval, true))

	assert.GreaterOrEqual(t, coarse, -0.5-1e-10)
	assert.GreaterOrEqual(t, fine, -0.5-1e-10)
	assert.LessOrEqual(t, fine, coarse+1e-12)
	assert.InDelta(t, -0.5, fine, 1e-6)

	// Hermite bases converge to the same value
	herm := lowest(newTestBasis(t, polybasis.HermiteD1, 6, 50, bval, true))
	assert.GreaterOrEqual(t, herm, -0.5-1e-10)
	assert.InDelta(t, -0.5, herm, 1e-5)
}

func TestEvalAndAddBoundary(t *testing.T) {
	rb := newTestBasis(t, polybasis.LIPLobatto, 5, 12, []float64{0, 2, 6}, false)
	F := rb.Eval([]float64{0, 0.3, 2, 4.1, 6, 7})
	for i, exp := range []float64{1, 1, 1, 1, 1, 0} {
		assert.InDelta(t, exp, F.Row(i).Sum(), 1e-12)
	}
	// Values at the quadrature nodes match the element tables
	r := rb.GetR(1)
	G := rb.Eval(r)
	idx := rb.GlobalIndex(1)
	assert.InDeltaSlice(t, rb.GetBf(1).Data(), G.SubMatrix(utils.NewRange(0, len(r)-1), idx).Data(), 1e-12)
	// So do the derivatives
	D := rb.EvalDerivN(r, 1)
	assert.InDeltaSlice(t, rb.GetDf(1).Data(), D.SubMatrix(utils.NewRange(0, len(r)-1), idx).Data(), 1e-10)
	// The element tables are shared by every integral
	assert.Panics(t, func() { rb.GetBf(1).Scale(2) })
	assert.NotPanics(t, func() { rb.GetDf(1).Scale(2) })

	nbf := rb.Nbf()
	require.NoError(t, rb.AddBoundary(4))
	assert.Equal(t, 3, rb.Nel())
	assert.Equal(t, nbf+4, rb.Nbf())
	assert.Equal(t, []float64{0, 2, 4, 6}, rb.Boundaries())
	assert.ErrorIs(t, rb.AddBoundary(4), ErrBadBoundaries)
	assert.Equal(t, 3, rb.Nel())
}

func TestCrossIntegrals(t *testing.T) {
	var (
		coarse = newTestBasis(t, polybasis.LIPLobatto, 5, 12, []float64{0, 2, 6}, false)
		fine   = newTestBasis(t, polybasis.LIPLobatto, 4, 12, []float64{0, 1, 3, 4.5, 6}, false)
	)
	same := coarse.CrossOverlap(coarse)
	assert.InDeltaSlice(t, coarse.OverlapMatrix().Data(), same.Data(), 1e-12)

	X := coarse.CrossOverlap(fine)
	nr, nc := X.Dims()
	assert.Equal(t, coarse.Nbf(), nr)
	assert.Equal(t, fine.Nbf(), nc)
	assert.InDelta(t, 6, X.Dot(utils.NewMatrix(nr, nc).AddScalar(1)), 1e-12)
	assert.InDeltaSlice(t, X.Data(), fine.CrossOverlap(coarse).Transpose().Data(), 1e-12)

	Y := coarse.CrossRadialIntegral(fine, 2, false, false)
	assert.InDelta(t, 72, Y.Dot(utils.NewMatrix(nr, nc).AddScalar(1)), 1e-10)
	Z := coarse.CrossRadialIntegral(fine, 0, true, false)
	assert.InDelta(t, 0, Z.Dot(utils.NewMatrix(nr, nc).AddScalar(1)), 1e-10)
}

func TestTwoElectronElements(t *testing.T) {
	rb := newTestBasis(t, polybasis.LIPLobatto, 4, 16, []float64{0.5, 1.5, 3}, false)
	sum := func(M utils.Matrix) (s float64) {
		for _, val := range M.Data() {
			s += val
		}
		return
	}
	// Constant density: ∫_el1 dr1/r1 ∫_el0 dr2
	assert.InDelta(t, math.Log(3/1.5)*1, sum(rb.DisjointIntegral(0, 1, 0)), 1e-10)
	assert.InDeltaSlice(t, rb.DisjointIntegral(2, 1, 0).Data(), rb.DisjointIntegral(2, 0, 1).Transpose().Data(), 1e-14)

	T := rb.TwoeIntegral(1, 0)
	assert.InDeltaSlice(t, T.Data(), T.Transpose().Data(), 1e-14)

	for _, L := range []int{0, 1} {
		// erfc -> Coulomb as the range separation vanishes
		assert.InDeltaSlice(t, rb.TwoeIntegral(L, 1).Data(), rb.ErfcIntegral(L, 1e-9, 1, 1).Data(), 1e-8)
		assert.InDeltaSlice(t, rb.DisjointIntegral(L, 0, 1).Data(), rb.ErfcIntegral(L, 1e-9, 0, 1).Data(), 1e-8)
		// Yukawa -> Coulomb as the screening vanishes
		assert.InDeltaSlice(t, rb.DisjointIntegral(L, 1, 0).Data(), rb.DisjointYukawaIntegral(L, 1e-6, 1, 0).Data(), 1e-5)
		assert.InDeltaSlice(t, rb.TwoeIntegral(L, 0).Data(), rb.YukawaIntegral(L, 1e-6, 0).Data(), 1e-5)
	}
	{ // The long-range part of well separated elements is Coulombic
		far := newTestBasis(t, polybasis.LIPLobatto, 3, 12, []float64{0.1, 0.3, 20, 21}, false)
		assert.InDeltaSlice(t, far.DisjointIntegral(0, 2, 0).Data(), far.ErfIntegral(0, 5, 2, 0).Data(), 1e-8)
	}
	// i_0(x) = sinh(x)/x
	I0 := rb.BesselILIntegral(0, 0.7, 0)
	V := rb.ModelPotential(potentialFunc(func(r float64) float64 { return math.Sinh(0.7*r) / (0.7 * r) }), 0)
	assert.InDeltaSlice(t, V.Data(), I0.Data(), 1e-12)
	K0 := rb.BesselKLIntegral(0, 0.7, 1)
	V = rb.ModelPotential(potentialFunc(func(r float64) float64 { return math.Exp(-0.7*r) / (0.7 * r) }), 1)
	assert.InDeltaSlice(t, V.Data(), K0.Data(), 1e-12)
}

type potentialFunc func(r float64) float64

func (f potentialFunc) V(r float64) float64 { return f(r) }
