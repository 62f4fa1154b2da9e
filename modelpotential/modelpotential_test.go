package modelpotential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, m := range []Model{BareNucleus, GSZ, ThomasFermi, PointNucleusModel,
		GaussianNucleusModel, SphericalNucleusModel, HollowNucleusModel} {
		mp, err := Get(m, 6, 1e-4)
		require.NoError(t, err, m.String())
		// Every model is Coulombic far from the nucleus; screened atoms see
		// a single charge
		far := mp.V(50) * 50
		switch m {
		case GSZ:
			assert.InDelta(t, -1, far, 1e-6, m.String())
		case ThomasFermi:
			assert.Greater(t, far, -6.)
			assert.Less(t, far, 0.)
		default:
			assert.InDelta(t, -6, far, 1e-12, m.String())
		}
	}
	_, err := Get(Tabulated, 6, 0)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
	_, err = Get(Model(42), 6, 0)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
	_, err = Get(GaussianNucleusModel, 6, 0)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
	_, err = Get(BareNucleus, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestFiniteNuclei(t *testing.T) {
	var (
		Z    = 2.
		Rrms = 0.01
	)
	g := GaussianNucleus{Z: Z, Rrms: Rrms}
	s := SphericalNucleus{Z: Z, Rrms: Rrms}
	h := HollowNucleus{Z: Z, R: Rrms}
	// Finite at the origin
	assert.InDelta(t, -Z*2*math.Sqrt(1.5)/Rrms/math.Sqrt(math.Pi), g.V(0), 1e-10)
	assert.InDelta(t, -1.5*Z/(math.Sqrt(5./3.)*Rrms), s.V(0), 1e-10)
	assert.Equal(t, -Z/Rrms, h.V(0))
	// Continuous at the surface
	R := math.Sqrt(5./3.) * Rrms
	assert.InDelta(t, s.V(R*(1-1e-12)), s.V(R), 1e-6)
	// Weaker than the point nucleus inside
	p := PointNucleus{Z: Z}
	for _, r := range []float64{1e-4, 1e-3, 5e-3} {
		assert.Greater(t, g.V(r), p.V(r))
		assert.Greater(t, s.V(r), p.V(r))
		assert.GreaterOrEqual(t, h.V(r), p.V(r))
	}
}

func TestScreenedAtoms(t *testing.T) {
	gsz := NewGSZAtom(10)
	assert.InDelta(t, 10, gsz.Zeff(0), 1e-12)
	tf := TFAtom{Z: 10}
	assert.InDelta(t, 10, tf.Zeff(0), 1e-12)
	// Screening is monotonic
	prevG, prevT := gsz.Zeff(0), tf.Zeff(0)
	for r := 0.1; r < 10; r += 0.1 {
		assert.LessOrEqual(t, gsz.Zeff(r), prevG)
		assert.LessOrEqual(t, tf.Zeff(r), prevT)
		prevG, prevT = gsz.Zeff(r), tf.Zeff(r)
	}
}

func TestTabulatedPotential(t *testing.T) {
	var (
		gsz  = NewGSZAtom(8)
		N    = 400
		r, V = make([]float64, N), make([]float64, N)
	)
	for i := range r {
		r[i] = 1e-3 + 20*float64(i)/float64(N-1)
		V[i] = gsz.V(r[i])
	}
	tp, err := NewTabulatedPotential(r, V)
	require.NoError(t, err)
	for _, x := range []float64{0.37, 1.3, 7.7, 15} {
		assert.InDelta(t, gsz.V(x), tp.V(x), 1e-4*math.Abs(gsz.V(x)))
	}
	// Coulomb tail beyond the table
	assert.InDelta(t, r[N-1]*V[N-1]/30, tp.V(30), 1e-14)

	_, err = NewTabulatedPotential([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
	_, err = NewTabulatedPotential([]float64{3, 2, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}
