package modelpotential

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

var ErrUnsupportedModel = errors.New("unsupported model potential")

// ModelPotential is the potential felt by an electron at distance r from a
// nucleus, in Hartree atomic units.
type ModelPotential interface {
	V(r float64) float64
}

type Model int

const (
	BareNucleus Model = iota
	GSZ
	Tabulated
	ThomasFermi
	PointNucleusModel
	GaussianNucleusModel
	SphericalNucleusModel
	HollowNucleusModel
)

func (m Model) String() string {
	switch m {
	case BareNucleus:
		return "bare nucleus"
	case GSZ:
		return "Green-Sellin-Zachor"
	case Tabulated:
		return "tabulated"
	case ThomasFermi:
		return "Thomas-Fermi"
	case PointNucleusModel:
		return "point nucleus"
	case GaussianNucleusModel:
		return "Gaussian nucleus"
	case SphericalNucleusModel:
		return "spherical nucleus"
	case HollowNucleusModel:
		return "hollow nucleus"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// Get returns the model selected by m for nuclear charge Z; Rrms is the
// root-mean-square radius of the finite nuclear models.
func Get(m Model, Z int, Rrms float64) (mp ModelPotential, err error) {
	if Z < 1 {
		err = fmt.Errorf("%w: nuclear charge must be positive, got %d", ErrUnsupportedModel, Z)
		return
	}
	switch m {
	case BareNucleus, PointNucleusModel:
		mp = PointNucleus{Z: float64(Z)}
	case GSZ:
		mp = NewGSZAtom(Z)
	case ThomasFermi:
		mp = TFAtom{Z: float64(Z)}
	case GaussianNucleusModel, SphericalNucleusModel, HollowNucleusModel:
		if Rrms <= 0 {
			err = fmt.Errorf("%w: %s needs a positive rms radius, got %g", ErrUnsupportedModel, m, Rrms)
			return
		}
		switch m {
		case GaussianNucleusModel:
			mp = GaussianNucleus{Z: float64(Z), Rrms: Rrms}
		case SphericalNucleusModel:
			mp = SphericalNucleus{Z: float64(Z), Rrms: Rrms}
		default:
			mp = HollowNucleus{Z: float64(Z), R: Rrms}
		}
	case Tabulated:
		err = fmt.Errorf("%w: %s potentials are built from a table with NewTabulatedPotential", ErrUnsupportedModel, m)
	default:
		err = fmt.Errorf("%w: selector %d", ErrUnsupportedModel, int(m))
	}
	return
}

type PointNucleus struct {
	Z float64
}

func (p PointNucleus) V(r float64) float64 { return -p.Z / r }

// GaussianNucleus has the charge distribution exp(-ζ r²) with rms radius Rrms
type GaussianNucleus struct {
	Z, Rrms float64
}

func (g GaussianNucleus) V(r float64) float64 {
	sz := math.Sqrt(1.5) / g.Rrms
	if r*sz < 1e-8 {
		return -g.Z * 2 * sz / math.Sqrt(math.Pi)
	}
	return -g.Z * math.Erf(sz*r) / r
}

// SphericalNucleus is a uniformly charged ball with rms radius Rrms
type SphericalNucleus struct {
	Z, Rrms float64
}

func (s SphericalNucleus) V(r float64) float64 {
	R := math.Sqrt(5./3.) * s.Rrms
	if r >= R {
		return -s.Z / r
	}
	return -s.Z * (3 - r*r/(R*R)) / (2 * R)
}

// HollowNucleus is a charged shell of radius R
type HollowNucleus struct {
	Z, R float64
}

func (h HollowNucleus) V(r float64) float64 {
	if r >= h.R {
		return -h.Z / r
	}
	return -h.Z / h.R
}

// GSZAtom is the Green-Sellin-Zachor screened potential of a neutral atom,
//
//	V(r) = -[1 + (Z-1) / (H (exp(r/d) - 1) + 1)] / r
type GSZAtom struct {
	Z, D, H float64
}

// NewGSZAtom uses d = 0.75 and H = d (Z-1)^0.4
func NewGSZAtom(Z int) GSZAtom {
	d := 0.75
	return GSZAtom{Z: float64(Z), D: d, H: d * math.Pow(float64(Z-1), 0.4)}
}

// Zeff is the screened charge at r
func (g GSZAtom) Zeff(r float64) float64 {
	return 1 + (g.Z-1)/(g.H*math.Expm1(r/g.D)+1)
}

func (g GSZAtom) V(r float64) float64 { return -g.Zeff(r) / r }

// TFAtom is the Thomas-Fermi screened potential -Z φ(r/b)/r with Latter's
// fit to the screening function and b = 0.8853 Z^(-1/3).
type TFAtom struct {
	Z float64
}

func (tf TFAtom) Zeff(r float64) float64 {
	var (
		x  = r / (0.8853 * math.Cbrt(1/tf.Z))
		sx = math.Sqrt(x)
	)
	return tf.Z / (1 + 0.02747*sx + 1.243*x - 0.1486*x*sx + 0.2302*x*x + 0.007298*x*x*sx + 0.006944*x*x*x)
}

func (tf TFAtom) V(r float64) float64 { return -tf.Zeff(r) / r }

// TabulatedPotential interpolates r V(r) through a table with a natural
// cubic spline. Beyond the table the tail is Coulombic with the last
// tabulated charge; below it r V is held at the first value.
type TabulatedPotential struct {
	r0, rN float64
	zN, z0 float64
	spline interp.NaturalCubic
}

func NewTabulatedPotential(r, V []float64) (tp *TabulatedPotential, err error) {
	if len(r) != len(V) || len(r) < 3 {
		err = fmt.Errorf("%w: need at least three tabulated points with matching lengths, got %d radii and %d values",
			ErrUnsupportedModel, len(r), len(V))
		return
	}
	if !sort.Float64sAreSorted(r) {
		err = fmt.Errorf("%w: tabulated radii must be ascending", ErrUnsupportedModel)
		return
	}
	rV := make([]float64, len(r))
	for i := range r {
		rV[i] = r[i] * V[i]
	}
	tp = &TabulatedPotential{
		r0: r[0], rN: r[len(r)-1],
		z0: rV[0], zN: rV[len(rV)-1],
	}
	if err = tp.spline.Fit(r, rV); err != nil {
		err = fmt.Errorf("%w: %v", ErrUnsupportedModel, err)
		return nil, err
	}
	return
}

func (tp *TabulatedPotential) V(r float64) float64 {
	switch {
	case r >= tp.rN:
		return tp.zN / r
	case r <= tp.r0:
		return tp.z0 / r
	}
	return tp.spline.Predict(r) / r
}
