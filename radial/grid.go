package radial

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/radfem/utils"
)

var ErrBadBoundaries = errors.New("invalid element boundaries")

type GridType int

const (
	LinearGrid GridType = iota + 1
	QuadraticGrid
	PolynomialGrid
	ExponentialGrid
)

func (gt GridType) String() string {
	switch gt {
	case LinearGrid:
		return "linear"
	case QuadraticGrid:
		return "quadratic"
	case PolynomialGrid:
		return "polynomial"
	case ExponentialGrid:
		return "exponential"
	}
	return fmt.Sprintf("GridType(%d)", int(gt))
}

// CheckBoundaries requires at least one element with finite, strictly
// increasing boundaries.
func CheckBoundaries(bval []float64) error {
	if len(bval) < 2 {
		return fmt.Errorf("%w: need at least two boundaries, got %d", ErrBadBoundaries, len(bval))
	}
	for i, b := range bval {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: boundary %d is %v", ErrBadBoundaries, i, b)
		}
		if i > 0 && b <= bval[i-1] {
			return fmt.Errorf("%w: boundary %d = %g does not exceed boundary %d = %g",
				ErrBadBoundaries, i, b, i-1, bval[i-1])
		}
	}
	return nil
}

// NormalGrid returns numEl+1 boundaries from 0 to rmax spaced by igrid;
// zexp shapes the polynomial and exponential laws.
func NormalGrid(numEl int, rmax float64, igrid GridType, zexp float64) (bval []float64, err error) {
	if numEl < 1 {
		err = fmt.Errorf("%w: need at least one element, got %d", ErrBadBoundaries, numEl)
		return
	}
	if rmax <= 0 {
		err = fmt.Errorf("%w: practical infinity must be positive, got %g", ErrBadBoundaries, rmax)
		return
	}
	switch igrid {
	case LinearGrid:
		bval = utils.Linspace(0, rmax, numEl+1)
	case QuadraticGrid:
		bval = utils.Linspace(0, math.Sqrt(rmax), numEl+1)
		for i := range bval {
			bval[i] *= bval[i]
		}
	case PolynomialGrid:
		if zexp <= 0 {
			err = fmt.Errorf("%w: polynomial grid exponent must be positive, got %g", ErrBadBoundaries, zexp)
			return
		}
		bval = utils.Linspace(0, math.Pow(rmax, 1/zexp), numEl+1)
		for i := range bval {
			bval[i] = math.Pow(bval[i], zexp)
		}
	case ExponentialGrid:
		if zexp <= 0 {
			err = fmt.Errorf("%w: exponential grid exponent must be positive, got %g", ErrBadBoundaries, zexp)
			return
		}
		bval = utils.Linspace(0, math.Pow(math.Log(rmax+1), 1/zexp), numEl+1)
		for i := range bval {
			bval[i] = math.Expm1(math.Pow(bval[i], zexp))
		}
	default:
		err = fmt.Errorf("%w: unsupported grid type %d", ErrBadBoundaries, int(igrid))
		return
	}
	bval[0], bval[numEl] = 0, rmax
	err = CheckBoundaries(bval)
	return
}

// OffcenterGrid places numEl0 linear elements on [0, Rhalf] and numEl
// elements spaced by igrid on [Rhalf, rmax], so that a boundary sits on the
// off-center nucleus.
func OffcenterGrid(numEl0 int, Rhalf float64, numEl int, rmax float64, igrid GridType, zexp float64) (bval []float64, err error) {
	var (
		outer []float64
	)
	if Rhalf <= 0 || Rhalf >= rmax {
		err = fmt.Errorf("%w: off-center distance %g must lie in (0, %g)", ErrBadBoundaries, Rhalf, rmax)
		return
	}
	if numEl0 < 1 {
		err = fmt.Errorf("%w: need at least one element inside the nucleus, got %d", ErrBadBoundaries, numEl0)
		return
	}
	if outer, err = NormalGrid(numEl, rmax-Rhalf, igrid, zexp); err != nil {
		return
	}
	bval = utils.Linspace(0, Rhalf, numEl0+1)
	for _, r := range outer[1:] {
		bval = append(bval, Rhalf+r)
	}
	err = CheckBoundaries(bval)
	return
}
