package gaunt

import (
	"fmt"
	"math"

	"github.com/notargets/radfem/utils"
)

// Wigner3j returns the 3j symbol (j1 j2 j3; m1 m2 m3) for integer angular
// momenta by the Racah formula, with factorials in log form.
func Wigner3j(j1, j2, j3, m1, m2, m3 int) float64 {
	if m1+m2+m3 != 0 {
		return 0
	}
	if j1 < 0 || j2 < 0 || j3 < 0 || j3 < abs(j1-j2) || j3 > j1+j2 {
		return 0
	}
	if abs(m1) > j1 || abs(m2) > j2 || abs(m3) > j3 {
		return 0
	}
	var (
		lf   = utils.LogFactorial
		kmin = max(0, j2-j3-m1, j1-j3+m2)
		kmax = min(j1+j2-j3, j1-m1, j2+m2)
		pref = 0.5 * (lf(j1+j2-j3) + lf(j1-j2+j3) + lf(-j1+j2+j3) - lf(j1+j2+j3+1) +
			lf(j1+m1) + lf(j1-m1) + lf(j2+m2) + lf(j2-m2) + lf(j3+m3) + lf(j3-m3))
		sum float64
	)
	for k := kmin; k <= kmax; k++ {
		term := math.Exp(pref - lf(k) - lf(j3-j2+k+m1) - lf(j3-j1+k-m2) -
			lf(j1+j2-j3-k) - lf(j1-k-m1) - lf(j2-k+m2))
		if k%2 != 0 {
			term = -term
		}
		sum += term
	}
	if (j1-j2-m3)%2 != 0 {
		sum = -sum
	}
	return sum
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Coeff returns the Gaunt coefficient ∫ Y*_{l m} Y_{L M} Y_{lp mp} dΩ
func Coeff(L, M, l, m, lp, mp int) float64 {
	if M+mp != m {
		return 0
	}
	// Parity
	if (l+L+lp)%2 != 0 {
		return 0
	}
	val := math.Sqrt(float64((2*l+1)*(2*L+1)*(2*lp+1))/(4*math.Pi)) *
		Wigner3j(l, L, lp, 0, 0, 0) * Wigner3j(l, L, lp, -m, M, mp)
	if m%2 != 0 {
		val = -val
	}
	return val
}

type key struct {
	L, M, l, m, lp, mp int
}

// Table caches the non-zero Gaunt coefficients for l, lp <= lmax and
// L <= Lmax. It is read only after construction.
type Table struct {
	lmax, maxL int
	coeff      map[key]float64
}

func NewTable(lmax, Lmax int) (gt *Table) {
	gt = &Table{lmax: lmax, maxL: Lmax, coeff: make(map[key]float64)}
	for L := 0; L <= Lmax; L++ {
		for M := -L; M <= L; M++ {
			for l := 0; l <= lmax; l++ {
				for m := -l; m <= l; m++ {
					for lp := 0; lp <= lmax; lp++ {
						mp := m - M
						if abs(mp) > lp {
							continue
						}
						if val := Coeff(L, M, l, m, lp, mp); val != 0 {
							gt.coeff[key{L, M, l, m, lp, mp}] = val
						}
					}
				}
			}
		}
	}
	return
}

// Coeff returns the cached coefficient; arguments beyond the table panic
func (gt *Table) Coeff(L, M, l, m, lp, mp int) float64 {
	if L > gt.maxL || l > gt.lmax || lp > gt.lmax {
		panic(fmt.Errorf("gaunt coefficient (L=%d, l=%d, lp=%d) outside table with lmax=%d, Lmax=%d",
			L, l, lp, gt.lmax, gt.maxL))
	}
	return gt.coeff[key{L, M, l, m, lp, mp}]
}

func (gt *Table) MaxL() int { return gt.maxL }
func (gt *Table) LMax() int { return gt.lmax }
