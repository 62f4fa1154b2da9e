package atomic

import (
	"fmt"
)

// AngularBasis lists the (l, m) pairs with l <= lmax and |m| <= min(l, mmax),
// ordered by l and then m.
func AngularBasis(lmax, mmax int) (lval, mval []int) {
	for l := 0; l <= lmax; l++ {
		mm := min(l, mmax)
		for m := -mm; m <= mm; m++ {
			lval = append(lval, l)
			mval = append(mval, m)
		}
	}
	return
}

// AngularBasisLM lists the (l, m) pairs with l <= lmmax[|m|], ordered by l
// and then m. The length of lmmax bounds |m|.
func AngularBasisLM(lmmax []int) (lval, mval []int) {
	lmax := 0
	for _, l := range lmmax {
		lmax = max(lmax, l)
	}
	for l := 0; l <= lmax; l++ {
		for m := -l; m <= l; m++ {
			am := m
			if am < 0 {
				am = -am
			}
			if am >= len(lmmax) || l > lmmax[am] {
				continue
			}
			lval = append(lval, l)
			mval = append(mval, m)
		}
	}
	return
}

func checkAngular(lval, mval []int) error {
	if len(lval) != len(mval) {
		return fmt.Errorf("%d l values for %d m values", len(lval), len(mval))
	}
	if len(lval) == 0 {
		return fmt.Errorf("empty angular basis")
	}
	seen := make(map[[2]int]bool, len(lval))
	for i := range lval {
		l, m := lval[i], mval[i]
		if l < 0 || m < -l || m > l {
			return fmt.Errorf("invalid angular function (l=%d, m=%d)", l, m)
		}
		if seen[[2]int{l, m}] {
			return fmt.Errorf("duplicate angular function (l=%d, m=%d)", l, m)
		}
		seen[[2]int{l, m}] = true
	}
	return nil
}
