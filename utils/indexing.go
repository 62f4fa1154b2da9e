package utils

import (
	"fmt"
	"slices"
)

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 0 {
		size = 0
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

func (I Index) Add(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val + ival
	}
	return r
}

// Append returns the concatenation of I and J as a new Index
func (I Index) Append(J ...Index) (r Index) {
	r = slices.Clone(I)
	for _, j := range J {
		r = append(r, j...)
	}
	return
}

// Complement returns the indices in [0, N) that are absent from I
func (I Index) Complement(N int) (r Index) {
	var (
		present = make([]bool, N)
	)
	for _, val := range I {
		if val < 0 || val >= N {
			panic(fmt.Errorf("index %d out of range [0, %d)", val, N))
		}
		present[val] = true
	}
	for i, p := range present {
		if !p {
			r = append(r, i)
		}
	}
	return
}
