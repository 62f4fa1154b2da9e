package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK accumulates element blocks into a global sparse matrix
type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

// AddBlock accumulates A into rows I and columns J
func (m DOK) AddBlock(I, J Index, A Matrix) DOK { // Changes receiver
	var (
		nrA, ncA = A.Dims()
		nr, nc   = m.Dims()
	)
	if len(I) != nrA || len(J) != ncA {
		panic(fmt.Errorf("block index mismatch: %d x %d indices for a %d x %d block", len(I), len(J), nrA, ncA))
	}
	for ii, i := range I {
		if i < 0 || i >= nr {
			panic(fmt.Errorf("row %d out of range for %d x %d matrix", i, nr, nc))
		}
		for jj, j := range J {
			if j < 0 || j >= nc {
				panic(fmt.Errorf("column %d out of range for %d x %d matrix", j, nr, nc))
			}
			if val := A.At(ii, jj); val != 0 {
				m.M.Set(i, j, m.M.At(i, j)+val)
			}
		}
	}
	return m
}

// ToMatrix converts to a dense Matrix
func (m DOK) ToMatrix() Matrix {
	var (
		nr, nc = m.Dims()
		R      = NewMatrix(nr, nc)
	)
	R.M.Copy(m.M.ToDense())
	return R
}
