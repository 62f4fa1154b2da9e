package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymDense returns a symmetric copy of m built from its upper triangle
func (m Matrix) SymDense() *mat.SymDense {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		panic(fmt.Errorf("matrix is not square: %d x %d", nr, nc))
	}
	S := mat.NewSymDense(nr, nil)
	for i := 0; i < nr; i++ {
		for j := i; j < nc; j++ {
			S.SetSym(i, j, m.M.At(i, j))
		}
	}
	return S
}

// SymEigen diagonalizes a symmetric matrix. Eigenvalues are ascending and
// eigenvectors are the columns of vecs.
func (m Matrix) SymEigen() (vals []float64, vecs Matrix, err error) {
	var (
		es mat.EigenSym
		n  = m.M.RawMatrix().Rows
	)
	if ok := es.Factorize(m.SymDense(), true); !ok {
		err = fmt.Errorf("symmetric eigendecomposition failed for %d x %d matrix", n, n)
		return
	}
	vals = es.Values(nil)
	vecs = NewMatrix(n, n)
	es.VectorsTo(vecs.M)
	return
}

// SymPower returns V diag(lambda^p) V^T for a symmetric positive definite m
func (m Matrix) SymPower(p float64) (R Matrix, err error) {
	var (
		vals []float64
		vecs Matrix
	)
	if vals, vecs, err = m.SymEigen(); err != nil {
		return
	}
	for i, val := range vals {
		if val <= 0 {
			err = fmt.Errorf("matrix is not positive definite: eigenvalue %d = %g", i, val)
			return
		}
		vals[i] = math.Pow(val, p)
	}
	R = vecs.Mul(NewDiagonal(vals)).Mul(vecs.Transpose())
	return
}

// CholeskyUpper returns U with m = U^T U
func (m Matrix) CholeskyUpper() (U Matrix, err error) {
	var (
		ch mat.Cholesky
		ut mat.TriDense
	)
	if ok := ch.Factorize(m.SymDense()); !ok {
		nr, _ := m.Dims()
		err = fmt.Errorf("cholesky factorization failed, %d x %d matrix is not positive definite", nr, nr)
		return
	}
	ch.UTo(&ut)
	U = NewMatrixFrom(&ut)
	return
}

// UpperTriInverse inverts an upper triangular matrix
func (m Matrix) UpperTriInverse() (R Matrix, err error) {
	var (
		nr, _ = m.Dims()
		ut    = mat.NewTriDense(nr, mat.Upper, nil)
		inv   mat.TriDense
	)
	for i := 0; i < nr; i++ {
		for j := i; j < nr; j++ {
			ut.SetTri(i, j, m.M.At(i, j))
		}
	}
	if err = inv.InverseTri(ut); err != nil {
		// mat.Condition only flags ill-conditioning, the inverse is still formed
		if _, ok := err.(mat.Condition); !ok {
			err = fmt.Errorf("triangular inverse: %w", err)
			return
		}
		err = nil
	}
	R = NewMatrixFrom(&inv)
	return
}
