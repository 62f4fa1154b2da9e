package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major dense matrix with chainable operations.
// Methods marked "Changes receiver" operate in place and return the receiver.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// NewMatrixFrom copies any gonum matrix into a new Matrix
func NewMatrixFrom(A mat.Matrix) (R Matrix) {
	nr, nc := A.Dims()
	R = NewMatrix(nr, nc)
	R.M.Copy(A)
	return
}

func NewIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

func NewDiagonal(d []float64) (R Matrix) {
	R = NewMatrix(len(d), len(d))
	for i, val := range d {
		R.M.Set(i, i, val)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

// Data returns the row-major backing slice
func (m Matrix) Data() []float64 { return m.M.RawMatrix().Data }

func (m Matrix) IsEmpty() bool { return m.M == nil }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m Matrix) Slice(I, K, J, L int) (R Matrix) { // Does not change receiver
	// Rows I..K-1 and columns J..L-1
	var (
		nrR = K - I
		ncR = L - J
	)
	R = NewMatrix(nrR, ncR)
	for i := I; i < K; i++ {
		copy(R.M.RawRowView(i-I), m.M.RawRowView(i)[J:L])
	}
	return
}

func (m Matrix) SubMatrix(rows, cols Index) (R Matrix) { // Does not change receiver
	R = NewMatrix(len(rows), len(cols))
	for ii, i := range rows {
		row := m.M.RawRowView(i)
		rowR := R.M.RawRowView(ii)
		for jj, j := range cols {
			rowR[jj] = row[j]
		}
	}
	return
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	nr, nc := m.Dims()
	R = NewMatrix(nr, nc)
	R.M.Copy(m.M)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	nr, nc := m.Dims()
	R = NewMatrix(nc, nr)
	R.M.Copy(m.M.T())
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, ncM = m.M.Dims()
		nrA, ncA = A.M.Dims()
	)
	if ncM != nrA {
		panic(fmt.Errorf("dimension mismatch in Mul: (%d x %d) * (%d x %d)", nrM, ncM, nrA, ncA))
	}
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return R
}

// TransMul returns m^T * A without forming the transpose
func (m Matrix) TransMul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, ncM = m.M.Dims()
		nrA, ncA = A.M.Dims()
	)
	if nrM != nrA {
		panic(fmt.Errorf("dimension mismatch in TransMul: (%d x %d)^T * (%d x %d)", nrM, ncM, nrA, ncA))
	}
	R = NewMatrix(ncM, ncA)
	R.M.Mul(m.M.T(), A.M)
	return R
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	var (
		nr, nc = m.Dims()
	)
	i, j = lim(i, nr), lim(j, nc)
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetRow(i int, data []float64) Matrix { // Changes receiver
	var (
		nr, _ = m.Dims()
	)
	i = lim(i, nr)
	m.checkWritable()
	m.M.SetRow(i, data)
	return m
}

// SetSub overwrites the block starting at (i0, j0) with A
func (m Matrix) SetSub(i0, j0 int, A Matrix) Matrix { // Changes receiver
	var (
		nrA, ncA = A.Dims()
	)
	m.checkWritable()
	m.checkBlock(i0, j0, nrA, ncA)
	for i := 0; i < nrA; i++ {
		copy(m.M.RawRowView(i0 + i)[j0:j0+ncA], A.M.RawRowView(i))
	}
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	m.checkSameShape(A, "Add")
	floats.Add(m.Data(), A.Data())
	return m
}

func (m Matrix) AddScaled(a float64, A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	m.checkSameShape(A, "AddScaled")
	floats.AddScaled(m.Data(), a, A.Data())
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	m.checkSameShape(A, "Subtract")
	floats.Sub(m.Data(), A.Data())
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	floats.Scale(a, m.Data())
	return m
}

func (m Matrix) AddScalar(a float64) Matrix { // Changes receiver
	m.checkWritable()
	floats.AddConst(a, m.Data())
	return m
}

// ScaleRows multiplies row i by w[i]
func (m Matrix) ScaleRows(w []float64) Matrix { // Changes receiver
	var (
		nr, _ = m.Dims()
	)
	m.checkWritable()
	if len(w) != nr {
		panic(fmt.Errorf("ScaleRows: %d weights for %d rows", len(w), nr))
	}
	for i := 0; i < nr; i++ {
		floats.Scale(w[i], m.M.RawRowView(i))
	}
	return m
}

// Symmetrize replaces the receiver with (m + m^T)/2
func (m Matrix) Symmetrize() Matrix { // Changes receiver
	var (
		nr, nc = m.Dims()
	)
	m.checkWritable()
	if nr != nc {
		panic(fmt.Errorf("cannot symmetrize a %d x %d matrix", nr, nc))
	}
	for i := 0; i < nr; i++ {
		for j := i + 1; j < nc; j++ {
			val := 0.5 * (m.M.At(i, j) + m.M.At(j, i))
			m.M.Set(i, j, val)
			m.M.Set(j, i, val)
		}
	}
	return m
}

// Non chainable methods
func (m Matrix) Inverse() (R Matrix, err error) {
	R = m.Copy()
	if err = R.M.Inverse(m.M); err != nil {
		err = fmt.Errorf("unable to invert, matrix is singular: %w", err)
	}
	return
}

func (m Matrix) Col(j int) Vector {
	var (
		nr, nc = m.M.Dims()
		vData  = make([]float64, nr)
	)
	j = lim(j, nc)
	mat.Col(vData, j, m.M)
	return NewVector(nr, vData)
}

func (m Matrix) Row(i int) Vector {
	var (
		nr, nc = m.M.Dims()
		vData  = make([]float64, nc)
	)
	i = lim(i, nr)
	copy(vData, m.M.RawRowView(i))
	return NewVector(nc, vData)
}

func (m Matrix) Max() (max float64) { return floats.Max(m.Data()) }

func (m Matrix) MaxAbs() (max float64) {
	for _, val := range m.Data() {
		if a := math.Abs(val); a > max {
			max = a
		}
	}
	return
}

// Dot is the Frobenius inner product sum_ij m_ij A_ij
func (m Matrix) Dot(A Matrix) float64 {
	m.checkSameShape(A, "Dot")
	return floats.Dot(m.Data(), A.Data())
}

// Reshape returns a copy with the same row-major data in a new shape
func (m Matrix) Reshape(nr, nc int) (R Matrix) {
	var (
		data = m.Data()
	)
	if len(data) != nr*nc {
		panic(fmt.Errorf("cannot reshape %d elements into %d x %d", len(data), nr, nc))
	}
	dataR := make([]float64, len(data))
	copy(dataR, data)
	return NewMatrix(nr, nc, dataR)
}

func (m Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(m.M, mat.Squeeze()))
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m Matrix) checkSameShape(A Matrix, op string) {
	nr, nc := m.Dims()
	nrA, ncA := A.Dims()
	if nr != nrA || nc != ncA {
		panic(fmt.Errorf("dimension mismatch in %s: %d x %d vs %d x %d", op, nr, nc, nrA, ncA))
	}
}

func (m Matrix) checkBlock(i0, j0, nrA, ncA int) {
	nr, nc := m.Dims()
	if i0 < 0 || j0 < 0 || i0+nrA > nr || j0+ncA > nc {
		panic(fmt.Errorf("block (%d:%d, %d:%d) out of bounds for %d x %d matrix",
			i0, i0+nrA, j0, j0+ncA, nr, nc))
	}
}

func lim(i, imax int) int {
	if i < 0 {
		return imax + i // Support indexing from end, -1 is imax
	}
	return i
}
