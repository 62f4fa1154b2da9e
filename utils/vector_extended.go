package utils

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) Vector {
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			panic(fmt.Errorf("mismatch in allocation: NewVector n = %v, len(data[0]) = %v", n, len(dataO[0])))
		}
		return Vector{mat.NewVecDense(n, dataO[0])}
	}
	return Vector{mat.NewVecDense(n, make([]float64, n))}
}

// NewVectorFrom copies the slice
func NewVectorFrom(data []float64) Vector {
	d := make([]float64, len(data))
	copy(d, data)
	return NewVector(len(d), d)
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)    { return v.V.Dims() }
func (v Vector) At(i, j int) float64 { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix       { return v.V.T() }
func (v Vector) Len() int            { return v.V.Len() }
func (v Vector) Data() []float64     { return v.V.RawVector().Data }

func (v Vector) Copy() Vector { return NewVectorFrom(v.Data()) }

// Chainable (extended) methods
func (v Vector) Set(i int, val float64) Vector { v.V.SetVec(i, val); return v }
func (v Vector) Sub(a Vector) Vector           { v.V.SubVec(v.V, a.V); return v }
func (v Vector) Scale(a float64) Vector        { v.V.ScaleVec(a, v.V); return v }
func (v Vector) Add(a float64) Vector          { floats.AddConst(a, v.Data()); return v }

func (v Vector) POW(p int) Vector {
	var (
		data = v.Data()
	)
	for i, val := range data {
		data[i] = POW(val, p)
	}
	return v
}

func (v Vector) Max() float64         { return floats.Max(v.Data()) }
func (v Vector) Sum() float64         { return floats.Sum(v.Data()) }
func (v Vector) Dot(a Vector) float64 { return mat.Dot(v.V, a.V) }

// ToMatrix returns the vector as an N x 1 column matrix sharing no storage
func (v Vector) ToMatrix() Matrix {
	return NewMatrix(v.Len(), 1, NewVectorFrom(v.Data()).Data())
}

func (v Vector) String() string {
	return fmt.Sprintf("%v", mat.Formatted(v.V.T(), mat.Squeeze()))
}
