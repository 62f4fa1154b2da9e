package utils

import (
	"bytes"
	"fmt"
)

// BlockMatrix holds Nr x Nc equally sized sub-matrices, nil blocks are zero
type BlockMatrix struct {
	M      [][]Matrix // First slice points to rows of matrices
	Nr, Nc int        // number of block rows, block columns
	Br, Bc int        // rows, columns of every block
}

func NewBlockMatrix(Nr, Nc, Br, Bc int) (R BlockMatrix) {
	R = BlockMatrix{
		Nr: Nr,
		Nc: Nc,
		Br: Br,
		Bc: Bc,
	}
	R.M = make([][]Matrix, Nr)
	for n := range R.M {
		R.M[n] = make([]Matrix, Nc)
	}
	return R
}

// AddBlock accumulates A into block (i, j)
func (bm BlockMatrix) AddBlock(i, j int, A Matrix) {
	var (
		nr, nc = A.Dims()
	)
	bm.checkIndex(i, j)
	if nr != bm.Br || nc != bm.Bc {
		panic(fmt.Errorf("block (%d,%d) is %d x %d, got %d x %d", i, j, bm.Br, bm.Bc, nr, nc))
	}
	if bm.M[i][j].IsEmpty() {
		bm.M[i][j] = A.Copy()
		return
	}
	bm.M[i][j].Add(A)
}

func (bm BlockMatrix) Transpose() (R BlockMatrix) {
	R = NewBlockMatrix(bm.Nc, bm.Nr, bm.Bc, bm.Br)
	for i := 0; i < bm.Nr; i++ {
		for j := 0; j < bm.Nc; j++ {
			if !bm.M[i][j].IsEmpty() {
				R.M[j][i] = bm.M[i][j].Transpose()
			}
		}
	}
	return
}

func (bm BlockMatrix) Scale(val float64) BlockMatrix { // Changes receiver
	for i := range bm.M {
		for j := range bm.M[i] {
			if !bm.M[i][j].IsEmpty() {
				bm.M[i][j].Scale(val)
			}
		}
	}
	return bm
}

// Assemble returns the (Nr*Br) x (Nc*Bc) dense matrix
func (bm BlockMatrix) Assemble() (R Matrix) {
	R = NewMatrix(bm.Nr*bm.Br, bm.Nc*bm.Bc)
	for i := 0; i < bm.Nr; i++ {
		for j := 0; j < bm.Nc; j++ {
			if !bm.M[i][j].IsEmpty() {
				R.SetSub(i*bm.Br, j*bm.Bc, bm.M[i][j])
			}
		}
	}
	return
}

func (bm BlockMatrix) String() string {
	buf := bytes.Buffer{}
	for n, row := range bm.M {
		for m, Mat := range row {
			if Mat.IsEmpty() {
				buf.WriteString(fmt.Sprintf("[%d:%d] nil\n", n, m))
				continue
			}
			buf.WriteString(fmt.Sprintf("[%d:%d]\n%v\n", n, m, Mat))
		}
	}
	return buf.String()
}

func (bm BlockMatrix) checkIndex(i, j int) {
	if i < 0 || i >= bm.Nr || j < 0 || j >= bm.Nc {
		panic(fmt.Errorf("block index (%d,%d) out of range for %d x %d block matrix", i, j, bm.Nr, bm.Nc))
	}
}
