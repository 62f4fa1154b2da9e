//go:build netlib

package utils

/*
#cgo LDFLAGS: -lopenblas -lgfortran -lm -lpthread
*/
import "C"

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas64.Use(netblas.Implementation{})
}
