package quadrature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// gamma0 is the squared norm of the degree zero Jacobi polynomial
func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1) * math.Gamma(beta+1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	return (alpha + 1) * (beta + 1) * gamma0(alpha, beta) / (alpha + beta + 3.0)
}

// JacobiGQ returns the N+1 point Gauss quadrature for the weight
// (1-x)^alpha (1+x)^beta, nodes ascending. The nodes are the eigenvalues of
// the symmetric Jacobi matrix and each weight is the squared first component
// of the matching eigenvector times the zeroth moment.
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	if N < 0 {
		panic(fmt.Errorf("negative Jacobi quadrature order %d", N))
	}
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2.)}, []float64{gamma0(alpha, beta)}
	}
	var (
		n   = N + 1
		J   = mat.NewSymDense(n, nil)
		fac = -.5 * (alpha*alpha - beta*beta)
		ab  = alpha + beta
	)
	for i := 0; i < n; i++ {
		h1 := 2*float64(i) + ab
		if i == 0 && ab < 1e-15 {
			J.SetSym(i, i, 0)
		} else {
			J.SetSym(i, i, fac/(h1*(h1+2.)))
		}
		if i < N {
			ip1 := float64(i + 1)
			J.SetSym(i, i+1, 2./(h1+2.)*math.Sqrt(ip1*(ip1+ab)*(ip1+alpha)*(ip1+beta)/((h1+1.)*(h1+3.))))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(J, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	V := mat.NewDense(n, n, nil)
	eig.VectorsTo(V)
	w = make([]float64, n)
	g0 := gamma0(alpha, beta)
	for i, v := range V.RawRowView(0) {
		w[i] = v * v * g0
	}
	return
}

// JacobiGL returns the N+1 Gauss-Lobatto nodes including both end points
func JacobiGL(alpha, beta float64, N int) (x []float64) {
	x = make([]float64, N+1)
	x[0], x[N] = -1, 1
	if N == 1 {
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	copy(x[1:N], xint)
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of degree N at r
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc   = len(r)
		rg   = 1. / math.Sqrt(gamma0(alpha, beta))
		prev = make([]float64, Nc)
		cur  = make([]float64, Nc)
	)
	for i := range prev {
		prev[i] = rg
	}
	if N == 0 {
		return prev
	}
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	for i, ri := range r {
		cur[i] = rg1 * ((ab+2.0)*ri/2.0 + (alpha-beta)/2.0)
	}
	var (
		a1   = alpha + 1.
		b1   = beta + 1.
		ab1  = ab + 1.
		aold = 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt((ip1+1)*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		next := make([]float64, Nc)
		for j, rj := range r {
			next[j] = (-aold*prev[j] + (rj-bnew)*cur[j]) / anew
		}
		prev, cur = cur, next
		aold = anew
	}
	return cur
}

// GradJacobiP is the derivative of JacobiP with respect to r
func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		return make([]float64, len(r))
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i := range p {
		p[i] *= fac
	}
	return
}
