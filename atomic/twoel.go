package atomic

import (
	"fmt"
	"math"

	"github.com/notargets/radfem/radial"
	"github.com/notargets/radfem/utils"
)

// exchangeKernel contracts the order L radial two-electron integrals with a
// radial density block in exchange order, K_ij = Σ_kl R_(ik),(lj) P_kl.
type exchangeKernel interface {
	exchange(L int, P utils.Matrix) utils.Matrix
}

// coulombCache holds the radial integrals of a kernel whose multipole
// expansion factorizes between elements: 1/r12 or exp(-λ r12)/r12.
type coulombCache struct {
	rb *radial.Basis
	// [L][iel] in-element tensors, rows i*Nprim+j and columns k*Nprim+l
	prim [][]utils.Matrix
	// [L][iel] prim reordered so that vec(K) = ktei vec(P), nil for Coulomb only
	ktei [][]utils.Matrix
	// [L][iel] 1 x Nprim² disjoint factors, mom for the inner electron
	mom, pot [][]utils.Matrix
}

func newMatrixTable(nL, Nel int) (t [][]utils.Matrix) {
	t = make([][]utils.Matrix, nL)
	for L := range t {
		t[L] = make([]utils.Matrix, Nel)
	}
	return
}

func newCoulombCache(rb *radial.Basis, NP, maxL int, exchange bool,
	prim, mom, pot func(L, iel int) utils.Matrix) (c *coulombCache) {
	var (
		Nel = rb.Nel()
		nL  = maxL + 1
	)
	c = &coulombCache{
		rb:   rb,
		prim: newMatrixTable(nL, Nel),
		mom:  newMatrixTable(nL, Nel),
		pot:  newMatrixTable(nL, Nel),
	}
	if exchange {
		c.ktei = newMatrixTable(nL, Nel)
	}
	utils.RunParallel(NP, nL*Nel, func(k int) {
		L, iel := k/Nel, k%Nel
		c.prim[L][iel] = prim(L, iel)
		c.mom[L][iel] = mom(L, iel)
		c.pot[L][iel] = pot(L, iel)
		if exchange {
			n := rb.Nprim(iel)
			c.ktei[L][iel] = exchangeSort(c.prim[L][iel], n, n)
		}
	})
	return
}

// exchangeSort reorders T, rows (i,k) over ni x ni and columns (l,j) over
// nj x nj, into rows (i,j) and columns (k,l).
func exchangeSort(T utils.Matrix, ni, nj int) (R utils.Matrix) {
	var (
		n  = ni * nj
		td = T.Data()
		tc = nj * nj
	)
	R = utils.NewMatrix(n, n)
	rd := R.Data()
	for i := 0; i < ni; i++ {
		for k := 0; k < ni; k++ {
			for l := 0; l < nj; l++ {
				for j := 0; j < nj; j++ {
					rd[(i*nj+j)*n+k*nj+l] = td[(i*ni+k)*tc+l*nj+j]
				}
			}
		}
	}
	return
}

// coulomb returns J_ij = Σ_kl R_(ij),(kl) P_kl for the radial functions
func (c *coulombCache) coulomb(L int, P utils.Matrix) utils.Matrix {
	var (
		rb     = c.rb
		Nel    = rb.Nel()
		vecs   = make([]utils.Matrix, Nel)
		mP, pP = make([]float64, Nel), make([]float64, Nel)
		above  = make([]float64, Nel+1)
		below  float64
		nbf    = rb.Nbf()
		D      = utils.NewDOK(nbf, nbf)
	)
	for iel := 0; iel < Nel; iel++ {
		var (
			idx = rb.GlobalIndex(iel)
			n   = len(idx)
		)
		vecs[iel] = P.SubMatrix(idx, idx).Reshape(n*n, 1)
		mP[iel] = c.mom[L][iel].Mul(vecs[iel]).At(0, 0)
		pP[iel] = c.pot[L][iel].Mul(vecs[iel]).At(0, 0)
	}
	for iel := Nel - 1; iel >= 0; iel-- {
		above[iel] = above[iel+1] + pP[iel]
	}
	for iel := 0; iel < Nel; iel++ {
		var (
			idx = rb.GlobalIndex(iel)
			n   = len(idx)
			Q   = c.prim[L][iel].Mul(vecs[iel])
		)
		// Electron 2 inside the element, then below and above it
		Q.AddScaled(below, c.pot[L][iel].Transpose())
		Q.AddScaled(above[iel+1], c.mom[L][iel].Transpose())
		below += mP[iel]
		D.AddBlock(idx, idx, Q.Reshape(n, n))
	}
	return D.ToMatrix()
}

func (c *coulombCache) exchange(L int, P utils.Matrix) utils.Matrix {
	if c.ktei == nil {
		panic(fmt.Errorf("exchange integrals have not been computed"))
	}
	var (
		rb       = c.rb
		Nel      = rb.Nel()
		nbf      = rb.Nbf()
		D        = utils.NewDOK(nbf, nbf)
		mom, pot = make([]utils.Matrix, Nel), make([]utils.Matrix, Nel)
	)
	for iel := 0; iel < Nel; iel++ {
		n := rb.Nprim(iel)
		mom[iel] = c.mom[L][iel].Reshape(n, n)
		pot[iel] = c.pot[L][iel].Reshape(n, n)
	}
	for iel := 0; iel < Nel; iel++ {
		idxI := rb.GlobalIndex(iel)
		for jel := 0; jel < Nel; jel++ {
			var (
				idxJ = rb.GlobalIndex(jel)
				Pij  = P.SubMatrix(idxI, idxJ)
				K    utils.Matrix
			)
			switch {
			case iel == jel:
				n := len(idxI)
				K = c.ktei[L][iel].Mul(Pij.Reshape(n*n, 1)).Reshape(n, n)
			case iel > jel:
				K = pot[iel].Mul(Pij).Mul(mom[jel])
			default:
				K = mom[iel].Mul(Pij).Mul(pot[jel])
			}
			D.AddBlock(idxI, idxJ, K)
		}
	}
	return D.ToMatrix()
}

// erfcCache holds the short-range erfc(μ r12)/r12 integrals for every
// element pair in exchange order; the kernel does not factorize.
type erfcCache struct {
	rb    *radial.Basis
	pairs [][]utils.Matrix // [L][iel*Nel+jel]
}

func (c *erfcCache) exchange(L int, P utils.Matrix) utils.Matrix {
	var (
		rb  = c.rb
		Nel = rb.Nel()
		nbf = rb.Nbf()
		D   = utils.NewDOK(nbf, nbf)
	)
	for iel := 0; iel < Nel; iel++ {
		idxI := rb.GlobalIndex(iel)
		for jel := 0; jel < Nel; jel++ {
			var (
				idxJ   = rb.GlobalIndex(jel)
				ni, nj = len(idxI), len(idxJ)
				Pij    = P.SubMatrix(idxI, idxJ).Reshape(ni*nj, 1)
			)
			D.AddBlock(idxI, idxJ, c.pairs[L][iel*Nel+jel].Mul(Pij).Reshape(ni, nj))
		}
	}
	return D.ToMatrix()
}

// Range-separated kernels reported by RangeSeparation
const (
	RSYukawa = "Yukawa"
	RSErfc   = "erfc"
)

// rangeSeparated is the screened interaction used for range-separated
// exchange, set by ComputeYukawa or ComputeErfc.
type rangeSeparated struct {
	kernel exchangeKernel
	kind   string
	param  float64
}

// ComputeTEI evaluates the 1/r12 integrals, including the exchange ordered
// tensors when exchange is set. It may only be called once.
func (b *TwoDBasis) ComputeTEI(exchange bool) error {
	if b.tei != nil {
		return fmt.Errorf("%w: Coulomb integrals", ErrAlreadyComputed)
	}
	rb := b.radial
	b.tei = newCoulombCache(rb, b.NP, b.maxL, exchange, rb.TwoeIntegral, rb.MultipoleMoment, rb.MultipolePotential)
	return nil
}

// ComputeYukawa evaluates the exp(-λ r12)/r12 integrals for range-separated
// exchange. Only one range-separated kernel may be computed.
func (b *TwoDBasis) ComputeYukawa(lambda float64) error {
	if b.rs.kernel != nil {
		return fmt.Errorf("%w: %s range separation", ErrAlreadyComputed, b.rs.kind)
	}
	if !(lambda > 0) || math.IsInf(lambda, 1) {
		return fmt.Errorf("invalid Yukawa screening parameter %g", lambda)
	}
	rb := b.radial
	b.rs = rangeSeparated{
		kernel: newCoulombCache(rb, b.NP, b.maxL, true,
			func(L, iel int) utils.Matrix { return rb.YukawaIntegral(L, lambda, iel) },
			func(L, iel int) utils.Matrix { return rb.YukawaMoment(L, lambda, iel) },
			func(L, iel int) utils.Matrix { return rb.YukawaPotential(L, lambda, iel) }),
		kind:  RSYukawa,
		param: lambda,
	}
	return nil
}

// ComputeErfc evaluates the erfc(μ r12)/r12 integrals for range-separated
// exchange. Only one range-separated kernel may be computed.
func (b *TwoDBasis) ComputeErfc(mu float64) error {
	if b.rs.kernel != nil {
		return fmt.Errorf("%w: %s range separation", ErrAlreadyComputed, b.rs.kind)
	}
	if !(mu > 0) || math.IsInf(mu, 1) {
		return fmt.Errorf("invalid range-separation parameter %g", mu)
	}
	var (
		rb  = b.radial
		Nel = rb.Nel()
		nL  = b.maxL + 1
		c   = &erfcCache{rb: rb, pairs: newMatrixTable(nL, Nel*Nel)}
	)
	utils.RunParallel(b.NP, nL*Nel*Nel, func(k int) {
		var (
			L        = k / (Nel * Nel)
			iel, jel = (k % (Nel * Nel)) / Nel, k % Nel
		)
		c.pairs[L][iel*Nel+jel] = exchangeSort(rb.ErfcIntegral(L, mu, iel, jel), rb.Nprim(iel), rb.Nprim(jel))
	})
	b.rs = rangeSeparated{kernel: c, kind: RSErfc, param: mu}
	return nil
}

// RangeSeparation reports the computed range-separated kernel, if any
func (b *TwoDBasis) RangeSeparation() (kind string, param float64) {
	return b.rs.kind, b.rs.param
}

// Coulomb returns the Coulomb matrix of the density P
func (b *TwoDBasis) Coulomb(P utils.Matrix) utils.Matrix {
	if b.tei == nil {
		panic(fmt.Errorf("Coulomb integrals have not been computed"))
	}
	b.checkDensity(P)
	var (
		Nang, Nrad = b.Nang(), b.Nrad()
		J          = utils.NewBlockMatrix(Nang, Nang, Nrad, Nrad)
	)
	for L := 0; L <= b.maxL; L++ {
		pref := 4 * math.Pi / float64(2*L+1)
		for M := -L; M <= L; M++ {
			// Electron 2 carries <Y_l|Y_LM|Y_k> P_kl
			var rho utils.Matrix
			for kang := 0; kang < Nang; kang++ {
				for lang := 0; lang < Nang; lang++ {
					c := b.coupling(L, M, lang, kang)
					if c == 0 {
						continue
					}
					if rho.IsEmpty() {
						rho = utils.NewMatrix(Nrad, Nrad)
					}
					rho.AddScaled(c, b.angularBlock(P, kang, lang))
				}
			}
			if rho.IsEmpty() {
				continue
			}
			V := b.tei.coulomb(L, rho)
			// Electron 1 carries <Y_i|Y*_LM|Y_j> = (-1)^M <Y_i|Y_L,-M|Y_j>
			for iang := 0; iang < Nang; iang++ {
				for jang := 0; jang < Nang; jang++ {
					c := b.coupling(L, -M, iang, jang)
					if c == 0 {
						continue
					}
					if M%2 != 0 {
						c = -c
					}
					J.AddBlock(iang, jang, V.Copy().Scale(pref*c))
				}
			}
		}
	}
	return J.Assemble()
}

// Exchange returns the exchange matrix K_ij = Σ_kl P_kl (ik|lj)
func (b *TwoDBasis) Exchange(P utils.Matrix) utils.Matrix {
	if b.tei == nil || b.tei.ktei == nil {
		panic(fmt.Errorf("exchange integrals have not been computed"))
	}
	return b.exchangeMatrix(b.tei, P)
}

// RSExchange is Exchange with the range-separated kernel
func (b *TwoDBasis) RSExchange(P utils.Matrix) utils.Matrix {
	if b.rs.kernel == nil {
		panic(fmt.Errorf("range-separated integrals have not been computed"))
	}
	return b.exchangeMatrix(b.rs.kernel, P)
}

func (b *TwoDBasis) exchangeMatrix(kern exchangeKernel, P utils.Matrix) utils.Matrix {
	b.checkDensity(P)
	var (
		Nang, Nrad = b.Nang(), b.Nrad()
		K          = utils.NewBlockMatrix(Nang, Nang, Nrad, Nrad)
	)
	// Rows of angular blocks are independent
	utils.RunParallel(b.NP, Nang, func(iang int) {
		for jang := 0; jang < Nang; jang++ {
			for L := 0; L <= b.maxL; L++ {
				var W utils.Matrix
				for kang := 0; kang < Nang; kang++ {
					// <Y_i|Y*_LM|Y_k> fixes M = m_k - m_i
					M := b.mval[kang] - b.mval[iang]
					if M < -L || M > L {
						continue
					}
					c1 := b.coupling(L, -M, iang, kang)
					if c1 == 0 {
						continue
					}
					if M%2 != 0 {
						c1 = -c1
					}
					for lang := 0; lang < Nang; lang++ {
						c2 := b.coupling(L, M, lang, jang)
						if c2 == 0 {
							continue
						}
						if W.IsEmpty() {
							W = utils.NewMatrix(Nrad, Nrad)
						}
						W.AddScaled(c1*c2, b.angularBlock(P, kang, lang))
					}
				}
				if W.IsEmpty() {
					continue
				}
				K.AddBlock(iang, jang, kern.exchange(L, W).Scale(4*math.Pi/float64(2*L+1)))
			}
		}
	})
	return K.Assemble()
}

// GetPrimTEI returns the in-element 1/r12 tensor of order L on element iel
func (b *TwoDBasis) GetPrimTEI(L, iel int) utils.Matrix {
	if b.tei == nil {
		panic(fmt.Errorf("Coulomb integrals have not been computed"))
	}
	if L < 0 || L > b.maxL {
		panic(fmt.Errorf("multipole order %d outside [0, %d]", L, b.maxL))
	}
	return b.tei.prim[L][iel]
}
