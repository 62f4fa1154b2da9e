package radial

import (
	"fmt"
	"sort"
	"sync"
)

// RadialFunction is the term r^RPow B^(Deriv)(r)
type RadialFunction struct {
	RPow, Deriv int
}

// CalculateDerivative expands d^n/dr^n [B(r)/r] as integer coefficients of
// r^RPow B^(Deriv)(r) terms.
func CalculateDerivative(n int) (terms map[RadialFunction]int) {
	if n < 0 {
		panic(fmt.Errorf("derivative order must be non-negative, got %d", n))
	}
	terms = map[RadialFunction]int{{RPow: -1, Deriv: 0}: 1}
	for k := 0; k < n; k++ {
		next := make(map[RadialFunction]int, 2*len(terms))
		for t, c := range terms {
			if t.RPow != 0 {
				next[RadialFunction{t.RPow - 1, t.Deriv}] += c * t.RPow
			}
			next[RadialFunction{t.RPow, t.Deriv + 1}] += c
		}
		terms = next
		for t, c := range terms {
			if c == 0 {
				delete(terms, t)
			}
		}
	}
	return
}

// RadialProduct is the term r^RPow B_i^(IDer)(r) B_j^(JDer)(r); IDer <= JDer
// so that the symmetric pair of terms is merged.
type RadialProduct struct {
	RPow, IDer, JDer int
}

// NewRadialProduct orders the derivative indices
func NewRadialProduct(rpow, ider, jder int) RadialProduct {
	if ider > jder {
		ider, jder = jder, ider
	}
	return RadialProduct{RPow: rpow, IDer: ider, JDer: jder}
}

// ProductExpansion is a linear combination of radial products
type ProductExpansion map[RadialProduct]float64

// Increment adds coeff to term, inserting the term if it is absent
func (pe ProductExpansion) Increment(term RadialProduct, coeff float64) {
	pe[term] += coeff
}

// Terms returns the terms in a deterministic order
func (pe ProductExpansion) Terms() (terms []RadialProduct) {
	for t := range pe {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		a, b := terms[i], terms[j]
		if a.RPow != b.RPow {
			return a.RPow < b.RPow
		}
		if a.IDer != b.IDer {
			return a.IDer < b.IDer
		}
		return a.JDer < b.JDer
	})
	return
}

// ProductTerms expands φ_i^(ider) φ_j^(jder) for φ = B(r)/r in radial
// products of the B's.
func ProductTerms(ider, jder int) (pe ProductExpansion) {
	var (
		ti = CalculateDerivative(ider)
		tj = CalculateDerivative(jder)
	)
	pe = make(ProductExpansion)
	for a, ca := range ti {
		for b, cb := range tj {
			pe.Increment(NewRadialProduct(a.RPow+b.RPow, a.Deriv, b.Deriv), float64(ca*cb))
		}
	}
	return
}

var (
	hopitalMu    sync.Mutex
	hopitalCache = map[RadialProduct]ProductExpansion{}
)

// ApplyHopital rewrites B_i^(ider) B_j^(jder) r^rpow, rpow < 0, into terms
// with non-negative powers of r by repeated use of l'Hôpital's rule,
//
//	f(r)/r^n -> f'(r) / (n r^(n-1))
//
// valid at r=0 where the basis functions vanish. The r^0 terms give the
// value at the origin.
func ApplyHopital(ider, jder, rpow int) ProductExpansion {
	hopitalMu.Lock()
	defer hopitalMu.Unlock()
	pe := make(ProductExpansion)
	for t, c := range applyHopital(NewRadialProduct(rpow, ider, jder)) {
		pe[t] = c
	}
	return pe
}

func applyHopital(key RadialProduct) (pe ProductExpansion) {
	if cached, ok := hopitalCache[key]; ok {
		return cached
	}
	pe = make(ProductExpansion)
	if key.RPow >= 0 {
		pe.Increment(key, 1)
	} else {
		fac := 1 / float64(-key.RPow)
		for _, sub := range []RadialProduct{
			NewRadialProduct(key.RPow+1, key.IDer+1, key.JDer),
			NewRadialProduct(key.RPow+1, key.IDer, key.JDer+1),
		} {
			for t, c := range applyHopital(sub) {
				pe.Increment(t, fac*c)
			}
		}
	}
	hopitalCache[key] = pe
	return
}

// Reduce applies ApplyHopital to every term with a negative power of r.
// Terms are replaced one by one with their limit at r = 0, which is only
// valid when the whole expansion has a finite limit there. Single terms such
// as B_i' B_j / r² diverge on their own.
func (pe ProductExpansion) Reduce() (red ProductExpansion) {
	red = make(ProductExpansion)
	for t, c := range pe {
		for tt, cc := range ApplyHopital(t.IDer, t.JDer, t.RPow) {
			red.Increment(tt, c*cc)
		}
	}
	for t, c := range red {
		if c == 0 {
			delete(red, t)
		}
	}
	return
}

// MaxDerivative is the highest derivative order appearing in the expansion
func (pe ProductExpansion) MaxDerivative() (n int) {
	for t := range pe {
		n = max(n, t.JDer)
	}
	return
}
