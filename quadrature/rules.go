package quadrature

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var ErrUnsupportedRule = errors.New("unsupported quadrature rule")

type RuleType uint8

const (
	Legendre RuleType = iota
	Chebyshev
	Lobatto
)

func (rt RuleType) String() string {
	switch rt {
	case Legendre:
		return "legendre"
	case Chebyshev:
		return "chebyshev"
	case Lobatto:
		return "lobatto"
	}
	return fmt.Sprintf("RuleType(%d)", uint8(rt))
}

func NewRuleType(label string) (rt RuleType, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "legendre", "gauss-legendre":
		rt = Legendre
	case "chebyshev":
		rt = Chebyshev
	case "lobatto", "gauss-lobatto":
		rt = Lobatto
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedRule, label)
	}
	return
}

// Rule is a set of reference nodes on [-1,1], ascending, with weights
type Rule struct {
	Type RuleType
	X, W []float64
}

func NewRule(rt RuleType, n int) (rule Rule, err error) {
	if n < 1 {
		err = fmt.Errorf("%w: %s rule needs at least one node, got %d", ErrUnsupportedRule, rt, n)
		return
	}
	rule.Type = rt
	switch rt {
	case Legendre:
		rule.X, rule.W = GaussLegendre(n)
	case Chebyshev:
		rule.X, rule.W = GaussChebyshev(n)
	case Lobatto:
		if n < 2 {
			err = fmt.Errorf("%w: lobatto rule needs two nodes, got %d", ErrUnsupportedRule, n)
			return
		}
		rule.X, rule.W = GaussLobatto(n)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedRule, rt)
	}
	return
}

func (rule Rule) Len() int { return len(rule.X) }

// GaussLegendre returns the n point Gauss-Legendre rule
func GaussLegendre(n int) (x, w []float64) {
	return JacobiGQ(0, 0, n-1)
}

// GaussLobatto returns the n point Gauss-Lobatto-Legendre rule
func GaussLobatto(n int) (x, w []float64) {
	var (
		N = n - 1
	)
	x = JacobiGL(0, 0, N)
	w = make([]float64, n)
	// w_i = 2 / (N (N+1) P_N(x_i)^2) with the classical normalization P_N(1)=1
	norm := math.Sqrt(float64(2*N+1) / 2)
	pN := JacobiP(x, 0, 0, N)
	for i := range x {
		p := pN[i] / norm
		w[i] = 2 / (float64(N*(N+1)) * p * p)
	}
	return
}

// GaussChebyshev returns the modified Gauss-Chebyshev rule of the second kind
// for plain integrals over [-1,1], nodes ascending.
func GaussChebyshev(n int) (x, w []float64) {
	x = make([]float64, n)
	w = make([]float64, n)
	np1 := float64(n + 1)
	for i := 1; i <= n; i++ {
		s, c := math.Sincos(float64(i) * math.Pi / np1)
		s2 := s * s
		x[i-1] = 1 - 2*float64(i)/np1 + 2/math.Pi*(1+2.0/3.0*s2)*c*s
		w[i-1] = 16 / (3 * np1) * s2 * s2
	}
	slices.Reverse(x)
	slices.Reverse(w)
	return
}
