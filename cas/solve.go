package cas

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Polynomial utilities
// ============================================================

type PolyCoeffsResult map[int]Expr

// PolyCoeffs splits an expanded expression into coefficients by the integer
// power of varName in each term. A coefficient may still contain varName when
// the term is not polynomial in it (x^(1/2), 1/x, sin(x)).
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	out := PolyCoeffsResult{}
	terms := []Expr{expr.Simplify()}
	if a, ok := terms[0].(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff := splitPower(t, varName)
		if existing, ok := out[deg]; ok {
			out[deg] = AddOf(existing, coeff)
		} else {
			out[deg] = coeff
		}
	}
	return out
}

// Degree is the highest power of varName with a non-zero coefficient.
func Degree(expr Expr, varName string) int {
	maxDeg := 0
	for d, c := range PolyCoeffs(expr, varName) {
		if d > maxDeg && !isNumEqual(c, 0) {
			maxDeg = d
		}
	}
	return maxDeg
}

func splitPower(t Expr, varName string) (int, Expr) {
	if d, ok := varPower(t, varName); ok {
		return d, N(1)
	}
	m, ok := t.(*Mul)
	if !ok {
		return 0, t
	}
	deg := 0
	coeffFactors := []Expr{}
	for _, f := range m.factors {
		if d, ok := varPower(f, varName); ok {
			deg += d
		} else {
			coeffFactors = append(coeffFactors, f)
		}
	}
	if len(coeffFactors) == 0 {
		return deg, N(1)
	}
	return deg, MulOf(coeffFactors...)
}

func varPower(f Expr, varName string) (int, bool) {
	switch v := f.(type) {
	case *Sym:
		return 1, v.name == varName
	case *Pow:
		sym, ok := v.base.(*Sym)
		if !ok || sym.name != varName {
			return 0, false
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.val.Num().IsInt64() {
			return int(n.val.Num().Int64()), true
		}
	}
	return 0, false
}

// ============================================================
// Solvers
// ============================================================

// Solve finds every value of varName that makes left equal right. It clears
// negative powers of the variable first (excluding the zero root that
// introduces) and then solves by degree: linear and quadratic exactly.
func Solve(left, right Expr, varName string) ([]Expr, error) {
	residual := Expand(AddOf(left, MulOf(N(-1), right)))
	if err := checkDefined(residual); err != nil {
		return nil, err
	}
	clearedZero := false
	if low := lowestPower(residual, varName); low < 0 {
		residual = Expand(MulOf(residual, PowOf(S(varName), N(int64(-low)))))
		clearedZero = true
	}

	coeffs := PolyCoeffs(residual, varName)
	deg := 0
	for d, c := range coeffs {
		if _, has := FreeSymbols(c)[varName]; has || d < 0 {
			return nil, ErrNotPolynomial
		}
		if d > deg && !isNumEqual(c, 0) {
			deg = d
		}
	}
	coeff := func(d int) Expr {
		if c, ok := coeffs[d]; ok {
			return c
		}
		return N(0)
	}

	var roots []Expr
	switch deg {
	case 0:
		if isNumEqual(coeff(0), 0) {
			return nil, ErrInfiniteSolutions
		}
		return nil, ErrNoSolution
	case 1:
		roots = []Expr{SolveLinear(coeff(1), coeff(0))}
	case 2:
		var err error
		if roots, err = SolveQuadratic(coeff(2), coeff(1), coeff(0)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrDegree, deg)
	}

	out := []Expr{}
	for _, r := range roots {
		if clearedZero && isNumEqual(r, 0) {
			continue
		}
		dup := false
		for _, o := range out {
			if o.Equal(r) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSolution
	}
	return out, nil
}

// lowestPower is the smallest power of varName across the terms of e.
func lowestPower(e Expr, varName string) int {
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	low := 0
	for _, t := range terms {
		if d, _ := splitPower(t, varName); d < low {
			low = d
		}
	}
	return low
}

// SolveLinear returns the root of a*x + b.
func SolveLinear(a, b Expr) Expr {
	return MulOf(N(-1), b, PowOf(a, N(-1)))
}

// SolveQuadratic returns the roots of a*x^2 + b*x + c. A perfect-square
// discriminant gives rational roots; otherwise the roots keep a sqrt.
func SolveQuadratic(a, b, c Expr) ([]Expr, error) {
	disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
	if dn, ok := disc.(*Num); ok && dn.IsNegative() {
		return nil, ErrComplexRoots
	}
	negB := MulOf(N(-1), b)
	inv := PowOf(MulOf(N(2), a), N(-1))
	if isNumEqual(disc, 0) {
		return []Expr{MulOf(negB, inv)}, nil
	}
	sq := SqrtOf(disc)
	x1 := MulOf(AddOf(negB, sq), inv)
	x2 := MulOf(AddOf(negB, MulOf(N(-1), sq)), inv)
	return []Expr{x1, x2}, nil
}

// SolveNewton searches for real roots of expr = 0 with Newton's method from
// evenly spaced starting points in [-searchRange, searchRange]. The
// derivative is taken numerically.
func SolveNewton(expr Expr, varName string, searchRange, tol float64, maxIter int) []float64 {
	if searchRange <= 0 {
		searchRange = 100
	}
	if tol <= 0 {
		tol = 1e-10
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	f := func(x float64) float64 {
		v, err := Evaluate(expr, map[string]float64{varName: x})
		if err != nil {
			return math.NaN()
		}
		return v
	}
	df := func(x float64) float64 {
		h := 1e-6 * math.Max(1, math.Abs(x))
		return (f(x+h) - f(x-h)) / (2 * h)
	}
	var roots []float64
	for i := 0; i <= 200; i++ {
		x := -searchRange + 2*searchRange*float64(i)/200
		for iter := 0; iter < maxIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) {
				break
			}
			if math.Abs(fx) < tol {
				dup := false
				for _, r := range roots {
					if math.Abs(r-x) < 1e-6 {
						dup = true
						break
					}
				}
				if !dup {
					roots = append(roots, x)
				}
				break
			}
			dfx := df(x)
			if math.IsNaN(dfx) || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > searchRange*10 {
				break
			}
		}
	}
	sort.Float64s(roots)
	return roots
}
