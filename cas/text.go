package cas

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Text-level strategies
// ============================================================

// SimplifyText is the default simplifier: simplify, drop "abs", distribute
// multiplication over addition, simplify again and collapse adjacent signs.
// Dropping abs is intentionally lossy; |x| = 3 restructures to x = 3.
func SimplifyText(text string) (string, error) {
	e, err := Parse(text)
	if err != nil {
		return "", err
	}
	if err := checkDefined(e); err != nil {
		return "", err
	}
	e = Distribute(stripAbs(e))
	if err := checkDefined(e); err != nil {
		return "", err
	}
	return CollapseSigns(e.String()), nil
}

// stripAbs replaces every abs(a) call with a. Other names, such as a symbol
// called absx, are left alone.
func stripAbs(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = stripAbs(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = stripAbs(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(stripAbs(v.base), stripAbs(v.exp))
	case *Func:
		arg := stripAbs(v.arg)
		if v.name == "abs" {
			return arg
		}
		return FuncOf(v.name, arg)
	}
	return e
}

// CollapseSigns rewrites "+-" and "-+" to "-" until neither occurs.
func CollapseSigns(text string) string {
	for {
		next := strings.ReplaceAll(text, "+-", "-")
		next = strings.ReplaceAll(next, "-+", "-")
		if next == text {
			return text
		}
		text = next
	}
}

// SolveText solves left = right for target and prints each solution. When no
// exact method applies and target is the only unknown, it falls back to
// Newton's method and prints rounded decimals.
func SolveText(left, right, target string) ([]string, error) {
	l, err := Parse(left)
	if err != nil {
		return nil, err
	}
	r, err := Parse(right)
	if err != nil {
		return nil, err
	}
	roots, err := Solve(l, r, target)
	if err == nil {
		out := make([]string, len(roots))
		for i, root := range roots {
			out[i] = CollapseSigns(root.String())
		}
		return out, nil
	}
	if !errors.Is(err, ErrNotPolynomial) && !errors.Is(err, ErrDegree) {
		return nil, err
	}
	numeric := newtonOnly(l, r, target)
	if len(numeric) == 0 {
		return nil, err
	}
	out := make([]string, len(numeric))
	for i, x := range numeric {
		out[i] = FormatFloat(x)
	}
	return out, nil
}

// IsSolvable reports whether left = right has at least one real solution for
// target, exact or numeric.
func IsSolvable(left, right, target string) bool {
	roots, err := SolveText(left, right, target)
	return err == nil && len(roots) > 0
}

func newtonOnly(l, r Expr, target string) []float64 {
	residual := AddOf(l, MulOf(N(-1), r))
	syms := FreeSymbols(residual)
	if _, ok := syms[target]; !ok || len(syms) != 1 {
		return nil
	}
	return SolveNewton(residual, target, 100, 1e-10, 100)
}

// FormatFloat prints x with at most six decimals and no trailing zeros.
func FormatFloat(x float64) string {
	x = math.Round(x*1e6) / 1e6
	if x == 0 {
		x = 0 // drops a negative zero
	}
	s := strconv.FormatFloat(x, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
