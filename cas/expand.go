package cas

// ============================================================
// Expansion
// ============================================================

// Expand multiplies out products over sums and small non-negative integer
// powers of sums.
func Expand(e Expr) Expr { return expandExpr(e, true).Simplify() }

// Distribute multiplies out products over sums but leaves powers alone, so
// (x+1)^2 survives while 2*(x+1) becomes 2*x+2.
func Distribute(e Expr) Expr { return expandExpr(e, false).Simplify() }

func expandExpr(e Expr, powers bool) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f, powers)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...), powers)
				}
				return expandExpr(AddOf(terms...), powers)
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t, powers)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base, powers)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && powers {
			exp := n.val.Num().Int64()
			if exp >= 0 && exp <= 10 {
				result := Expr(N(1))
				for i := int64(0); i < exp; i++ {
					result = mulTerms(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp, powers))
	case *Func:
		return FuncOf(v.name, expandExpr(v.arg, powers))
	}
	return e
}

// mulTerms multiplies two expanded sums term by term. Going through MulOf on
// the whole sums would fold (x+1)*(x+1) straight back into (x+1)^2.
func mulTerms(a, b Expr) Expr {
	as, bs := termsOf(a), termsOf(b)
	out := make([]Expr, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			out = append(out, MulOf(x, y))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}
