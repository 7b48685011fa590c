package cas

import (
	"math/big"
	"strings"
)

// ============================================================
// Printing
// ============================================================
//
// Output is compact (no spaces) and always readable by mathparse. Negative
// terms print as subtraction, negative exponents as division, and a power of
// one half as sqrt.

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (s *Sym) String() string { return s.name }

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		if neg, ok := negated(t); ok {
			b.WriteString("-")
			if _, isAdd := neg.(*Add); isAdd {
				b.WriteString("(" + neg.String() + ")")
			} else {
				b.WriteString(neg.String())
			}
			continue
		}
		if i > 0 {
			b.WriteString("+")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// negated returns -t when t carries a negative sign of its own.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		c, ok := v.factors[0].(*Num)
		if !ok || !c.IsNegative() {
			return nil, false
		}
		rest := v.factors[1:]
		if c.IsNegOne() {
			return factorsOf(rest), true
		}
		return &Mul{factors: append([]Expr{numNeg(c)}, rest...)}, true
	}
	return nil, false
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	sign := ""
	var num, den []string
	for _, f := range m.factors {
		switch v := f.(type) {
		case *Num:
			r := v.Rat()
			if r.Sign() < 0 {
				sign = "-"
				r.Neg(r)
			}
			if r.Num().Cmp(big.NewInt(1)) != 0 {
				num = append(num, r.Num().String())
			}
			if !r.IsInt() {
				den = append(den, r.Denom().String())
			}
		case *Pow:
			if e, ok := v.exp.(*Num); ok && e.IsNegative() {
				if e.IsNegOne() {
					den = append(den, factorString(v.base))
				} else {
					den = append(den, (&Pow{base: v.base, exp: numNeg(e)}).String())
				}
				continue
			}
			num = append(num, factorString(v))
		default:
			num = append(num, factorString(v))
		}
	}
	s := "1"
	if len(num) > 0 {
		s = strings.Join(num, "*")
	}
	switch len(den) {
	case 0:
	case 1:
		s += "/" + den[0]
	default:
		s += "/(" + strings.Join(den, "*") + ")"
	}
	return sign + s
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return (&Mul{factors: []Expr{p}}).String()
		}
		if e.Equal(F(1, 2)) {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	baseStr := p.base.String()
	if needsParensAsBase(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	if !plainExponent(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func needsParensAsBase(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func plainExponent(e Expr) bool {
	switch v := e.(type) {
	case *Sym:
		return true
	case *Num:
		return v.IsInteger() && !v.IsNegative()
	}
	return false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }
