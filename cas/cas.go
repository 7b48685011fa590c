// Package cas is the exact symbolic kernel behind the default simplifier and
// solver strategies.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), no float folding
//   - Deterministic simplification and stable, compact output
//   - Output text that the mathparse grammar reads back unchanged
package cas

import (
	"errors"
	"math"
	"math/big"
	"sort"
)

var (
	ErrDivisionByZero    = errors.New("cas: division by zero")
	ErrNotPolynomial     = errors.New("cas: equation is not polynomial in the variable")
	ErrNoSolution        = errors.New("cas: equation has no solution")
	ErrInfiniteSolutions = errors.New("cas: equation holds for every value")
	ErrComplexRoots      = errors.New("cas: roots are complex")
	ErrDegree            = errors.New("cas: no exact method for this degree")
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	Sub(varName string, value Expr) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("cas: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}

// numPow raises b to a rational power when the result is rational: any
// integer power of a non-zero base, and p/q powers whose q-th root is exact.
func numPow(b, e *Num) (*Num, bool) {
	if e.IsInteger() {
		if !e.val.Num().IsInt64() {
			return nil, false
		}
		k := e.val.Num().Int64()
		if k > 64 || k < -64 || (k < 0 && b.IsZero()) {
			return nil, false
		}
		neg := k < 0
		if neg {
			k = -k
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(k), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(k), nil)
		if neg {
			num, den = den, num
		}
		return &Num{val: new(big.Rat).SetFrac(num, den)}, true
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > 64 {
		return nil, false
	}
	root, ok := numRoot(b, q.Int64())
	if !ok {
		return nil, false
	}
	return numPow(root, &Num{val: new(big.Rat).SetInt(e.val.Num())})
}

func numRoot(b *Num, q int64) (*Num, bool) {
	if b.IsNegative() {
		if q%2 == 0 {
			return nil, false
		}
		r, ok := numRoot(numNeg(b), q)
		if !ok {
			return nil, false
		}
		return numNeg(r), true
	}
	num, ok := intRoot(b.val.Num(), q)
	if !ok {
		return nil, false
	}
	den, ok := intRoot(b.val.Denom(), q)
	if !ok {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFrac(num, den)}, true
}

func intRoot(x *big.Int, q int64) (*big.Int, bool) {
	if q == 2 {
		r := new(big.Int).Sqrt(x)
		return r, new(big.Int).Mul(r, r).Cmp(x) == 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(x) == 0 {
			return r, true
		}
	}
	return nil, false
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums and combines like terms. Terms keep the order
// in which they first appear; the constant goes last.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	type like struct {
		coeff *Num
		rest  Expr
	}
	constant := N(0)
	likes := map[string]*like{}
	order := []string{}
	for _, t := range flat {
		coeff, rest := splitCoeff(t)
		if rest == nil {
			constant = numAdd(constant, coeff)
			continue
		}
		key := rest.String()
		l, seen := likes[key]
		if !seen {
			l = &like{coeff: N(0), rest: rest}
			likes[key] = l
			order = append(order, key)
		}
		l.coeff = numAdd(l.coeff, coeff)
	}
	result := []Expr{}
	for _, key := range order {
		l := likes[key]
		switch {
		case l.coeff.IsZero():
		case l.coeff.IsOne():
			result = append(result, l.rest)
		default:
			result = append(result, MulOf(l.coeff, l.rest))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the numeric coefficient of a simplified term. A bare
// number comes back with a nil rest.
func splitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, nil
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c, factorsOf(v.factors[1:])
		}
	}
	return N(1), e
}

func factorsOf(fs []Expr) Expr {
	if len(fs) == 1 {
		return fs[0]
	}
	return &Mul{factors: fs}
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds numbers into one leading
// coefficient and merges powers of the same base.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	type power struct {
		base Expr
		exp  Expr
	}
	coeff := N(1)
	powers := map[string]*power{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if p, seen := powers[key]; seen {
			p.exp = AddOf(p.exp, exp)
			continue
		}
		powers[key] = &power{base: base, exp: exp}
		order = append(order, key)
	}

	others := []Expr{}
	for _, key := range order {
		p := powers[key]
		var merged Expr = p.base
		if !isNumEqual(p.exp, 1) {
			merged = PowOf(p.base, p.exp)
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			for _, f := range v.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, f)
				}
			}
		default:
			others = append(others, v)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	type keyed struct {
		e    Expr
		base string
		key  string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		b := e
		if p, ok := e.(*Pow); ok {
			b = p.base
		}
		ks[i] = keyed{e: e, base: b.String(), key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].base != ks[j].base {
			return ks[i].base < ks[j].base
		}
		return ks[i].key < ks[j].key
	})
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		return factorsOf(sorted)
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		// 0^negative stays unevaluated so callers can report it.
		if bn.IsZero() {
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r, ok := numPow(bn, en); ok {
				return r
			}
		}
		return &Pow{base: base, exp: exp}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, en)
		}
		return MulOf(factors...)
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	return numPow(b, e)
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }

// FuncOf applies a named function. sqrt becomes a power of one half.
func FuncOf(name string, arg Expr) Expr {
	if name == "sqrt" {
		return SqrtOf(arg)
	}
	return funcOf(name, arg).Simplify()
}

// Simplify only applies identities with exact results; sin(1) stays sin(1).
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln", "log":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && (inner.name == "ln" || inner.name == "log") {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if m, ok := arg.(*Mul); ok {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				return MulOf(numAbs(coeff), AbsOf(factorsOf(m.factors[1:])))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	if f.name != "abs" {
		return nil, false
	}
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	return numAbs(n), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// checkDefined reports a power of zero with a non-positive exponent anywhere
// in e.
func checkDefined(e Expr) error {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if err := checkDefined(t); err != nil {
				return err
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if err := checkDefined(f); err != nil {
				return err
			}
		}
	case *Pow:
		if isNumEqual(v.base, 0) {
			return ErrDivisionByZero
		}
		if err := checkDefined(v.base); err != nil {
			return err
		}
		return checkDefined(v.exp)
	case *Func:
		return checkDefined(v.arg)
	}
	return nil
}
