package cas_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/equationshift/cas"
)

func mustParse(t *testing.T, text string) cas.Expr {
	t.Helper()
	e, err := cas.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return e
}

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := cas.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := cas.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_NegativeRationalIsReduced(t *testing.T) {
	n := cas.F(-2, 4)
	if n.String() != "-1/2" {
		t.Errorf("want -1/2, got %s", n.String())
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := cas.S("x").Sub("x", cas.N(3))
	if result.String() != "3" {
		t.Errorf("want 3, got %s", result.String())
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := cas.S("x").Sub("y", cas.N(3))
	if result.String() != "x" {
		t.Errorf("want x, got %s", result.String())
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_CombinesLikeTerms(t *testing.T) {
	x := cas.S("x")
	result := cas.AddOf(x, cas.MulOf(cas.N(2), x), cas.N(3), cas.N(-1))
	if result.String() != "3*x+2" {
		t.Errorf("want 3*x+2, got %s", result.String())
	}
}

func TestAdd_KeepsFirstAppearanceOrder(t *testing.T) {
	result := cas.AddOf(cas.S("y"), cas.S("x"))
	if result.String() != "y+x" {
		t.Errorf("want y+x, got %s", result.String())
	}
}

func TestAdd_Cancels(t *testing.T) {
	x := cas.S("x")
	result := cas.AddOf(x, cas.MulOf(cas.N(-1), x))
	if result.String() != "0" {
		t.Errorf("want 0, got %s", result.String())
	}
}

func TestAdd_PrintsSubtraction(t *testing.T) {
	x := cas.S("x")
	if got := cas.AddOf(x, cas.N(-3)).String(); got != "x-3" {
		t.Errorf("want x-3, got %s", got)
	}
	if got := cas.AddOf(cas.MulOf(cas.N(-2), x), cas.N(5)).String(); got != "-2*x+5" {
		t.Errorf("want -2*x+5, got %s", got)
	}
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_MergesPowers(t *testing.T) {
	x := cas.S("x")
	if got := cas.MulOf(x, x).String(); got != "x^2" {
		t.Errorf("want x^2, got %s", got)
	}
	if got := cas.MulOf(x, cas.PowOf(x, cas.N(-1))).String(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestMul_PrintsDivision(t *testing.T) {
	x, y := cas.S("x"), cas.S("y")
	cases := []struct {
		expr cas.Expr
		want string
	}{
		{cas.MulOf(cas.N(2), x, cas.PowOf(cas.N(3), cas.N(-1))), "2*x/3"},
		{cas.MulOf(x, cas.PowOf(cas.MulOf(cas.N(2), y), cas.N(-1))), "x/(2*y)"},
		{cas.MulOf(cas.N(-1), x), "-x"},
		{cas.PowOf(x, cas.N(-1)), "1/x"},
		{cas.PowOf(x, cas.N(-2)), "1/x^2"},
		{cas.MulOf(cas.N(2), cas.AddOf(x, cas.N(1))), "2*(x+1)"},
	}
	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_ExactRoots(t *testing.T) {
	cases := []struct {
		base cas.Expr
		exp  cas.Expr
		want string
	}{
		{cas.N(9), cas.F(1, 2), "3"},
		{cas.N(-8), cas.F(1, 3), "-2"},
		{cas.F(4, 9), cas.F(1, 2), "2/3"},
		{cas.N(8), cas.F(2, 3), "4"},
		{cas.N(2), cas.F(1, 2), "sqrt(2)"},
		{cas.N(2), cas.N(-2), "1/4"},
	}
	for _, c := range cases {
		if got := cas.PowOf(c.base, c.exp).String(); got != c.want {
			t.Errorf("%s^%s: want %s, got %s", c.base, c.exp, c.want, got)
		}
	}
}

func TestPow_Nested(t *testing.T) {
	result := cas.PowOf(cas.PowOf(cas.S("x"), cas.N(2)), cas.F(1, 2))
	if result.String() != "x" {
		t.Errorf("want x, got %s", result.String())
	}
}

func TestPow_DistributesOverProduct(t *testing.T) {
	result := cas.PowOf(cas.MulOf(cas.N(-1), cas.S("x")), cas.N(2))
	if result.String() != "x^2" {
		t.Errorf("want x^2, got %s", result.String())
	}
}

func TestPow_Printing(t *testing.T) {
	x := cas.S("x")
	cases := []struct {
		expr cas.Expr
		want string
	}{
		{cas.PowOf(cas.AddOf(x, cas.N(1)), cas.N(2)), "(x+1)^2"},
		{cas.PowOf(x, cas.S("n")), "x^n"},
		{cas.PowOf(x, cas.F(2, 3)), "x^(2/3)"},
		{cas.PowOf(cas.N(-2), x), "(-2)^x"},
		{cas.PowOf(x, cas.AddOf(cas.S("n"), cas.N(1))), "x^(n+1)"},
	}
	for _, c := range cases {
		if got := c.expr.String(); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Abs(t *testing.T) {
	if got := cas.AbsOf(cas.N(-3)).String(); got != "3" {
		t.Errorf("want 3, got %s", got)
	}
	if got := cas.AbsOf(cas.MulOf(cas.N(-2), cas.S("x"))).String(); got != "2*abs(x)" {
		t.Errorf("want 2*abs(x), got %s", got)
	}
}

func TestFunc_StaysSymbolic(t *testing.T) {
	if got := mustParse(t, "sin(1)").String(); got != "sin(1)" {
		t.Errorf("want sin(1), got %s", got)
	}
	if got := mustParse(t, "sin(0)").String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

// ============================================================
// Parse tests
// ============================================================

func TestParse_Conversions(t *testing.T) {
	cases := map[string]string{
		"2*x+3":    "2*x+3",
		"x-3":      "x-3",
		"6/3":      "2",
		"sqrt(16)": "4",
		"x/2":      "x/2",
		"-(x)":     "-x",
		"(x+1)^2":  "(x+1)^2",
	}
	for in, want := range cases {
		if got := mustParse(t, in).String(); got != want {
			t.Errorf("%s: want %s, got %s", in, want, got)
		}
	}
}

func TestParse_DivisionByZero(t *testing.T) {
	for _, in := range []string{"1/0", "x/(2-2)"} {
		if _, err := cas.Parse(in); !errors.Is(err, cas.ErrDivisionByZero) {
			t.Errorf("%s: want ErrDivisionByZero, got %v", in, err)
		}
	}
}

// ============================================================
// Expansion tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	result := cas.Expand(mustParse(t, "(x+1)^2"))
	if result.String() != "x^2+2*x+1" {
		t.Errorf("want x^2+2*x+1, got %s", result.String())
	}
}

func TestDistribute_LeavesPowers(t *testing.T) {
	if got := cas.Distribute(mustParse(t, "2*(x+3)")).String(); got != "2*x+6" {
		t.Errorf("want 2*x+6, got %s", got)
	}
	if got := cas.Distribute(mustParse(t, "(x+1)^2")).String(); got != "(x+1)^2" {
		t.Errorf("want (x+1)^2, got %s", got)
	}
}

// ============================================================
// Text strategy tests
// ============================================================

func TestSimplifyText(t *testing.T) {
	cases := map[string]string{
		"(2*x+3)-3":   "2*x",
		"(7)-3":       "4",
		"(2*x)/2":     "x",
		"(-x+3)*(-1)": "x-3",
		"(5)*(-1)":    "-5",
		"abs(x)":      "x",
		"x+-3":        "x-3",
		"2*(x+1)":     "2*x+2",
		"x^2/x":       "x",
		"(x^2)^(1/2)": "x",
	}
	for in, want := range cases {
		got, err := cas.SimplifyText(in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%s: want %s, got %s", in, want, got)
		}
	}
}

func TestSimplifyText_Errors(t *testing.T) {
	for _, in := range []string{"x/0", "0^(-1)", "2*(x"} {
		if _, err := cas.SimplifyText(in); err == nil {
			t.Errorf("%s: expected an error", in)
		}
	}
}

func TestCollapseSigns(t *testing.T) {
	cases := map[string]string{
		"x+-3":    "x-3",
		"x-+3":    "x-3",
		"a++-b":   "a-b",
		"x--3":    "x--3",
		"a+-+-b":  "a--b",
		"a-+-+b":  "a--b",
		"2*(+-x)": "2*(-x)",
	}
	for in, want := range cases {
		got := cas.CollapseSigns(in)
		if got != want {
			t.Errorf("%s: want %s, got %s", in, want, got)
		}
		if again := cas.CollapseSigns(got); again != got {
			t.Errorf("%s: not idempotent, %s then %s", in, got, again)
		}
	}
}

func TestSimplifyText_AbsOnlyStripsCalls(t *testing.T) {
	got, err := cas.SimplifyText("abs(x)+absolute")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != "x+absolute" {
		t.Errorf("want x+absolute, got %s", got)
	}
	if got, _ := cas.SimplifyText("abs(-3)*y"); got != "3*y" {
		t.Errorf("want 3*y, got %s", got)
	}
}

// ============================================================
// Solver tests
// ============================================================

func TestSolveText_Linear(t *testing.T) {
	got, err := cas.SolveText("2*x+3", "7", "x")
	if err != nil || len(got) != 1 || got[0] != "2" {
		t.Errorf("want [2], got %v (%v)", got, err)
	}
}

func TestSolveText_QuadraticRational(t *testing.T) {
	got, err := cas.SolveText("x^2", "4", "x")
	if err != nil || len(got) != 2 || got[0] != "2" || got[1] != "-2" {
		t.Errorf("want [2 -2], got %v (%v)", got, err)
	}
}

func TestSolveText_QuadraticIrrational(t *testing.T) {
	got, err := cas.SolveText("x^2", "2", "x")
	if err != nil || len(got) != 2 {
		t.Fatalf("want two roots, got %v (%v)", got, err)
	}
	for _, s := range got {
		v, err := cas.Evaluate(mustParse(t, s), nil)
		if err != nil || math.Abs(math.Abs(v)-math.Sqrt2) > 1e-9 {
			t.Errorf("root %s evaluates to %v (%v)", s, v, err)
		}
	}
}

func TestSolveText_ReciprocalClearsDenominator(t *testing.T) {
	got, err := cas.SolveText("1/x", "2", "x")
	if err != nil || len(got) != 1 || got[0] != "1/2" {
		t.Errorf("want [1/2], got %v (%v)", got, err)
	}
}

func TestSolveText_SymbolicCoefficient(t *testing.T) {
	got, err := cas.SolveText("x", "y", "x")
	if err != nil || len(got) != 1 || got[0] != "y" {
		t.Errorf("want [y], got %v (%v)", got, err)
	}
}

func TestSolveText_CubicFallsBackToNewton(t *testing.T) {
	got, err := cas.SolveText("x^3", "8", "x")
	if err != nil || len(got) != 1 || got[0] != "2" {
		t.Errorf("want [2], got %v (%v)", got, err)
	}
}

func TestSolve_Errors(t *testing.T) {
	cases := []struct {
		left, right string
		want        error
	}{
		{"x^2+1", "0", cas.ErrComplexRoots},
		{"x", "x", cas.ErrInfiniteSolutions},
		{"x+1", "x", cas.ErrNoSolution},
	}
	for _, c := range cases {
		_, err := cas.SolveText(c.left, c.right, "x")
		if !errors.Is(err, c.want) {
			t.Errorf("%s=%s: want %v, got %v", c.left, c.right, c.want, err)
		}
	}
}

func TestIsSolvable(t *testing.T) {
	if !cas.IsSolvable("2*x+3", "7", "x") {
		t.Error("2*x+3=7 should be solvable")
	}
	if cas.IsSolvable("x^2+1", "0", "x") {
		t.Error("x^2+1=0 has no real roots")
	}
	if cas.IsSolvable("sin(x)", "2", "x") {
		t.Error("sin(x)=2 has no real roots")
	}
}

func TestDegree(t *testing.T) {
	if d := cas.Degree(mustParse(t, "3*x^2+x+1"), "x"); d != 2 {
		t.Errorf("want 2, got %d", d)
	}
}

// ============================================================
// Evaluation tests
// ============================================================

func TestEvaluate(t *testing.T) {
	v, err := cas.Evaluate(mustParse(t, "2*x+3"), map[string]float64{"x": 2})
	if err != nil || v != 7 {
		t.Errorf("want 7, got %v (%v)", v, err)
	}
	if _, err := cas.Evaluate(mustParse(t, "y"), nil); err == nil {
		t.Error("expected an error for a missing variable")
	}
	cube := cas.PowOf(cas.S("x"), cas.F(1, 3))
	v, err = cas.Evaluate(cube, map[string]float64{"x": -8})
	if err != nil || math.Abs(v+2) > 1e-9 {
		t.Errorf("want -2, got %v (%v)", v, err)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		2.0000000001:  "2",
		1.41421356237: "1.414214",
		-0.5:          "-0.5",
		-1e-9:         "0",
	}
	for in, want := range cases {
		if got := cas.FormatFloat(in); got != want {
			t.Errorf("%v: want %s, got %s", in, want, got)
		}
	}
}
