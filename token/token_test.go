package token_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/njchilds90/equationshift/mathparse"
	"github.com/njchilds90/equationshift/token"
)

func mustParse(t *testing.T, text string, opts token.Options) *token.Sequence {
	t.Helper()
	seq, err := token.Parse(text, opts)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return seq
}

func texts(toks []*token.Token) []string {
	out := make([]string, len(toks))
	for i, tk := range toks {
		out[i] = tk.Text
	}
	return out
}

func kinds(toks []*token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func find(t *testing.T, flat []*token.Token, text string, nth int) *token.Token {
	t.Helper()
	seen := 0
	for _, tk := range flat {
		if tk.Text == text {
			if seen == nth {
				return tk
			}
			seen++
		}
	}
	t.Fatalf("no token %q (#%d)", text, nth)
	return nil
}

var roundTripInputs = []string{
	"2*x+3",
	"-x+3",
	"2*x^3+5",
	"sqrt(x+1)-4",
	"3*(x-(2+y))/5",
	"a/b/c",
	"(x+1)^(1/2)*2",
	"-(x*y)^2",
	"abs(-x)+sqrt(sqrt(x))",
}

// ============================================================
// Builder
// ============================================================

func TestBuild_RoundTrip(t *testing.T) {
	for _, in := range roundTripInputs {
		n := mathparse.MustParse(in)
		for _, grouped := range []bool{false, true} {
			seq, err := token.Build(n, token.Options{GroupTokens: grouped})
			if err != nil {
				t.Fatalf("Build(%q): %v", in, err)
			}
			if got := seq.Text(); got != n.String() {
				t.Errorf("Build(%q, grouped=%v): want %s, got %s", in, grouped, n.String(), got)
			}
		}
	}
}

func TestBuild_BracketsWellFormed(t *testing.T) {
	for _, in := range roundTripInputs {
		flat := mustParse(t, in, token.Options{}).Flat()
		var stack []*token.Token
		for i, tk := range flat {
			switch {
			case tk.IsOpening():
				stack = append(stack, tk)
				if next := flat[i+1]; next.AfterOpeningBracket != tk.ID || !next.BracketItem {
					t.Errorf("%q: token after opener %d records scope %d", in, tk.ID, next.AfterOpeningBracket)
				}
			case tk.IsClosing():
				if len(stack) == 0 {
					t.Fatalf("%q: closer %d without opener", in, tk.ID)
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if tk.ClosesOpeningBracket != top.ID {
					t.Errorf("%q: closer links %d, want %d", in, tk.ClosesOpeningBracket, top.ID)
				}
				if (top.Kind == token.RawOpeningBracket) != (tk.Kind == token.RawClosingBracket) {
					t.Errorf("%q: mixed bracket kinds %s/%s", in, top.Kind, tk.Kind)
				}
			}
		}
		if len(stack) != 0 {
			t.Errorf("%q: %d unclosed brackets", in, len(stack))
		}
	}
}

func TestBuild_Kinds(t *testing.T) {
	flat := mustParse(t, "2*x^3+5", token.Options{}).Flat()
	want := []token.Kind{token.Value, token.Operator, token.Variable, token.PowerSymbol, token.Value, token.Operator, token.Value}
	if diff := cmp.Diff(want, kinds(flat)); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
}

func TestBuild_UnaryMinus(t *testing.T) {
	flat := mustParse(t, "-x+3", token.Options{}).Flat()
	want := []token.Kind{token.Operator, token.Variable, token.Operator, token.Value}
	if diff := cmp.Diff(want, kinds(flat)); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
}

func TestBuild_FunctionScope(t *testing.T) {
	flat := mustParse(t, "sqrt(x+1)", token.Options{}).Flat()
	want := []token.Kind{
		token.FunctionName, token.FunctionOpeningBracket,
		token.Variable, token.Operator, token.Value,
		token.FunctionClosingBracket,
	}
	if diff := cmp.Diff(want, kinds(flat)); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
	open := flat[1]
	for _, tk := range flat[2:5] {
		if !tk.BracketItem || tk.AfterOpeningBracket != open.ID {
			t.Errorf("%s should sit inside bracket %d", tk, open.ID)
		}
	}
	if flat[5].BracketItem || flat[5].ClosesOpeningBracket != open.ID {
		t.Errorf("closer %s should be outside and link %d", flat[5], open.ID)
	}
}

func TestBuild_FreshIDs(t *testing.T) {
	a := mustParse(t, "x+1", token.Options{}).Flat()
	b := mustParse(t, "x+1", token.Options{}).Flat()
	if b[0].ID <= a[len(a)-1].ID {
		t.Errorf("want increasing ids, got %d after %d", b[0].ID, a[len(a)-1].ID)
	}
}

func TestBuild_GroupTokens(t *testing.T) {
	flat := mustParse(t, "2*(x+1)+sqrt(y)", token.Options{GroupTokens: true}).Flat()
	if diff := cmp.Diff([]string{"2", "*", "(x+1)", "+", "sqrt(y)"}, texts(flat)); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
	want := []token.Kind{token.Group, token.Operator, token.Group, token.Operator, token.Group}
	if diff := cmp.Diff(want, kinds(flat)); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
	if !flat[4].IsFunction() || flat[2].IsFunction() {
		t.Error("only the sqrt group should count as a function")
	}
	if flat[2].Head != token.RawOpeningBracket {
		t.Errorf("want bracket head, got %s", flat[2].Head)
	}
}

func TestBuild_GroupKeepsPowerSymbol(t *testing.T) {
	flat := mustParse(t, "x^2-4", token.Options{GroupTokens: true}).Flat()
	want := []token.Kind{token.Group, token.PowerSymbol, token.Group, token.Operator, token.Group}
	if diff := cmp.Diff(want, kinds(flat)); diff != "" {
		t.Errorf("kinds (-want +got):\n%s", diff)
	}
}

// ============================================================
// Fractions
// ============================================================

func TestPrettify_NestsDivisions(t *testing.T) {
	seq := mustParse(t, "a/b+c^2/d^2", token.Options{PrettifyFractions: true})
	els := seq.Elements()
	if len(els) != 3 {
		t.Fatalf("want 3 elements, got %d", len(els))
	}
	first, ok := els[0].(*token.Fraction)
	if !ok {
		t.Fatalf("want fraction first, got %T", els[0])
	}
	if token.Text(first.Numerator) != "a" || token.Text(first.Denominator) != "b" {
		t.Errorf("want a over b, got %s over %s", token.Text(first.Numerator), token.Text(first.Denominator))
	}
	second := els[2].(*token.Fraction)
	if token.Text(second.Numerator) != "c^2" || token.Text(second.Denominator) != "d^2" {
		t.Errorf("want c^2 over d^2, got %s over %s", token.Text(second.Numerator), token.Text(second.Denominator))
	}
	if second.ID() != second.Stroke.ID {
		t.Error("fraction id must be the stroke id")
	}
	if seq.Text() != "a/b+c^2/d^2" {
		t.Errorf("flattening lost text: %s", seq.Text())
	}
}

func TestPrettify_ChainedDivisionStaysFlat(t *testing.T) {
	seq := mustParse(t, "a/b/c", token.Options{PrettifyFractions: true})
	els := seq.Elements()
	if len(els) != 3 {
		t.Fatalf("want fraction, stroke, c; got %d elements", len(els))
	}
	if _, ok := els[0].(*token.Fraction); !ok {
		t.Errorf("want leading fraction, got %T", els[0])
	}
	if tk, ok := els[1].(*token.Token); !ok || tk.Text != "/" {
		t.Errorf("want bare stroke, got %v", els[1])
	}
}

func TestNormalize_IdentityWithoutFractions(t *testing.T) {
	seq := mustParse(t, "2*x+3", token.Options{})
	if diff := cmp.Diff(texts(seq.Flat()), []string{"2", "*", "x", "+", "3"}); diff != "" {
		t.Errorf("flat (-got +want):\n%s", diff)
	}
}

func TestNumerator_BracketAndPower(t *testing.T) {
	flat := mustParse(t, "x+(a+b)^2/c", token.Options{}).Flat()
	div := token.IndexOf(flat, find(t, flat, "/", 0).ID)
	num, err := token.Numerator(flat, div)
	if err != nil {
		t.Fatal(err)
	}
	if got := token.Text(num); got != "(a+b)^2" {
		t.Errorf("want (a+b)^2, got %s", got)
	}
	den, err := token.Denominator(flat, div)
	if err != nil {
		t.Fatal(err)
	}
	if got := token.Text(den); got != "c" {
		t.Errorf("want c, got %s", got)
	}
}

func TestNumerator_StopsAtProduct(t *testing.T) {
	flat := mustParse(t, "2*x/3", token.Options{}).Flat()
	num, err := token.Numerator(flat, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := token.Text(num); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

// ============================================================
// Locator
// ============================================================

func TestLocate_ChainExample(t *testing.T) {
	flat := mustParse(t, "2*x^3+5", token.Options{}).Flat()
	x := find(t, flat, "x", 0)

	chained, err := token.Locate(x, flat, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x", "^", "3"}, texts(chained)); diff != "" {
		t.Errorf("chained (-want +got):\n%s", diff)
	}

	single, err := token.Locate(x, flat, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x"}, texts(single)); diff != "" {
		t.Errorf("single (-want +got):\n%s", diff)
	}
}

func TestLocate_WholeProduct(t *testing.T) {
	flat := mustParse(t, "2*x^3+5", token.Options{}).Flat()
	got, err := token.Locate(flat[0], flat, true)
	if err != nil {
		t.Fatal(err)
	}
	if token.Text(got) != "2*x^3" {
		t.Errorf("want 2*x^3, got %s", token.Text(got))
	}
}

func TestLocate_BracketAndFunction(t *testing.T) {
	flat := mustParse(t, "(x+1)*sqrt(y)/2-4", token.Options{}).Flat()
	got, err := token.Locate(flat[0], flat, false)
	if err != nil {
		t.Fatal(err)
	}
	if token.Text(got) != "(x+1)" {
		t.Errorf("want (x+1), got %s", token.Text(got))
	}
	got, err = token.Locate(flat[0], flat, true)
	if err != nil {
		t.Fatal(err)
	}
	if token.Text(got) != "(x+1)*sqrt(y)/2" {
		t.Errorf("want (x+1)*sqrt(y)/2, got %s", token.Text(got))
	}
	fn := find(t, flat, "sqrt", 0)
	got, err = token.Locate(fn, flat, false)
	if err != nil {
		t.Fatal(err)
	}
	if token.Text(got) != "sqrt(y)" {
		t.Errorf("want sqrt(y), got %s", token.Text(got))
	}
}

func TestLocate_SignedChainOperand(t *testing.T) {
	flat := mustParse(t, "2*-x", token.Options{}).Flat()
	got, err := token.Locate(flat[0], flat, true)
	if err != nil {
		t.Fatal(err)
	}
	if token.Text(got) != "2*-x" {
		t.Errorf("want 2*-x, got %s", token.Text(got))
	}
}

func TestLocate_ClosingBracketFails(t *testing.T) {
	flat := mustParse(t, "(x)", token.Options{}).Flat()
	_, err := token.Locate(flat[2], flat, false)
	if !errors.Is(err, token.ErrStructure) {
		t.Errorf("want ErrStructure, got %v", err)
	}
}

func TestOperatorOf(t *testing.T) {
	flat := mustParse(t, "a-(b+c)", token.Options{}).Flat()
	if op := token.OperatorOf(flat, 0); op != nil {
		t.Errorf("first token has no operator, got %s", op)
	}
	if op := token.OperatorOf(flat, 2); op == nil || op.Text != "-" {
		t.Errorf("want -, got %v", op)
	}
	if op := token.OperatorOf(flat, 3); op != nil {
		t.Errorf("token after an opener has no operator, got %s", op)
	}
}

// ============================================================
// Back-tracer
// ============================================================

func TestBacktrace(t *testing.T) {
	cases := []struct {
		expr     string
		from     string
		nth      int
		division bool
		want     string
	}{
		{"2*x^3+5", "3", 0, false, "2"},
		{"2*x^3+5", "5", 0, false, "5"},
		{"a+b*c", "c", 0, false, "b"},
		{"(a*b)", "b", 0, false, "a"},
		{"(-a*b)", "b", 0, false, "a"},
		{"a/b*c", "c", 0, false, "b"},
		{"a/b*c", "c", 0, true, "a"},
		{"a*b/c", "c", 0, false, "c"},
		{"a*b/c", "c", 0, true, "a"},
		{"3+(x+1)*y", "y", 0, false, "("},
		{"2*(a+b*c)", "c", 0, false, "b"},
		{"sqrt(x)*2", "2", 0, false, "sqrt"},
		{"a*-b*c", "c", 0, false, "a"},
	}
	for _, c := range cases {
		flat := mustParse(t, c.expr, token.Options{}).Flat()
		got, err := token.Backtrace(find(t, flat, c.from, c.nth), flat, c.division)
		if err != nil {
			t.Errorf("Backtrace(%s in %s): %v", c.from, c.expr, err)
			continue
		}
		if got.Text != c.want {
			t.Errorf("Backtrace(%s in %s, division=%v): want %s, got %s", c.from, c.expr, c.division, c.want, got.Text)
		}
	}
}

func TestBacktrace_UnknownToken(t *testing.T) {
	flat := mustParse(t, "x", token.Options{}).Flat()
	other := mustParse(t, "y", token.Options{}).Flat()
	if _, err := token.Backtrace(other[0], flat, false); !errors.Is(err, token.ErrStructure) {
		t.Errorf("want ErrStructure, got %v", err)
	}
}

func TestSequence_TokenLookup(t *testing.T) {
	seq := mustParse(t, "x+1", token.Options{})
	flat := seq.Flat()
	got, ok := seq.Token(flat[2].ID)
	if !ok || got != flat[2] {
		t.Errorf("arena lookup failed for %s", flat[2])
	}
	if _, ok := seq.Token(-1); ok {
		t.Error("unknown id should not resolve")
	}
}
