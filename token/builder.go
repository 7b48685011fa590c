package token

import (
	"fmt"

	"github.com/njchilds90/equationshift/mathparse"
)

// Options controls the post-passes applied after the infix walk.
type Options struct {
	GroupTokens       bool
	PrettifyFractions bool
}

// Parse reads text and builds a sequence from it.
func Parse(text string, opts Options) (*Sequence, error) {
	n, err := mathparse.Parse(text)
	if err != nil {
		return nil, err
	}
	return Build(n, opts)
}

// Build emits the tokens of n in reading order and runs the configured
// post-passes.
func Build(n mathparse.Node, opts Options) (*Sequence, error) {
	b := &builder{}
	if err := b.walk(n, 0); err != nil {
		return nil, err
	}
	flat := b.out
	if opts.GroupTokens {
		var err error
		if flat, err = groupTokens(flat); err != nil {
			return nil, err
		}
	}
	elements := make([]Element, len(flat))
	for i, t := range flat {
		elements[i] = t
	}
	if opts.PrettifyFractions {
		var err error
		if elements, err = prettifyFractions(flat); err != nil {
			return nil, err
		}
	}
	return newSequence(elements), nil
}

type builder struct {
	out []*Token
}

func (b *builder) emit(kind Kind, text string, scope int) *Token {
	t := &Token{
		ID:                  nextID(),
		Kind:                kind,
		Text:                text,
		AfterOpeningBracket: scope,
		BracketItem:         scope != 0,
	}
	b.out = append(b.out, t)
	return t
}

func (b *builder) walk(n mathparse.Node, scope int) error {
	switch v := n.(type) {
	case *mathparse.Unary:
		b.emit(Operator, v.Op, scope)
		return b.walk(v.Operand, scope)
	case *mathparse.Call:
		b.emit(FunctionName, v.Name, scope)
		return b.bracketed(v.Arg, scope, FunctionOpeningBracket, FunctionClosingBracket)
	case *mathparse.Parenthesis:
		return b.bracketed(v.Content, scope, RawOpeningBracket, RawClosingBracket)
	case *mathparse.Binary:
		if err := b.walk(v.Left, scope); err != nil {
			return err
		}
		kind := Operator
		if v.Op == "^" {
			kind = PowerSymbol
		}
		b.emit(kind, v.Op, scope)
		return b.walk(v.Right, scope)
	case *mathparse.Constant:
		b.emit(Value, v.Value, scope)
	case *mathparse.Symbol:
		b.emit(Variable, v.Name, scope)
	default:
		return fmt.Errorf("token: unsupported node %T", n)
	}
	return nil
}

func (b *builder) bracketed(inner mathparse.Node, scope int, open, close Kind) error {
	opener := b.emit(open, "(", scope)
	if err := b.walk(inner, opener.ID); err != nil {
		return err
	}
	closer := b.emit(close, ")", scope)
	closer.ClosesOpeningBracket = opener.ID
	return nil
}

// ============================================================
// Post-passes
// ============================================================

// groupTokens merges every term (a literal, a variable, a bracket or a
// function call) into one Group token. Operators and power symbols stay.
func groupTokens(flat []*Token) ([]*Token, error) {
	out := make([]*Token, 0, len(flat))
	for i := 0; i < len(flat); {
		t := flat[i]
		if t.Kind == Operator || t.Kind == PowerSymbol {
			out = append(out, t)
			i++
			continue
		}
		span, err := Locate(t, flat, false)
		if err != nil {
			return nil, err
		}
		out = append(out, &Token{ID: nextID(), Kind: Group, Head: span[0].Kind, Text: Text(span)})
		i += len(span)
	}
	return out, nil
}

// prettifyFractions nests every division with its numerator and denominator.
// A division whose span would reach into an earlier fraction stays flat.
func prettifyFractions(flat []*Token) ([]Element, error) {
	type span struct{ start, end int }
	fractions := map[int]*Fraction{}
	ends := map[int]int{}
	claimed := -1
	for i, t := range flat {
		if t.Kind != Operator || t.Text != "/" {
			continue
		}
		num, err := Numerator(flat, i)
		if err != nil {
			return nil, err
		}
		den, err := Denominator(flat, i)
		if err != nil {
			return nil, err
		}
		s := span{start: IndexOf(flat, num[0].ID), end: IndexOf(flat, den[len(den)-1].ID)}
		if s.start <= claimed || s.start+len(num) != i || i+1+len(den) != s.end+1 {
			continue
		}
		fractions[s.start] = &Fraction{Numerator: num, Stroke: t, Denominator: den}
		ends[s.start] = s.end
		claimed = s.end
	}

	out := make([]Element, 0, len(flat))
	for i := 0; i < len(flat); i++ {
		if f, ok := fractions[i]; ok {
			out = append(out, f)
			i = ends[i]
			continue
		}
		out = append(out, flat[i])
	}
	return out, nil
}
