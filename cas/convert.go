package cas

import (
	"fmt"
	"math/big"

	"github.com/njchilds90/equationshift/mathparse"
)

// Parse reads text with the mathparse grammar and converts the tree.
func Parse(text string) (Expr, error) {
	n, err := mathparse.Parse(text)
	if err != nil {
		return nil, err
	}
	return FromNode(n)
}

// FromNode converts a parse tree. Subtraction becomes a sum with a negated
// term and division becomes a product with a reciprocal, so a literal zero
// divisor is reported here.
func FromNode(n mathparse.Node) (Expr, error) {
	switch v := n.(type) {
	case *mathparse.Constant:
		r, ok := new(big.Rat).SetString(v.Value)
		if !ok {
			return nil, fmt.Errorf("cas: bad number %q", v.Value)
		}
		return &Num{val: r}, nil
	case *mathparse.Symbol:
		return S(v.Name), nil
	case *mathparse.Parenthesis:
		return FromNode(v.Content)
	case *mathparse.Unary:
		x, err := FromNode(v.Operand)
		if err != nil {
			return nil, err
		}
		if v.Op == "-" {
			return MulOf(N(-1), x), nil
		}
		return x, nil
	case *mathparse.Call:
		arg, err := FromNode(v.Arg)
		if err != nil {
			return nil, err
		}
		return FuncOf(v.Name, arg), nil
	case *mathparse.Binary:
		l, err := FromNode(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := FromNode(v.Right)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case "+":
			return AddOf(l, r), nil
		case "-":
			return AddOf(l, MulOf(N(-1), r)), nil
		case "*":
			return MulOf(l, r), nil
		case "/":
			if isNumEqual(r, 0) {
				return nil, ErrDivisionByZero
			}
			return MulOf(l, PowOf(r, N(-1))), nil
		case "^":
			return PowOf(l, r), nil
		}
		return nil, fmt.Errorf("cas: unknown operator %q", v.Op)
	}
	return nil, fmt.Errorf("cas: unsupported node %T", n)
}
