package token

import "fmt"

// Locate returns the tokens that make up the term starting at t. With chain
// set, a following *, ^ or / pulls in the next term as well, recursively, so
// locating a in a*b^c yields all five tokens.
func Locate(t *Token, flat []*Token, chain bool) ([]*Token, error) {
	idx := IndexOf(flat, t.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: token %d is not part of the side", ErrStructure, t.ID)
	}
	end := idx
	switch t.Kind {
	case Value, Variable, Group:
	case RawOpeningBracket:
		end = closerIndex(flat, t.ID)
	case FunctionName:
		if idx+1 >= len(flat) || flat[idx+1].Kind != FunctionOpeningBracket {
			return nil, fmt.Errorf("%w: function %q has no argument bracket", ErrStructure, t.Text)
		}
		end = closerIndex(flat, flat[idx+1].ID)
	case Operator, PowerSymbol:
		return []*Token{t}, nil
	default:
		return nil, fmt.Errorf("%w: a term cannot start at %s", ErrStructure, t)
	}
	if end < idx {
		return nil, fmt.Errorf("%w: unmatched bracket %d", ErrStructure, t.ID)
	}

	span := append([]*Token(nil), flat[idx:end+1]...)
	if !chain || end+1 >= len(flat) || !isChainOperator(flat[end+1], true) {
		return span, nil
	}
	span = append(span, flat[end+1])
	next := end + 2
	// a sign right after the operator belongs to the chained operand: 2*-x
	if next < len(flat) && flat[next].Kind == Operator && flat[next].Text == "-" {
		span = append(span, flat[next])
		next++
	}
	if next >= len(flat) {
		return nil, fmt.Errorf("%w: dangling %q", ErrStructure, flat[end+1].Text)
	}
	rest, err := Locate(flat[next], flat, true)
	if err != nil {
		return nil, err
	}
	return append(span, rest...), nil
}

// OperatorOf returns the operator in front of the token at idx, or nil when
// the token opens the side or a bracket.
func OperatorOf(flat []*Token, idx int) *Token {
	if idx <= 0 || idx >= len(flat) || flat[idx-1].IsOpening() {
		return nil
	}
	return flat[idx-1]
}

// Numerator back-traces from the division at div to the nearest operator on
// the same bracket level, or the start of the scope, and locates the term
// after it. A trailing power is included.
func Numerator(flat []*Token, div int) ([]*Token, error) {
	if div <= 0 || div >= len(flat) {
		return nil, fmt.Errorf("%w: no numerator before position %d", ErrStructure, div)
	}
	start := 0
	depth := 0
scan:
	for i := div - 1; i >= 0; i-- {
		t := flat[i]
		switch {
		case t.IsClosing():
			depth++
		case t.IsOpening():
			if depth == 0 {
				start = i + 1
				break scan
			}
			depth--
		case depth == 0 && t.Kind == Operator:
			start = i + 1
			break scan
		}
	}
	span, err := Locate(flat[start], flat, false)
	if err != nil {
		return nil, err
	}
	return extendThroughPower(flat, span)
}

// Denominator locates the term right after the division at div, including a
// trailing power.
func Denominator(flat []*Token, div int) ([]*Token, error) {
	if div < 0 || div+1 >= len(flat) {
		return nil, fmt.Errorf("%w: no denominator after position %d", ErrStructure, div)
	}
	span, err := Locate(flat[div+1], flat, false)
	if err != nil {
		return nil, err
	}
	return extendThroughPower(flat, span)
}

func extendThroughPower(flat []*Token, span []*Token) ([]*Token, error) {
	last := IndexOf(flat, span[len(span)-1].ID)
	if last+2 >= len(flat) || flat[last+1].Kind != PowerSymbol {
		return span, nil
	}
	exp, err := Locate(flat[last+2], flat, false)
	if err != nil {
		return nil, err
	}
	span = append(span, flat[last+1])
	return append(span, exp...), nil
}
