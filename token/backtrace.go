package token

import "fmt"

// Backtrace returns the first token of the chained product or power that t
// takes part in. Division only counts as chaining when divisionIsChaining is
// set, which models a drag that stays on one side.
//
// The walk stops at a + or - on the token's own bracket level (and at / when
// division does not chain), at the opening bracket of its own scope, where the
// token just inside is returned with a leading sign skipped, or at the start
// of the side.
func Backtrace(t *Token, flat []*Token, divisionIsChaining bool) (*Token, error) {
	idx := IndexOf(flat, t.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: token %d is not part of the side", ErrStructure, t.ID)
	}
	if idx == 0 || !isChainOperator(flat[idx-1], divisionIsChaining) {
		return t, nil
	}

	depth := 0
	for i := idx - 1; i >= 0; i-- {
		c := flat[i]
		switch {
		case c.IsClosing():
			depth++
		case c.IsOpening():
			if depth > 0 {
				depth--
				continue
			}
			return firstInScope(flat, i)
		case depth == 0 && isScopeBoundary(c, divisionIsChaining):
			if c.Text == "-" && i > 0 && isChainOperator(flat[i-1], divisionIsChaining) {
				continue // sign of a chained operand: a*-b
			}
			return flat[i+1], nil
		}
	}
	return flat[0], nil
}

func isScopeBoundary(t *Token, divisionIsChaining bool) bool {
	if t.Kind != Operator {
		return false
	}
	return t.Text == "+" || t.Text == "-" || (t.Text == "/" && !divisionIsChaining)
}

func firstInScope(flat []*Token, opener int) (*Token, error) {
	i := opener + 1
	if i < len(flat) && flat[i].Kind == Operator {
		i++
	}
	if i >= len(flat) || flat[i].IsClosing() {
		return nil, fmt.Errorf("%w: empty bracket %d", ErrStructure, flat[opener].ID)
	}
	return flat[i], nil
}
