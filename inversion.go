package equationshift

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/token"
)

// Activate applies the inverse of a clicked function or power to both sides:
// a square root squares both sides, a square takes the root of both sides and
// any other exponent raises both sides to its reciprocal.
func (e *Equation) Activate(tokenID int, commit bool) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !commit && !e.cfg.ShowPreview {
		return Result{}, ErrPreviewDisabled
	}
	if e.locked() {
		return Result{}, ErrLocked
	}
	t, side, ok := e.find(tokenID)
	if !ok {
		return Result{}, ErrUnknownToken
	}

	left, right := e.left.Text(), e.right.Text()
	var step string
	switch {
	case t.IsFunction() && strings.Contains(t.Text, "sqrt"):
		step = "^2"
		left, right = "("+left+")"+step, "("+right+")"+step
	case t.Kind == token.PowerSymbol:
		exp, err := exponentOf(e.snapshot().side(side).Flat(), t)
		if err != nil {
			return Result{}, transformError(PhaseLocated, err)
		}
		if exp == "2" {
			step = "sqrt"
			left, right = "sqrt("+left+")", "sqrt("+right+")"
			break
		}
		step = "^" + invertExponent(exp)
		left, right = "("+left+")"+step, "("+right+")"+step
	default:
		return Result{}, ErrNotActivatable
	}

	var err error
	if left, err = e.finish(left); err != nil {
		return Result{}, err
	}
	if right, err = e.finish(right); err != nil {
		return Result{}, err
	}
	return e.settle(plan{kind: Activation, step: step, left: left, right: right, recordLeft: true, recordRight: true}, commit)
}

// ApplyStep appends step to both sides, each wrapped in brackets, e.g. "^2"
// or "*3", and commits the result. A bare function name such as "sqrt" wraps
// both sides instead. Steps that bring in a symbol the equation does not
// already have are rejected.
func (e *Equation) ApplyStep(step string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locked() {
		return Result{}, ErrLocked
	}
	step = strings.TrimSpace(step)
	if step == "" {
		return Result{}, ErrRejected
	}
	left, right := e.left.Text(), e.right.Text()
	if isFunctionName(step) {
		left, right = step+"("+left+")", step+"("+right+")"
	} else {
		left, right = "("+left+")"+step, "("+right+")"+step
	}
	if added, err := addsSymbols([]string{e.left.Text(), e.right.Text()}, []string{left, right}); err != nil {
		return Result{}, &ParseError{Text: step, Err: err}
	} else if added != "" {
		e.logger.Warn("step rejected", zap.String("step", step), zap.String("symbol", added))
		return Result{}, &MoveError{Phase: PhaseTransformed, Err: ErrRejected}
	}

	left, err := e.finish(left)
	if err != nil {
		return Result{}, err
	}
	right, err = e.finish(right)
	if err != nil {
		return Result{}, err
	}
	return e.settle(plan{kind: Step, step: step, left: left, right: right, recordLeft: true, recordRight: true}, true)
}

// exponentOf returns the text of the exponent after the power symbol p,
// including a leading minus.
func exponentOf(flat []*token.Token, p *token.Token) (string, error) {
	i := token.IndexOf(flat, p.ID) + 1
	sign := ""
	if i < len(flat) && isMinus(flat[i]) {
		sign = "-"
		i++
	}
	if i <= 0 || i >= len(flat) {
		return "", fmt.Errorf("%w: power symbol %d has no exponent", token.ErrStructure, p.ID)
	}
	span, err := token.Locate(flat[i], flat, false)
	if err != nil {
		return "", err
	}
	return sign + token.Text(span), nil
}

// invertExponent turns (a/b) into (b/a) and anything else into (1/e).
func invertExponent(exp string) string {
	if strings.HasPrefix(exp, "(") && strings.HasSuffix(exp, ")") {
		num, den, ok := strings.Cut(exp[1:len(exp)-1], "/")
		if ok && simpleOperand(num) && simpleOperand(den) {
			return "(" + den + "/" + num + ")"
		}
	}
	return "(1/" + exp + ")"
}

// isFunctionName reports whether step is a name like sqrt or ln. A single
// letter is a variable.
func isFunctionName(step string) bool {
	if len(step) < 2 {
		return false
	}
	for i := 0; i < len(step); i++ {
		if !isLetter(step[i]) {
			return false
		}
	}
	return true
}

// addsSymbols returns a symbol that occurs in after but in none of before, or
// "" when there is none.
func addsSymbols(before, after []string) (string, error) {
	known := map[string]struct{}{}
	for _, text := range before {
		e, err := cas.Parse(text)
		if err != nil {
			return "", err
		}
		for name := range cas.FreeSymbols(e) {
			known[name] = struct{}{}
		}
	}
	for _, text := range after {
		e, err := cas.Parse(text)
		if err != nil {
			return "", err
		}
		for name := range cas.FreeSymbols(e) {
			if _, ok := known[name]; !ok {
				return name, nil
			}
		}
	}
	return "", nil
}

func simpleOperand(s string) bool {
	return s != "" && !strings.ContainsAny(s, "()+-*/^")
}
