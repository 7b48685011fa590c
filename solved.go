package equationshift

// solvedForms lists the side texts that count as "isolated". Higher powers
// such as x^3 are deliberately absent.
func solvedForms(v string) []string {
	return []string{
		v,
		v + "^2+" + v,
		v + "^2-" + v,
		v + "+" + v + "^2",
		v + "-" + v + "^2",
	}
}

func isSolvedText(left, right, v string) bool {
	for _, form := range solvedForms(v) {
		if left == form && !containsVariable(right, v[0]) {
			return true
		}
		if right == form && !containsVariable(left, v[0]) {
			return true
		}
	}
	return false
}

// IsSolved reports whether one side is an isolated form of the target and the
// other side does not mention it.
func (e *Equation) IsSolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.solved()
}

func (e *Equation) solved() bool {
	return isSolvedText(e.left.Text(), e.right.Text(), e.target)
}

func (e *Equation) locked() bool {
	return e.cfg.LockWhenSolved && e.solved()
}

// CurrentResult returns the side without the target once the equation is
// solved.
func (e *Equation) CurrentResult() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.solved() {
		return "", false
	}
	left, right := e.left.Text(), e.right.Text()
	if containsVariable(left, e.target[0]) {
		return right, true
	}
	return left, true
}

// CorrectResults solves the start equation with the configured solver.
func (e *Equation) CorrectResults() ([]string, error) {
	e.mu.Lock()
	startLeft, startRight, target, solve := e.startLeft, e.startRight, e.target, e.cfg.Solve
	e.mu.Unlock()
	return solve(startLeft, startRight, target)
}
