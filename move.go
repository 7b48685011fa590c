package equationshift

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/token"
)

// plan is a computed move that has not been committed yet.
type plan struct {
	kind  MoveKind
	step  string
	left  string
	right string
	// sides whose change goes into the history entry
	recordLeft  bool
	recordRight bool
}

// Apply computes the move m against prior and, when commit is set, replaces
// both sides with the result. A drop onto the other side or into a division
// zone is bilateral; a drop onto its own side merges the token's term with
// its new neighbour (only when auto-simplification is off).
func (e *Equation) Apply(prior Snapshot, m Move, commit bool) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prior.Generation != e.generation || prior.Left != e.left || prior.Right != e.right {
		return Result{}, ErrStaleSnapshot
	}
	if !commit && !e.cfg.ShowPreview {
		return Result{}, ErrPreviewDisabled
	}
	if e.locked() {
		return Result{}, ErrLocked
	}
	if m.Source.IsDivisionZone() {
		return Result{}, ErrRejected
	}
	tok, ok := prior.side(m.Source).Token(m.Token)
	if !ok {
		return Result{}, ErrUnknownToken
	}
	if !draggable(tok) {
		return Result{}, ErrNotDraggable
	}

	var (
		p   plan
		err error
	)
	switch {
	case m.Target.IsDivisionZone():
		p, err = e.bilateral(prior, tok, m.Source, true, m.Index)
	case m.Target != m.Source:
		p, err = e.bilateral(prior, tok, m.Source, false, m.Index)
	case e.cfg.AutoSimplification:
		return Result{}, ErrRejected
	case isMinus(tok):
		p, err = e.bilateral(prior, tok, m.Source, false, -1)
	default:
		p, err = e.unilateral(prior, tok, m.Source, m.Index)
	}
	if err != nil {
		e.logger.Warn("move rolled back",
			zap.Int("token", m.Token),
			zap.Stringer("source", m.Source),
			zap.Stringer("target", m.Target),
			zap.Error(err))
		return Result{}, err
	}
	return e.settle(p, commit)
}

// settle builds the new sides and, on commit, swaps them in and records the
// conversion. Nothing changes when a side fails to build.
func (e *Equation) settle(p plan, commit bool) (Result, error) {
	if p.kind == NoOp {
		return Result{Left: e.left.Text(), Right: e.right.Text(), Kind: NoOp}, nil
	}
	left, err := e.build(p.left)
	if err != nil {
		e.logger.Warn("move rolled back", zap.Stringer("phase", PhaseTransformed), zap.Error(err))
		return Result{}, err
	}
	right, err := e.build(p.right)
	if err != nil {
		e.logger.Warn("move rolled back", zap.Stringer("phase", PhaseTransformed), zap.Error(err))
		return Result{}, err
	}
	res := Result{Left: left.Text(), Right: right.Text(), Step: p.step, Kind: p.kind, Committed: commit}
	if !commit {
		return res, nil
	}

	var lc, rc *PartChange
	if p.recordLeft {
		lc = &PartChange{Before: e.left.Text(), After: res.Left}
	}
	if p.recordRight {
		rc = &PartChange{Before: e.right.Text(), After: res.Right}
	}
	e.record(p.step, lc, rc)
	e.left, e.right = left, right
	e.generation++
	e.logger.Debug("move committed",
		zap.Stringer("kind", p.kind),
		zap.String("step", p.step),
		zap.String("left", res.Left),
		zap.String("right", res.Right),
		zap.Int64("generation", e.generation))
	return res, nil
}

// ============================================================
// Bilateral moves
// ============================================================

// bilateral moves a term from src to the other side by applying the inverse
// operation to both sides. In a division zone the dragged term becomes a
// divisor of both sides; a dragged minus sign multiplies both sides by -1.
func (e *Equation) bilateral(prior Snapshot, tok *token.Token, src Container, division bool, index int) (plan, error) {
	dst := src.other()
	srcFlat, dstFlat := prior.side(src).Flat(), prior.side(dst).Flat()
	srcText, dstText := token.Text(srcFlat), token.Text(dstFlat)

	actual, err := token.Backtrace(tok, srcFlat, false)
	if err != nil {
		return plan{}, transformError(PhaseSelected, err)
	}
	actualIdx := token.IndexOf(srcFlat, actual.ID)
	opTok := token.OperatorOf(srcFlat, actualIdx)
	op := "+"
	if opTok != nil {
		op = opTok.Text
	}

	var (
		targetOp, step string
		last           *token.Token
	)
	switch {
	case isMinus(tok):
		targetOp, step = "*", "*(-1)"
	case division:
		span, err := token.Locate(tok, srcFlat, false)
		if err != nil {
			return plan{}, transformError(PhaseLocated, err)
		}
		targetOp, step = "/", "/"+token.Text(span)
		last = span[len(span)-1]
	default:
		var ok bool
		if targetOp, ok = inverseOperator(op); !ok {
			return plan{}, transformError(PhaseLocated, fmt.Errorf("no inverse for %q", op))
		}
		span, err := token.Locate(actual, srcFlat, op != "/")
		if err != nil {
			return plan{}, transformError(PhaseLocated, err)
		}
		step = targetOp + token.Text(span)
		last = span[len(span)-1]
	}
	e.logger.Debug("bilateral move located",
		zap.String("token", tok.Text),
		zap.String("term", actual.Text),
		zap.String("step", step))

	var newSrc, newDst string
	if e.cfg.SupportiveMode || last == nil || division || !additive(targetOp) ||
		actual.BracketItem || signAfterChain(srcFlat, opTok) {
		if e.cfg.AutoSimplification || !additive(targetOp) {
			srcText, dstText = "("+srcText+")", "("+dstText+")"
		}
		newSrc, newDst = srcText+step, dstText+step
	} else {
		newDst = splice(dstFlat, index, step, e.cfg.AutoSimplification)
		newSrc = excise(srcFlat, actualIdx, token.IndexOf(srcFlat, last.ID))
	}

	if newSrc, err = e.finish(newSrc); err != nil {
		return plan{}, err
	}
	if newDst, err = e.finish(newDst); err != nil {
		return plan{}, err
	}
	p := plan{kind: Bilateral, step: step, recordLeft: true, recordRight: true}
	if src == Left {
		p.left, p.right = newSrc, newDst
	} else {
		p.left, p.right = newDst, newSrc
	}
	return p, nil
}

func inverseOperator(op string) (string, bool) {
	switch op {
	case "+":
		return "-", true
	case "-":
		return "+", true
	case "*":
		return "/", true
	case "/":
		return "*", true
	}
	return "", false
}

func additive(op string) bool { return op == "+" || op == "-" }

func isMinus(t *token.Token) bool { return t.Kind == token.Operator && t.Text == "-" }

// signAfterChain reports whether op is the sign of a chained operand, as the
// minus in 2*-x. Such a term cannot be cut out of its side on its own.
func signAfterChain(flat []*token.Token, op *token.Token) bool {
	if op == nil {
		return false
	}
	i := token.IndexOf(flat, op.ID)
	if i <= 0 {
		return false
	}
	prev := flat[i-1]
	return prev.Kind == token.Operator || prev.Kind == token.PowerSymbol
}

// splice places step at the drop index of the target side. The index moves
// forward to the next top-level + or - so the step always lands between two
// terms; a drop at either end appends instead.
func splice(dst []*token.Token, index int, step string, auto bool) string {
	n := len(dst)
	p := index
	if p < 0 || p > n {
		p = n
	}
	if p > 0 {
		for p < n && !termBoundary(dst, p) {
			p++
		}
	}
	if p == 0 || p == n {
		text := token.Text(dst)
		if auto {
			text = "(" + text + ")"
		}
		return text + step
	}
	return token.Text(dst[:p]) + step + token.Text(dst[p:])
}

func termBoundary(flat []*token.Token, i int) bool {
	t := flat[i]
	if !isAdditiveOperator(t) || t.BracketItem {
		return false
	}
	prev := flat[i-1]
	return prev.Kind != token.Operator && prev.Kind != token.PowerSymbol
}

func isAdditiveOperator(t *token.Token) bool {
	return t.Kind == token.Operator && additive(t.Text)
}

// excise removes the tokens first..last and the operator in front of them
// from the source side. An emptied side becomes "0".
func excise(src []*token.Token, first, last int) string {
	limit := first
	if first > 0 && !src[first-1].IsOpening() {
		limit = first - 1
	}
	kept := make([]*token.Token, 0, len(src))
	keep := func(t *token.Token) {
		if t.Kind == token.Operator && t.Text == "+" && len(kept) > 0 && kept[len(kept)-1].IsOpening() {
			return
		}
		kept = append(kept, t)
	}
	for _, t := range src[:limit] {
		keep(t)
	}
	for _, t := range src[last+1:] {
		keep(t)
	}
	out := strings.TrimPrefix(token.Text(kept), "+")
	if out == "" {
		return "0"
	}
	return out
}

// ============================================================
// Unilateral moves
// ============================================================

// term is a located span together with the operator in front of it.
type term struct {
	span []*token.Token
	op   *token.Token
}

func (t term) sign() string {
	if t.op != nil && t.op.Text == "-" {
		return "-"
	}
	return ""
}

func (t term) joiner() string {
	if t.op != nil && t.op.Text == "-" {
		return "-"
	}
	return "+"
}

// unilateral merges the dragged term with the term it now sits next to and
// simplifies the pair. The rest of the side is kept as it was.
func (e *Equation) unilateral(prior Snapshot, tok *token.Token, side Container, index int) (plan, error) {
	flat := prior.side(side).Flat()

	actual, err := termStart(tok, flat)
	if err != nil {
		return plan{}, transformError(PhaseSelected, err)
	}
	post := rearrange(flat, tok, index)
	pos := token.IndexOf(post, tok.ID)

	var neighbor *token.Token
	if pos+1 < len(post) {
		if neighbor, err = resolveNeighbor(post[pos+1], flat); err != nil {
			return plan{}, transformError(PhaseLocated, err)
		}
	}
	if pos > 0 {
		left, err := resolveNeighbor(post[pos-1], flat)
		if err != nil {
			return plan{}, transformError(PhaseLocated, err)
		}
		if left != nil {
			neighbor = left
		}
	}
	if neighbor == nil {
		return plan{kind: NoOp}, nil
	}
	if actual.AfterOpeningBracket != neighbor.AfterOpeningBracket {
		return plan{}, &MoveError{Phase: PhaseLocated, Err: ErrRejected}
	}

	considered, err := locateTerm(actual, flat)
	if err != nil {
		return plan{}, transformError(PhaseLocated, err)
	}
	beside, err := locateTerm(neighbor, flat)
	if err != nil {
		return plan{}, transformError(PhaseLocated, err)
	}

	var (
		combined string
		removed  []term
	)
	if overlaps(considered.span, beside.span) {
		whole := considered
		if len(beside.span) > len(considered.span) {
			whole = beside
		}
		combined, err = e.simplify(whole.sign() + token.Text(whole.span))
		removed = []term{whole}
	} else {
		combined, err = e.simplify("(" + beside.sign() + token.Text(beside.span) + ")" +
			considered.joiner() + "(" + token.Text(considered.span) + ")")
		removed = []term{considered, beside}
	}
	if err != nil {
		return plan{}, err
	}

	drop := map[int]bool{}
	for _, t := range removed {
		for _, s := range t.span {
			drop[s.ID] = true
		}
		if t.op != nil {
			drop[t.op.ID] = true
		}
	}
	remaining := make([]*token.Token, 0, len(flat))
	for _, t := range flat {
		if !drop[t.ID] {
			remaining = append(remaining, t)
		}
	}

	var out string
	if actual.BracketItem {
		out = spliceIntoScope(remaining, actual.AfterOpeningBracket, combined)
	} else {
		rest := strings.TrimPrefix(token.Text(remaining), "+")
		if rest != "" {
			rest += "+"
		}
		out = rest + combined
	}
	out = cas.CollapseSigns(out)
	e.logger.Debug("unilateral move located",
		zap.String("term", token.Text(considered.span)),
		zap.String("neighbor", token.Text(beside.span)),
		zap.String("combined", combined))

	p := plan{kind: Unilateral, step: "simplify"}
	if side == Left {
		p.left, p.right = out, prior.Right.Text()
		p.recordLeft = true
	} else {
		p.left, p.right = prior.Left.Text(), out
		p.recordRight = true
	}
	return p, nil
}

func locateTerm(start *token.Token, flat []*token.Token) (term, error) {
	span, err := token.Locate(start, flat, true)
	if err != nil {
		return term{}, err
	}
	return term{span: span, op: token.OperatorOf(flat, token.IndexOf(flat, start.ID))}, nil
}

// rearrange moves t to index, counted after t has been taken out.
func rearrange(flat []*token.Token, t *token.Token, index int) []*token.Token {
	out := make([]*token.Token, 0, len(flat))
	for _, f := range flat {
		if f.ID != t.ID {
			out = append(out, f)
		}
	}
	if index < 0 || index > len(out) {
		index = len(out)
	}
	return append(out[:index], append([]*token.Token{t}, out[index:]...)...)
}

// resolveNeighbor maps a token next to the drop position to the start of its
// term. Operators are not neighbours; brackets stand for the term they close.
func resolveNeighbor(n *token.Token, flat []*token.Token) (*token.Token, error) {
	switch n.Kind {
	case token.Operator, token.PowerSymbol:
		return nil, nil
	case token.RawClosingBracket:
		i := token.IndexOf(flat, n.ClosesOpeningBracket)
		if i < 0 {
			return nil, fmt.Errorf("%w: bracket %d has no opener", token.ErrStructure, n.ID)
		}
		n = flat[i]
	case token.FunctionOpeningBracket, token.FunctionClosingBracket:
		opener := n.ID
		if n.Kind == token.FunctionClosingBracket {
			opener = n.ClosesOpeningBracket
		}
		i := token.IndexOf(flat, opener)
		if i < 1 {
			return nil, fmt.Errorf("%w: function bracket %d has no name", token.ErrStructure, n.ID)
		}
		n = flat[i-1]
	}
	return termStart(n, flat)
}

// termStart is the first token of the product or power t belongs to. An
// operand signed after a chain operator, the 2 in x*-2, starts at x.
func termStart(t *token.Token, flat []*token.Token) (*token.Token, error) {
	start, err := token.Backtrace(t, flat, true)
	if err != nil {
		return nil, err
	}
	op := token.OperatorOf(flat, token.IndexOf(flat, start.ID))
	if op != nil && isMinus(op) && signAfterChain(flat, op) {
		return token.Backtrace(op, flat, true)
	}
	return start, nil
}

func overlaps(a, b []*token.Token) bool {
	ids := make(map[int]bool, len(a))
	for _, t := range a {
		ids[t.ID] = true
	}
	for _, t := range b {
		if ids[t.ID] {
			return true
		}
	}
	return false
}

// spliceIntoScope appends combined inside the bracket with the given opener
// id, right before its closer.
func spliceIntoScope(remaining []*token.Token, scope int, combined string) string {
	open := token.IndexOf(remaining, scope)
	empty := open >= 0 && open+1 < len(remaining) && remaining[open+1].ClosesOpeningBracket == scope
	var b strings.Builder
	for i, t := range remaining {
		switch {
		case i == open+1 && open >= 0 && t.Kind == token.Operator && t.Text == "+":
			continue
		case t.IsClosing() && t.ClosesOpeningBracket == scope:
			if !empty {
				b.WriteString("+")
			}
			b.WriteString(combined)
			b.WriteString(")")
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
