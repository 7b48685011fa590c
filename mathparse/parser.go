package mathparse

import "fmt"

// Parse reads one expression. Precedence from loosest to tightest:
// additive, multiplicative (explicit or implicit), unary sign, power
// (right associative), primary.
func Parse(src string) (Node, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == lexEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	n, err := p.additive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != lexEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return n, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

type parser struct {
	toks []lexeme
	cur  int
}

func (p *parser) peek() lexeme { return p.toks[p.cur] }

func (p *parser) next() lexeme {
	t := p.toks[p.cur]
	if t.kind != lexEOF {
		p.cur++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == lexOperator && t.text == text
}

func (p *parser) additive() (Node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*") || p.isOp("/"):
			op := p.next().text
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: op, Left: left, Right: right}
		case p.startsPrimary():
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: "*", Left: left, Right: right, Implicit: true}
		default:
			return left, nil
		}
	}
}

func (p *parser) startsPrimary() bool {
	switch p.peek().kind {
	case lexNumber, lexIdent, lexLParen:
		return true
	}
	return false
}

func (p *parser) unary() (Node, error) {
	switch {
	case p.isOp("-"):
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", Operand: operand}, nil
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: "^", Left: base, Right: exp}, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case lexNumber:
		return &Constant{Value: t.text}, nil
	case lexIdent:
		// A multi-letter name directly followed by "(" is a call; a single
		// letter is a variable multiplied implicitly: x(x+1).
		if len(t.text) > 1 && p.peek().kind == lexLParen {
			p.next()
			arg, err := p.additive()
			if err != nil {
				return nil, err
			}
			if c := p.peek(); c.kind == lexComma {
				return nil, &SyntaxError{Pos: c.pos, Msg: fmt.Sprintf("%s takes a single argument", t.text)}
			}
			if err := p.expect(lexRParen); err != nil {
				return nil, err
			}
			return &Call{Name: t.text, Arg: arg}, nil
		}
		return &Symbol{Name: t.text}, nil
	case lexLParen:
		inner, err := p.additive()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexRParen); err != nil {
			return nil, err
		}
		return &Parenthesis{Content: inner}, nil
	case lexEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func (p *parser) expect(kind lexKind) error {
	t := p.peek()
	if t.kind != kind {
		if t.kind == lexEOF {
			return &SyntaxError{Pos: t.pos, Msg: "missing closing bracket"}
		}
		return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	p.next()
	return nil
}
