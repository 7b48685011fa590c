package mathparse

import "fmt"

type lexKind int

const (
	lexNumber lexKind = iota
	lexIdent
	lexOperator
	lexLParen
	lexRParen
	lexComma
	lexEOF
)

type lexeme struct {
	kind lexKind
	text string
	pos  int // byte offset in the input
}

// SyntaxError reports malformed input together with the byte offset at which
// scanning or parsing gave up.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mathparse: %s at position %d", e.Msg, e.Pos)
}

func scan(src string) ([]lexeme, error) {
	var out []lexeme
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			seenDot := false
			for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !seenDot)) {
				if src[i] == '.' {
					seenDot = true
				}
				i++
			}
			out = append(out, lexeme{kind: lexNumber, text: src[start:i], pos: start})
		case isAlpha(c):
			start := i
			for i < len(src) && (isAlpha(src[i]) || isDigit(src[i])) {
				i++
			}
			out = append(out, lexeme{kind: lexIdent, text: src[start:i], pos: start})
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			out = append(out, lexeme{kind: lexOperator, text: string(c), pos: i})
			i++
		case c == '(':
			out = append(out, lexeme{kind: lexLParen, text: "(", pos: i})
			i++
		case c == ')':
			out = append(out, lexeme{kind: lexRParen, text: ")", pos: i})
			i++
		case c == ',':
			out = append(out, lexeme{kind: lexComma, text: ",", pos: i})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	out = append(out, lexeme{kind: lexEOF, pos: len(src)})
	return out, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
