// Package token lays one side of an equation out as a flat run of draggable
// tokens and answers structural questions about that run: which tokens make up
// a term, where a chained product starts, what a division's numerator is.
package token

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// ErrStructure is returned when brackets or chains cannot be resolved.
var ErrStructure = errors.New("token: inconsistent structure")

// ============================================================
// Kind
// ============================================================

type Kind int

const (
	Value Kind = iota
	Variable
	Operator
	PowerSymbol
	FunctionName
	RawOpeningBracket
	RawClosingBracket
	FunctionOpeningBracket
	FunctionClosingBracket
	Group
)

var kindNames = [...]string{
	Value:                  "value",
	Variable:               "variable",
	Operator:               "operator",
	PowerSymbol:            "powerSymbol",
	FunctionName:           "function",
	RawOpeningBracket:      "rawOpeningBracket",
	RawClosingBracket:      "rawClosingBracket",
	FunctionOpeningBracket: "functionOpeningBracket",
	FunctionClosingBracket: "functionClosingBracket",
	Group:                  "group",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ============================================================
// Token
// ============================================================

// Token is one draggable unit. Ids are unique for the life of the process and
// are never reused; rebuilding a side hands out fresh ids.
type Token struct {
	ID   int    `json:"id"`
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// Head is the kind of the first token merged into a Group.
	Head Kind `json:"head,omitempty"`
	// AfterOpeningBracket is the id of the innermost enclosing opening
	// bracket, 0 at top level.
	AfterOpeningBracket int `json:"afterOpeningBracket,omitempty"`
	// ClosesOpeningBracket links a closing bracket to its opener.
	ClosesOpeningBracket int  `json:"closesOpeningBracket,omitempty"`
	BracketItem          bool `json:"bracketItem,omitempty"`
}

func (t *Token) IsOpening() bool {
	return t.Kind == RawOpeningBracket || t.Kind == FunctionOpeningBracket
}

func (t *Token) IsClosing() bool {
	return t.Kind == RawClosingBracket || t.Kind == FunctionClosingBracket
}

// IsFunction reports whether clicking the token names a function, either the
// bare name or a group that starts with one.
func (t *Token) IsFunction() bool {
	return t.Kind == FunctionName || (t.Kind == Group && t.Head == FunctionName)
}

func (t *Token) String() string { return fmt.Sprintf("%s#%d(%q)", t.Kind, t.ID, t.Text) }

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

// ============================================================
// Helpers over flat runs
// ============================================================

// Text concatenates token texts with whitespace removed.
func Text(toks []*Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return strings.Join(strings.Fields(b.String()), "")
}

// IndexOf returns the position of the token with the given id, or -1.
func IndexOf(flat []*Token, id int) int {
	for i, t := range flat {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// closerIndex finds the closing bracket linked to the opener with the given id.
func closerIndex(flat []*Token, openerID int) int {
	for i, t := range flat {
		if t.IsClosing() && t.ClosesOpeningBracket == openerID {
			return i
		}
	}
	return -1
}

func isChainOperator(t *Token, withDivision bool) bool {
	switch t.Text {
	case "*", "^":
		return t.Kind == Operator || t.Kind == PowerSymbol
	case "/":
		return withDivision && t.Kind == Operator
	}
	return false
}
