// Package mathparse turns algebraic expression text into a small tagged tree.
//
// The tree keeps explicit parentheses as their own nodes and prints back to
// compact text without inserting any, so a tree built from "2*(x+1)" prints as
// "2*(x+1)" again.
package mathparse

// ============================================================
// Node: tagged union over the expression shapes
// ============================================================

type Node interface {
	String() string
	node()
}

// Constant is a numeric literal. Value keeps the literal text as written.
type Constant struct{ Value string }

// Symbol is a variable name.
type Symbol struct{ Name string }

// Unary is a prefix sign applied to one operand. Only "-" survives parsing;
// a unary "+" is dropped.
type Unary struct {
	Op      string
	Operand Node
}

// Binary is one of + - * / ^. Implicit is set when the multiplication was
// written by juxtaposition ("2x").
type Binary struct {
	Op          string
	Left, Right Node
	Implicit    bool
}

// Parenthesis marks brackets written in the source.
type Parenthesis struct{ Content Node }

// Call is a single-argument function application such as sqrt(x).
type Call struct {
	Name string
	Arg  Node
}

func (*Constant) node()    {}
func (*Symbol) node()      {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Parenthesis) node() {}
func (*Call) node()        {}

func (c *Constant) String() string    { return c.Value }
func (s *Symbol) String() string      { return s.Name }
func (u *Unary) String() string       { return u.Op + u.Operand.String() }
func (b *Binary) String() string      { return b.Left.String() + b.Op + b.Right.String() }
func (p *Parenthesis) String() string { return "(" + p.Content.String() + ")" }
func (c *Call) String() string        { return c.Name + "(" + c.Arg.String() + ")" }
