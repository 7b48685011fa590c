package token

// Element is either a *Token or a *Fraction.
type Element interface{ element() }

func (*Token) element() {}

// Fraction is the pretty form of one division. Its id is the id of the stroke
// so that flattening is lossless.
type Fraction struct {
	Numerator   []*Token `json:"numerator"`
	Stroke      *Token   `json:"stroke"`
	Denominator []*Token `json:"denominator"`
}

func (*Fraction) element() {}

func (f *Fraction) ID() int { return f.Stroke.ID }

// Sequence is one side of an equation. Sequences are built once and never
// mutated; a move produces new ones.
type Sequence struct {
	elements []Element
	arena    map[int]*Token
}

func newSequence(elements []Element) *Sequence {
	s := &Sequence{elements: elements, arena: map[int]*Token{}}
	for _, t := range Normalize(elements) {
		s.arena[t.ID] = t
	}
	return s
}

// Elements returns the pretty form. The slice is shared; do not modify it.
func (s *Sequence) Elements() []Element { return s.elements }

// Flat returns the flat form with every fraction unfolded.
func (s *Sequence) Flat() []*Token { return Normalize(s.elements) }

func (s *Sequence) Text() string { return Text(s.Flat()) }

func (s *Sequence) Len() int { return len(s.arena) }

// Token resolves an id through the arena.
func (s *Sequence) Token(id int) (*Token, bool) {
	t, ok := s.arena[id]
	return t, ok
}

// Normalize replaces each fraction with its numerator tokens, the stroke and
// its denominator tokens. Runs without fractions come back as a copy.
func Normalize(elements []Element) []*Token {
	out := make([]*Token, 0, len(elements))
	for _, e := range elements {
		switch v := e.(type) {
		case *Token:
			out = append(out, v)
		case *Fraction:
			out = append(out, v.Numerator...)
			out = append(out, v.Stroke)
			out = append(out, v.Denominator...)
		}
	}
	return out
}
