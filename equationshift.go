// Package equationshift restructures an equation the way a learner does on
// paper: terms are dragged from one side to the other (or into a division
// zone) and both sides are rewritten so the equation stays equivalent.
//
// Each side is held as a token.Sequence. A move is described by a Move, is
// applied against an explicit Snapshot and either commits completely or
// leaves the equation untouched.
package equationshift

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/njchilds90/equationshift/cas"
	"github.com/njchilds90/equationshift/token"
)

// ============================================================
// Containers and moves
// ============================================================

// Container is a place a token can be dropped.
type Container int

const (
	Left Container = iota
	Right
	FirstDivisionZone
	SecondDivisionZone
)

var containerNames = [...]string{
	Left:               "left",
	Right:              "right",
	FirstDivisionZone:  "firstDivisionZone",
	SecondDivisionZone: "secondDivisionZone",
}

func (c Container) String() string {
	if c >= 0 && int(c) < len(containerNames) {
		return containerNames[c]
	}
	return fmt.Sprintf("Container(%d)", int(c))
}

func (c Container) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Container) UnmarshalText(b []byte) error {
	for i, name := range containerNames {
		if strings.EqualFold(name, string(b)) {
			*c = Container(i)
			return nil
		}
	}
	return fmt.Errorf("equationshift: unknown container %q", b)
}

func (c Container) IsDivisionZone() bool {
	return c == FirstDivisionZone || c == SecondDivisionZone
}

func (c Container) other() Container {
	if c == Left {
		return Right
	}
	return Left
}

// Move is one drop. Index is the position the token lands at in the target
// side's flat form after the drop; a negative index means the end.
type Move struct {
	Token  int       `json:"token"`
	Source Container `json:"source"`
	Target Container `json:"target"`
	Index  int       `json:"index"`
}

// MoveKind says which algorithm produced a result.
type MoveKind int

const (
	NoOp MoveKind = iota
	Bilateral
	Unilateral
	Step
	Activation
)

var moveKindNames = [...]string{
	NoOp:       "noop",
	Bilateral:  "bilateral",
	Unilateral: "unilateral",
	Step:       "step",
	Activation: "activation",
}

func (k MoveKind) String() string {
	if int(k) < len(moveKindNames) {
		return moveKindNames[k]
	}
	return fmt.Sprintf("MoveKind(%d)", int(k))
}

func (k MoveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Result is the outcome of a move or a preview.
type Result struct {
	Left      string   `json:"left"`
	Right     string   `json:"right"`
	Step      string   `json:"step"`
	Kind      MoveKind `json:"kind"`
	Committed bool     `json:"committed"`
}

// Snapshot pins both sides at one generation. Moves are computed against a
// snapshot and refused once the equation has moved on.
type Snapshot struct {
	Generation int64
	Left       *token.Sequence
	Right      *token.Sequence
}

func (s Snapshot) side(c Container) *token.Sequence {
	if c == Right {
		return s.Right
	}
	return s.Left
}

// ============================================================
// Equation
// ============================================================

// Equation is the state of one session. All methods are safe for concurrent
// use.
type Equation struct {
	mu     sync.Mutex
	cfg    Config
	logger *zap.Logger

	target     string
	startLeft  string
	startRight string

	left       *token.Sequence
	right      *token.Sequence
	history    []Conversion
	generation int64
}

type Option func(*Equation)

// WithLogger sets the logger moves report to. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(e *Equation) {
		if l != nil {
			e.logger = l
		}
	}
}

// New validates the start equation, prepares both sides and returns the
// session. An invalid equation yields a *ValidationError.
func New(left, right, target string, cfg Config, opts ...Option) (*Equation, error) {
	cfg = cfg.withDefaults()
	if msg := Validate(left, right, target, cfg); msg != "" {
		return nil, &ValidationError{Message: msg}
	}
	e := &Equation{
		cfg:        cfg,
		logger:     zap.NewNop(),
		target:     target,
		startLeft:  left,
		startRight: right,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.left, err = e.prepare(left); err != nil {
		return nil, err
	}
	if e.right, err = e.prepare(right); err != nil {
		return nil, err
	}
	e.logger.Debug("equation initialized",
		zap.String("left", e.left.Text()),
		zap.String("right", e.right.Text()),
		zap.String("target", target))
	return e, nil
}

func (e *Equation) prepare(text string) (*token.Sequence, error) {
	out, err := e.finish(text)
	if err != nil {
		return nil, err
	}
	return e.build(out)
}

// finish is the last rewrite of every produced side.
func (e *Equation) finish(text string) (string, error) {
	if !e.cfg.AutoSimplification {
		return cas.CollapseSigns(text), nil
	}
	return e.simplify(text)
}

func (e *Equation) simplify(text string) (string, error) {
	out, err := e.cfg.Simplify(text)
	if err != nil {
		return "", &MoveError{Phase: PhaseTransformed, Err: fmt.Errorf("%w: %s: %v", ErrSimplifier, text, err)}
	}
	return out, nil
}

func (e *Equation) build(text string) (*token.Sequence, error) {
	seq, err := token.Parse(text, e.cfg.tokenOptions())
	if err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}
	return seq, nil
}

func (e *Equation) Target() string { return e.target }

// Config returns the session's configuration.
func (e *Equation) Config() Config { return e.cfg }

func (e *Equation) Left() *token.Sequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.left
}

func (e *Equation) Right() *token.Sequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.right
}

// String prints the equation as "left = right".
func (e *Equation) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.left.Text() + " = " + e.right.Text()
}

// Snapshot captures the current sides.
func (e *Equation) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Equation) snapshot() Snapshot {
	return Snapshot{Generation: e.generation, Left: e.left, Right: e.right}
}

// Grab starts a drag. It fails when the equation is locked or the token may
// not be dragged, and otherwise returns the snapshot the drop must use.
func (e *Equation) Grab(tokenID int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked() {
		return Snapshot{}, ErrLocked
	}
	t, _, ok := e.find(tokenID)
	if !ok {
		return Snapshot{}, ErrUnknownToken
	}
	if !draggable(t) {
		return Snapshot{}, ErrNotDraggable
	}
	return e.snapshot(), nil
}

// Drop commits a move.
func (e *Equation) Drop(prior Snapshot, m Move) (Result, error) { return e.Apply(prior, m, true) }

// Preview computes what a drop would produce without changing anything.
func (e *Equation) Preview(prior Snapshot, m Move) (Result, error) { return e.Apply(prior, m, false) }

func (e *Equation) find(id int) (*token.Token, Container, bool) {
	if t, ok := e.left.Token(id); ok {
		return t, Left, true
	}
	if t, ok := e.right.Token(id); ok {
		return t, Right, true
	}
	return nil, Left, false
}

// draggable reports whether a token may be picked up. Only a minus sign among
// the operators moves; it negates both sides.
func draggable(t *token.Token) bool {
	switch t.Kind {
	case token.Operator:
		return t.Text == "-"
	case token.PowerSymbol, token.RawClosingBracket, token.FunctionOpeningBracket, token.FunctionClosingBracket:
		return false
	}
	return true
}
