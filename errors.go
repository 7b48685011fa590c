package equationshift

import (
	"errors"
	"fmt"
)

var (
	ErrLocked          = errors.New("equationshift: equation is solved and locked")
	ErrNotDraggable    = errors.New("equationshift: token cannot be dragged")
	ErrRejected        = errors.New("equationshift: drop rejected")
	ErrUnknownToken    = errors.New("equationshift: unknown token")
	ErrStaleSnapshot   = errors.New("equationshift: snapshot is stale")
	ErrPreviewDisabled = errors.New("equationshift: previews are disabled")
	ErrNotActivatable  = errors.New("equationshift: token has no inverse operation")

	// ErrTransform means the locator or back-tracer could not resolve the
	// structure around the moved token.
	ErrTransform = errors.New("equationshift: transform failed")
	// ErrSimplifier means the configured simplifier returned an error.
	ErrSimplifier = errors.New("equationshift: simplifier failed")
)

// ValidationError carries one of the fixed validation messages.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// ParseError is returned when a side's text cannot be turned into a sequence.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("equationshift: cannot parse %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Phase is how far a move got.
type Phase int

const (
	PhaseSelected Phase = iota
	PhaseLocated
	PhaseTransformed
	PhaseCommitted
	PhaseRolledBack
)

var phaseNames = [...]string{
	PhaseSelected:    "selected",
	PhaseLocated:     "located",
	PhaseTransformed: "transformed",
	PhaseCommitted:   "committed",
	PhaseRolledBack:  "rolledBack",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MoveError reports the phase a move failed in. The equation is unchanged.
type MoveError struct {
	Phase Phase
	Err   error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("equationshift: move failed while %s: %v", e.Phase, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

func transformError(phase Phase, err error) error {
	return &MoveError{Phase: phase, Err: fmt.Errorf("%w: %v", ErrTransform, err)}
}
