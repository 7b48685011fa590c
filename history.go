package equationshift

// PartChange is the text of one side before and after a conversion.
type PartChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Conversion is one committed step. Unilateral moves touch a single side and
// leave the other part nil.
type Conversion struct {
	ConversionStep    string      `json:"conversionStep"`
	LeftEquationPart  *PartChange `json:"leftEquationPart,omitempty"`
	RightEquationPart *PartChange `json:"rightEquationPart,omitempty"`
}

// History returns a copy of the committed conversions, oldest first.
func (e *Equation) History() []Conversion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Conversion, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Equation) record(step string, left, right *PartChange) {
	e.history = append(e.history, Conversion{
		ConversionStep:    step,
		LeftEquationPart:  left,
		RightEquationPart: right,
	})
}
