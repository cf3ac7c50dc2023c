package layout

import "github.com/verte-zerg/keytutor/internal/model"

// Interpreter turns key chords into semantic input using a layout.
type Interpreter struct {
	layout *Layout
}

// NewInterpreter returns an interpreter for l.
func NewInterpreter(l *Layout) *Interpreter {
	return &Interpreter{layout: l}
}

// Layout returns the layout in use.
func (i *Interpreter) Layout() *Layout { return i.layout }

// Interpret resolves chord. Non-typing modifiers win over everything, then
// the backspace key, then the layout table; anything else is ignored.
func (i *Interpreter) Interpret(chord model.KeyChord) model.SemanticInput {
	if chord.Modifiers.Any(i.layout.NonTyping()) {
		return model.Ignored{}
	}
	if chord.Key == i.layout.BackspaceKey() {
		return model.Backspace{}
	}
	if g, ok := i.layout.Lookup(chord.Key, chord.Modifiers); ok {
		return model.NewCharacter(g, chord.PressedAt)
	}
	return model.Ignored{}
}
