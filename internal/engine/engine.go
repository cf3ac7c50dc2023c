// Package engine evaluates typed input against a target text.
//
// The engine is a synchronous state machine. A cursor points at the next
// expected grapheme; a correct character advances it, an incorrect one
// leaves it in place and a backspace moves it back by one. When the cursor
// reaches the end of the target the engine latches into the completed state
// and reports a Completion exactly once per Reset. Input arriving after that
// is accepted and dropped.
//
// Success is decided at completion time: it is true when no incorrect
// keystroke is outstanding. An incorrect keystroke stays outstanding until
// the next backspace.
package engine

import (
	"github.com/rivo/uniseg"

	"github.com/verte-zerg/keytutor/internal/model"
)

// Completion describes a finished target.
type Completion struct {
	Success     bool
	Mistakes    int
	Corrections int
}

// Step is the effect of one processed input. Both fields are nil when the
// input changed nothing.
type Step struct {
	Result     *model.EvaluationResult
	Completion *Completion
}

// Engine holds the cursor over one target text.
type Engine struct {
	target    []string
	cursor    int
	completed bool

	mistakes    int
	corrections int
	outstanding int
}

// New returns an engine with an empty, completed target. Call Reset before
// processing input.
func New() *Engine {
	e := &Engine{}
	e.Reset("")
	return e
}

// Reset starts over on target. An empty target starts completed without
// ever reporting a Completion.
func (e *Engine) Reset(target string) {
	e.target = splitGraphemes(target)
	e.cursor = 0
	e.mistakes = 0
	e.corrections = 0
	e.outstanding = 0
	e.completed = len(e.target) == 0
}

// Process applies one semantic input.
func (e *Engine) Process(in model.SemanticInput) Step {
	if e.completed {
		return Step{}
	}
	switch v := in.(type) {
	case model.Character:
		return e.character(v)
	case *model.Character:
		if v == nil {
			return Step{}
		}
		return e.character(*v)
	case model.Backspace, *model.Backspace:
		return e.backspace()
	default:
		return Step{}
	}
}

func (e *Engine) character(ch model.Character) Step {
	idx := e.cursor
	expected := e.target[idx]
	res := &model.EvaluationResult{
		TargetIndex: idx,
		Expected:    expected,
		Actual:      ch.Grapheme,
		At:          ch.ProducedAt,
	}
	if ch.Grapheme != expected {
		res.Outcome = model.OutcomeIncorrect
		e.mistakes++
		e.outstanding++
		return Step{Result: res}
	}

	res.Outcome = model.OutcomeCorrect
	e.cursor++
	step := Step{Result: res}
	if e.cursor == len(e.target) {
		e.completed = true
		step.Completion = &Completion{
			Success:     e.outstanding == 0,
			Mistakes:    e.mistakes,
			Corrections: e.corrections,
		}
	}
	return step
}

func (e *Engine) backspace() Step {
	if e.cursor == 0 {
		e.outstanding = 0
		return Step{}
	}
	e.cursor--
	e.corrections++
	e.outstanding = 0
	return Step{Result: &model.EvaluationResult{
		TargetIndex: e.cursor,
		Expected:    e.target[e.cursor],
		Outcome:     model.OutcomeCorrectedByBackspace,
	}}
}

// Cursor returns the index of the next expected grapheme.
func (e *Engine) Cursor() int { return e.cursor }

// Len returns the target length in graphemes.
func (e *Engine) Len() int { return len(e.target) }

// Completed reports whether the target has been typed to the end.
func (e *Engine) Completed() bool { return e.completed }

// Expected returns the grapheme under the cursor; ok is false at the end.
func (e *Engine) Expected() (string, bool) {
	if e.cursor >= len(e.target) {
		return "", false
	}
	return e.target[e.cursor], true
}

// Mistakes returns the number of incorrect keystrokes since Reset.
func (e *Engine) Mistakes() int { return e.mistakes }

// Outstanding returns the number of incorrect keystrokes not yet followed by
// a backspace.
func (e *Engine) Outstanding() int { return e.outstanding }

// Target returns a copy of the target graphemes.
func (e *Engine) Target() []string {
	return append([]string(nil), e.target...)
}

func splitGraphemes(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}
