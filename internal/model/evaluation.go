package model

import (
	"fmt"
	"time"
)

// Outcome classifies one evaluated keystroke.
type Outcome int

// Evaluation outcomes.
const (
	OutcomeCorrect Outcome = iota + 1
	OutcomeIncorrect
	OutcomeCorrectedByBackspace
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeCorrectedByBackspace:
		return "backspace"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome parses the String form of an Outcome.
func ParseOutcome(value string) (Outcome, error) {
	switch value {
	case "correct":
		return OutcomeCorrect, nil
	case "incorrect":
		return OutcomeIncorrect, nil
	case "backspace":
		return OutcomeCorrectedByBackspace, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", value)
}

// EvaluationResult is the verdict for one keystroke against the target text.
// Actual is empty only for OutcomeCorrectedByBackspace.
type EvaluationResult struct {
	TargetIndex int
	Expected    string
	Actual      string
	Outcome     Outcome
	At          time.Time
}

// StoredInput is the durable projection of a semantic input.
type StoredInput struct {
	At        time.Time
	Key       KeyIdentity
	Modifiers ModifierSet
	Kind      InputKind
	Grapheme  string
}

// StoredEvaluation is the durable projection of an evaluation result.
type StoredEvaluation struct {
	At          time.Time
	TargetIndex int
	Expected    string
	Actual      string
	Outcome     Outcome
}

// StoreInput projects a chord and its interpretation into a StoredInput.
func StoreInput(chord KeyChord, in SemanticInput) StoredInput {
	rec := StoredInput{
		At:        chord.PressedAt,
		Key:       chord.Key,
		Modifiers: chord.Modifiers,
		Kind:      KindOf(in),
	}
	if ch, ok := in.(Character); ok {
		rec.Grapheme = ch.Grapheme
		if !ch.ProducedAt.IsZero() {
			rec.At = ch.ProducedAt
		}
	}
	return rec
}

// StoreEvaluation projects an evaluation result into a StoredEvaluation.
func StoreEvaluation(res EvaluationResult) StoredEvaluation {
	return StoredEvaluation{
		At:          res.At,
		TargetIndex: res.TargetIndex,
		Expected:    res.Expected,
		Actual:      res.Actual,
		Outcome:     res.Outcome,
	}
}

// Validate checks the record invariants.
func (in StoredInput) Validate() error {
	switch in.Kind {
	case KindCharacter:
		if in.Grapheme == "" {
			return fmt.Errorf("character input without grapheme")
		}
	case KindBackspace, KindIgnored:
		if in.Grapheme != "" {
			return fmt.Errorf("%s input carries grapheme %q", in.Kind, in.Grapheme)
		}
	default:
		return fmt.Errorf("invalid input kind %d", int(in.Kind))
	}
	return nil
}

// Validate checks the record invariants.
func (ev StoredEvaluation) Validate() error {
	if ev.TargetIndex < 0 {
		return fmt.Errorf("negative target index %d", ev.TargetIndex)
	}
	if ev.Expected == "" {
		return fmt.Errorf("evaluation without expected grapheme")
	}
	switch ev.Outcome {
	case OutcomeCorrect, OutcomeIncorrect:
		if ev.Actual == "" {
			return fmt.Errorf("%s evaluation without actual grapheme", ev.Outcome)
		}
	case OutcomeCorrectedByBackspace:
	default:
		return fmt.Errorf("invalid outcome %d", int(ev.Outcome))
	}
	return nil
}
