package model

import (
	"fmt"
	"time"
)

// TrainingSession records one attempt at a lesson. Completion state and the
// input/evaluation logs change only through its methods so that EndedAt is
// set exactly when the session is completed.
type TrainingSession struct {
	id        string
	moduleID  string
	lessonID  string
	startedAt time.Time
	endedAt   time.Time
	completed bool

	inputs      []StoredInput
	evaluations []StoredEvaluation
}

// NewTrainingSession starts an empty, incomplete session.
func NewTrainingSession(id, moduleID, lessonID string, startedAt time.Time) *TrainingSession {
	return &TrainingSession{
		id:        id,
		moduleID:  moduleID,
		lessonID:  lessonID,
		startedAt: startedAt,
	}
}

// RestoreSession rebuilds a session loaded from storage.
func RestoreSession(id, moduleID, lessonID string, startedAt time.Time, endedAt *time.Time, completed bool, inputs []StoredInput, evaluations []StoredEvaluation) (*TrainingSession, error) {
	if endedAt != nil && !completed {
		return nil, fmt.Errorf("session %s: ended_at set on incomplete session", id)
	}
	if completed && endedAt == nil {
		return nil, fmt.Errorf("session %s: completed session without ended_at", id)
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("session %s: input %d: %w", id, i, err)
		}
	}
	for i, ev := range evaluations {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("session %s: evaluation %d: %w", id, i, err)
		}
	}
	s := NewTrainingSession(id, moduleID, lessonID, startedAt)
	s.completed = completed
	if endedAt != nil {
		s.endedAt = *endedAt
	}
	s.inputs = append([]StoredInput(nil), inputs...)
	s.evaluations = append([]StoredEvaluation(nil), evaluations...)
	return s, nil
}

// ID returns the session identifier.
func (s *TrainingSession) ID() string { return s.id }

// ModuleID returns the lesson module identifier.
func (s *TrainingSession) ModuleID() string { return s.moduleID }

// LessonID returns the lesson identifier.
func (s *TrainingSession) LessonID() string { return s.lessonID }

// StartedAt returns the session start time.
func (s *TrainingSession) StartedAt() time.Time { return s.startedAt }

// EndedAt returns the end time; ok is false until the session is completed.
func (s *TrainingSession) EndedAt() (time.Time, bool) {
	if !s.completed {
		return time.Time{}, false
	}
	return s.endedAt, true
}

// IsCompleted reports whether the lesson was finished.
func (s *TrainingSession) IsCompleted() bool { return s.completed }

// SetCompleted updates completion state. Marking the session incomplete
// clears the end time.
func (s *TrainingSession) SetCompleted(done bool, at time.Time) {
	s.completed = done
	if done {
		s.endedAt = at
		return
	}
	s.endedAt = time.Time{}
}

// Inputs returns a copy of the input log.
func (s *TrainingSession) Inputs() []StoredInput {
	return append([]StoredInput(nil), s.inputs...)
}

// Evaluations returns a copy of the evaluation log.
func (s *TrainingSession) Evaluations() []StoredEvaluation {
	return append([]StoredEvaluation(nil), s.evaluations...)
}

// AppendInput appends to the input log. Invalid records panic.
func (s *TrainingSession) AppendInput(in StoredInput) {
	if err := in.Validate(); err != nil {
		panic(fmt.Sprintf("model: append input: %v", err))
	}
	s.inputs = append(s.inputs, in)
}

// AppendEvaluation appends to the evaluation log. Invalid records panic.
func (s *TrainingSession) AppendEvaluation(ev StoredEvaluation) {
	if err := ev.Validate(); err != nil {
		panic(fmt.Sprintf("model: append evaluation: %v", err))
	}
	s.evaluations = append(s.evaluations, ev)
}

// Duration is the time between start and end, or zero while incomplete.
func (s *TrainingSession) Duration() time.Duration {
	if !s.completed {
		return 0
	}
	return s.endedAt.Sub(s.startedAt)
}

// Aggregate tallies the evaluation log. Spaces are left out of the
// correct/incorrect counts, matching the per-character stats.
func (s *TrainingSession) Aggregate() SessionAggregate {
	agg := SessionAggregate{
		SessionID:  s.id,
		ModuleID:   s.moduleID,
		LessonID:   s.lessonID,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
		Completed:  s.completed,
		DurationMs: s.Duration().Milliseconds(),
	}
	for _, ev := range s.evaluations {
		switch ev.Outcome {
		case OutcomeCorrectedByBackspace:
			agg.Corrections++
		case OutcomeCorrect:
			if ev.Expected != " " {
				agg.Correct++
			}
		case OutcomeIncorrect:
			if ev.Expected != " " {
				agg.Incorrect++
			}
		}
	}
	return agg
}
