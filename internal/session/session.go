// Package session runs one typing session at a time: it resolves the
// lesson, feeds key chords through the layout interpreter and the evaluation
// engine, records every keystroke and hands the finished session to a
// recorder.
//
// A Coordinator is not safe for concurrent use. The presentation layer must
// deliver key chords one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/engine"
	"github.com/verte-zerg/keytutor/internal/layout"
	"github.com/verte-zerg/keytutor/internal/lesson"
	"github.com/verte-zerg/keytutor/internal/model"
)

// ErrNotFound is returned by a LessonSource for unknown module or lesson ids.
var ErrNotFound = errors.New("lesson not found")

// LessonSource resolves lessons by module and lesson id.
type LessonSource interface {
	Lesson(ctx context.Context, moduleID, lessonID string) (lesson.Lesson, error)
}

// Recorder persists finished sessions.
type Recorder interface {
	SaveSession(ctx context.Context, s *model.TrainingSession) error
}

// Feedback is the outcome of one ProcessInput call. Input is nil when the
// call was a no-op.
type Feedback struct {
	Input      model.SemanticInput
	Result     *model.EvaluationResult
	Completion *engine.Completion
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID session ids.
func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// Coordinator owns the active session and its evaluation engine.
type Coordinator struct {
	lessons  LessonSource
	recorder Recorder
	interp   *layout.Interpreter
	engine   *engine.Engine
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	active *model.TrainingSession
	lesson lesson.Lesson
}

// New returns an idle coordinator.
func New(lessons LessonSource, recorder Recorder, interp *layout.Interpreter, opts ...Option) *Coordinator {
	c := &Coordinator{
		lessons:  lessons,
		recorder: recorder,
		interp:   interp,
		engine:   engine.New(),
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession resolves the lesson and starts a fresh session on it. An
// in-progress session is discarded without being recorded. On error the
// previous state is left untouched.
func (c *Coordinator) StartSession(ctx context.Context, moduleID, lessonID string) (*model.TrainingSession, error) {
	l, err := c.lessons.Lesson(ctx, moduleID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lesson %s/%s: %w", moduleID, lessonID, err)
	}
	if l.IsEmpty() {
		return nil, fmt.Errorf("failed to resolve lesson %s/%s: %w", moduleID, lessonID, lesson.ErrNoContent)
	}
	if c.IsSessionRunning() {
		c.logger.Info("discarding unfinished session", zap.String("session", c.active.ID()))
	}

	c.lesson = l
	c.active = model.NewTrainingSession(c.newID(), moduleID, lessonID, c.now())
	c.engine.Reset(l.TargetText())
	c.logger.Info("session started",
		zap.String("session", c.active.ID()),
		zap.String("module", moduleID),
		zap.String("lesson", lessonID),
		zap.Int("characters", l.CharacterCount()),
		zap.String("layout", c.interp.Layout().Name()),
	)
	return c.active, nil
}

// ProcessInput evaluates one key chord. It does nothing when no session is
// running. On completion the session is finalized and recorded; a recorder
// failure is returned alongside the feedback.
func (c *Coordinator) ProcessInput(ctx context.Context, chord model.KeyChord) (Feedback, error) {
	if !c.IsSessionRunning() {
		return Feedback{}, nil
	}
	if chord.PressedAt.IsZero() {
		chord.PressedAt = c.now()
	}

	in := c.interp.Interpret(chord)
	if model.KindOf(in) == model.KindIgnored {
		return Feedback{Input: in}, nil
	}
	c.active.AppendInput(model.StoreInput(chord, in))

	step := c.engine.Process(in)
	fb := Feedback{Input: in, Result: step.Result, Completion: step.Completion}
	if step.Result != nil {
		if step.Result.At.IsZero() {
			step.Result.At = chord.PressedAt
		}
		c.active.AppendEvaluation(model.StoreEvaluation(*step.Result))
	}
	if step.Completion == nil {
		return fb, nil
	}

	c.active.SetCompleted(true, c.now())
	c.logger.Info("session completed",
		zap.String("session", c.active.ID()),
		zap.Bool("success", step.Completion.Success),
		zap.Int("mistakes", step.Completion.Mistakes),
		zap.Int("corrections", step.Completion.Corrections),
		zap.Duration("duration", c.active.Duration()),
	)
	if err := c.recorder.SaveSession(ctx, c.active); err != nil {
		c.logger.Error("failed to record session", zap.String("session", c.active.ID()), zap.Error(err))
		return fb, fmt.Errorf("failed to record session: %w", err)
	}
	return fb, nil
}

// EndSession records the running session as unfinished and goes idle. It
// returns the recorded session, or nil when nothing was running.
func (c *Coordinator) EndSession(ctx context.Context) (*model.TrainingSession, error) {
	if !c.IsSessionRunning() {
		return nil, nil
	}
	s := c.active
	c.active = nil
	c.logger.Info("session ended early", zap.String("session", s.ID()), zap.Int("cursor", c.engine.Cursor()))
	if err := c.recorder.SaveSession(ctx, s); err != nil {
		c.logger.Error("failed to record session", zap.String("session", s.ID()), zap.Error(err))
		return s, fmt.Errorf("failed to record session: %w", err)
	}
	return s, nil
}

// Abandon drops the current session without recording it. A completed
// session has already been recorded and is only released.
func (c *Coordinator) Abandon() {
	if c.IsSessionRunning() {
		c.logger.Info("session abandoned", zap.String("session", c.active.ID()))
	}
	c.active = nil
}

// IsSessionRunning reports whether a session accepts input.
func (c *Coordinator) IsSessionRunning() bool {
	return c.active != nil && !c.active.IsCompleted()
}

// Session returns the current session, finished or not, or nil.
func (c *Coordinator) Session() *model.TrainingSession { return c.active }

// Lesson returns the lesson of the current session.
func (c *Coordinator) Lesson() lesson.Lesson { return c.lesson }

// Cursor returns the engine cursor in graphemes.
func (c *Coordinator) Cursor() int { return c.engine.Cursor() }

// Expected returns the grapheme under the cursor.
func (c *Coordinator) Expected() (string, bool) { return c.engine.Expected() }

// Outstanding returns the number of uncorrected mistakes.
func (c *Coordinator) Outstanding() int { return c.engine.Outstanding() }

// Mistakes returns the number of incorrect keystrokes in this session.
func (c *Coordinator) Mistakes() int { return c.engine.Mistakes() }

// Target returns the target graphemes of the current lesson.
func (c *Coordinator) Target() []string { return c.engine.Target() }
