package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/generator"
	"github.com/verte-zerg/keytutor/internal/lesson"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
)

// PracticeModuleID is the id of the generated module.
const PracticeModuleID = "practice"

// Generated lessons of the practice module.
const (
	LessonWords = "words"
	LessonWeak  = "weak"
)

// minWeakSamples is how often a character must have been typed before it
// can be picked as weak.
const minWeakSamples = 5

// WeakSource reports per-character stats over recent sessions.
type WeakSource interface {
	GetWeakChars(ctx context.Context, window int, moduleID string) ([]model.CharAggregate, error)
}

// Practice generates lessons from a word list.
type Practice struct {
	Words     []string
	Generator *generator.Generator
	Options   generator.Options

	// FocusWeak applies weak-character weighting to the words lesson too.
	FocusWeak  bool
	Weak       WeakSource
	WeakTop    int
	WeakWindow int

	Logger *zap.Logger
}

func practiceModule() Module {
	return Module{
		ID:          PracticeModuleID,
		Title:       "Practice",
		Description: "Generated from the word list.",
		Source:      "generated",
		Lessons: []LessonEntry{
			{ID: LessonWords, Title: "Random words", Description: "Words drawn from the word list."},
			{ID: LessonWeak, Title: "Weak characters", Description: "Words rich in your least accurate characters."},
		},
	}
}

func (p *Practice) lesson(ctx context.Context, entry LessonEntry, segmentLength int) (lesson.Lesson, error) {
	if len(p.Words) == 0 {
		return lesson.Lesson{}, fmt.Errorf("practice %q: %w", entry.ID, lesson.ErrNoContent)
	}
	opts := p.Options
	opts.Weak = nil
	if entry.ID == LessonWeak || p.FocusWeak {
		weak, err := p.weakChars(ctx)
		if err != nil {
			return lesson.Lesson{}, err
		}
		opts.Weak = weak
		if opts.WeakFactor <= 0 {
			opts.WeakFactor = 1
		}
	}
	text := p.Generator.Text(p.Words, opts)
	meta := lesson.Metadata{
		Title:       entry.Title,
		Description: entry.Description,
		ModuleID:    PracticeModuleID,
		Tags:        opts.Weak,
	}
	return lesson.FromText(meta, text, segmentLength)
}

func (p *Practice) weakChars(ctx context.Context) ([]string, error) {
	if p.Weak == nil {
		return nil, nil
	}
	aggs, err := p.Weak.GetWeakChars(ctx, p.WeakWindow, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load weak characters: %w", err)
	}
	weak := stats.SelectWeakChars(aggs, p.WeakTop, minWeakSamples)
	if p.Logger != nil {
		p.Logger.Debug("weak characters selected", zap.Strings("chars", weak), zap.Int("window", p.WeakWindow))
	}
	return weak, nil
}
