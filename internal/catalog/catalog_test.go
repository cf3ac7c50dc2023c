package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keytutor/internal/generator"
	"github.com/verte-zerg/keytutor/internal/lesson"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
)

func writeModule(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func moduleIDs(c *Catalog) []string {
	var ids []string
	for _, m := range c.Modules() {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestLoadBuiltins(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"home-row", "top-row", "numbers", "german"}, moduleIDs(c))

	m, ok := c.Module("german")
	require.True(t, ok)
	assert.Equal(t, "de-qwertz", m.Layout)
	assert.Equal(t, "builtin", m.Source)
}

func TestLessonFromText(t *testing.T) {
	c, err := Load("", WithSegmentLength(20))
	require.NoError(t, err)
	l, err := c.Lesson(context.Background(), "home-row", "fj")
	require.NoError(t, err)
	assert.Equal(t, "F and J", l.Metadata().Title)
	assert.Equal(t, "home-row", l.Metadata().ModuleID)
	assert.Equal(t, []string{"home-row", "index"}, l.Metadata().Tags)
	for _, seg := range l.Segments() {
		assert.LessOrEqual(t, len([]rune(seg)), 20)
	}
	assert.True(t, strings.HasPrefix(l.TargetText(), "fff jjj"))
}

func TestLessonFromSegments(t *testing.T) {
	c, err := Load("", WithSegmentLength(5))
	require.NoError(t, err)
	l, err := c.Lesson(context.Background(), "numbers", "digits")
	require.NoError(t, err)
	// Written segments are kept even when longer than the wrap width.
	assert.Equal(t, "12 34 56 78 90", l.Segments()[0])
	assert.Equal(t, 3, l.SegmentCount())
}

func TestLessonDefaultsToFirst(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	l, err := c.Lesson(context.Background(), "top-row", "")
	require.NoError(t, err)
	assert.Equal(t, "E, I, R and U", l.Metadata().Title)
}

func TestLessonNotFound(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Lesson(ctx, "nope", "fj")
	assert.True(t, errors.Is(err, session.ErrNotFound))
	_, err = c.Lesson(ctx, "home-row", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = c.Lesson(ctx, PracticeModuleID, LessonWords)
	assert.True(t, errors.Is(err, ErrNotFound), "practice is disabled without WithPractice")
}

func TestNext(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	next, ok := c.Next("home-row", "fj")
	assert.True(t, ok)
	assert.Equal(t, "dk", next)
	_, ok = c.Next("home-row", "words")
	assert.False(t, ok)
	_, ok = c.Next("missing", "fj")
	assert.False(t, ok)
	first, ok := c.FirstLesson("numbers")
	assert.True(t, ok)
	assert.Equal(t, "digits", first)
}

func TestUserModulesOverrideBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "home.yaml", `
id: home-row
title: My home row
lessons:
  - id: mine
    text: asdf jkl
`)
	writeModule(t, dir, "extra.yml", `
id: extra
title: Extra
lessons:
  - id: one
    title: One
    text: hello there
`)
	writeModule(t, dir, "notes.txt", "ignored")

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"home-row", "top-row", "numbers", "german", "extra"}, moduleIDs(c))

	m, _ := c.Module("home-row")
	assert.Equal(t, "My home row", m.Title)
	assert.Equal(t, filepath.Join(dir, "home.yaml"), m.Source)

	l, err := c.Lesson(context.Background(), "home-row", "mine")
	require.NoError(t, err)
	// A lesson without a title falls back to its id.
	assert.Equal(t, "mine", l.Metadata().Title)
}

func TestLoadMissingUserDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
}

func TestParseModuleRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing id":    "title: x\nlessons:\n  - id: a\n    text: a\n",
		"no lessons":    "id: m\ntitle: x\n",
		"duplicate":     "id: m\nlessons:\n  - id: a\n    text: a\n  - id: a\n    text: b\n",
		"both bodies":   "id: m\nlessons:\n  - id: a\n    text: a\n    segments: [b]\n",
		"reserved id":   "id: practice\nlessons:\n  - id: a\n    text: a\n",
		"unknown field": "id: m\ncolour: red\nlessons:\n  - id: a\n    text: a\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseModule([]byte(body), "test.yaml")
			require.Error(t, err)
		})
	}
	_, err := ParseModule([]byte(cases["duplicate"]), "test.yaml")
	assert.True(t, errors.Is(err, ErrInvalidModule))
}

func TestEmptyLessonText(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "empty.yaml", "id: empty\nlessons:\n  - id: blank\n    text: \"   \"\n")
	c, err := Load(dir)
	require.NoError(t, err)
	_, err = c.Lesson(context.Background(), "empty", "blank")
	assert.True(t, errors.Is(err, lesson.ErrNoContent))
}

type fakeWeak struct {
	aggs   []model.CharAggregate
	window int
}

func (f *fakeWeak) GetWeakChars(_ context.Context, window int, _ string) ([]model.CharAggregate, error) {
	f.window = window
	return f.aggs, nil
}

func TestPracticeModule(t *testing.T) {
	weak := &fakeWeak{aggs: []model.CharAggregate{
		{Char: "q", Correct: 1, Incorrect: 9},
		{Char: "e", Correct: 10, Incorrect: 0},
	}}
	c, err := Load("", WithSegmentLength(30), WithPractice(&Practice{
		Words:      []string{"queue", "tree", "sea"},
		Generator:  generator.NewWithSeed(1),
		Options:    generator.Options{Count: 12, WeakFactor: 5},
		Weak:       weak,
		WeakTop:    1,
		WeakWindow: 7,
	}))
	require.NoError(t, err)
	assert.Equal(t, PracticeModuleID, moduleIDs(c)[len(moduleIDs(c))-1])

	ctx := context.Background()
	words, err := c.Lesson(ctx, PracticeModuleID, LessonWords)
	require.NoError(t, err)
	assert.Equal(t, PracticeModuleID, words.Metadata().ModuleID)
	assert.Len(t, strings.Fields(words.TargetText()), 12)
	assert.Zero(t, weak.window, "words lesson must not consult stats unless focusing")

	l, err := c.Lesson(ctx, PracticeModuleID, LessonWeak)
	require.NoError(t, err)
	assert.Equal(t, 7, weak.window)
	assert.Equal(t, []string{"q"}, l.Metadata().Tags)
	for _, seg := range l.Segments() {
		assert.LessOrEqual(t, len([]rune(seg)), 30)
	}

	next, ok := c.Next(PracticeModuleID, LessonWeak)
	assert.True(t, ok)
	assert.Equal(t, LessonWeak, next)
}

func TestPracticeWithoutWords(t *testing.T) {
	c, err := Load("", WithPractice(&Practice{Generator: generator.NewWithSeed(1)}))
	require.NoError(t, err)
	_, err = c.Lesson(context.Background(), PracticeModuleID, LessonWords)
	assert.True(t, errors.Is(err, lesson.ErrNoContent))
}
