package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keytutor/internal/layout"
	"github.com/verte-zerg/keytutor/internal/lesson"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
)

type fakeLessons struct {
	texts map[string]string
	order []string
}

func (f fakeLessons) Lesson(_ context.Context, moduleID, lessonID string) (lesson.Lesson, error) {
	if lessonID == "" {
		lessonID = f.order[0]
	}
	text, ok := f.texts[lessonID]
	if !ok {
		return lesson.Lesson{}, fmt.Errorf("%s: %w", lessonID, session.ErrNotFound)
	}
	return lesson.FromText(lesson.Metadata{Title: lessonID, ModuleID: moduleID}, text, 40)
}

func (f fakeLessons) Next(_, lessonID string) (string, bool) {
	for i, id := range f.order {
		if id == lessonID && i+1 < len(f.order) {
			return f.order[i+1], true
		}
	}
	return "", false
}

type fakeRecorder struct {
	saved []*model.TrainingSession
}

func (r *fakeRecorder) SaveSession(_ context.Context, s *model.TrainingSession) error {
	r.saved = append(r.saved, s)
	return nil
}

type fakeHistory []model.SessionAggregate

func (h fakeHistory) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	return h, nil
}

func newTestModel(t *testing.T, history History) (*Model, *fakeRecorder) {
	t.Helper()
	lessons := fakeLessons{
		texts: map[string]string{"one": "ab cd", "two": "ef"},
		order: []string{"one", "two"},
	}
	rec := &fakeRecorder{}
	l := layout.USQWERTY()
	clock := time.Unix(0, 0)
	coord := session.New(lessons, rec, layout.NewInterpreter(l), session.WithClock(func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}))
	m, err := NewModel(context.Background(), Options{
		Coordinator: coord,
		Lessons:     lessons,
		History:     history,
		Layout:      l,
		ModuleID:    "basics",
	})
	require.NoError(t, err)
	m.now = func() time.Time { return time.Time{} }
	return m, rec
}

func typeText(m *Model, text string) {
	for _, r := range text {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{r}}
		}
		m.Update(msg)
	}
}

func TestModelTypesLessonToCompletion(t *testing.T) {
	m, rec := newTestModel(t, nil)
	assert.Equal(t, "one", m.lessonID)

	typeText(m, "abx")
	assert.Equal(t, "x", m.wrong)
	assert.True(t, m.missed[2])
	assert.Equal(t, 2, m.coord.Cursor())

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.wrong)
	assert.Equal(t, 1, m.coord.Cursor())

	typeText(m, "b cd")
	require.NotNil(t, m.completion)
	assert.True(t, m.completion.Success)
	assert.Equal(t, "Clean run: 1 mistakes, 1 corrections", m.status)
	require.Len(t, rec.saved, 1)
	assert.True(t, m.hasLast)
	assert.Greater(t, m.lastWPM, 0.0)

	// Further keys are ignored until the next lesson starts.
	typeText(m, "zz")
	assert.Len(t, rec.saved[0].Inputs(), 8)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "two", m.lessonID)
	assert.Nil(t, m.completion)
	assert.Empty(t, m.missed)
	assert.True(t, m.coord.IsSessionRunning())
}

func TestModelEnterIgnoredWhileTyping(t *testing.T) {
	m, _ := newTestModel(t, nil)
	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "one", m.lessonID)
	assert.Equal(t, 1, m.coord.Cursor())
}

func TestModelLastLessonRepeats(t *testing.T) {
	m, _ := newTestModel(t, nil)
	require.NoError(t, m.start("two"))
	typeText(m, "ef")
	require.NotNil(t, m.completion)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "two", m.lessonID)
	assert.Equal(t, 0, m.coord.Cursor())
}

func TestModelRestart(t *testing.T) {
	m, rec := newTestModel(t, nil)
	typeText(m, "ab")
	first := m.coord.Session()
	m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	assert.NotSame(t, first, m.coord.Session())
	assert.Equal(t, 0, m.coord.Cursor())
	assert.Empty(t, rec.saved)
}

func TestModelQuitRecordsUnfinishedSession(t *testing.T) {
	m, rec := newTestModel(t, nil)
	typeText(m, "a")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Len(t, rec.saved, 1)
	assert.False(t, rec.saved[0].IsCompleted())
}

func TestModelQuitDropsUntouchedSession(t *testing.T) {
	m, rec := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Empty(t, rec.saved)
	assert.False(t, m.coord.IsSessionRunning())
}

func TestModelControlChordsDoNotType(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, 0, m.coord.Cursor())
	assert.Empty(t, m.coord.Session().Inputs())
}

func TestNewModelUnknownLesson(t *testing.T) {
	lessons := fakeLessons{texts: map[string]string{}, order: []string{"missing"}}
	l := layout.USQWERTY()
	coord := session.New(lessons, &fakeRecorder{}, layout.NewInterpreter(l))
	_, err := NewModel(context.Background(), Options{Coordinator: coord, Lessons: lessons, Layout: l, ModuleID: "basics"})
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestViewRendersTitleAndFooter(t *testing.T) {
	m, _ := newTestModel(t, fakeHistory{{Correct: 50, Incorrect: 0, DurationMs: 60_000}})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	out := m.View()
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "Last 10.0 WPM")
	assert.Contains(t, out, "restart")
}
