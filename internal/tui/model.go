// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/engine"
	"github.com/verte-zerg/keytutor/internal/layout"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
	statsPkg "github.com/verte-zerg/keytutor/internal/stats"
)

// Navigator picks the lesson that follows a finished one.
type Navigator interface {
	Next(moduleID, lessonID string) (string, bool)
}

// History supplies earlier sessions for the footer.
type History interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Options wires a Model.
type Options struct {
	Coordinator *session.Coordinator
	Lessons     Navigator
	History     History
	Layout      *layout.Layout
	ModuleID    string
	LessonID    string
	Logger      *zap.Logger
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctx     context.Context
	coord   *session.Coordinator
	lessons Navigator
	history History
	mapper  chordMapper
	keys    keyMap
	help    help.Model
	logger  *zap.Logger
	now     func() time.Time

	moduleID string
	lessonID string

	width  int
	height int

	wrong      string
	missed     map[int]bool
	completion *engine.Completion
	status     string

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPM       float64
	allAcc       float64
	allCorrect   int
	allIncorrect int
	allDuration  int64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8A33D"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel starts the first session and returns the UI around it.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		ctx:      ctx,
		coord:    opts.Coordinator,
		lessons:  opts.Lessons,
		history:  opts.History,
		mapper:   chordMapper{layout: opts.Layout},
		keys:     defaultKeyMap(),
		help:     help.New(),
		logger:   logger,
		now:      time.Now,
		moduleID: opts.ModuleID,
	}
	if err := m.start(opts.LessonID); err != nil {
		return nil, err
	}
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.coord.Abandon()
		m.restart(m.lessonID)
		return m, nil
	case key.Matches(msg, m.keys.Next):
		if m.completion != nil {
			m.advance()
		}
		return m, nil
	}
	if !m.coord.IsSessionRunning() {
		return m, nil
	}
	for _, chord := range m.mapper.chords(msg, m.now()) {
		m.process(chord)
	}
	return m, nil
}

func (m *Model) process(chord model.KeyChord) {
	fb, err := m.coord.ProcessInput(m.ctx, chord)
	if err != nil {
		m.status = err.Error()
	}
	if fb.Result != nil {
		switch fb.Result.Outcome {
		case model.OutcomeIncorrect:
			m.wrong = fb.Result.Actual
			m.missed[fb.Result.TargetIndex] = true
		default:
			m.wrong = ""
		}
	}
	if fb.Completion != nil {
		m.finish(*fb.Completion)
	}
}

func (m *Model) finish(c engine.Completion) {
	m.completion = &c
	agg := m.coord.Session().Aggregate()
	wpm, _, acc := statsPkg.SessionMetrics(agg.Correct, agg.Incorrect, agg.DurationMs)
	m.lastWPM = wpm
	m.lastAcc = acc
	m.hasLast = true
	m.allCorrect += agg.Correct
	m.allIncorrect += agg.Incorrect
	m.allDuration += agg.DurationMs
	m.recomputeAllTime()
	if m.status == "" {
		verdict := "Clean run"
		if !c.Success {
			verdict = "Finished with uncorrected mistakes"
		}
		m.status = fmt.Sprintf("%s: %d mistakes, %d corrections", verdict, c.Mistakes, c.Corrections)
	}
}

// quit records a session that saw input as unfinished and drops an
// untouched one.
func (m *Model) quit() {
	if !m.coord.IsSessionRunning() {
		return
	}
	if len(m.coord.Session().Inputs()) == 0 {
		m.coord.Abandon()
		return
	}
	if _, err := m.coord.EndSession(m.ctx); err != nil {
		m.logger.Error("failed to record unfinished session", zap.Error(err))
	}
}

func (m *Model) advance() {
	next, ok := m.lessons.Next(m.moduleID, m.lessonID)
	if !ok {
		next = m.lessonID
	}
	m.restart(next)
}

func (m *Model) restart(lessonID string) {
	if err := m.start(lessonID); err != nil {
		m.status = err.Error()
		m.logger.Error("failed to start lesson", zap.String("lesson", lessonID), zap.Error(err))
	}
}

func (m *Model) start(lessonID string) error {
	s, err := m.coord.StartSession(m.ctx, m.moduleID, lessonID)
	if err != nil {
		return err
	}
	m.lessonID = s.LessonID()
	m.wrong = ""
	m.missed = map[int]bool{}
	m.completion = nil
	m.status = ""
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	target := m.coord.Target()
	if len(target) == 0 {
		return ""
	}
	styled := buildStyledGraphemes(typingState{
		target:    target,
		cursor:    m.coord.Cursor(),
		completed: m.completion != nil,
		wrong:     m.wrong,
		missed:    m.missed,
	})
	if m.width == 0 || m.height == 0 {
		return renderStyled(styled)
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	title := titleStyle.Render(m.coord.Lesson().Metadata().Title)
	text := lipgloss.NewStyle().Width(contentWidth).Render(wrapStyled(styled, contentWidth))
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", text)
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", footerStyle.Render(m.status))
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	return body + "\n" + footer + "\n" + helpLine
}

func (m *Model) loadFooterStats() {
	if m.history == nil {
		return
	}
	sessions, err := m.history.ListSessions(m.ctx, model.StatsConfig{ModuleID: m.moduleID})
	if err != nil {
		m.logger.Warn("failed to load session stats", zap.Error(err))
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM, _, m.lastAcc = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
		m.allDuration += s.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	m.allWPM, _, m.allAcc = statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
}

func (m *Model) renderFooter() string {
	total := len(m.coord.Target())
	if total == 0 {
		return ""
	}
	cursor := m.coord.Cursor()
	if m.completion != nil {
		cursor = total
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", cursor*100/total),
		fmt.Sprintf("Mistakes %d", m.coord.Mistakes()),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc*100))
	}
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc*100))
	return footerStyle.Render(strings.Join(segments, "  "))
}
