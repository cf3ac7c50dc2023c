// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
)

const (
	tabOverview = iota
	tabCharTable
	tabCharCurves
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeModule
	modeChars
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	ctx context.Context
	src stats.Source
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	charTable table.Model

	mode  inputMode
	input textinput.Model

	width  int
	height int
}

// NewModel loads the first report and returns the UI model.
func NewModel(ctx context.Context, src stats.Source, cfg model.StatsConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		ctx:   ctx,
		src:   src,
		cfg:   cfg,
		tabs:  []string{"Overview", "Char Table", "Char Curves"},
		input: newInput(),
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.charTable = table.New(table.WithColumns(charColumns()), table.WithStyles(charTableStyles()))
	m.refreshReport()
	return m
}

func newInput() textinput.Model {
	in := textinput.New()
	in.CharLimit = 0
	in.Cursor.SetMode(cursor.CursorBlink)
	return in
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
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, nil
	case "right", "l":
		m.moveTab(1)
		return m, nil
	case "=":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case "/":
		return m, m.startInput(modeModule, "Module: ", m.cfg.ModuleID)
	case "enter":
		if m.activeTab == tabCharCurves {
			return m, m.startInput(modeChars, "Chars: ", strings.Join(m.report.CurveChars, ""))
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabCharTable {
		m.charTable, cmd = m.charTable.Update(msg)
		return m, cmd
	}
	m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	return m, cmd
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeModule:
			m.cfg.ModuleID = value
		case modeChars:
			m.cfg.Chars = charList(value)
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	return strings.Join([]string{header, body, m.renderFooter()}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight := 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.charTable.SetWidth(m.width)
	m.charTable.SetHeight(maxInt(1, bodyHeight-1))
	m.input.Width = maxInt(10, m.width-lipgloss.Width(m.input.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(m.filterSummary())
}

func (m *Model) filterSummary() string {
	module := m.cfg.ModuleID
	if module == "" {
		module = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprint(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: module=%s  since=%s  last=%s  window=%d", module, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderBody() string {
	if m.mode != modeBrowse {
		return m.input.View() + "\n" + headerStyle.Render("enter: apply  esc: cancel")
	}
	if m.activeTab == tabCharTable {
		if len(m.report.CharAggsAll) == 0 {
			return "No character stats found."
		}
		return m.charTable.View()
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Module: /  Quit: q"
	if m.activeTab == tabCharCurves {
		help = "Nav: left/right  Scroll: up/down  Chars: enter  Window: -/=  Module: /  Quit: q"
	}
	footer := headerStyle.Render(help)
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.ctx, m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.charTable.SetRows(charRows(m.report.CharAggsAll))
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabCharCurves].SetContent(m.renderCharCurves(width))
}

func (m *Model) renderOverview(width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, m.report.Sessions); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	if len(m.report.Sessions) > 0 {
		if err := stats.RenderCurves(&buf, m.report.Sessions, m.cfg.CurveWindow, width); err != nil {
			return fmt.Sprintf("Failed to render curves: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderCharCurves(width int) string {
	if len(m.report.Sessions) == 0 {
		return "No sessions found."
	}
	if len(m.report.CurveChars) == 0 {
		return "No characters selected. Press Enter to set chars."
	}
	var buf bytes.Buffer
	err := stats.RenderCharCurves(&buf, m.report.Sessions, m.report.PerSession, m.report.CurveChars, m.cfg.CurveWindow, width)
	if err != nil {
		return fmt.Sprintf("Failed to render character curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 7},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Total", Width: 6},
	}
}

// charRows lists the most typed characters first.
func charRows(aggs []model.CharAggregate) []table.Row {
	sorted := append([]model.CharAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		total := agg.Correct + agg.Incorrect
		acc := 0.0
		if total > 0 {
			acc = float64(agg.Correct) / float64(total) * 100
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, table.Row{
			agg.Char,
			fmt.Sprintf("%.2f%%", acc),
			fmt.Sprintf("%.1f", lat),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", total),
		})
	}
	return rows
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// charList turns typed characters into the comma list stats.ParseChars
// reads. Input that already has commas is kept as is.
func charList(input string) string {
	if strings.Contains(input, ",") {
		return input
	}
	parts := make([]string, 0, len(input))
	for _, r := range input {
		if unicode.IsSpace(r) {
			continue
		}
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ",")
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitLines(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
