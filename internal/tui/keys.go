package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keytutor/internal/layout"
	"github.com/verte-zerg/keytutor/internal/model"
)

type keyMap struct {
	Quit    key.Binding
	Restart key.Binding
	Next    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Restart: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "restart")),
		Next:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next lesson")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Restart, k.Next}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// chordMapper turns terminal key messages back into physical key chords.
// Terminals deliver characters, not key positions, so printable runes are
// looked up in the active layout's reverse table.
type chordMapper struct {
	layout *layout.Layout
}

func (c chordMapper) chords(msg tea.KeyMsg, at time.Time) []model.KeyChord {
	var alt model.ModifierSet
	if msg.Alt {
		alt = model.ModAlt
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		return []model.KeyChord{{Key: c.layout.BackspaceKey(), Modifiers: alt, PressedAt: at}}
	case tea.KeySpace:
		return []model.KeyChord{c.runeChord(' ', alt, at)}
	case tea.KeyRunes:
		out := make([]model.KeyChord, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			out = append(out, c.runeChord(r, alt, at))
		}
		return out
	}
	if name, ok := strings.CutPrefix(msg.String(), "ctrl+"); ok && len(name) == 1 {
		letter := strings.ToUpper(name)
		if letter[0] >= 'A' && letter[0] <= 'Z' {
			return []model.KeyChord{{Key: model.KeyIdentity("Key" + letter), Modifiers: model.ModControl | alt, PressedAt: at}}
		}
	}
	return nil
}

func (c chordMapper) runeChord(r rune, extra model.ModifierSet, at time.Time) model.KeyChord {
	chord, ok := c.layout.ChordFor(string(r))
	if !ok {
		chord = model.KeyChord{Key: model.KeyUnidentified}
	}
	chord.Modifiers |= extra
	chord.PressedAt = at
	return chord
}
