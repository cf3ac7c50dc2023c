// Package layout maps physical key chords to typed characters.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/verte-zerg/keytutor/internal/model"
)

// ErrUnknownLayout is returned when a layout name cannot be resolved.
var ErrUnknownLayout = errors.New("unknown keyboard layout")

// DefaultNonTyping are the modifiers that never produce text.
const DefaultNonTyping = model.ModControl | model.ModAlt | model.ModMeta

// Row lists what a key produces per Shift/AltGr combination. An empty
// string means the combination produces nothing.
type Row struct {
	Base       string
	Shift      string
	AltGr      string
	ShiftAltGr string
}

// Layout is a lookup table from physical keys to graphemes.
type Layout struct {
	name      string
	backspace model.KeyIdentity
	nonTyping model.ModifierSet
	keys      map[model.KeyIdentity]Row
	reverse   map[string]model.KeyChord
}

// New builds a layout from its key table. The backspace key defaults to
// model.KeyBackspace and nonTyping to DefaultNonTyping when zero.
func New(name string, backspace model.KeyIdentity, nonTyping model.ModifierSet, keys map[model.KeyIdentity]Row) *Layout {
	if backspace == "" {
		backspace = model.KeyBackspace
	}
	if nonTyping == model.ModNone {
		nonTyping = DefaultNonTyping
	}
	l := &Layout{
		name:      name,
		backspace: backspace,
		nonTyping: nonTyping,
		keys:      make(map[model.KeyIdentity]Row, len(keys)),
		reverse:   map[string]model.KeyChord{},
	}
	for key, row := range keys {
		l.keys[key] = row
	}
	l.buildReverse()
	return l
}

// buildReverse indexes graphemes to the simplest chord producing them. Keys
// are visited in sorted order so the index does not depend on map order.
func (l *Layout) buildReverse() {
	keys := make([]string, 0, len(l.keys))
	for key := range l.keys {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	for _, mods := range []model.ModifierSet{model.ModNone, model.ModShift, model.ModAltGr, model.ModShift | model.ModAltGr} {
		for _, key := range keys {
			g := l.keys[model.KeyIdentity(key)].produce(mods)
			if g == "" {
				continue
			}
			if _, ok := l.reverse[g]; ok {
				continue
			}
			l.reverse[g] = model.KeyChord{Key: model.KeyIdentity(key), Modifiers: mods}
		}
	}
}

func (r Row) produce(mods model.ModifierSet) string {
	switch mods & (model.ModShift | model.ModAltGr) {
	case model.ModShift:
		return r.Shift
	case model.ModAltGr:
		return r.AltGr
	case model.ModShift | model.ModAltGr:
		return r.ShiftAltGr
	default:
		return r.Base
	}
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// BackspaceKey returns the key reserved for backspace.
func (l *Layout) BackspaceKey() model.KeyIdentity { return l.backspace }

// NonTyping returns the modifiers that suppress text production.
func (l *Layout) NonTyping() model.ModifierSet { return l.nonTyping }

// Lookup returns the grapheme produced by key under the Shift/AltGr subset
// of mods.
func (l *Layout) Lookup(key model.KeyIdentity, mods model.ModifierSet) (string, bool) {
	row, ok := l.keys[key]
	if !ok {
		return "", false
	}
	g := row.produce(mods)
	return g, g != ""
}

// ChordFor returns a chord that produces grapheme, preferring unmodified
// keys, then Shift, then AltGr.
func (l *Layout) ChordFor(grapheme string) (model.KeyChord, bool) {
	chord, ok := l.reverse[grapheme]
	return chord, ok
}

// Keys returns the number of mapped keys.
func (l *Layout) Keys() int { return len(l.keys) }

// Registry resolves layouts by name.
type Registry struct {
	layouts map[string]*Layout
}

// NewRegistry returns a registry holding the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: map[string]*Layout{}}
	r.Add(GermanQWERTZ())
	r.Add(USQWERTY())
	return r
}

// Add registers a layout, replacing any layout with the same name.
func (r *Registry) Add(l *Layout) {
	r.layouts[l.Name()] = l
}

// Get resolves a layout by name.
func (r *Registry) Get(name string) (*Layout, error) {
	l, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownLayout, name, r.Names())
	}
	return l, nil
}

// Names returns the registered layout names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
