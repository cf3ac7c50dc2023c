package model

import (
	"fmt"
	"strings"
	"time"
)

// KeyIdentity names a physical key using W3C UI Events "code" values
// such as "KeyA", "Digit1", "Backquote" or "Space".
type KeyIdentity string

// Well-known key identities.
const (
	KeyBackspace    KeyIdentity = "Backspace"
	KeySpace        KeyIdentity = "Space"
	KeyUnidentified KeyIdentity = "Unidentified"
)

// ModifierSet is a bitset of modifier keys held while a key was pressed.
type ModifierSet uint8

// Modifier flags.
const (
	ModShift ModifierSet = 1 << iota
	ModAltGr
	ModControl
	ModAlt
	ModMeta
)

// ModNone is the empty modifier set.
const ModNone ModifierSet = 0

var modifierNames = []struct {
	mod  ModifierSet
	name string
}{
	{ModShift, "shift"},
	{ModAltGr, "altgr"},
	{ModControl, "control"},
	{ModAlt, "alt"},
	{ModMeta, "meta"},
}

// Has reports whether every flag in other is set.
func (m ModifierSet) Has(other ModifierSet) bool {
	return m&other == other
}

// Any reports whether at least one flag in other is set.
func (m ModifierSet) Any(other ModifierSet) bool {
	return m&other != 0
}

// String renders the set as "shift+altgr"; the empty set renders as "".
func (m ModifierSet) String() string {
	parts := make([]string, 0, len(modifierNames))
	for _, entry := range modifierNames {
		if m.Has(entry.mod) {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseModifier parses a single modifier name.
func ParseModifier(name string) (ModifierSet, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "ctrl":
		return ModControl, nil
	case "option":
		return ModAlt, nil
	case "super", "cmd":
		return ModMeta, nil
	}
	for _, entry := range modifierNames {
		if entry.name == name {
			return entry.mod, nil
		}
	}
	return ModNone, fmt.Errorf("unknown modifier %q", name)
}

// ParseModifiers parses the String form back into a set.
func ParseModifiers(value string) (ModifierSet, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ModNone, nil
	}
	var set ModifierSet
	for _, part := range strings.Split(value, "+") {
		mod, err := ParseModifier(part)
		if err != nil {
			return ModNone, err
		}
		set |= mod
	}
	return set, nil
}

// KeyChord is a physical key plus the modifiers active when it was pressed.
type KeyChord struct {
	Key       KeyIdentity
	Modifiers ModifierSet
	PressedAt time.Time
}

// SemanticInput is the layout-resolved meaning of a key chord. The
// implementations are Character, Backspace and Ignored.
type SemanticInput interface {
	semanticInput()
}

// Character is a produced grapheme. Use NewCharacter to build one.
type Character struct {
	Grapheme   string
	ProducedAt time.Time
}

// Backspace retreats the cursor by one grapheme.
type Backspace struct{}

// Ignored carries no typing meaning.
type Ignored struct{}

func (Character) semanticInput() {}
func (Backspace) semanticInput() {}
func (Ignored) semanticInput()   {}

// NewCharacter returns a Character input. An empty grapheme is a programmer
// error and panics.
func NewCharacter(grapheme string, at time.Time) Character {
	if grapheme == "" {
		panic("model: character input with empty grapheme")
	}
	return Character{Grapheme: grapheme, ProducedAt: at}
}

// InputKind discriminates semantic inputs in storage.
type InputKind int

// Input kinds.
const (
	KindIgnored InputKind = iota
	KindCharacter
	KindBackspace
)

func (k InputKind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindBackspace:
		return "backspace"
	default:
		return "ignored"
	}
}

// ParseInputKind parses the String form of an InputKind.
func ParseInputKind(value string) (InputKind, error) {
	switch value {
	case "character":
		return KindCharacter, nil
	case "backspace":
		return KindBackspace, nil
	case "ignored":
		return KindIgnored, nil
	}
	return KindIgnored, fmt.Errorf("unknown input kind %q", value)
}

// KindOf reports the kind of a semantic input. A nil input is Ignored.
func KindOf(in SemanticInput) InputKind {
	switch in.(type) {
	case Character, *Character:
		return KindCharacter
	case Backspace, *Backspace:
		return KindBackspace
	default:
		return KindIgnored
	}
}
