package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keytutor/internal/model"
)

func chord(key model.KeyIdentity, mods model.ModifierSet) model.KeyChord {
	return model.KeyChord{Key: key, Modifiers: mods, PressedAt: time.Unix(42, 0)}
}

func TestInterpretGerman(t *testing.T) {
	interp := NewInterpreter(GermanQWERTZ())
	at := time.Unix(42, 0)

	tests := []struct {
		name  string
		chord model.KeyChord
		want  model.SemanticInput
	}{
		{"base letter", chord("KeyA", model.ModNone), model.NewCharacter("a", at)},
		{"shifted letter", chord("KeyA", model.ModShift), model.NewCharacter("A", at)},
		{"qwertz swap", chord("KeyY", model.ModNone), model.NewCharacter("z", at)},
		{"altgr", chord("KeyQ", model.ModAltGr), model.NewCharacter("@", at)},
		{"umlaut", chord("Semicolon", model.ModNone), model.NewCharacter("ö", at)},
		{"shift altgr defined", chord("Minus", model.ModShift|model.ModAltGr), model.NewCharacter("ẞ", at)},
		{"shift altgr undefined", chord("KeyQ", model.ModShift|model.ModAltGr), model.Ignored{}},
		{"altgr undefined", chord("KeyA", model.ModAltGr), model.Ignored{}},
		{"space", chord(model.KeySpace, model.ModNone), model.NewCharacter(" ", at)},
		{"control c", chord("KeyC", model.ModControl), model.Ignored{}},
		{"control backspace", chord(model.KeyBackspace, model.ModControl), model.Ignored{}},
		{"alt letter", chord("KeyA", model.ModAlt), model.Ignored{}},
		{"backspace", chord(model.KeyBackspace, model.ModNone), model.Backspace{}},
		{"shift backspace", chord(model.KeyBackspace, model.ModShift), model.Backspace{}},
		{"unknown key", chord("F5", model.ModNone), model.Ignored{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, interp.Interpret(tc.chord))
		})
	}
}

func TestInterpretIsDeterministic(t *testing.T) {
	for _, l := range []*Layout{GermanQWERTZ(), USQWERTY()} {
		interp := NewInterpreter(l)
		for _, key := range []model.KeyIdentity{"KeyA", "Digit2", "Minus", "IntlBackslash", model.KeyBackspace, "Nope"} {
			for mods := model.ModNone; mods < model.ModMeta<<1; mods++ {
				c := chord(key, mods)
				first := interp.Interpret(c)
				second := interp.Interpret(c)
				require.Equal(t, first, second, "%s %s %v", l.Name(), key, mods)
			}
		}
	}
}

func TestLayoutsDiffer(t *testing.T) {
	c := chord("Digit2", model.ModShift)
	de := NewInterpreter(GermanQWERTZ()).Interpret(c)
	us := NewInterpreter(USQWERTY()).Interpret(c)
	assert.Equal(t, "\"", de.(model.Character).Grapheme)
	assert.Equal(t, "@", us.(model.Character).Grapheme)
}

func TestChordFor(t *testing.T) {
	l := GermanQWERTZ()
	got, ok := l.ChordFor("@")
	require.True(t, ok)
	assert.Equal(t, model.KeyIdentity("KeyQ"), got.Key)
	assert.Equal(t, model.ModAltGr, got.Modifiers)

	got, ok = l.ChordFor("Z")
	require.True(t, ok)
	assert.Equal(t, model.KeyIdentity("KeyY"), got.Key)
	assert.Equal(t, model.ModShift, got.Modifiers)

	_, ok = l.ChordFor("ñ")
	assert.False(t, ok)
}

func TestChordForRoundTrip(t *testing.T) {
	for _, l := range []*Layout{GermanQWERTZ(), USQWERTY()} {
		interp := NewInterpreter(l)
		for g, c := range l.reverse {
			in := interp.Interpret(c)
			ch, ok := in.(model.Character)
			require.True(t, ok, "%s: %q", l.Name(), g)
			assert.Equal(t, g, ch.Grapheme)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{NameGermanQWERTZ, NameUSQWERTY}, r.Names())
	_, err := r.Get("dvorak")
	require.True(t, errors.Is(err, ErrUnknownLayout))
}

func TestLoadDirExtends(t *testing.T) {
	dir := t.TempDir()
	content := `name = "de-custom"
extends = "de-qwertz"
non-typing = ["control"]

[keys.KeyA]
base = "x"
shift = "X"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.toml"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadDir(dir))
	l, err := r.Get("de-custom")
	require.NoError(t, err)

	interp := NewInterpreter(l)
	assert.Equal(t, "x", interp.Interpret(chord("KeyA", model.ModNone)).(model.Character).Grapheme)
	assert.Equal(t, "z", interp.Interpret(chord("KeyY", model.ModNone)).(model.Character).Grapheme)
	// Alt no longer suppresses text on this layout.
	assert.Equal(t, "x", interp.Interpret(chord("KeyA", model.ModAlt)).(model.Character).Grapheme)
	assert.Equal(t, model.Ignored{}, interp.Interpret(chord("KeyA", model.ModControl)))
}

func TestLoadDirMissing(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadDir(filepath.Join(t.TempDir(), "absent")))
}

func TestResolveRejectsRowModifiers(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve(FileLayout{Name: "bad", NonTyping: []string{"shift"}, Keys: map[string]FileRow{"KeyA": {Base: "a"}}})
	require.Error(t, err)
	_, err = r.Resolve(FileLayout{Name: "empty"})
	require.Error(t, err)
	_, err = r.Resolve(FileLayout{Name: "orphan", Extends: "missing"})
	require.ErrorIs(t, err, ErrUnknownLayout)
}
