package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCount(t *testing.T) {
	g := NewWithSeed(1)
	words := g.Generate([]string{"alpha", "beta"}, Options{Count: 7})
	require.Len(t, words, 7)
	for _, w := range words {
		assert.Contains(t, []string{"alpha", "beta"}, w)
	}
	assert.Nil(t, g.Generate(nil, Options{Count: 3}))
	assert.Nil(t, g.Generate([]string{"a"}, Options{}))
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	words := []string{"one", "two", "three", "four"}
	opts := Options{Count: 20, CapsPct: 0.5, PunctPct: 0.5, PunctSet: []rune(".,")}
	assert.Equal(t, NewWithSeed(42).Generate(words, opts), NewWithSeed(42).Generate(words, opts))
}

func TestGenerateAlwaysCapsAndPunct(t *testing.T) {
	words := NewWithSeed(3).Generate([]string{"über"}, Options{Count: 5, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	for _, w := range words {
		assert.Equal(t, "Über!", w)
	}
}

func TestGenerateWeightsWeakCharacters(t *testing.T) {
	words := []string{"zzz", "abc"}
	out := NewWithSeed(7).Generate(words, Options{Count: 400, Weak: []string{"z"}, WeakFactor: 10})
	z := 0
	for _, w := range out {
		if w == "zzz" {
			z++
		}
	}
	// "zzz" weighs 31 against 1.
	assert.Greater(t, z, 300)
}

func TestTextJoinsWithSpaces(t *testing.T) {
	text := NewWithSeed(5).Text([]string{"x"}, Options{Count: 3})
	assert.Equal(t, "x x x", text)
	assert.False(t, strings.HasSuffix(text, " "))
}
