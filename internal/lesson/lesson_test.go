package lesson

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var meta = Metadata{Title: "Home row", Difficulty: 1}

func TestBuildNormalizesSegments(t *testing.T) {
	l, err := Build(meta, []string{"  asdf \t jkl; ", "   ", "\n", "fj  fj"})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"asdf jkl;", "fj fj"}, l.Segments()); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "asdf jkl; fj fj", l.TargetText())
	assert.Equal(t, 2, l.SegmentCount())
	assert.Equal(t, 15, l.CharacterCount())
	assert.False(t, l.IsEmpty())
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(Metadata{Title: "  "}, []string{"abc"})
	require.ErrorIs(t, err, ErrMissingTitle)

	_, err = Build(meta, []string{" ", "\t\n"})
	require.ErrorIs(t, err, ErrNoContent)

	_, err = Build(meta, nil)
	require.ErrorIs(t, err, ErrNoContent)
}

func TestBuildNormalizesTags(t *testing.T) {
	l, err := Build(Metadata{Title: "t", Tags: []string{"b", " a ", "b", ""}}, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, l.Metadata().Tags)
}

func TestFromTextWraps(t *testing.T) {
	l, err := FromText(meta, "the quick  brown\nfox jumps over the lazy dog", 10)
	require.NoError(t, err)
	want := []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}
	if diff := cmp.Diff(want, l.Segments()); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestFromTextHardSplitsLongWords(t *testing.T) {
	l, err := FromText(meta, "a abcdefgh xy", 3)
	require.NoError(t, err)
	want := []string{"a", "abc", "def", "gh", "xy"}
	if diff := cmp.Diff(want, l.Segments()); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestFromTextWidthOne(t *testing.T) {
	l, err := FromText(meta, "ab c", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, l.Segments())
}

func TestFromTextCountsGraphemes(t *testing.T) {
	// "é" written as e + combining acute is one grapheme.
	word := "cafe\u0301"
	l, err := FromText(meta, word+" "+word, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{word, word}, l.Segments())
	assert.Equal(t, 9, l.CharacterCount())
}

func TestFromTextInvalidWidth(t *testing.T) {
	_, err := FromText(meta, "abc", 0)
	require.ErrorIs(t, err, ErrInvalidWidth)
}

func TestFromTextEmptyText(t *testing.T) {
	_, err := FromText(meta, " \n\t ", 5)
	require.ErrorIs(t, err, ErrNoContent)
}

var wrapCases = []struct {
	text  string
	width int
}{
	{"the quick brown fox jumps over the lazy dog", 10},
	{"a abcdefgh xy", 3},
	{"supercalifragilistic is long", 5},
	{"ab  cd\tef\n\ngh", 1},
	{"Grüße aus München, schöne Straße", 7},
	{"x", 100},
	{"aaaa bbbb cccc", 4},
	{"aaaa bbbb cccc", 9},
}

func TestFromTextIsIdempotent(t *testing.T) {
	for _, tc := range wrapCases {
		first, err := FromText(meta, tc.text, tc.width)
		require.NoError(t, err)
		second, err := FromText(meta, first.TargetText(), tc.width)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second, cmp.AllowUnexported(Lesson{})); diff != "" {
			t.Fatalf("%q/%d not idempotent (-first +second):\n%s", tc.text, tc.width, diff)
		}
	}
}

func TestFromTextRespectsWidth(t *testing.T) {
	for _, tc := range wrapCases {
		l, err := FromText(meta, tc.text, tc.width)
		require.NoError(t, err)
		for _, seg := range l.Segments() {
			if n := uniseg.GraphemeClusterCount(seg); n > tc.width {
				t.Fatalf("%q/%d: segment %q has %d graphemes", tc.text, tc.width, seg, n)
			}
		}
	}
}

func TestCharacterCountIdentity(t *testing.T) {
	for _, tc := range wrapCases {
		l, err := FromText(meta, tc.text, tc.width)
		require.NoError(t, err)
		sum := 0
		for _, seg := range l.Segments() {
			sum += uniseg.GraphemeClusterCount(seg)
		}
		if len(l.Segments()) > 0 {
			sum += len(l.Segments()) - 1
		}
		assert.Equal(t, sum, l.CharacterCount(), tc.text)
		assert.Equal(t, strings.Join(l.Segments(), " "), l.TargetText())
	}
}

func TestZeroLessonIsEmpty(t *testing.T) {
	var l Lesson
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 0, l.CharacterCount())
}
