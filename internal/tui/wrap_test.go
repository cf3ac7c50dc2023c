package tui

import (
	"strings"
	"testing"
)

func graphemes(s string) []string {
	return strings.Split(s, "")
}

func TestBuildStyledGraphemesCursor(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: graphemes("ab"), cursor: 1})
	if len(out) != 2 {
		t.Fatalf("expected 2 graphemes, got %d", len(out))
	}
	if out[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first grapheme")
	}
	if out[1].s != currentWordStyle.Underline(true).Render("b") {
		t.Fatalf("expected underlined current word style for cursor grapheme")
	}
}

func TestBuildStyledGraphemesNoCursorWhenComplete(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: graphemes("a b"), cursor: 3, completed: true, missed: map[int]bool{2: true}})
	if out[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for completed grapheme")
	}
	if out[2].s != correctedStyle.Render("b") {
		t.Fatalf("expected corrected style for a grapheme that needed retries")
	}
}

func TestBuildStyledGraphemesWrongAtCursor(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: graphemes("ab"), cursor: 1, wrong: "x"})
	if out[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for the expected grapheme")
	}
}

func TestBuildStyledGraphemesWordHighlighting(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: graphemes("one two"), cursor: 1})
	if out[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed grapheme")
	}
	if out[2].s != currentWordStyle.Render("e") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if out[4].s != pendingStyle.Render("t") || out[6].s != pendingStyle.Render("o") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledGraphemesWrongSpaceDot(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: graphemes("a b"), cursor: 1, wrong: "x"})
	if out[1].s != incorrectStyle.Render(wrongSpace) {
		t.Fatalf("expected dot for wrong space")
	}
	if out[1].width != 1 {
		t.Fatalf("expected width 1, got %d", out[1].width)
	}
}

func TestBuildStyledGraphemesCombining(t *testing.T) {
	out := buildStyledGraphemes(typingState{target: []string{"e\u0301", "x"}, cursor: 0})
	if out[0].width != 1 {
		t.Fatalf("combining sequence must occupy one cell, got %d", out[0].width)
	}
}

func plain(s string) []styledGrapheme {
	out := make([]styledGrapheme, 0, len(s))
	for _, g := range graphemes(s) {
		out = append(out, styledGrapheme{s: g, width: 1, isSpace: g == " "})
	}
	return out
}

func TestWrapStyledBreaksAtSpaces(t *testing.T) {
	got := wrapStyled(plain("aaa bbb ccc"), 7)
	if got != "aaa bbb\nccc" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledBreaksLongWords(t *testing.T) {
	got := wrapStyled(plain("abcdefgh"), 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledWideCharacters(t *testing.T) {
	items := []styledGrapheme{{s: "語", width: 2}, {s: "語", width: 2}, {s: " ", width: 1, isSpace: true}, {s: "x", width: 1}}
	got := wrapStyled(items, 4)
	if got != "語語\nx" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
