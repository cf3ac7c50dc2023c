package wordlist

import (
	"strings"
	"testing"
)

func TestFilterEnglishASCII(t *testing.T) {
	filter := FilterForLang("en")
	if !filter("hello") {
		t.Fatalf("expected hello to pass english filter")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op"} {
		if filter(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilterGerman(t *testing.T) {
	filter := FilterForLang("de")
	for _, word := range []string{"straße", "Übung", "haus"} {
		if !filter(word) {
			t.Fatalf("expected %q to pass german filter", word)
		}
	}
	if filter("café") {
		t.Fatalf("expected café to be rejected")
	}
}

func TestApplyTypableOn(t *testing.T) {
	homeRow := TypableOn(func(r rune) bool { return strings.ContainsRune("asdfjkl", r) })
	got := Apply([]string{"flask", "dad", "jazz", ""}, homeRow)
	if strings.Join(got, ",") != "flask,dad" {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestReadSkipsCommentsAndBlanks(t *testing.T) {
	words, err := Read(strings.NewReader("# list\n\n the \nand\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Join(words, ",") != "the,and" {
		t.Fatalf("unexpected words: %v", words)
	}
	if _, err := Read(strings.NewReader("\n# nothing\n")); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestBuiltinIsEnglish(t *testing.T) {
	words := Builtin()
	if len(words) < 100 {
		t.Fatalf("expected a usable bundled list, got %d words", len(words))
	}
	if kept := Apply(words, FilterForLang("en")); len(kept) != len(words) {
		t.Fatalf("bundled list contains non-ascii words")
	}
}
