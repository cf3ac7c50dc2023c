package wordlist

import "strings"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	case "de":
		return filterGerman
	default:
		return func(string) bool { return true }
	}
}

// TypableOn keeps words whose every rune is produced by some key chord.
func TypableOn(produces func(r rune) bool) FilterFunc {
	return func(word string) bool {
		for _, r := range word {
			if !produces(r) {
				return false
			}
		}
		return word != ""
	}
}

// Apply returns the words every filter keeps.
func Apply(words []string, filters ...FilterFunc) []string {
	out := make([]string, 0, len(words))
next:
	for _, w := range words {
		for _, f := range filters {
			if f != nil && !f(w) {
				continue next
			}
		}
		out = append(out, w)
	}
	return out
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

func filterGerman(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range strings.ToLower(word) {
		if (r < 'a' || r > 'z') && !strings.ContainsRune("äöüß", r) {
			return false
		}
	}
	return true
}
