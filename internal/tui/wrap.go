package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wrongSpace stands in for a space that was mistyped, so the error shows.
const wrongSpace = "•"

type styledGrapheme struct {
	s       string
	width   int
	isSpace bool
}

// typingState is what the renderer needs to know about a lesson in
// progress.
type typingState struct {
	target    []string
	cursor    int
	completed bool
	// wrong holds the last incorrect grapheme at the cursor until it is
	// backspaced or overtyped correctly.
	wrong string
	// missed marks positions that took more than one attempt.
	missed map[int]bool
}

func buildStyledGraphemes(st typingState) []styledGrapheme {
	cursor := st.cursor
	if st.completed {
		cursor = -1
	}
	currentWord := wordForCursor(findWords(st.target), cursor)

	out := make([]styledGrapheme, 0, len(st.target))
	for i, g := range st.target {
		displayed := g
		var style lipgloss.Style
		switch {
		case st.completed || i < st.cursor:
			style = correctStyle
			if st.missed[i] {
				style = correctedStyle
			}
		case i == cursor && st.wrong != "":
			style = incorrectStyle
			if g == " " {
				displayed = wrongSpace
			}
		case g != " " && currentWord != nil && i >= currentWord.start && i < currentWord.end:
			style = currentWordStyle
		default:
			style = pendingStyle
		}
		if i == cursor && st.wrong == "" {
			style = style.Underline(true)
		}
		out = append(out, styledGrapheme{
			s:       style.Render(displayed),
			width:   runewidth.StringWidth(displayed),
			isSpace: g == " ",
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(target []string) []wordRange {
	var words []wordRange
	start := -1
	for i, g := range target {
		if g == " " {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(target)})
	}
	return words
}

// wordForCursor returns the word under the cursor, or the next one when
// the cursor sits on a space. A negative cursor selects nothing.
func wordForCursor(words []wordRange, cursor int) *wordRange {
	if cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}

func renderStyled(items []styledGrapheme) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyled breaks lines at the last space that keeps them within width
// cells. A word wider than width is broken where it overflows.
func wrapStyled(items []styledGrapheme, width int) string {
	if width <= 0 {
		return renderStyled(items)
	}
	var out strings.Builder
	line := make([]styledGrapheme, 0, len(items))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(items); {
		item := items[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				out.WriteString(renderStyled(line))
				out.WriteByte('\n')
				line = line[:0]
				lineWidth, lastSpace = 0, -1
				i++
				continue
			}
			if lastSpace >= 0 {
				out.WriteString(renderStyled(line[:lastSpace]))
				line = append([]styledGrapheme{}, line[lastSpace+1:]...)
			} else {
				out.WriteString(renderStyled(line))
				line = line[:0]
			}
			out.WriteByte('\n')
			lineWidth, lastSpace = measure(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyled(line))
	return out.String()
}

func measure(line []styledGrapheme) (width, lastSpace int) {
	lastSpace = -1
	for i, item := range line {
		width += item.width
		if item.isSpace {
			lastSpace = i
		}
	}
	return width, lastSpace
}
