// Package lesson builds normalized, word-wrapped typing lessons.
package lesson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

var (
	// ErrMissingTitle is returned when lesson metadata has no title.
	ErrMissingTitle = errors.New("lesson title is required")
	// ErrNoContent is returned when no segment survives normalization.
	ErrNoContent = errors.New("lesson has no content")
	// ErrInvalidWidth is returned for a segment length below one.
	ErrInvalidWidth = errors.New("segment length must be >= 1")
)

// Metadata describes a lesson.
type Metadata struct {
	Title       string
	Description string
	Difficulty  int
	Tags        []string
	ModuleID    string
}

// Lesson is an immutable typing lesson. Its target text is the segments
// joined by single spaces.
type Lesson struct {
	meta     Metadata
	segments []string
	target   string
	chars    int
}

// Metadata returns the lesson metadata.
func (l Lesson) Metadata() Metadata {
	meta := l.meta
	meta.Tags = append([]string(nil), l.meta.Tags...)
	return meta
}

// Segments returns a copy of the normalized segments.
func (l Lesson) Segments() []string {
	return append([]string(nil), l.segments...)
}

// TargetText returns the text the user has to type.
func (l Lesson) TargetText() string { return l.target }

// SegmentCount returns the number of segments.
func (l Lesson) SegmentCount() int { return len(l.segments) }

// CharacterCount returns the number of graphemes in the target text,
// separating spaces included.
func (l Lesson) CharacterCount() int { return l.chars }

// IsEmpty reports whether the lesson has no segments.
func (l Lesson) IsEmpty() bool { return len(l.segments) == 0 }

// Build normalizes segments into a lesson. Whitespace runs collapse to one
// space, segments are trimmed and empty ones dropped.
func Build(meta Metadata, segments []string) (Lesson, error) {
	meta.Title = normalize(meta.Title)
	if meta.Title == "" {
		return Lesson{}, ErrMissingTitle
	}
	meta.Tags = normalizeTags(meta.Tags)

	kept := make([]string, 0, len(segments))
	chars := 0
	for _, seg := range segments {
		seg = normalize(seg)
		if seg == "" {
			continue
		}
		kept = append(kept, seg)
		chars += uniseg.GraphemeClusterCount(seg)
	}
	if len(kept) == 0 {
		return Lesson{}, fmt.Errorf("%q: %w", meta.Title, ErrNoContent)
	}
	chars += len(kept) - 1

	return Lesson{
		meta:     meta,
		segments: kept,
		target:   strings.Join(kept, " "),
		chars:    chars,
	}, nil
}

// FromText splits free text into segments of at most maxSegmentLength
// graphemes and builds a lesson from them. Words are packed greedily; a word
// longer than the limit is cut into chunks of exactly maxSegmentLength
// graphemes, the last chunk holding the remainder.
func FromText(meta Metadata, text string, maxSegmentLength int) (Lesson, error) {
	if maxSegmentLength < 1 {
		return Lesson{}, ErrInvalidWidth
	}
	tokens := tokenize(normalize(text), maxSegmentLength)
	return Build(meta, wrap(tokens, maxSegmentLength))
}

type token struct {
	text  string
	width int
}

func tokenize(text string, limit int) []token {
	words := strings.Fields(text)
	tokens := make([]token, 0, len(words))
	for _, word := range words {
		width := uniseg.GraphemeClusterCount(word)
		if width <= limit {
			tokens = append(tokens, token{text: word, width: width})
			continue
		}
		tokens = append(tokens, chunk(word, limit)...)
	}
	return tokens
}

func chunk(word string, limit int) []token {
	var out []token
	var b strings.Builder
	n := 0
	gr := uniseg.NewGraphemes(word)
	for gr.Next() {
		b.WriteString(gr.Str())
		n++
		if n == limit {
			out = append(out, token{text: b.String(), width: n})
			b.Reset()
			n = 0
		}
	}
	if n > 0 {
		out = append(out, token{text: b.String(), width: n})
	}
	return out
}

func wrap(tokens []token, limit int) []string {
	var segments []string
	var line strings.Builder
	width := 0
	for _, tok := range tokens {
		if width > 0 && width+1+tok.width > limit {
			segments = append(segments, line.String())
			line.Reset()
			width = 0
		}
		if width > 0 {
			line.WriteByte(' ')
			width++
		}
		line.WriteString(tok.text)
		width += tok.width
	}
	if width > 0 {
		segments = append(segments, line.String())
	}
	return segments
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = normalize(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
