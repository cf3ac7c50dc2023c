package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/keytutor/internal/lesson"
)

// ErrInvalidModule marks a module document that cannot be used.
var ErrInvalidModule = errors.New("invalid lesson module")

// Module is a named, ordered group of lessons.
type Module struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description,omitempty"`
	Layout      string        `yaml:"layout,omitempty"`
	Lessons     []LessonEntry `yaml:"lessons"`

	// Source is the file the module was read from, or "builtin".
	Source string `yaml:"-"`
}

// LessonEntry is one lesson of a module document. Exactly one of Text and
// Segments is set. Text is wrapped to the configured segment length,
// Segments are kept as written.
type LessonEntry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Difficulty  int      `yaml:"difficulty,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Text        string   `yaml:"text,omitempty"`
	Segments    []string `yaml:"segments,omitempty"`
}

// ParseModule decodes and validates one YAML module document.
func ParseModule(data []byte, source string) (Module, error) {
	var m Module
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Module{}, fmt.Errorf("parsing module %s: %w", source, err)
	}
	m.Source = source
	if err := m.validate(); err != nil {
		return Module{}, fmt.Errorf("%s: %w", source, err)
	}
	return m, nil
}

func (m Module) validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidModule)
	}
	if m.ID == PracticeModuleID {
		return fmt.Errorf("%w: id %q is reserved", ErrInvalidModule, m.ID)
	}
	if len(m.Lessons) == 0 {
		return fmt.Errorf("%w: module %q has no lessons", ErrInvalidModule, m.ID)
	}
	seen := map[string]bool{}
	for i, l := range m.Lessons {
		switch {
		case strings.TrimSpace(l.ID) == "":
			return fmt.Errorf("%w: lesson %d of %q has no id", ErrInvalidModule, i, m.ID)
		case seen[l.ID]:
			return fmt.Errorf("%w: duplicate lesson %q in %q", ErrInvalidModule, l.ID, m.ID)
		case l.Text != "" && len(l.Segments) > 0:
			return fmt.Errorf("%w: lesson %q sets both text and segments", ErrInvalidModule, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

func (m Module) entry(lessonID string) (LessonEntry, bool) {
	for _, l := range m.Lessons {
		if l.ID == lessonID {
			return l, true
		}
	}
	return LessonEntry{}, false
}

func (e LessonEntry) build(moduleID string, segmentLength int) (lesson.Lesson, error) {
	meta := lesson.Metadata{
		Title:       e.Title,
		Description: e.Description,
		Difficulty:  e.Difficulty,
		Tags:        e.Tags,
		ModuleID:    moduleID,
	}
	if meta.Title == "" {
		meta.Title = e.ID
	}
	if len(e.Segments) > 0 {
		return lesson.Build(meta, e.Segments)
	}
	return lesson.FromText(meta, e.Text, segmentLength)
}
