// Package catalog resolves lessons by module and lesson id. Modules come
// from YAML documents bundled with the binary and from a user directory;
// the practice module is generated from a word list.
package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/lesson"
	"github.com/verte-zerg/keytutor/internal/session"
)

// DefaultSegmentLength is used when no positive length is configured.
const DefaultSegmentLength = 60

// ErrNotFound matches session.ErrNotFound so the coordinator can tell a
// missing lesson from a broken one.
var ErrNotFound = session.ErrNotFound

//go:embed modules/*.yaml
var builtinFS embed.FS

// Option configures a Catalog.
type Option func(*Catalog)

// WithSegmentLength sets the wrap width for text lessons.
func WithSegmentLength(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.segmentLength = n
		}
	}
}

// WithPractice enables the generated practice module.
func WithPractice(p *Practice) Option {
	return func(c *Catalog) { c.practice = p }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Catalog holds the known modules in display order.
type Catalog struct {
	modules       map[string]Module
	order         []string
	segmentLength int
	practice      *Practice
	logger        *zap.Logger
}

// Load reads the bundled modules and then every *.yaml/*.yml file in
// userDir. A user module replaces a bundled one with the same id. A missing
// userDir is not an error.
func Load(userDir string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		modules:       map[string]Module{},
		segmentLength: DefaultSegmentLength,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.loadFS(builtinFS, "modules", "builtin"); err != nil {
		return nil, fmt.Errorf("failed to load bundled lessons: %w", err)
	}
	if userDir == "" {
		return c, nil
	}
	if _, err := os.Stat(userDir); errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err := c.loadFS(os.DirFS(userDir), ".", userDir); err != nil {
		return nil, fmt.Errorf("failed to load lessons from %s: %w", userDir, err)
	}
	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, dir, label string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, name)))
		if err != nil {
			return err
		}
		source := label
		if label != "builtin" {
			source = filepath.Join(label, name)
		}
		m, err := ParseModule(data, source)
		if err != nil {
			return err
		}
		c.Add(m)
	}
	return nil
}

// Add registers m, replacing a module with the same id in place.
func (c *Catalog) Add(m Module) {
	if prev, ok := c.modules[m.ID]; ok {
		c.logger.Info("lesson module overridden",
			zap.String("module", m.ID),
			zap.String("previous", prev.Source),
			zap.String("source", m.Source),
		)
	} else {
		c.order = append(c.order, m.ID)
	}
	c.modules[m.ID] = m
}

// Modules lists modules in load order, the practice module last.
func (c *Catalog) Modules() []Module {
	out := make([]Module, 0, len(c.order)+1)
	for _, id := range c.order {
		out = append(out, c.modules[id])
	}
	if c.practice != nil {
		out = append(out, practiceModule())
	}
	return out
}

// Module returns the module with id.
func (c *Catalog) Module(id string) (Module, bool) {
	if id == PracticeModuleID && c.practice != nil {
		return practiceModule(), true
	}
	m, ok := c.modules[id]
	return m, ok
}

// Lesson builds the lesson moduleID/lessonID. An empty lessonID selects the
// first lesson of the module.
func (c *Catalog) Lesson(ctx context.Context, moduleID, lessonID string) (lesson.Lesson, error) {
	m, ok := c.Module(moduleID)
	if !ok {
		return lesson.Lesson{}, fmt.Errorf("module %q: %w", moduleID, ErrNotFound)
	}
	if lessonID == "" {
		lessonID = m.Lessons[0].ID
	}
	entry, ok := m.entry(lessonID)
	if !ok {
		return lesson.Lesson{}, fmt.Errorf("lesson %q in module %q: %w", lessonID, moduleID, ErrNotFound)
	}
	if moduleID == PracticeModuleID {
		return c.practice.lesson(ctx, entry, c.segmentLength)
	}
	return entry.build(moduleID, c.segmentLength)
}

// FirstLesson returns the id of the first lesson of moduleID.
func (c *Catalog) FirstLesson(moduleID string) (string, bool) {
	m, ok := c.Module(moduleID)
	if !ok {
		return "", false
	}
	return m.Lessons[0].ID, true
}

// Next returns the lesson after lessonID in its module. Generated lessons
// repeat themselves. It reports false after the last lesson.
func (c *Catalog) Next(moduleID, lessonID string) (string, bool) {
	if moduleID == PracticeModuleID {
		return lessonID, c.practice != nil
	}
	m, ok := c.modules[moduleID]
	if !ok {
		return "", false
	}
	for i, l := range m.Lessons {
		if l.ID == lessonID && i+1 < len(m.Lessons) {
			return m.Lessons[i+1].ID, true
		}
	}
	return "", false
}
