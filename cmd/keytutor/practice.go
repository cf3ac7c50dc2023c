package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keytutor/internal/catalog"
	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/generator"
	"github.com/verte-zerg/keytutor/internal/layout"
	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/session"
	"github.com/verte-zerg/keytutor/internal/tui"
	"github.com/verte-zerg/keytutor/internal/wordlist"
)

const fallbackLayout = layout.NameUSQWERTY

type practiceFlags struct {
	cfg model.Config
}

func newPracticeFlags() *practiceFlags {
	return &practiceFlags{cfg: model.Config{
		ModuleID:      defaultModule,
		SegmentLength: defaultSegmentLength,
		Lang:          defaultLang,
		Words:         defaultWords,
		CapsPct:       defaultCaps,
		PunctPct:      defaultPunct,
		PunctSet:      defaultPunctSet,
		WeakTop:       defaultWeakTop,
		WeakFactor:    defaultWeakFactor,
		WeakWindow:    defaultWeakWindow,
	}}
}

func (p *practiceFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.cfg.ModuleID, "module", p.cfg.ModuleID, "lesson module id (see: keytutor lessons)")
	f.StringVar(&p.cfg.LessonID, "lesson", "", "lesson id within the module (default: first)")
	f.StringVar(&p.cfg.Layout, "layout", "", "keyboard layout (see: keytutor layouts)")
	f.IntVar(&p.cfg.SegmentLength, "segment-length", p.cfg.SegmentLength, "maximum segment length in characters")
	f.StringVar(&p.cfg.Lang, "lang", p.cfg.Lang, "word list language for the practice module")
	f.IntVar(&p.cfg.Words, "words", p.cfg.Words, "words per generated lesson")
	f.Float64Var(&p.cfg.CapsPct, "caps", p.cfg.CapsPct, "probability of capitalized first letter (0-1)")
	f.Float64Var(&p.cfg.PunctPct, "punct", p.cfg.PunctPct, "punctuation probability per word (0-1)")
	f.StringVar(&p.cfg.PunctSet, "punct-set", p.cfg.PunctSet, "punctuation set")
	f.BoolVar(&p.cfg.FocusWeak, "focus-weak", false, "bias generated lessons toward weak characters")
	f.IntVar(&p.cfg.WeakTop, "weak-top", p.cfg.WeakTop, "number of weak characters to focus on")
	f.Float64Var(&p.cfg.WeakFactor, "weak-factor", p.cfg.WeakFactor, "weight factor for weak characters")
	f.IntVar(&p.cfg.WeakWindow, "weak-window", p.cfg.WeakWindow, "number of recent sessions to compute weak chars")
}

// resolve applies environment and file values to every flag the user did
// not set.
func (p *practiceFlags) resolve(cmd *cobra.Command, a *app) (model.Config, error) {
	f, env, file := cmd.Flags(), a.env, a.file.Practice
	cfg := p.cfg
	config.Apply(f, env, "module", &cfg.ModuleID, file.Module)
	config.Apply(f, env, "lesson", &cfg.LessonID, file.Lesson)
	config.Apply(f, env, "layout", &cfg.Layout, file.Layout)
	config.Apply(f, env, "segment-length", &cfg.SegmentLength, file.SegmentLength)
	config.Apply(f, env, "lang", &cfg.Lang, file.Lang)
	config.Apply(f, env, "words", &cfg.Words, file.Words)
	config.Apply(f, env, "caps", &cfg.CapsPct, file.CapsPct)
	config.Apply(f, env, "punct", &cfg.PunctPct, file.PunctPct)
	config.Apply(f, env, "punct-set", &cfg.PunctSet, file.PunctSet)
	config.Apply(f, env, "focus-weak", &cfg.FocusWeak, file.FocusWeak)
	config.Apply(f, env, "weak-top", &cfg.WeakTop, file.WeakTop)
	config.Apply(f, env, "weak-factor", &cfg.WeakFactor, file.WeakFactor)
	config.Apply(f, env, "weak-window", &cfg.WeakWindow, file.WeakWindow)
	return cfg, validateConfig(cfg)
}

func runPractice(cmd *cobra.Command, a *app, p *practiceFlags) error {
	cfg, err := p.resolve(cmd, a)
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	practice := &catalog.Practice{
		Generator: generator.New(),
		Options: generator.Options{
			Count:      cfg.Words,
			CapsPct:    cfg.CapsPct,
			PunctPct:   cfg.PunctPct,
			PunctSet:   []rune(cfg.PunctSet),
			WeakFactor: cfg.WeakFactor,
		},
		FocusWeak:  cfg.FocusWeak,
		Weak:       st,
		WeakTop:    cfg.WeakTop,
		WeakWindow: cfg.WeakWindow,
		Logger:     a.logger,
	}
	cat, err := catalog.Load(config.DefaultLessonsDir(),
		catalog.WithSegmentLength(cfg.SegmentLength),
		catalog.WithLogger(a.logger),
		catalog.WithPractice(practice),
	)
	if err != nil {
		return err
	}
	if _, ok := cat.Module(cfg.ModuleID); !ok {
		return fmt.Errorf("unknown module %q (run: keytutor lessons)", cfg.ModuleID)
	}

	kb, err := resolveLayout(cat, cfg)
	if err != nil {
		return err
	}
	// Words the layout cannot type are dropped.
	practice.Words, err = loadWords(cfg.Lang, kb)
	if err != nil {
		return err
	}
	a.logger.Info("practice starting",
		zap.String("module", cfg.ModuleID),
		zap.String("lesson", cfg.LessonID),
		zap.String("layout", kb.Name()),
	)

	coord := session.New(cat, st, layout.NewInterpreter(kb), session.WithLogger(a.logger))
	m, err := tui.NewModel(ctx, tui.Options{
		Coordinator: coord,
		Lessons:     cat,
		History:     st,
		Layout:      kb,
		ModuleID:    cfg.ModuleID,
		LessonID:    cfg.LessonID,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveLayout picks the configured layout, else the module's preferred
// one, else US QWERTY. User layouts are loaded first so they can be named.
func resolveLayout(cat *catalog.Catalog, cfg model.Config) (*layout.Layout, error) {
	reg := layout.NewRegistry()
	if err := reg.LoadDir(config.DefaultLayoutsDir()); err != nil {
		return nil, fmt.Errorf("failed to load layouts: %w", err)
	}
	name := cfg.Layout
	if name == "" {
		if m, ok := cat.Module(cfg.ModuleID); ok && m.Layout != "" {
			name = m.Layout
		} else {
			name = fallbackLayout
		}
	}
	return reg.Get(name)
}

// loadWords reads the user's word list for lang and keeps the words kb can
// type. English falls back to the bundled list.
func loadWords(lang string, kb *layout.Layout) ([]string, error) {
	path := config.DefaultWordListPath(lang)
	words, err := wordlist.LoadWords(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && lang == defaultLang:
		words = wordlist.Builtin()
	case errors.Is(err, fs.ErrNotExist):
		logErrf("no word list for %q at %s; the practice module is unavailable\n", lang, path)
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	typable := func(r rune) bool {
		_, ok := kb.ChordFor(string(r))
		return ok
	}
	return wordlist.Apply(words, wordlist.FilterForLang(lang), wordlist.TypableOn(typable)), nil
}

func validateConfig(cfg model.Config) error {
	if cfg.ModuleID == "" {
		return fmt.Errorf("--module must not be empty")
	}
	if cfg.SegmentLength < 1 {
		return fmt.Errorf("--segment-length must be >= 1")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
