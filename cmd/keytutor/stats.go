package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keytutor/internal/model"
	"github.com/verte-zerg/keytutor/internal/stats"
	"github.com/verte-zerg/keytutor/internal/statsui"
)

type statsFlags struct {
	module      string
	since       string
	last        int
	curveWindow int
	chars       string
	plain       bool
}

func newStatsCmd(a *app) *cobra.Command {
	f := &statsFlags{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.statsConfig()
			if err != nil {
				return err
			}
			return runStats(cmd, a, cfg, f.plain)
		},
	}
	cmd.Flags().StringVar(&f.module, "module", "", "module filter")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.last, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&f.curveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&f.chars, "char", "", "characters for per-char curves (comma separated)")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func (f *statsFlags) statsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if f.since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", f.since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if f.last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if f.curveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		ModuleID:    f.module,
		Since:       sinceTime,
		Last:        f.last,
		CurveWindow: f.curveWindow,
		Chars:       f.chars,
	}, nil
}

// runStats opens the interactive view on a terminal and prints the text
// report otherwise.
func runStats(cmd *cobra.Command, a *app, cfg model.StatsConfig, plain bool) error {
	st, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	ctx := context.Background()

	width := terminalWidth()
	if plain || width == 0 {
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return err
		}
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, width)
	}

	program := tea.NewProgram(statsui.NewModel(ctx, st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

// terminalWidth returns 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
