package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keytutor/internal/catalog"
	"github.com/verte-zerg/keytutor/internal/config"
	"github.com/verte-zerg/keytutor/internal/layout"
)

func newLessonsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lessons [module]",
		Short: "List lesson modules, or the lessons of one module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(config.DefaultLessonsDir(),
				catalog.WithLogger(a.logger),
				catalog.WithPractice(&catalog.Practice{}),
			)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return writeModuleLessons(cmd.OutOrStdout(), cat, args[0])
			}
			return writeModules(cmd.OutOrStdout(), cat.Modules())
		},
	}
}

func writeModules(w io.Writer, modules []catalog.Module) error {
	for _, m := range modules {
		line := fmt.Sprintf("%-12s %-28s %2d lessons", m.ID, m.Title, len(m.Lessons))
		if m.Layout != "" {
			line += "  layout " + m.Layout
		}
		if m.Source != "" {
			line += "  (" + m.Source + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func writeModuleLessons(w io.Writer, cat *catalog.Catalog, moduleID string) error {
	m, ok := cat.Module(moduleID)
	if !ok {
		return fmt.Errorf("unknown module %q", moduleID)
	}
	if m.Description != "" {
		if _, err := fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(m.Description)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	for _, l := range m.Lessons {
		title := l.Title
		if title == "" {
			title = l.ID
		}
		line := fmt.Sprintf("%-12s %s", l.ID, title)
		if l.Difficulty > 0 {
			line += fmt.Sprintf("  [%d]", l.Difficulty)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List keyboard layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := layout.NewRegistry()
			if err := reg.LoadDir(config.DefaultLayoutsDir()); err != nil {
				return fmt.Errorf("failed to load layouts: %w", err)
			}
			for _, name := range reg.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
}
