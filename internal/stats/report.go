package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/keytutor/internal/model"
)

// defaultCurveChars is how many characters get curves when none are named.
const defaultCurveChars = 3

// Source is the read side of the session store.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.CharAggregate, error)
	ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []string
	CharAggsAll      []model.CharAggregate
	CharAggsWindow   []model.CharAggregate
	CurveChars       []string
	PerSession       map[string]map[string]model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsAll, err := src.ListCharAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load character stats: %w", err)
	}
	charAggsWindow, err := src.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load character stats: %w", err)
	}

	chars := ParseChars(cfg.Chars)
	if len(chars) == 0 {
		chars = TopCharsByFrequency(charAggsAll, defaultCurveChars)
	}
	perSession, err := src.ListCharStatsForSessions(ctx, allIDs, chars)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load character curves: %w", err)
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		CharAggsAll:      charAggsAll,
		CharAggsWindow:   charAggsWindow,
		CurveChars:       chars,
		PerSession:       perSession,
	}, nil
}

// Render writes the whole report. width is the terminal width, or 0 when
// unknown.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Sessions, window, width); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggsWindow); err != nil {
		return err
	}
	return RenderCharCurves(w, r.Sessions, r.PerSession, r.CurveChars, window, width)
}

// ParseChars splits a comma separated character list, dropping blanks and
// duplicates.
func ParseChars(list string) []string {
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
