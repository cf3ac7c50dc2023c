// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	ModuleID      string
	LessonID      string
	Layout        string
	SegmentLength int

	Lang       string
	Words      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	ModuleID    string
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID   string
	ModuleID    string
	LessonID    string
	StartedAt   time.Time
	EndedAt     time.Time
	Completed   bool
	Correct     int
	Incorrect   int
	Corrections int
	DurationMs  int64
}
