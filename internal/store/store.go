// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/keytutor/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrSessionNotFound is returned by LoadSession for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// Store wraps SQLite access for session data.
type Store struct {
	db    *sql.DB
	retry retryConfig
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, retry: defaultRetryConfig}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			module_id TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			completed INTEGER NOT NULL,
			correct_nonspace INTEGER NOT NULL,
			incorrect_nonspace INTEGER NOT NULL,
			corrections INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			CHECK ((completed = 1) = (ended_at IS NOT NULL))
		);`,
		`CREATE TABLE IF NOT EXISTS session_inputs (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			at_ns INTEGER NOT NULL,
			key TEXT NOT NULL,
			modifiers TEXT NOT NULL,
			kind TEXT NOT NULL,
			grapheme TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS session_evaluations (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			at_ns INTEGER NOT NULL,
			target_index INTEGER NOT NULL CHECK (target_index >= 0),
			expected TEXT NOT NULL,
			actual TEXT NOT NULL,
			outcome TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_evaluations_expected ON session_evaluations(expected);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveSession stores a session with its input and evaluation logs. Saving
// the same session id again replaces the earlier record.
func (s *Store) SaveSession(ctx context.Context, sess *model.TrainingSession) error {
	if sess == nil {
		return fmt.Errorf("session is nil")
	}
	return retryOp(ctx, s.retry, func() error {
		return s.saveSession(ctx, sess)
	})
}

func (s *Store) saveSession(ctx context.Context, sess *model.TrainingSession) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	agg := sess.Aggregate()
	var endedAt any
	if end, ok := sess.EndedAt(); ok {
		endedAt = end.Format(time.RFC3339Nano)
	}

	for _, stmt := range []string{
		`DELETE FROM session_inputs WHERE session_id = ?`,
		`DELETE FROM session_evaluations WHERE session_id = ?`,
		`DELETE FROM sessions WHERE id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, sess.ID()); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, module_id, lesson_id, started_at, ended_at, completed, correct_nonspace, incorrect_nonspace, corrections, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID(),
		sess.ModuleID(),
		sess.LessonID(),
		sess.StartedAt().Format(time.RFC3339Nano),
		endedAt,
		boolToInt(sess.IsCompleted()),
		agg.Correct,
		agg.Incorrect,
		agg.Corrections,
		agg.DurationMs,
	)
	if err != nil {
		return err
	}

	if err = insertInputs(ctx, tx, sess.ID(), sess.Inputs()); err != nil {
		return err
	}
	if err = insertEvaluations(ctx, tx, sess.ID(), sess.Evaluations()); err != nil {
		return err
	}
	return tx.Commit()
}

func insertInputs(ctx context.Context, tx *sql.Tx, id string, inputs []model.StoredInput) error {
	if len(inputs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_inputs (session_id, seq, at_ns, key, modifiers, kind, grapheme)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, in := range inputs {
		if _, err := stmt.ExecContext(ctx, id, i, in.At.UnixNano(), string(in.Key), in.Modifiers.String(), in.Kind.String(), in.Grapheme); err != nil {
			return err
		}
	}
	return nil
}

func insertEvaluations(ctx context.Context, tx *sql.Tx, id string, evals []model.StoredEvaluation) error {
	if len(evals) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_evaluations (session_id, seq, at_ns, target_index, expected, actual, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, ev := range evals {
		if _, err := stmt.ExecContext(ctx, id, i, ev.At.UnixNano(), ev.TargetIndex, ev.Expected, ev.Actual, ev.Outcome.String()); err != nil {
			return err
		}
	}
	return nil
}

// LoadSession reads a stored session with its logs.
func (s *Store) LoadSession(ctx context.Context, id string) (*model.TrainingSession, error) {
	var (
		moduleID, lessonID, startedAt string
		endedAt                       sql.NullString
		completed                     int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT module_id, lesson_id, started_at, ended_at, completed FROM sessions WHERE id = ?`, id,
	).Scan(&moduleID, &lessonID, &startedAt, &endedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if endedAt.Valid {
		parsed, err := time.Parse(time.RFC3339Nano, endedAt.String)
		if err != nil {
			return nil, err
		}
		end = &parsed
	}
	inputs, err := s.loadInputs(ctx, id)
	if err != nil {
		return nil, err
	}
	evals, err := s.loadEvaluations(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.RestoreSession(id, moduleID, lessonID, start, end, completed == 1, inputs, evals)
}

func (s *Store) loadInputs(ctx context.Context, id string) ([]model.StoredInput, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT at_ns, key, modifiers, kind, grapheme FROM session_inputs WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var inputs []model.StoredInput
	for rows.Next() {
		var (
			atNs            int64
			key, mods, kind string
			in              model.StoredInput
		)
		if err := rows.Scan(&atNs, &key, &mods, &kind, &in.Grapheme); err != nil {
			return nil, err
		}
		in.At = time.Unix(0, atNs)
		in.Key = model.KeyIdentity(key)
		if in.Modifiers, err = model.ParseModifiers(mods); err != nil {
			return nil, err
		}
		if in.Kind, err = model.ParseInputKind(kind); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}

func (s *Store) loadEvaluations(ctx context.Context, id string) ([]model.StoredEvaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT at_ns, target_index, expected, actual, outcome FROM session_evaluations WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var evals []model.StoredEvaluation
	for rows.Next() {
		var (
			atNs    int64
			outcome string
			ev      model.StoredEvaluation
		)
		if err := rows.Scan(&atNs, &ev.TargetIndex, &ev.Expected, &ev.Actual, &outcome); err != nil {
			return nil, err
		}
		ev.At = time.Unix(0, atNs)
		if ev.Outcome, err = model.ParseOutcome(outcome); err != nil {
			return nil, err
		}
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evals, nil
}

// ListSessions returns aggregates of completed sessions filtered by stats
// config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"completed = 1"}
	args := []any{}
	if cfg.ModuleID != "" {
		clauses = append(clauses, "module_id = ?")
		args = append(args, cfg.ModuleID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, module_id, lesson_id, started_at, ended_at, correct_nonspace, incorrect_nonspace, corrections, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt, endedAt string
		if err := rows.Scan(&agg.SessionID, &agg.ModuleID, &agg.LessonID, &startedAt, &endedAt, &agg.Correct, &agg.Incorrect, &agg.Corrections, &agg.DurationMs); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		agg.Completed = true
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// charStatsQuery aggregates per-character outcomes over the evaluations
// selected by scope. Latency is the gap between consecutive correct
// non-space keystrokes of a session, credited to the later character.
// filter narrows the output rows without affecting latency.
func charStatsQuery(scope, filter string, groupBySession bool) string {
	cols := "s.expected"
	if groupBySession {
		cols = "s.session_id, s.expected"
	}
	if filter == "" {
		filter = "1 = 1"
	}
	return fmt.Sprintf(`WITH scoped AS (
		SELECT session_id, seq, at_ns, expected, outcome
		FROM session_evaluations
		WHERE expected <> ' ' AND outcome IN ('correct', 'incorrect') AND %s
	),
	lat AS (
		SELECT session_id, seq,
			at_ns - LAG(at_ns) OVER (PARTITION BY session_id ORDER BY seq) AS delta
		FROM scoped
		WHERE outcome = 'correct'
	)
	SELECT %s,
		SUM(CASE WHEN s.outcome = 'correct' THEN 1 ELSE 0 END) AS correct,
		SUM(CASE WHEN s.outcome = 'incorrect' THEN 1 ELSE 0 END) AS incorrect,
		COALESCE(SUM(l.delta), 0) / 1000000 AS latency_sum_ms,
		COUNT(l.delta) AS latency_count
	FROM scoped s
	LEFT JOIN lat l ON l.session_id = s.session_id AND l.seq = s.seq
	WHERE %s
	GROUP BY %s`, scope, cols, filter, cols)
}

// GetWeakChars aggregates character stats over the most recent completed
// sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int, moduleID string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	scope := `session_id IN (
		SELECT id FROM sessions
		WHERE completed = 1 AND (? = '' OR module_id = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)`
	return s.queryCharAggregates(ctx, charStatsQuery(scope, "", false), moduleID, moduleID, window)
}

// ListCharAggregatesForSessions aggregates per-character stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	scope := fmt.Sprintf("session_id IN (%s)", placeholders(len(sessionIDs)))
	return s.queryCharAggregates(ctx, charStatsQuery(scope, "", false), stringArgs(sessionIDs)...)
}

func (s *Store) queryCharAggregates(ctx context.Context, query string, args ...any) ([]model.CharAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCharStatsForSessions returns per-session stats for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error) {
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return map[string]map[string]model.CharAggregate{}, nil
	}
	scope := fmt.Sprintf("session_id IN (%s)", placeholders(len(sessionIDs)))
	filter := fmt.Sprintf("s.expected IN (%s)", placeholders(len(chars)))
	args := append(stringArgs(sessionIDs), stringArgs(chars)...)

	rows, err := s.db.QueryContext(ctx, charStatsQuery(scope, filter, true), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]map[string]model.CharAggregate{}
	for rows.Next() {
		var sessionID string
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.CharAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
