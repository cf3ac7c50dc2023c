// Package stats computes speed, accuracy and per-character statistics from
// recorded sessions and renders them as plain text.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/keytutor/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes WPM, CPM and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (wpm, cpm, accuracy float64) {
	if durationMs <= 0 {
		return 0, 0, 0
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(correct) / 5.0) / minutes
	cpm = float64(correct) / minutes
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	return wpm, cpm, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values. When
// width is positive only the most recent width values are drawn.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWPM, totalCPM, totalAcc float64
	var bestWPM float64
	var corrections int
	var practiced int64
	for _, s := range sessions {
		wpm, cpm, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalWPM += wpm
		totalCPM += cpm
		totalAcc += acc
		bestWPM = math.Max(bestWPM, wpm)
		corrections += s.Corrections
		practiced += s.DurationMs
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Practice time: %s", formatDuration(practiced)),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg CPM: %.2f", totalCPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", (totalAcc/count)*100),
		fmt.Sprintf("Corrections: %d", corrections),
		"",
	}
	return writeLines(w, lines)
}

func formatDuration(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window
// sessions and clipped to width columns.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpm, _, acc := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		wpms[i] = wpm
		accs[i] = acc * 100
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)
	return writeLines(w, []string{
		"Learning Curves",
		curveLine("WPM", wpms, width),
		curveLine("Accuracy", accs, width),
		"",
	})
}

func curveLine(name string, values []float64, width int) string {
	const labelWidth = 10
	sparkWidth := 0
	if width > 0 {
		sparkWidth = max(width-labelWidth-16, 8)
	}
	lo, hi := minMax(values)
	return fmt.Sprintf("%-*s%s  %.1f..%.1f", labelWidth, name, Sparkline(values, sparkWidth), lo, hi)
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	ranked := rankByAccuracy(aggs)
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(ranked))
	for _, agg := range ranked {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%.1f", averageLatency(agg)),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	lines := []string{"Per-Character (Windowed)"}
	lines = append(lines, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderCharCurves prints accuracy and latency sparklines for chars across
// sessions.
func RenderCharCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.CharAggregate, chars []string, window, width int) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	lines := []string{"Per-Character Curves"}
	for _, ch := range chars {
		accSeries := make([]float64, len(sessions))
		latSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][ch]
			if !ok {
				continue
			}
			if agg.Correct+agg.Incorrect > 0 {
				accSeries[i] = accuracy(agg) * 100
			}
			latSeries[i] = averageLatency(agg)
		}
		lines = append(lines,
			fmt.Sprintf("Char %s", ch),
			curveLine("Accuracy", MovingAverage(accSeries, window), width),
			curveLine("Latency", MovingAverage(latSeries, window), width),
		)
	}
	lines = append(lines, "")
	return writeLines(w, lines)
}

func averageLatency(agg model.CharAggregate) float64 {
	if agg.LatencyCount == 0 {
		return 0
	}
	return float64(agg.LatencySumMs) / float64(agg.LatencyCount)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
