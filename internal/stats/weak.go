package stats

import (
	"sort"

	"github.com/verte-zerg/keytutor/internal/model"
)

// SelectWeakChars returns up to top characters ordered from the lowest
// accuracy up. Characters seen fewer than minSamples times are skipped.
func SelectWeakChars(aggs []model.CharAggregate, top, minSamples int) []string {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Char == "" || agg.Char == " " || agg.Correct+agg.Incorrect < minSamples {
			continue
		}
		candidates = append(candidates, agg)
	}
	candidates = rankByAccuracy(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Char)
	}
	return out
}

// rankByAccuracy sorts a copy of aggs by ascending accuracy, then by
// descending average latency, then by character.
func rankByAccuracy(aggs []model.CharAggregate) []model.CharAggregate {
	out := make([]model.CharAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := accuracy(out[i]), accuracy(out[j])
		if ai != aj {
			return ai < aj
		}
		li, lj := averageLatency(out[i]), averageLatency(out[j])
		if li != lj {
			return li > lj
		}
		return out[i].Char < out[j].Char
	})
	return out
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
