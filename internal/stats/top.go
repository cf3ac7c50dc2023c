package stats

import (
	"sort"

	"github.com/verte-zerg/keytutor/internal/model"
)

// TopCharsByFrequency returns the n most practiced characters.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	ranked := make([]model.CharAggregate, len(aggs))
	copy(ranked, aggs)
	sort.Slice(ranked, func(i, j int) bool {
		ti := ranked[i].Correct + ranked[i].Incorrect
		tj := ranked[j].Correct + ranked[j].Incorrect
		if ti == tj {
			return ranked[i].Char < ranked[j].Char
		}
		return ti > tj
	})
	n = min(n, len(ranked))
	out := make([]string, n)
	for i := range out {
		out[i] = ranked[i].Char
	}
	return out
}
