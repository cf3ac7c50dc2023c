// Package generator builds practice text from a word list.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/rivo/uniseg"
)

// Options controls the shape of generated text.
type Options struct {
	Count    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune

	// Weak biases word selection toward words containing these graphemes.
	// Each occurrence adds WeakFactor to a word's base weight of 1.
	Weak       []string
	WeakFactor float64
}

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks opts.Count words and applies the caps and punctuation
// rules. It returns nil for an empty word list.
func (g *Generator) Generate(words []string, opts Options) []string {
	if len(words) == 0 || opts.Count <= 0 {
		return nil
	}
	weights, total := wordWeights(words, opts.Weak, opts.WeakFactor)
	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		word := words[g.pick(weights, total)]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

// Text is Generate joined by single spaces.
func (g *Generator) Text(words []string, opts Options) string {
	return strings.Join(g.Generate(words, opts), " ")
}

func (g *Generator) pick(weights []float64, total float64) int {
	if weights == nil {
		return g.rnd.Intn(int(total))
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for j, w := range weights {
		acc += w
		if r < acc {
			return j
		}
	}
	return len(weights) - 1
}

// wordWeights returns nil weights and the word count as total when no
// weighting applies, so selection stays uniform.
func wordWeights(words []string, weak []string, factor float64) ([]float64, float64) {
	if len(weak) == 0 || factor <= 0 {
		return nil, float64(len(words))
	}
	weakSet := make(map[string]struct{}, len(weak))
	for _, w := range weak {
		weakSet[w] = struct{}{}
	}
	weights := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		state := -1
		rest := word
		var cluster string
		for len(rest) > 0 {
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			if _, ok := weakSet[strings.ToLower(cluster)]; ok {
				weakCount++
			} else if _, ok := weakSet[cluster]; ok {
				weakCount++
			}
		}
		weights[i] = 1.0 + float64(weakCount)*factor
		total += weights[i]
	}
	return weights, total
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() >= capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() >= punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
