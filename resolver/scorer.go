package resolver

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer rates how well a normalized query matches a normalized
// candidate name, in [0, 1]. The matching algorithm is pluggable so it
// can be tuned without touching the resolver's control flow.
type Scorer interface {
	Score(query, candidate string) float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(query, candidate string) float64

func (f ScorerFunc) Score(query, candidate string) float64 {
	return f(query, candidate)
}

// DefaultScorer combines whole-string edit distance with per-token
// matching, so "salah" finds "mohamed salah" and "son" finds
// "heung-min son" without a full-name query.
type DefaultScorer struct{}

func (DefaultScorer) Score(query, candidate string) float64 {
	if query == candidate {
		return 1
	}
	best := similarity(query, candidate)
	for _, tok := range strings.Fields(candidate) {
		var s float64
		switch {
		case tok == query:
			s = 0.95
		case strings.HasPrefix(tok, query):
			s = 0.7 + 0.2*float64(utf8.RuneCountInString(query))/float64(utf8.RuneCountInString(tok))
		default:
			s = 0.9 * similarity(query, tok)
		}
		if s > best {
			best = s
		}
	}
	return best
}

// similarity is normalized Levenshtein: 1 for equal strings, 0 when
// every rune differs.
func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
