// Package match scores candidate names against a query using normalized
// Damerau-Levenshtein distance with deterministic tie-breaking.
package match

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum score for a candidate to be accepted.
// Below it a candidate is dropped from consideration, never silently
// coerced into a match.
const DefaultThreshold = 0.72

// Matcher compares NormalizedKeys. Read-only after construction, safe for
// concurrent use.
type Matcher struct {
	threshold float64
}

// New creates a matcher; threshold <= 0 selects DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Score computes 1 - d/max(len(query), len(candidate)) clamped to [0,1],
// where d is the Damerau-Levenshtein distance with adjacent transpositions
// counted as a single edit. Score(a, b) == Score(b, a), and Score(x, x) == 1.
func (m *Matcher) Score(query, candidate string) float64 {
	q, c := []rune(query), []rune(candidate)
	maxLen := len(q)
	if len(c) > maxLen {
		maxLen = len(c)
	}
	if maxLen == 0 {
		return 1.0
	}
	score := 1.0 - float64(damerauDistance(q, c))/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// AcceptScore scores the pair and reports whether it clears the threshold.
// A plain Levenshtein pass (SIMD-accelerated upstream) runs first: each
// transposition can save at most one plain edit, so the Damerau distance is
// at least half the Levenshtein distance. Pairs that cannot reach the
// threshold even with that saving are rejected without the quadratic DP.
func (m *Matcher) AcceptScore(query, candidate string) (float64, bool) {
	maxLen := len([]rune(query))
	if n := len([]rune(candidate)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0, 1.0 >= m.threshold
	}

	plain := levenshtein.ComputeDistance(query, candidate)
	bound := 1.0 - float64((plain+1)/2)/float64(maxLen)
	if bound < m.threshold {
		return 0, false
	}

	score := m.Score(query, candidate)
	return score, score >= m.threshold
}

// damerauDistance is the optimal-string-alignment distance: insertions,
// deletions, substitutions and adjacent transpositions, one edit each.
func damerauDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t
				}
			}
			cur[j] = d
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Scored is a candidate name with its similarity score and dataset
// frequency.
type Scored struct {
	Key     string
	Display string
	Score   float64
	Freq    int
}

// Rank orders scored candidates: score descending, then dataset frequency
// descending (common names win), then shorter candidate, then lexical. The
// ordering is total, so identical inputs always rank identically.
func Rank(cands []Scored) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Freq != b.Freq {
			return a.Freq > b.Freq
		}
		if len(a.Key) != len(b.Key) {
			return len(a.Key) < len(b.Key)
		}
		return a.Key < b.Key
	})
}
