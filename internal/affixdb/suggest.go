package affixdb

import (
	"sort"
	"strings"
	"unicode"
)

type Kind string

const (
	KindBase   Kind = "base"
	KindTemper Kind = "temper"
	KindAspect Kind = "aspect"
)

func (e ClassEntry) names(k Kind) []string {
	switch k {
	case KindTemper:
		return e.Temper
	case KindAspect:
		return e.Aspects
	default:
		return e.Base
	}
}

// Suggest returns up to limit names of the given kind that match q, best first.
// Substring hits rank ahead of near misses within maxEdit edits.
func (e ClassEntry) Suggest(k Kind, q string, limit, maxEdit int) []string {
	nq := normalize(stripTag(q))
	type hit struct {
		name string
		rank int
		pos  int
	}
	var hits []hit
	for i, name := range e.names(k) {
		nn := normalize(stripTag(name))
		switch {
		case nq == "":
			hits = append(hits, hit{name, 0, i})
		case nn == nq:
			hits = append(hits, hit{name, 0, i})
		case strings.Contains(nn, nq):
			hits = append(hits, hit{name, 1, i})
		case maxEdit > 0:
			if d := levenshtein(nn, nq); d <= maxEdit {
				hits = append(hits, hit{name, 1 + d, i})
			}
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return hits[a].pos < hits[b].pos
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.name)
	}
	return out
}

// stripTag drops a leading temper tag such as 【攻擊】.
func stripTag(s string) string {
	s = strings.TrimSpace(s)
	for _, t := range TemperTags {
		if strings.HasPrefix(s, t) {
			return strings.TrimPrefix(s, t)
		}
	}
	return s
}

// normalize does simple casefolding and trims punctuation/extra spaces.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range []rune(s) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsPunct(r):
			// skip
		default:
			if space && len(out) > 0 {
				out = append(out, ' ')
			}
			space = false
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// levenshtein computes edit distance (insertion, deletion, substitution cost 1).
func levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	n, m := len(ar), len(br)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	dp := make([]int, m+1)
	for j := 0; j <= m; j++ {
		dp[j] = j
	}
	for i := 1; i <= n; i++ {
		prev := dp[0]
		dp[0] = i
		for j := 1; j <= m; j++ {
			tmp := dp[j]
			cost := 0
			if ar[i-1] != br[j-1] {
				cost = 1
			}
			dp[j] = min(dp[j]+1, dp[j-1]+1, prev+cost)
			prev = tmp
		}
	}
	return dp[m]
}
