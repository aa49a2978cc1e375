package parser

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// suggestKeyword returns the block keyword closest to word, or "" when
// nothing is close enough to be a plausible typo.
func suggestKeyword(word string) string {
	if word == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(word, Keywords)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, kw := range Keywords {
		if d := fuzzy.LevenshteinDistance(word, kw); d < bestDist {
			best, bestDist = kw, d
		}
	}
	return best
}
