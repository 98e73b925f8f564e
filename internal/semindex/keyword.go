package semindex

import (
	"sort"
	"strings"
)

// Words too common to carry signal in graph queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "what": true, "why": true, "how": true,
	"who": true, "when": true, "did": true, "do": true, "does": true,
	"to": true, "for": true, "of": true, "in": true, "on": true,
	"at": true, "and": true, "or": true, "but": true, "not": true,
	"this": true, "that": true, "it": true,
}

func tokenize(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		words[w] = true
	}
	return words
}

// keywordSearch scores nodes by word overlap with the query. Stop words are
// dropped from the query first; only positive scores are returned, sorted
// descending with node ID as a deterministic tiebreak.
func keywordSearch(texts map[string]string, query string, topK int) []ScoredResult {
	queryWords := tokenize(query)
	for w := range queryWords {
		if stopWords[w] {
			delete(queryWords, w)
		}
	}

	var scored []ScoredResult
	for nodeID, text := range texts {
		textWords := tokenize(text)
		overlap := 0
		for w := range queryWords {
			if textWords[w] {
				overlap++
			}
		}
		if overlap > 0 {
			denom := len(queryWords)
			if denom < 1 {
				denom = 1
			}
			scored = append(scored, ScoredResult{ID: nodeID, Score: float64(overlap) / float64(denom)})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
