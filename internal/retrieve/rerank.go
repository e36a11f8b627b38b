package retrieve

import (
	"math"
	"sort"
	"strings"

	"github.com/canonist/canonist/internal/model"
)

// rerank assigns each excerpt a linear score of raw relevance, token-set
// overlap with the claim, and a length prior, then stable-sorts descending
// so equal-score excerpts preserve input order.
func (r *Retriever) rerank(excerpts []model.Excerpt, claimQuery string) []model.Excerpt {
	w := r.cfg.RerankWeights

	for i := range excerpts {
		overlap := tokenOverlap(claimQuery, excerpts[i].Text)
		length := math.Min(float64(len(excerpts[i].Text))/1000.0, 1.0)
		excerpts[i].RerankScore = w.Relevance*excerpts[i].Relevance + w.Overlap*overlap + w.Length*length
	}

	sort.SliceStable(excerpts, func(i, j int) bool {
		return excerpts[i].RerankScore > excerpts[j].RerankScore
	})
	return excerpts
}

// tokenOverlap is the fraction of the query's distinct tokens that also
// occur in the text, case-insensitive. Empty query yields 0.
func tokenOverlap(query, text string) float64 {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}
	textTokens := tokenSet(text)

	shared := 0
	for token := range queryTokens {
		if textTokens[token] {
			shared++
		}
	}
	return float64(shared) / float64(len(queryTokens))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = true
	}
	return set
}
