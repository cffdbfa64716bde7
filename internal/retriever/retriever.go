// internal/retriever/retriever.go
package retriever

import (
	"context"
	"sort"

	"pcaf-advisor/internal/models"
)

// Retriever is the semantic-search boundary consumed by the pipeline.
type Retriever interface {
	// Retrieve returns at most MaxCandidates candidates sorted by
	// descending relevance, or a StandardError from internal/common/errors
	// when credentials are absent or an upstream call fails.
	Retrieve(ctx context.Context, query string) ([]models.RetrievalCandidate, error)
}

// sortCandidates orders by descending relevance with document id as the
// tiebreaker, so identical upstream responses render identically.
func sortCandidates(candidates []models.RetrievalCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].RelevanceScore != candidates[j].RelevanceScore {
			return candidates[i].RelevanceScore > candidates[j].RelevanceScore
		}
		return candidates[i].DocumentID < candidates[j].DocumentID
	})
}

// relevanceFromDistance maps an upstream distance to a score in [0,1].
func relevanceFromDistance(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	return score
}
