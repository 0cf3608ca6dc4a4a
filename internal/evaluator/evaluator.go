// Package evaluator scores retrieval quality against a labelled question
// set using hit@k and mean reciprocal rank.
package evaluator

import (
	"context"
	"errors"
	"fmt"

	"huurrag/internal/index"
	"huurrag/pkg/types"
)

// QueryEmbedder turns a question into a query vector. It matches the
// EmbedQuery method of the embedder providers.
type QueryEmbedder func(ctx context.Context, text string) ([]float32, error)

// Evaluate runs every question against the collection and aggregates
// hit@k and MRR. Rank is 1-indexed; a question whose relevant chunks miss
// the top k contributes 0 to both metrics. Questions without relevance
// labels are marked skipped and excluded from the denominators. Searching
// an empty collection scores as a miss rather than failing the run.
func Evaluate(ctx context.Context, questions []Question, idx index.Index, collection string, embedQuery QueryEmbedder, k int) (types.EvalReport, error) {
	report := types.EvalReport{K: k}
	if k <= 0 {
		return report, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidConfig, k)
	}

	evaluated := 0
	hitCount := 0
	reciprocalSum := 0.0

	for _, q := range questions {
		result := types.QuestionResult{Question: q.Text}

		if !q.HasRelevance() {
			result.Skipped = true
			report.PerQuestion = append(report.PerQuestion, result)
			continue
		}
		evaluated++

		vector, err := embedQuery(ctx, q.Text)
		if err != nil {
			return report, fmt.Errorf("embed question %q: %w", q.Text, err)
		}

		hits, err := idx.Search(ctx, collection, vector, k)
		if errors.Is(err, types.ErrEmptyIndex) {
			report.PerQuestion = append(report.PerQuestion, result)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("search for question %q: %w", q.Text, err)
		}

		if rank := firstRelevantRank(q, hits); rank > 0 {
			result.Rank = rank
			result.Hit = true
			hitCount++
			reciprocalSum += 1.0 / float64(rank)
		}
		report.PerQuestion = append(report.PerQuestion, result)
	}

	if evaluated > 0 {
		report.HitAtK = float64(hitCount) / float64(evaluated)
		report.MRR = reciprocalSum / float64(evaluated)
	}
	return report, nil
}

// firstRelevantRank returns the 1-indexed rank of the first relevant hit,
// or 0 when none of the hits are relevant.
func firstRelevantRank(q Question, hits []types.SearchHit) int {
	for i, hit := range hits {
		if isRelevant(q, hit) {
			return i + 1
		}
	}
	return 0
}

func isRelevant(q Question, hit types.SearchHit) bool {
	for _, id := range q.RelevantChunkIDs {
		if hit.ChunkID == id {
			return true
		}
	}
	for _, docID := range q.RelevantDocIDs {
		if hit.Chunk.DocumentID == docID {
			return true
		}
	}
	return false
}
