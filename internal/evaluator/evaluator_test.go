package evaluator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huurrag/internal/index"
	"huurrag/pkg/types"
)

// evalIndex is a small three-chunk fixture: chunk vectors are axis-aligned
// so a query vector picks any ranking we want.
func evalIndex(t *testing.T) index.Index {
	t.Helper()
	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "eval.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	chunks := []types.Chunk{
		{ID: "bw7.txt:0", DocumentID: "bw7.txt", Text: "huurprijs", EndOffset: 9},
		{ID: "bw7.txt:1", DocumentID: "bw7.txt", Text: "opzegging", EndOffset: 9},
		{ID: "faq.md:0", DocumentID: "faq.md", Text: "servicekosten", EndOffset: 13},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	require.NoError(t, idx.Add(context.Background(), "col", chunks, vectors))
	return idx
}

// embedFixed returns the same query vector for every question.
func embedFixed(v []float32) QueryEmbedder {
	return func(ctx context.Context, text string) ([]float32, error) {
		return v, nil
	}
}

func TestEvaluateRankTwo(t *testing.T) {
	idx := evalIndex(t)

	// Query closest to bw7.txt:0, second closest to bw7.txt:1. The
	// relevant chunk sits at rank 2, so hit@3 is 1 and MRR is 1/2.
	questions := []Question{
		{Text: "wanneer mag de verhuurder opzeggen", RelevantChunkIDs: []string{"bw7.txt:1"}},
	}
	report, err := Evaluate(context.Background(), questions, idx, "col", embedFixed([]float32{1, 0.5, 0}), 3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.HitAtK)
	assert.Equal(t, 0.5, report.MRR)
	require.Len(t, report.PerQuestion, 1)
	assert.Equal(t, 2, report.PerQuestion[0].Rank)
	assert.True(t, report.PerQuestion[0].Hit)
}

func TestEvaluateMissOutsideTopK(t *testing.T) {
	idx := evalIndex(t)

	// k=1 only returns bw7.txt:0; the relevant chunk never appears.
	questions := []Question{
		{Text: "servicekosten", RelevantChunkIDs: []string{"faq.md:0"}},
	}
	report, err := Evaluate(context.Background(), questions, idx, "col", embedFixed([]float32{1, 0, 0.1}), 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.HitAtK)
	assert.Equal(t, 0.0, report.MRR)
	assert.Equal(t, 0, report.PerQuestion[0].Rank)
	assert.False(t, report.PerQuestion[0].Hit)
}

func TestEvaluateDocIDRelevance(t *testing.T) {
	idx := evalIndex(t)

	// Relevance by document: any chunk of faq.md counts.
	questions := []Question{
		{Text: "wat valt onder servicekosten", RelevantDocIDs: []string{"faq.md"}},
	}
	report, err := Evaluate(context.Background(), questions, idx, "col", embedFixed([]float32{0, 0, 1}), 3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.HitAtK)
	assert.Equal(t, 1.0, report.MRR)
	assert.Equal(t, 1, report.PerQuestion[0].Rank)
}

func TestEvaluateSkipsUnlabelledQuestions(t *testing.T) {
	idx := evalIndex(t)

	questions := []Question{
		{Text: "labelled", RelevantChunkIDs: []string{"bw7.txt:0"}},
		{Text: "unlabelled"},
	}
	report, err := Evaluate(context.Background(), questions, idx, "col", embedFixed([]float32{1, 0, 0}), 3)
	require.NoError(t, err)

	// The skipped question appears in the detail rows but not in the
	// metric denominators.
	require.Len(t, report.PerQuestion, 2)
	assert.True(t, report.PerQuestion[1].Skipped)
	assert.Equal(t, 1.0, report.HitAtK)
	assert.Equal(t, 1.0, report.MRR)
}

func TestEvaluateEmptyIndexScoresAsMiss(t *testing.T) {
	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	questions := []Question{
		{Text: "iets", RelevantChunkIDs: []string{"x:0"}},
	}
	report, err := Evaluate(context.Background(), questions, idx, "nope", embedFixed([]float32{1}), 3)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.HitAtK)
	assert.Equal(t, 0.0, report.MRR)
	assert.False(t, report.PerQuestion[0].Hit)
}

func TestEvaluateInvalidK(t *testing.T) {
	idx := evalIndex(t)

	_, err := Evaluate(context.Background(), nil, idx, "col", embedFixed([]float32{1}), 0)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestLoadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	content := `[
		{"question": "mag de huur zomaar omhoog", "relevant_doc_ids": ["laws/bw7.txt"]},
		{"question": "hoe lang is de opzegtermijn", "relevant_chunk_ids": ["laws/bw7.txt:12"]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	questions, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, []string{"laws/bw7.txt"}, questions[0].RelevantDocIDs)
	assert.True(t, questions[1].HasRelevance())
}

func TestLoadQuestionsRejectsEmptyText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"question": ""}]`), 0o644))

	_, err := LoadQuestions(path)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}
