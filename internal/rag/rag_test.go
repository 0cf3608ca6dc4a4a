package rag

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huurrag/internal/chunker"
	"huurrag/internal/embedder"
	"huurrag/internal/index"
	"huurrag/pkg/types"
)

// echoCompleter returns the prompt so tests can inspect what Ask sends.
type echoCompleter struct{}

func (echoCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return prompt, nil
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "rag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	cfg := chunker.Config{Strategy: chunker.StrategyStatute, Size: 1600, Overlap: 200}
	return New(idx, emb, echoCompleter{}, cfg, 3)
}

func statuteDocs() []types.Document {
	return []types.Document{{
		ID:      "laws/bw7.txt",
		RawText: "Artikel 7:244 De huurprijs kan worden verhoogd.\n\nArtikel 7:245 Servicekosten worden jaarlijks afgerekend.\n",
		DocType: types.DocStatute,
	}}
}

func TestIngestAndSearch(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	count, err := p.Ingest(ctx, statuteDocs())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := p.Search(ctx, "huurprijs", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIngestRebuildsCollection(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, statuteDocs())
	require.NoError(t, err)

	// A second ingest of a smaller corpus must not leave stale chunks.
	smaller := []types.Document{{
		ID:      "laws/bw7.txt",
		RawText: "Artikel 7:244 De huurprijs kan worden verhoogd.\n",
		DocType: types.DocStatute,
	}}
	count, err := p.Ingest(ctx, smaller)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := p.Search(ctx, "iets", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestUpsertKeepsExistingChunks(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, statuteDocs())
	require.NoError(t, err)

	// Upserting a second document must not drop the first one.
	extra := []types.Document{{
		ID:      "laws/bw7a.txt",
		RawText: "Artikel 7:271 De huurovereenkomst eindigt door opzegging.\n",
		DocType: types.DocStatute,
	}}
	count, err := p.Upsert(ctx, extra)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := p.Search(ctx, "iets", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestAskBuildsGroundedPrompt(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, statuteDocs())
	require.NoError(t, err)

	answer, hits, err := p.Ask(ctx, "mag de huurprijs omhoog")
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	// The echo completer returns the prompt.
	assert.Contains(t, answer, "Context:")
	assert.Contains(t, answer, "Question: mag de huurprijs omhoog")
	assert.Contains(t, answer, "laws/bw7.txt")
}

func TestAskPrefersCitedArticle(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, statuteDocs())
	require.NoError(t, err)

	_, hits, err := p.Ask(ctx, "wat zegt artikel 7:245 over servicekosten")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "7:245", hits[0].Chunk.Metadata["article"])
}

func TestAskWithoutCompleter(t *testing.T) {
	p := newPipeline(t)
	p.completer = nil

	_, _, err := p.Ask(context.Background(), "vraag")
	assert.Error(t, err)
}

func TestExtractArticle(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"wat zegt 7:244 over huurprijs", "7:244"},
		{"wat zegt artikel 244 hierover", "7:244"},
		{"leg art. 271a uit", "7:271a"},
		{"mag de huur omhoog", ""},
		{"what does article 231 say", "7:231"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArticle(tt.question), tt.question)
	}
}

func TestBuildPromptDeduplicatesSources(t *testing.T) {
	hits := []types.SearchHit{
		{ChunkID: "a:0", Chunk: types.Chunk{DocumentID: "laws/bw7.txt", Text: "eerste"}},
		{ChunkID: "a:1", Chunk: types.Chunk{DocumentID: "laws/bw7.txt", Text: "tweede"}},
	}
	prompt := buildPrompt("vraag", hits)
	assert.Equal(t, 1, strings.Count(prompt, "- laws/bw7.txt"))
	assert.Contains(t, prompt, "eerste")
	assert.Contains(t, prompt, "tweede")
}
