package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"huurrag/pkg/types"
)

func TestSerializeVectorRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.14159, 0, 1e-30}
	blob := serializeVector(original)
	assert.Len(t, blob, len(original)*4)
	assert.Equal(t, original, deserializeVector(blob))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched lengths and zero vectors yield 0.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestSortHitsTieBreak(t *testing.T) {
	hits := []types.SearchHit{
		{ChunkID: "b:1", Score: 0.5},
		{ChunkID: "a:2", Score: 0.9},
		{ChunkID: "a:1", Score: 0.5},
	}
	sortHits(hits)
	assert.Equal(t, "a:2", hits[0].ChunkID)
	assert.Equal(t, "a:1", hits[1].ChunkID)
	assert.Equal(t, "b:1", hits[2].ChunkID)
}

func TestCollectionKey(t *testing.T) {
	key := CollectionKey("intfloat/multilingual-e5-base", "recursive", 1000, 150)
	assert.Equal(t, "intfloat-multilingual-e5-base__recursive_1000_150", key)
}
