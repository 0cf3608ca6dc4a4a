package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// LocalDimension is the vector size of the offline provider.
const LocalDimension = 384

// LocalModel is the model name reported by the offline provider.
const LocalModel = "local-hash-embeddings"

// LocalProvider produces deterministic vectors derived from the text hash.
// It needs no network or API key, which makes it the default for tests and
// offline runs. The vectors carry no semantic signal beyond exact-text
// identity, so retrieval quality numbers from this provider are only
// meaningful for plumbing checks.
type LocalProvider struct {
	cache *Cache
}

// NewLocalProvider creates the offline embedder.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{cache: cache}, nil
}

// hashVector expands the text hash into a unit-length vector. Each block of
// the vector is filled from sha256(text || counter) so the full dimension is
// covered and distinct texts land far apart.
func hashVector(text string) []float32 {
	v := make([]float32, LocalDimension)
	var counter [8]byte
	filled := 0
	for block := 0; filled < LocalDimension; block++ {
		binary.LittleEndian.PutUint64(counter[:], uint64(block))
		sum := sha256.Sum256(append([]byte(text), counter[:]...))
		for i := 0; i < len(sum) && filled < LocalDimension; i++ {
			v[filled] = float32(sum[i])/127.5 - 1.0
			filled++
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range v {
			v[i] *= scale
		}
	}
	return v
}

func (l *LocalProvider) embed(text string) []float32 {
	hash := ComputeHash(text)
	if l.cache != nil {
		if v, ok := l.cache.Get(hash); ok {
			return v
		}
	}
	v := hashVector(text)
	if l.cache != nil {
		l.cache.Set(hash, v)
	}
	return v
}

func (l *LocalProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = l.embed(text)
	}
	return out, nil
}

func (l *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateBatch([]string{text}); err != nil {
		return nil, err
	}
	return l.embed(text), nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Model() string {
	return LocalModel
}

func (l *LocalProvider) Close() error {
	return nil
}
