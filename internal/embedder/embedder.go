package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedder maps texts to fixed-length vectors. One vector per input string,
// order preserved, Dimension() constant for the provider's lifetime.
// EmbedQuery exists separately because some models (E5 family) expect a
// different prefix for queries than for indexed passages.
type Embedder interface {
	// EmbedDocuments embeds a batch of passages for indexing.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single retrieval query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed embedding dimension.
	Dimension() int

	// Model returns the model name, used in collection keys.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache provides in-memory LRU caching of embeddings by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k embeddings
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector so caller mutations cannot
// pollute the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector in cache with automatic LRU eviction
func (c *Cache) Set(hash string, v []float32) {
	c.cache.Add(hash, v)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ValidateBatch rejects empty batches and empty texts before they reach a
// remote provider.
func ValidateBatch(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
