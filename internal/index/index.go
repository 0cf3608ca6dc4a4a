package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"huurrag/pkg/types"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

// Index is a persistent vector index over chunk collections. A collection
// holds the chunks and embeddings of one strategy/model combination so
// different configurations never mix.
//
// Implementations report failures through the shared sentinels:
// types.ErrDimensionMismatch when a vector's size disagrees with the
// collection, types.ErrEmptyIndex when searching a missing or empty
// collection, and types.ErrPersistence when the backing store fails.
type Index interface {
	// Rebuild drops the collection and all of its chunks and vectors.
	// Rebuilding a collection that does not exist is a no-op.
	Rebuild(ctx context.Context, collection string) error

	// Add upserts chunks with their vectors. len(chunks) must equal
	// len(vectors) and every vector must match the collection dimension,
	// which is fixed by the first Add after a rebuild. Re-adding a chunk
	// ID replaces the stored text and vector.
	Add(ctx context.Context, collection string, chunks []types.Chunk, vectors [][]float32) error

	// Search returns the top-k chunks by cosine similarity, ordered by
	// descending score with ties broken by ascending chunk ID.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]types.SearchHit, error)

	// Count reports the number of chunks stored in the collection.
	// A missing collection counts as zero.
	Count(ctx context.Context, collection string) (int, error)

	Close() error
}

// Open creates the named index backend. For SQLite the parent directory
// of dbPath is created if it does not exist; for Qdrant addr is a gRPC
// host:port.
func Open(backend, dbPath, addr string) (Index, error) {
	switch backend {
	case BackendQdrant:
		return NewQdrantIndex(addr)
	case BackendSQLite, "":
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create index directory: %v", types.ErrPersistence, err)
			}
		}
		return NewSQLiteIndex(dbPath)
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", types.ErrInvalidConfig, backend)
	}
}

// CollectionKey derives the canonical collection name for one
// model/strategy/size/overlap combination.
func CollectionKey(model, strategy string, size, overlap int) string {
	return fmt.Sprintf("%s__%s_%d_%d", sanitizeKeyPart(model), sanitizeKeyPart(strategy), size, overlap)
}

func sanitizeKeyPart(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			out = append(out, c)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
