package types

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Chunk is a contiguous slice of a document's text used as the retrieval
// unit. Chunks are created by the chunker and immutable thereafter.
type Chunk struct {
	// ID is "<document id>:<sequence index>", unique within a collection.
	ID         string
	DocumentID string

	// Text is the exact byte range RawText[StartOffset:EndOffset].
	Text        string
	StartOffset int
	EndOffset   int

	// SequenceIndex orders chunks within their document, starting at 0.
	SequenceIndex int

	// Metadata carries strategy-specific labels such as the statutory
	// article number ("article" -> "7:244") or source category.
	Metadata map[string]string
}

// ChunkID builds the canonical chunk identifier for a document and sequence
// index.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}

// Validate checks the chunk's offset invariants.
func (c *Chunk) Validate() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.StartOffset < 0 || c.StartOffset >= c.EndOffset {
		return errors.New("chunk offsets must satisfy 0 <= start < end")
	}
	if c.SequenceIndex < 0 {
		return errors.New("sequence index must be >= 0")
	}
	if c.EndOffset-c.StartOffset != len(c.Text) {
		return errors.New("chunk text length does not match offsets")
	}
	return nil
}

// ContentHash computes the SHA-256 hash of the chunk text. Used by the
// embedder cache to skip re-embedding unchanged chunks.
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Text))
}
