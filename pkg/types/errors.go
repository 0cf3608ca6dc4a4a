package types

import "errors"

// Error taxonomy for the retrieval core. Callers match with errors.Is; the
// CLI and MCP layers translate these kinds into exit codes and tool errors.
var (
	// ErrInvalidConfig is returned for bad chunking or search parameters
	// (size <= overlap, overlap < 0, k <= 0).
	ErrInvalidConfig = errors.New("invalid config")

	// ErrDimensionMismatch is returned when embedding vectors disagree in
	// length with each other or with the collection's declared dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyIndex is returned by Search against a collection with zero
	// vectors.
	ErrEmptyIndex = errors.New("empty index")

	// ErrPersistence is returned when the backing store is unreachable or
	// its persisted state cannot be loaded.
	ErrPersistence = errors.New("persistence failure")

	// ErrStrategyFailed marks a comparison row whose pipeline failed
	// end-to-end. The comparator reports the row and continues.
	ErrStrategyFailed = errors.New("strategy failed")
)
