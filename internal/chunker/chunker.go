package chunker

import (
	"fmt"

	"huurrag/pkg/types"
)

// Strategy selects the chunk-boundary policy.
type Strategy string

const (
	// StrategyRecursive splits on a priority-ordered separator list
	// (paragraph, line, sentence, word) and merges undersized pieces.
	StrategyRecursive Strategy = "recursive"
	// StrategyTokens splits by token count with token-based overlap.
	StrategyTokens Strategy = "tokens"
	// StrategySentence groups whole sentences up to the size budget.
	StrategySentence Strategy = "sentence"
	// StrategyStatute splits at markdown headings and "Artikel" boundaries
	// so no chunk straddles two statutory articles.
	StrategyStatute Strategy = "statute"
)

// AllStrategies lists the supported strategies in comparison order.
var AllStrategies = []Strategy{StrategyRecursive, StrategyTokens, StrategySentence, StrategyStatute}

// Config holds the chunking parameters. Size and Overlap are measured in
// bytes for every strategy except StrategyTokens, where they are token
// counts.
type Config struct {
	Strategy Strategy
	Size     int
	Overlap  int
}

// Validate checks the size/overlap constraints shared by all strategies.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: size must be > 0, got %d", types.ErrInvalidConfig, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be >= 0, got %d", types.ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", types.ErrInvalidConfig, c.Overlap, c.Size)
	}
	switch c.Strategy {
	case StrategyRecursive, StrategyTokens, StrategySentence, StrategyStatute:
		return nil
	default:
		return fmt.Errorf("%w: unknown strategy %q", types.ErrInvalidConfig, c.Strategy)
	}
}

// span is a half-open byte range [start, end) into a document's text.
type span struct {
	start, end int
}

// Chunk splits a document into overlapping chunks per the configured
// strategy. It is pure and deterministic: the same document and config
// always yield byte-identical chunk boundaries. An empty document yields an
// empty slice; a document shorter than the size budget yields a single
// chunk with sequence index 0.
func Chunk(doc types.Document, cfg Config) ([]types.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(doc.RawText) == 0 {
		return nil, nil
	}

	var spans []span
	var labels []map[string]string

	switch cfg.Strategy {
	case StrategyRecursive:
		spans = mergeSpans(splitOversized(doc.RawText, 0, len(doc.RawText), cfg.Size), cfg.Size, cfg.Overlap)
	case StrategyTokens:
		spans = tokenSpans(doc.RawText, cfg.Size, cfg.Overlap)
	case StrategySentence:
		spans = sentenceSpans(doc.RawText, 0, len(doc.RawText), cfg.Size, cfg.Overlap)
	case StrategyStatute:
		spans, labels = statuteSpans(doc, cfg)
	}

	chunks := make([]types.Chunk, 0, len(spans))
	for i, sp := range spans {
		meta := make(map[string]string, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		if labels != nil && labels[i] != nil {
			for k, v := range labels[i] {
				meta[k] = v
			}
		}
		chunks = append(chunks, types.Chunk{
			ID:            types.ChunkID(doc.ID, i),
			DocumentID:    doc.ID,
			Text:          doc.RawText[sp.start:sp.end],
			StartOffset:   sp.start,
			EndOffset:     sp.end,
			SequenceIndex: i,
			Metadata:      meta,
		})
	}
	return chunks, nil
}
