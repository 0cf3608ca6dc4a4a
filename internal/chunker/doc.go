// Package chunker splits raw documents into overlapping text chunks for
// embedding and retrieval.
//
// Four boundary policies share one contract:
//
//	chunks, err := chunker.Chunk(doc, chunker.Config{
//	    Strategy: chunker.StrategyStatute,
//	    Size:     1600,
//	    Overlap:  200,
//	})
//
//   - recursive: splits on section breaks, then lines, sentence ends and
//     words, merging undersized pieces back up to the size budget.
//   - tokens: fixed token-count windows with token overlap.
//   - sentence: whole-sentence groups with sentence-level overlap.
//   - statute: splits at markdown headings and "Artikel <nr>" boundaries so
//     no chunk straddles two statutory articles; oversized articles fall
//     back to recursive splitting.
//
// Chunking is pure and deterministic. Every chunk records its exact byte
// span [StartOffset, EndOffset) in the source document; consecutive spans
// overlap by at most the configured overlap and together cover the document
// without gaps. Evaluation reproducibility depends on this determinism.
package chunker
