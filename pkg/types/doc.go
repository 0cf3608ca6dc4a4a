// Package types provides shared type definitions for the huurrag retrieval
// subsystem.
//
// This package defines the domain types used across components: documents,
// chunks, retrieval hits, and evaluation reports, plus the error taxonomy the
// core surfaces to callers.
//
// # Core Types
//
// Document is an immutable raw text loaded from disk or a crawl mirror:
//
//	doc := types.Document{
//	    ID:      "laws/Boek7/titel4.txt",
//	    RawText: text,
//	    DocType: types.DocStatute,
//	}
//
// Chunk is a contiguous slice of a document's text used as the retrieval unit:
//
//	chunk := types.Chunk{
//	    DocumentID:    doc.ID,
//	    Text:          doc.RawText[start:end],
//	    StartOffset:   start,
//	    EndOffset:     end,
//	    SequenceIndex: 3,
//	}
//
// Chunks satisfy StartOffset < EndOffset <= len(RawText) and are ordered by
// SequenceIndex within a document.
//
// # Errors
//
// The error taxonomy is a set of sentinel errors intended for errors.Is
// checks. Components wrap them with context:
//
//	if errors.Is(err, types.ErrEmptyIndex) {
//	    // score the question as a miss instead of aborting
//	}
package types
