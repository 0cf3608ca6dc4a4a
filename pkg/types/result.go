package types

import "time"

// SearchHit is a single nearest-neighbor result. Hits are ordered by
// descending Score; equal scores are broken by ascending ChunkID so result
// order is reproducible across runs and backends.
type SearchHit struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Chunk   Chunk   `json:"-"`
}

// QuestionResult records the outcome of a single evaluated question.
// Rank is 1-indexed; 0 means no relevant chunk appeared in the top k.
type QuestionResult struct {
	Question string `json:"question"`
	Rank     int    `json:"rank"`
	Hit      bool   `json:"hit"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// EvalReport aggregates retrieval metrics for one chunking strategy.
type EvalReport struct {
	Strategy    string           `json:"strategy"`
	Size        int              `json:"size"`
	Overlap     int              `json:"overlap"`
	K           int              `json:"k"`
	ChunkCount  int              `json:"chunk_count"`
	BuildTime   time.Duration    `json:"build_time_ns"`
	HitAtK      float64          `json:"hit_at_k"`
	MRR         float64          `json:"mrr"`
	PerQuestion []QuestionResult `json:"per_question,omitempty"`

	// Failed marks a comparator row whose pipeline failed end-to-end.
	// No partial metrics are reported for a failed strategy.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}
