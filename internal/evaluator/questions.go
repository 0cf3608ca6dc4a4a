package evaluator

import (
	"encoding/json"
	"fmt"
	"os"

	"huurrag/pkg/types"
)

// Question is one labelled retrieval query. A retrieved chunk is relevant
// when its ID appears in RelevantChunkIDs or its document ID appears in
// RelevantDocIDs.
type Question struct {
	Text             string   `json:"question"`
	RelevantChunkIDs []string `json:"relevant_chunk_ids,omitempty"`
	RelevantDocIDs   []string `json:"relevant_doc_ids,omitempty"`
}

// HasRelevance reports whether the question carries any relevance labels.
// Unlabelled questions are skipped rather than scored as misses.
func (q Question) HasRelevance() bool {
	return len(q.RelevantChunkIDs) > 0 || len(q.RelevantDocIDs) > 0
}

// LoadQuestions reads a question set from a JSON file holding an array of
// Question records.
func LoadQuestions(path string) ([]Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question set: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("parse question set %s: %w", path, err)
	}

	for i, q := range questions {
		if q.Text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", types.ErrInvalidConfig, i)
		}
	}
	return questions, nil
}
