package comparator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"huurrag/pkg/types"
)

// comparisonOutput is the JSON document written by WriteJSON.
type comparisonOutput struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Model       string             `json:"model"`
	Reports     []types.EvalReport `json:"reports"`
}

// WriteJSON writes the comparison rows as an indented JSON document.
func WriteJSON(w io.Writer, model string, reports []types.EvalReport) error {
	out := comparisonOutput{
		GeneratedAt: time.Now().UTC(),
		Model:       model,
		Reports:     reports,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatTable renders the comparison as a plain text table for terminals.
func FormatTable(reports []types.EvalReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %6s %8s %8s %8s %8s %12s\n",
		"strategy", "size", "overlap", "chunks", "hit@k", "mrr", "build")
	for _, r := range reports {
		if r.Failed {
			fmt.Fprintf(&b, "%-12s %6d %8d %8s %8s %8s %12s  FAILED: %s\n",
				r.Strategy, r.Size, r.Overlap, "-", "-", "-", "-", r.Error)
			continue
		}
		fmt.Fprintf(&b, "%-12s %6d %8d %8d %8.3f %8.3f %12s\n",
			r.Strategy, r.Size, r.Overlap, r.ChunkCount, r.HitAtK, r.MRR,
			r.BuildTime.Round(time.Millisecond))
	}
	return b.String()
}
