// Package comparator runs several chunking configurations through the
// full chunk-embed-index-evaluate pipeline and reports their retrieval
// metrics side by side.
package comparator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"huurrag/internal/chunker"
	"huurrag/internal/embedder"
	"huurrag/internal/evaluator"
	"huurrag/internal/index"
	"huurrag/pkg/types"
)

// Run is one chunking configuration to compare.
type Run struct {
	Strategy chunker.Strategy `json:"strategy"`
	Size     int              `json:"size"`
	Overlap  int              `json:"overlap"`
}

// DefaultRuns mirrors the configurations we compare in practice: byte
// sizes for the byte-based strategies, token counts for the token one.
var DefaultRuns = []Run{
	{Strategy: chunker.StrategyRecursive, Size: 1000, Overlap: 150},
	{Strategy: chunker.StrategyTokens, Size: 384, Overlap: 64},
	{Strategy: chunker.StrategySentence, Size: 1200, Overlap: 150},
	{Strategy: chunker.StrategyStatute, Size: 1600, Overlap: 200},
}

// Options configures a comparison.
type Options struct {
	Runs      []Run // defaults to DefaultRuns
	K         int   // top-k for evaluation
	Parallel  bool  // run strategies concurrently
	KeepIndex bool  // keep per-strategy collections after the run
}

// Comparator wires the pipeline pieces together.
type Comparator struct {
	index    index.Index
	embedder embedder.Embedder
}

// New creates a comparator over the given index and embedder.
func New(idx index.Index, emb embedder.Embedder) *Comparator {
	return &Comparator{index: idx, embedder: emb}
}

// Compare evaluates every run against the documents and questions. Each
// run gets an exclusive collection derived from the embedding model and
// the chunking configuration, so runs never see each other's chunks. A
// run that fails at any stage produces a failed report row wrapping
// types.ErrStrategyFailed; the other runs still complete. Compare itself
// only returns an error when every run failed.
func (c *Comparator) Compare(ctx context.Context, docs []types.Document, questions []evaluator.Question, opts Options) ([]types.EvalReport, error) {
	runs := opts.Runs
	if len(runs) == 0 {
		runs = DefaultRuns
	}
	if opts.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidConfig, opts.K)
	}

	reports := make([]types.EvalReport, len(runs))

	if opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, run := range runs {
			g.Go(func() error {
				reports[i] = c.runOne(gctx, docs, questions, run, opts)
				return nil
			})
		}
		// Failures land in the report rows, never in the group error.
		_ = g.Wait()
	} else {
		for i, run := range runs {
			reports[i] = c.runOne(ctx, docs, questions, run, opts)
		}
	}

	failed := 0
	for _, r := range reports {
		if r.Failed {
			failed++
		}
	}
	if failed == len(reports) {
		return reports, fmt.Errorf("%w: all %d strategies failed", types.ErrStrategyFailed, failed)
	}
	return reports, nil
}

// runOne executes the full pipeline for a single configuration.
func (c *Comparator) runOne(ctx context.Context, docs []types.Document, questions []evaluator.Question, run Run, opts Options) types.EvalReport {
	report := types.EvalReport{
		Strategy: string(run.Strategy),
		Size:     run.Size,
		Overlap:  run.Overlap,
		K:        opts.K,
	}

	collection := index.CollectionKey(c.embedder.Model(), string(run.Strategy), run.Size, run.Overlap)

	buildStart := time.Now()
	chunks, err := c.buildChunks(docs, run)
	if err != nil {
		return failedReport(report, err)
	}
	report.ChunkCount = len(chunks)

	if err := c.rebuildCollection(ctx, collection, chunks); err != nil {
		return failedReport(report, err)
	}
	report.BuildTime = time.Since(buildStart)

	evalReport, err := evaluator.Evaluate(ctx, questions, c.index, collection, c.embedder.EmbedQuery, opts.K)
	if err != nil {
		return failedReport(report, err)
	}
	report.HitAtK = evalReport.HitAtK
	report.MRR = evalReport.MRR
	report.PerQuestion = evalReport.PerQuestion

	if !opts.KeepIndex {
		if err := c.index.Rebuild(ctx, collection); err != nil {
			return failedReport(report, err)
		}
	}
	return report
}

// buildChunks chunks the whole corpus with one configuration.
func (c *Comparator) buildChunks(docs []types.Document, run Run) ([]types.Chunk, error) {
	cfg := chunker.Config{Strategy: run.Strategy, Size: run.Size, Overlap: run.Overlap}
	var all []types.Chunk
	for _, doc := range docs {
		chunks, err := chunker.Chunk(doc, cfg)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", doc.ID, err)
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// rebuildCollection drops the collection and indexes the chunks with
// freshly embedded vectors.
func (c *Comparator) rebuildCollection(ctx context.Context, collection string, chunks []types.Chunk) error {
	if err := c.index.Rebuild(ctx, collection); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	return c.index.Add(ctx, collection, chunks, vectors)
}

func failedReport(report types.EvalReport, err error) types.EvalReport {
	wrapped := fmt.Errorf("%w: strategy %s: %v", types.ErrStrategyFailed, report.Strategy, err)
	report.Failed = true
	report.Error = wrapped.Error()
	report.HitAtK = 0
	report.MRR = 0
	report.PerQuestion = nil
	return report
}
