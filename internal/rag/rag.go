// Package rag wires loader, chunker, embedder and index into the two
// user-facing flows: building the index and answering questions over it.
package rag

import (
	"context"
	"fmt"
	"strings"

	"huurrag/internal/chunker"
	"huurrag/internal/embedder"
	"huurrag/internal/index"
	"huurrag/internal/llm"
	"huurrag/pkg/types"
)

// Pipeline bundles the retrieval components for one chunking
// configuration.
type Pipeline struct {
	idx       index.Index
	emb       embedder.Embedder
	completer llm.Completer
	chunkCfg  chunker.Config
	topK      int
}

// New creates a pipeline. completer may be nil when only indexing and
// search are needed; Ask then returns an error.
func New(idx index.Index, emb embedder.Embedder, completer llm.Completer, chunkCfg chunker.Config, topK int) *Pipeline {
	return &Pipeline{
		idx:       idx,
		emb:       emb,
		completer: completer,
		chunkCfg:  chunkCfg,
		topK:      topK,
	}
}

// Collection returns the collection key of this pipeline's configuration.
func (p *Pipeline) Collection() string {
	return index.CollectionKey(p.emb.Model(), string(p.chunkCfg.Strategy), p.chunkCfg.Size, p.chunkCfg.Overlap)
}

// Ingest chunks the documents, rebuilds the collection and indexes the
// embedded chunks. It returns the number of chunks indexed.
func (p *Pipeline) Ingest(ctx context.Context, docs []types.Document) (int, error) {
	return p.ingest(ctx, docs, true)
}

// Upsert indexes the documents into the existing collection without
// dropping it first. Chunks keep their IDs, so re-ingesting an updated
// document replaces its chunks in place.
func (p *Pipeline) Upsert(ctx context.Context, docs []types.Document) (int, error) {
	return p.ingest(ctx, docs, false)
}

func (p *Pipeline) ingest(ctx context.Context, docs []types.Document, rebuild bool) (int, error) {
	var all []types.Chunk
	for _, doc := range docs {
		chunks, err := chunker.Chunk(doc, p.chunkCfg)
		if err != nil {
			return 0, fmt.Errorf("chunk %s: %w", doc.ID, err)
		}
		all = append(all, chunks...)
	}

	collection := p.Collection()
	if rebuild {
		if err := p.idx.Rebuild(ctx, collection); err != nil {
			return 0, err
		}
	}
	if len(all) == 0 {
		return 0, nil
	}

	texts := make([]string, len(all))
	for i := range all {
		texts[i] = all[i].Text
	}
	vectors, err := p.emb.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, err
	}
	if err := p.idx.Add(ctx, collection, all, vectors); err != nil {
		return 0, err
	}
	return len(all), nil
}

// Search embeds the query and returns the top-k hits.
func (p *Pipeline) Search(ctx context.Context, query string, k int) ([]types.SearchHit, error) {
	if k <= 0 {
		k = p.topK
	}
	vector, err := p.emb.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.idx.Search(ctx, p.Collection(), vector, k)
}

// Ask retrieves context for the question and generates a grounded answer.
func (p *Pipeline) Ask(ctx context.Context, question string) (string, []types.SearchHit, error) {
	if p.completer == nil {
		return "", nil, fmt.Errorf("no completion model configured")
	}

	hits, err := p.retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}

	answer, err := p.completer.Complete(ctx, buildPrompt(question, hits))
	if err != nil {
		return "", hits, err
	}
	return answer, hits, nil
}

// retrieve fetches context chunks. Questions citing a statutory article
// over-fetch and prefer chunks carrying that article's metadata, then
// backfill with the general ranking.
func (p *Pipeline) retrieve(ctx context.Context, question string) ([]types.SearchHit, error) {
	article := extractArticle(question)
	k := p.topK

	fetchK := k
	if article != "" {
		fetchK = k * 4
	}

	hits, err := p.Search(ctx, question, fetchK)
	if err != nil {
		return nil, err
	}
	if article == "" {
		return hits, nil
	}

	merged := make([]types.SearchHit, 0, k)
	seen := make(map[string]bool, k)
	add := func(match func(types.SearchHit) bool) {
		for _, hit := range hits {
			if len(merged) >= k {
				return
			}
			if !seen[hit.ChunkID] && match(hit) {
				seen[hit.ChunkID] = true
				merged = append(merged, hit)
			}
		}
	}
	add(func(h types.SearchHit) bool { return h.Chunk.Metadata["article"] == article })
	add(func(types.SearchHit) bool { return true })
	return merged, nil
}

const systemPrompt = `You are a careful assistant that answers with grounded, concise explanations.
Use only the provided context. If something is missing, say what's missing.
Answer in the language of the question (e.g., English or Dutch).
At the end, include short source attributions like [source: <file>].`

// buildPrompt assembles the grounded QA prompt from the retrieved chunks.
func buildPrompt(question string, hits []types.SearchHit) string {
	var context strings.Builder
	var sources strings.Builder
	seenSources := map[string]bool{}

	for _, hit := range hits {
		context.WriteString(hit.Chunk.Text)
		context.WriteString("\n\n")

		src := hit.Chunk.DocumentID
		if article := hit.Chunk.Metadata["article"]; article != "" {
			src += " (artikel " + article + ")"
		}
		if !seenSources[src] {
			seenSources[src] = true
			sources.WriteString("- " + src + "\n")
		}
	}

	return systemPrompt + "\n\nContext:\n" + strings.TrimRight(context.String(), "\n") +
		"\n\nQuestion: " + question +
		"\n\nAnswer using only the context above. Then list the sources as bullets.\nSources:\n" +
		strings.TrimRight(sources.String(), "\n")
}
