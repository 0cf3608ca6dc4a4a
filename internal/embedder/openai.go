package embedder

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "text-embedding-3-small"

	// DefaultBatchSize is the number of texts sent per embeddings request.
	DefaultBatchSize = 100

	// EnvOpenAIAPIKey is the environment variable holding the API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// maxConcurrentBatches bounds parallel embeddings requests.
	maxConcurrentBatches = 4
)

// OpenAIProvider implements Embedder against the OpenAI embeddings API or
// any OpenAI-compatible endpoint (set BaseURL for local servers hosting E5
// family models).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dim    int
	cache  *Cache

	// E5 models expect "passage: " / "query: " prefixes; empty otherwise.
	passagePrefix string
	queryPrefix   string
}

// NewOpenAIProvider creates an embedder over the OpenAI API. apiKey falls
// back to OPENAI_API_KEY; baseURL overrides the endpoint for compatible
// local servers.
func NewOpenAIProvider(apiKey, baseURL, model string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    modelDimension(model),
		cache:  cache,
	}
	if strings.Contains(strings.ToLower(model), "e5") {
		p.passagePrefix = "passage: "
		p.queryPrefix = "query: "
	}
	return p, nil
}

// modelDimension maps known model names to their embedding dimension.
func modelDimension(model string) int {
	m := strings.ToLower(model)
	switch {
	case m == "text-embedding-3-large":
		return 3072
	case strings.Contains(m, "e5-large"):
		return 1024
	case strings.Contains(m, "e5"):
		return 768
	default:
		return 1536
	}
}

// EmbedDocuments embeds passages in batches, serving repeats from cache.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	for i, text := range texts {
		if p.cache != nil {
			if v, ok := p.cache.Get(ComputeHash(p.passagePrefix + text)); ok {
				out[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)
	for start := 0; start < len(missIdx); start += DefaultBatchSize {
		end := start + DefaultBatchSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		batch := missIdx[start:end]
		g.Go(func() error {
			inputs := make([]string, len(batch))
			for i, idx := range batch {
				inputs[i] = p.passagePrefix + texts[idx]
			}
			vectors, err := p.callAPI(gctx, inputs)
			if err != nil {
				return err
			}
			for i, idx := range batch {
				out[idx] = vectors[i]
				if p.cache != nil {
					p.cache.Set(ComputeHash(inputs[i]), vectors[i])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedQuery embeds a single retrieval query.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ValidateBatch([]string{text}); err != nil {
		return nil, err
	}
	input := p.queryPrefix + text
	if p.cache != nil {
		if v, ok := p.cache.Get(ComputeHash(input)); ok {
			return v, nil
		}
	}
	vectors, err := p.callAPI(ctx, []string{input})
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(ComputeHash(input), vectors[0])
	}
	return vectors[0], nil
}

// callAPI performs one embeddings request with retry.
func (p *OpenAIProvider) callAPI(ctx context.Context, inputs []string) ([][]float32, error) {
	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: inputs,
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) != len(inputs) {
			return nil, fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(inputs))
		}
		out := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			v := make([]float32, len(d.Embedding))
			for j := range d.Embedding {
				v[j] = float32(d.Embedding[j])
			}
			out[i] = v
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, MaxRetries, err)
	}
	return vectors, nil
}

func (p *OpenAIProvider) Dimension() int {
	return p.dim
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Close() error {
	return nil
}
