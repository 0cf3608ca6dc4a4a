package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Provider names accepted by the factory.
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvProvider = "RAG_EMBEDDING_PROVIDER"
	EnvModel    = "RAG_EMBEDDING_MODEL"
	EnvBaseURL  = "RAG_OPENAI_BASE_URL"
)

// DefaultCacheSize is the embedding cache capacity used by the factories.
const DefaultCacheSize = 10000

// Config holds embedder configuration.
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	CacheSize int
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cache)
	case ProviderLocal, "":
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProviderEnabled, cfg.Provider)
	}
}

// NewFromEnv creates an embedder from environment variables.
// Priority:
//  1. RAG_EMBEDDING_PROVIDER (openai, local)
//  2. OPENAI_API_KEY present: openai
//  3. Fallback: local
func NewFromEnv() (Embedder, error) {
	cache := NewCache(DefaultCacheSize)

	provider := strings.ToLower(os.Getenv(EnvProvider))
	model := os.Getenv(EnvModel)
	baseURL := os.Getenv(EnvBaseURL)

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIProvider("", baseURL, model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	case "":
		if os.Getenv(EnvOpenAIAPIKey) != "" {
			return NewOpenAIProvider("", baseURL, model, cache)
		}
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProviderEnabled, provider)
	}
}

// DetectProvider reports which provider NewFromEnv would select.
func DetectProvider() string {
	if p := os.Getenv(EnvProvider); p != "" {
		return strings.ToLower(p)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ProviderLocal
}
