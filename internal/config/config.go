// Package config loads the application configuration from a YAML file
// with environment overrides. The env names mirror the shell environment
// the data pipelines already use (RAG_CHUNK_SIZE, RAG_TOP_K, ...), so a
// config file is optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ChunkingConfig selects the chunking strategy and its parameters.
type ChunkingConfig struct {
	Strategy string `yaml:"strategy"`
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	CacheSize int    `yaml:"cache_size"`
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend    string `yaml:"backend"` // sqlite or qdrant
	DBPath     string `yaml:"db_path"`
	QdrantAddr string `yaml:"qdrant_addr"`
}

// RetrievalConfig configures the search side.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// CrawlerConfig bounds the documentation crawler.
type CrawlerConfig struct {
	StartURL string `yaml:"start_url"`
	MaxDepth int    `yaml:"max_depth"`
	MaxPages int    `yaml:"max_pages"`
}

// LLMConfig configures answer generation.
type LLMConfig struct {
	Model string `yaml:"model"`
}

// Config is the root application configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Questions string          `yaml:"questions"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	LLM       LLMConfig       `yaml:"llm"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:   "data",
		Questions: "data/questions.json",
		Chunking: ChunkingConfig{
			Strategy: "recursive",
			Size:     1000,
			Overlap:  150,
		},
		Embedding: EmbeddingConfig{
			Provider:  "",
			CacheSize: 10000,
		},
		Index: IndexConfig{
			Backend: "sqlite",
			DBPath:  "data/index.db",
		},
		Retrieval: RetrievalConfig{TopK: 4},
		Crawler: CrawlerConfig{
			MaxDepth: 2,
			MaxPages: 50,
		},
		LLM: LLMConfig{Model: "gpt-4o-mini"},
	}
}

// Load reads the config from path. A missing file yields the defaults;
// environment variables override either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides maps RAG_* environment variables onto the config.
func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	var intErr error
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			intErr = fmt.Errorf("invalid %s=%q: %w", key, v, err)
			return
		}
		*dst = n
	}

	setString("RAG_DATA_DIR", &cfg.DataDir)
	setString("RAG_QUESTIONS", &cfg.Questions)
	setString("RAG_CHUNK_STRATEGY", &cfg.Chunking.Strategy)
	setInt("RAG_CHUNK_SIZE", &cfg.Chunking.Size)
	setInt("RAG_CHUNK_OVERLAP", &cfg.Chunking.Overlap)
	setString("RAG_EMBEDDING_PROVIDER", &cfg.Embedding.Provider)
	setString("RAG_EMBEDDING_MODEL", &cfg.Embedding.Model)
	setString("RAG_OPENAI_BASE_URL", &cfg.Embedding.BaseURL)
	setString("RAG_INDEX_BACKEND", &cfg.Index.Backend)
	setString("RAG_DB_PATH", &cfg.Index.DBPath)
	setString("RAG_QDRANT_ADDR", &cfg.Index.QdrantAddr)
	setInt("RAG_TOP_K", &cfg.Retrieval.TopK)
	setString("RAG_CRAWL_URL", &cfg.Crawler.StartURL)
	setInt("RAG_CRAWL_DEPTH", &cfg.Crawler.MaxDepth)
	setInt("RAG_CRAWL_PAGES", &cfg.Crawler.MaxPages)
	setString("RAG_LLM_MODEL", &cfg.LLM.Model)

	return intErr
}
