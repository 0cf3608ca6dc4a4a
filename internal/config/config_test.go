package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "recursive", cfg.Chunking.Strategy)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, "sqlite", cfg.Index.Backend)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: corpus
chunking:
  strategy: sentence
  size: 1200
  overlap: 150
index:
  backend: qdrant
  qdrant_addr: localhost:6334
retrieval:
  top_k: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "corpus", cfg.DataDir)
	assert.Equal(t, "sentence", cfg.Chunking.Strategy)
	assert.Equal(t, 1200, cfg.Chunking.Size)
	assert.Equal(t, "qdrant", cfg.Index.Backend)
	assert.Equal(t, "localhost:6334", cfg.Index.QdrantAddr)
	assert.Equal(t, 8, cfg.Retrieval.TopK)

	// Unset fields keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  size: 500\n"), 0o644))

	t.Setenv("RAG_CHUNK_SIZE", "2000")
	t.Setenv("RAG_CHUNK_STRATEGY", "tokens")
	t.Setenv("RAG_TOP_K", "10")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Chunking.Size)
	assert.Equal(t, "tokens", cfg.Chunking.Strategy)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
}

func TestEnvOverrideBadInt(t *testing.T) {
	t.Setenv("RAG_CHUNK_SIZE", "veel")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t-"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
