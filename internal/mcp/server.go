package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"huurrag/internal/config"
	"huurrag/internal/embedder"
	"huurrag/internal/index"
)

const (
	// ServerName is the MCP server name
	ServerName = "huurrag-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the retrieval pipeline dependencies.
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	index    index.Index
	embedder embedder.Embedder
}

// NewServer creates a new MCP server instance over the configured index
// backend and embedding provider. The embedder is shared by every tool, so
// embeddings cached while indexing are reused by search and evaluation.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	idx, err := index.Open(cfg.Index.Backend, cfg.Index.DBPath, cfg.Index.QdrantAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		index:    idx,
		embedder: emb,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the index and embedder.
func (s *Server) Close() error {
	_ = s.embedder.Close()
	return s.index.Close()
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(indexDocumentsTool(), s.handleIndexDocuments)
	s.mcp.AddTool(searchDocumentsTool(), s.handleSearchDocuments)
	s.mcp.AddTool(evaluateRetrievalTool(), s.handleEvaluateRetrieval)
	s.mcp.AddTool(compareStrategiesTool(), s.handleCompareStrategies)
}
