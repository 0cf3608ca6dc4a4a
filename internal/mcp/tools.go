package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"huurrag/internal/chunker"
	"huurrag/internal/comparator"
	"huurrag/internal/evaluator"
	"huurrag/internal/index"
	"huurrag/internal/loader"
	"huurrag/internal/rag"
	"huurrag/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyIndex     = -32001 // Collection not indexed or empty
	ErrorCodeStrategyFailed = -32002 // Every compared strategy failed
	ErrorCodeEmptyQuery     = -32004 // Query parameter is empty
)

// handleIndexDocuments handles the index_documents tool invocation
func (s *Server) handleIndexDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	path := getStringDefault(args, "path", s.cfg.DataDir)

	chunkCfg, err := s.chunkConfig(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	docs, err := loader.Load(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to load documents", map[string]interface{}{
			"param":  "path",
			"value":  path,
			"reason": err.Error(),
		})
	}

	pipeline := rag.New(s.index, s.embedder, nil, chunkCfg, s.cfg.Retrieval.TopK)

	start := time.Now()
	chunks, err := pipeline.Ingest(ctx, docs)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":     true,
		"documents":   len(docs),
		"chunks":      chunks,
		"collection":  pipeline.Collection(),
		"model":       s.embedder.Model(),
		"dimension":   s.embedder.Dimension(),
		"duration_ms": time.Since(start).Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDocuments handles the search_documents tool invocation
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	k := getIntDefault(args, "k", s.cfg.Retrieval.TopK)
	if k < 1 || k > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "k must be between 1 and 100", map[string]interface{}{
			"param": "k",
			"value": k,
		})
	}

	chunkCfg, err := s.chunkConfig(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	pipeline := rag.New(s.index, s.embedder, nil, chunkCfg, s.cfg.Retrieval.TopK)

	hits, err := pipeline.Search(ctx, query, k)
	if errors.Is(err, types.ErrEmptyIndex) {
		return nil, newMCPError(ErrorCodeEmptyIndex, "collection is empty", map[string]interface{}{
			"collection": pipeline.Collection(),
			"reason":     "index the corpus with index_documents first",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(hits))
	for i, hit := range hits {
		result := map[string]interface{}{
			"rank":        i + 1,
			"score":       hit.Score,
			"chunk_id":    hit.ChunkID,
			"document_id": hit.Chunk.DocumentID,
			"content":     hit.Chunk.Text,
		}
		if len(hit.Chunk.Metadata) > 0 {
			result["metadata"] = hit.Chunk.Metadata
		}
		results = append(results, result)
	}

	response := map[string]interface{}{
		"collection": pipeline.Collection(),
		"query":      query,
		"results":    results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleEvaluateRetrieval handles the evaluate_retrieval tool invocation
func (s *Server) handleEvaluateRetrieval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	questionsPath := getStringDefault(args, "questions", s.cfg.Questions)
	k := getIntDefault(args, "k", s.cfg.Retrieval.TopK)
	if k < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "k must be positive", map[string]interface{}{
			"param": "k",
			"value": k,
		})
	}

	chunkCfg, err := s.chunkConfig(args)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunking configuration", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	questions, err := evaluator.LoadQuestions(questionsPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to load questions", map[string]interface{}{
			"param":  "questions",
			"value":  questionsPath,
			"reason": err.Error(),
		})
	}

	collection := index.CollectionKey(s.embedder.Model(), string(chunkCfg.Strategy), chunkCfg.Size, chunkCfg.Overlap)

	report, err := evaluator.Evaluate(ctx, questions, s.index, collection, s.embedder.EmbedQuery, k)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "evaluation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	evaluated, skipped := 0, 0
	for _, q := range report.PerQuestion {
		if q.Skipped {
			skipped++
		} else {
			evaluated++
		}
	}

	response := map[string]interface{}{
		"collection": collection,
		"strategy":   string(chunkCfg.Strategy),
		"size":       chunkCfg.Size,
		"overlap":    chunkCfg.Overlap,
		"k":          k,
		"questions":  len(questions),
		"evaluated":  evaluated,
		"skipped":    skipped,
		"hit_at_k":   report.HitAtK,
		"mrr":        report.MRR,
	}

	if getBoolDefault(args, "include_details", false) {
		perQuestion := make([]map[string]interface{}, 0, len(report.PerQuestion))
		for _, q := range report.PerQuestion {
			perQuestion = append(perQuestion, map[string]interface{}{
				"question": q.Question,
				"rank":     q.Rank,
				"hit":      q.Hit,
				"skipped":  q.Skipped,
			})
		}
		response["per_question"] = perQuestion
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCompareStrategies handles the compare_strategies tool invocation
func (s *Server) handleCompareStrategies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	path := getStringDefault(args, "path", s.cfg.DataDir)
	questionsPath := getStringDefault(args, "questions", s.cfg.Questions)
	k := getIntDefault(args, "k", s.cfg.Retrieval.TopK)
	if k < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "k must be positive", map[string]interface{}{
			"param": "k",
			"value": k,
		})
	}

	docs, err := loader.Load(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to load documents", map[string]interface{}{
			"param":  "path",
			"value":  path,
			"reason": err.Error(),
		})
	}

	questions, err := evaluator.LoadQuestions(questionsPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to load questions", map[string]interface{}{
			"param":  "questions",
			"value":  questionsPath,
			"reason": err.Error(),
		})
	}

	comp := comparator.New(s.index, s.embedder)
	reports, err := comp.Compare(ctx, docs, questions, comparator.Options{
		K:         k,
		Parallel:  getBoolDefault(args, "parallel", false),
		KeepIndex: getBoolDefault(args, "keep_index", false),
	})
	if errors.Is(err, types.ErrStrategyFailed) {
		return nil, newMCPError(ErrorCodeStrategyFailed, "every strategy failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "comparison failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	rows := make([]map[string]interface{}, 0, len(reports))
	for _, r := range reports {
		row := map[string]interface{}{
			"strategy":    r.Strategy,
			"size":        r.Size,
			"overlap":     r.Overlap,
			"chunks":      r.ChunkCount,
			"build_ms":    r.BuildTime.Milliseconds(),
			"hit_at_k":    r.HitAtK,
			"mrr":         r.MRR,
		}
		if r.Failed {
			row["failed"] = true
			row["error"] = r.Error
		}
		rows = append(rows, row)
	}

	response := map[string]interface{}{
		"model":     s.embedder.Model(),
		"documents": len(docs),
		"questions": len(questions),
		"k":         k,
		"runs":      rows,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// chunkConfig builds the chunking configuration from tool arguments,
// falling back to the server configuration for omitted values.
func (s *Server) chunkConfig(args map[string]interface{}) (chunker.Config, error) {
	cfg := chunker.Config{
		Strategy: chunker.Strategy(getStringDefault(args, "strategy", s.cfg.Chunking.Strategy)),
		Size:     getIntDefault(args, "size", s.cfg.Chunking.Size),
		Overlap:  getIntDefault(args, "overlap", s.cfg.Chunking.Overlap),
	}
	if err := cfg.Validate(); err != nil {
		return chunker.Config{}, err
	}
	return cfg, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
