package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkingProperties are the optional chunking overrides shared by the
// tools that address a specific collection. Omitted values fall back to
// the server configuration.
func chunkingProperties() map[string]interface{} {
	return map[string]interface{}{
		"strategy": map[string]interface{}{
			"type":        "string",
			"description": "Chunking strategy the collection was (or will be) built with",
			"enum":        []string{"recursive", "tokens", "sentence", "statute"},
		},
		"size": map[string]interface{}{
			"type":        "integer",
			"description": "Chunk size in bytes (token count for the tokens strategy)",
			"minimum":     1,
		},
		"overlap": map[string]interface{}{
			"type":        "integer",
			"description": "Chunk overlap in bytes (token count for the tokens strategy)",
			"minimum":     0,
		},
	}
}

// indexDocumentsTool returns the tool definition for index_documents
func indexDocumentsTool() mcp.Tool {
	props := chunkingProperties()
	props["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Directory of .txt/.md documents to index (defaults to the configured data dir)",
	}
	return mcp.Tool{
		Name:        "index_documents",
		Description: "Chunk, embed and index a document corpus into the collection for the given chunking configuration. Rebuilds the collection from scratch.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
		},
	}
}

// searchDocumentsTool returns the tool definition for search_documents
func searchDocumentsTool() mcp.Tool {
	props := chunkingProperties()
	props["query"] = map[string]interface{}{
		"type":        "string",
		"description": "Natural language query",
	}
	props["k"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of results to return (1-100)",
		"minimum":     1,
		"maximum":     100,
	}
	return mcp.Tool{
		Name:        "search_documents",
		Description: "Search an indexed collection by cosine similarity and return the top-k chunks",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"query"},
		},
	}
}

// evaluateRetrievalTool returns the tool definition for evaluate_retrieval
func evaluateRetrievalTool() mcp.Tool {
	props := chunkingProperties()
	props["questions"] = map[string]interface{}{
		"type":        "string",
		"description": "Path to a JSON file of labelled evaluation questions (defaults to the configured questions file)",
	}
	props["k"] = map[string]interface{}{
		"type":        "integer",
		"description": "Evaluation cutoff: a question counts as a hit when a relevant chunk ranks in the top k",
		"minimum":     1,
	}
	props["include_details"] = map[string]interface{}{
		"type":        "boolean",
		"description": "If true, include the per-question ranks in the response",
		"default":     false,
	}
	return mcp.Tool{
		Name:        "evaluate_retrieval",
		Description: "Evaluate retrieval quality (hit@k and MRR) of an indexed collection against a labelled question set",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
		},
	}
}

// compareStrategiesTool returns the tool definition for compare_strategies
func compareStrategiesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "compare_strategies",
		Description: "Run the chunk-embed-index-evaluate pipeline for every default chunking configuration and report hit@k and MRR side by side",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Directory of documents to compare on (defaults to the configured data dir)",
				},
				"questions": map[string]interface{}{
					"type":        "string",
					"description": "Path to a JSON file of labelled evaluation questions (defaults to the configured questions file)",
				},
				"k": map[string]interface{}{
					"type":        "integer",
					"description": "Evaluation cutoff for hit@k",
					"minimum":     1,
				},
				"parallel": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, run the strategies concurrently",
					"default":     false,
				},
				"keep_index": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, keep the per-strategy collections after the run",
					"default":     false,
				},
			},
		},
	}
}
