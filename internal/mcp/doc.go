// Package mcp implements the Model Context Protocol (MCP) server for the
// retrieval pipeline.
//
// The MCP server exposes four tools to AI assistants:
//   - index_documents: chunk, embed and index a document corpus
//   - search_documents: query an indexed collection by cosine similarity
//   - evaluate_retrieval: score a collection with hit@k and MRR
//   - compare_strategies: evaluate every chunking configuration side by side
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Tool: index_documents
//
// Index a corpus of .txt/.md documents:
//
//	Request:
//	{
//	  "name": "index_documents",
//	  "arguments": {
//	    "path": "data",
//	    "strategy": "statute",
//	    "size": 1600,
//	    "overlap": 200
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "documents": 12,
//	  "chunks": 431,
//	  "collection": "local-hash-embeddings__statute_1600_200",
//	  "duration_ms": 1840
//	}
//
// # Tool: search_documents
//
// Search an indexed collection:
//
//	Request:
//	{
//	  "name": "search_documents",
//	  "arguments": {
//	    "query": "Mag de verhuurder de huur jaarlijks verhogen?",
//	    "k": 4
//	  }
//	}
//
//	Response:
//	{
//	  "results": [
//	    {
//	      "rank": 1,
//	      "score": 0.83,
//	      "chunk_id": "laws/bw7.md:17",
//	      "document_id": "laws/bw7.md",
//	      "content": "Artikel 7:248 ..."
//	    }
//	  ]
//	}
//
// # Tool: evaluate_retrieval
//
// Score the collection against a labelled question set:
//
//	Request:
//	{
//	  "name": "evaluate_retrieval",
//	  "arguments": {"questions": "data/questions.json", "k": 4}
//	}
//
//	Response:
//	{
//	  "evaluated": 25,
//	  "hit_at_k": 0.84,
//	  "mrr": 0.61
//	}
//
// # Tool: compare_strategies
//
// Run the full pipeline for each default chunking configuration and
// report the metrics side by side. Chunking arguments are not accepted;
// the tool always compares the default run matrix.
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "k", "value": 0}
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (index, embedder, filesystem)
//   - -32001: Collection not indexed or empty
//   - -32002: Every compared strategy failed
//   - -32004: Empty query
//
// # Logging
//
// The MCP server logs to stderr; stdout is reserved for the protocol.
package mcp
