// Package embedder turns chunk text and queries into dense vectors.
//
// Two providers are available: the OpenAI API (or any OpenAI-compatible
// endpoint serving E5 family models) and a deterministic offline provider
// for tests. Results are cached by text hash in a bounded LRU so repeated
// index rebuilds only pay for new chunks.
//
// E5 models require asymmetric prefixes: passages are embedded as
// "passage: <text>" and queries as "query: <text>". The OpenAI provider
// applies these automatically when the model name contains "e5".
package embedder
