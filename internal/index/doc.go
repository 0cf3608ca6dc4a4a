// Package index provides persistent vector indexes for chunk collections.
//
// Two backends implement the Index interface:
//
//   - SQLiteIndex stores chunks and embedding blobs in a single SQLite
//     file and ranks by cosine similarity in Go. It needs no external
//     service and is the default.
//   - QdrantIndex talks to a qdrant server over gRPC and delegates the
//     similarity search to it.
//
// A collection isolates one model/strategy/size/overlap combination, see
// CollectionKey. Rebuilding a collection drops everything in it; Add
// upserts by chunk ID; Search returns hits sorted by descending score
// with ties broken by ascending chunk ID on both backends.
//
// # Build Tags
//
// The SQLite backend compiles against modernc.org/sqlite by default.
// Building with -tags sqlite_cgo switches to github.com/mattn/go-sqlite3,
// which is faster for large embedding scans but needs a C compiler.
package index
