package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"huurrag/pkg/types"
)

// SQLiteIndex implements Index on a single SQLite file. Chunks and vectors
// live in ordinary tables; similarity is computed in Go over the candidate
// set, which is fine at corpus sizes of a few tens of thousands of chunks.
type SQLiteIndex struct {
	db *sql.DB

	// SQLite allows one writer; serialize Add/Rebuild ourselves so
	// concurrent comparator runs don't trip over SQLITE_BUSY.
	mu sync.Mutex
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteIndex opens (or creates) the index database at dbPath and
// applies pending migrations.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", types.ErrPersistence, err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply migrations: %v", types.ErrPersistence, err)
	}

	return &SQLiteIndex{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// Rebuild drops the collection. Chunks and embeddings go with it via
// cascading deletes.
func (s *SQLiteIndex) Rebuild(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, collection)
	if err != nil {
		return fmt.Errorf("%w: rebuild %s: %v", types.ErrPersistence, collection, err)
	}
	return nil
}

// Add upserts chunks and their vectors into the collection.
func (s *SQLiteIndex) Add(ctx context.Context, collection string, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", types.ErrDimensionMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: zero-length vector", types.ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", types.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", types.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	collectionID, err := upsertCollection(ctx, tx, collection, dim)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range chunks {
		if err := upsertChunk(ctx, tx, collectionID, &chunks[i], vectors[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", types.ErrPersistence, err)
	}
	return nil
}

// upsertCollection returns the collection row ID, creating the collection
// with the given dimension on first use and validating it afterwards.
func upsertCollection(ctx context.Context, tx *sql.Tx, name string, dim int) (int64, error) {
	var id int64
	var storedDim int
	err := tx.QueryRowContext(ctx, `SELECT id, dimension FROM collections WHERE name = ?`, name).Scan(&id, &storedDim)
	if err == sql.ErrNoRows {
		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO collections (name, dimension, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			name, dim, now, now)
		if err != nil {
			return 0, fmt.Errorf("%w: create collection %s: %v", types.ErrPersistence, name, err)
		}
		return result.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("%w: lookup collection %s: %v", types.ErrPersistence, name, err)
	}
	if storedDim != dim {
		return 0, fmt.Errorf("%w: collection %s has dimension %d, got vectors of dimension %d",
			types.ErrDimensionMismatch, name, storedDim, dim)
	}
	return id, nil
}

// upsertChunk writes one chunk row and its embedding.
func upsertChunk(ctx context.Context, tx *sql.Tx, collectionID int64, chunk *types.Chunk, vector []float32, now time.Time) error {
	var metadata []byte
	if len(chunk.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshal metadata for %s: %v", types.ErrPersistence, chunk.ID, err)
		}
	}

	var rowID int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO chunks (
			collection_id, chunk_id, document_id, content,
			start_offset, end_offset, sequence_index, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			sequence_index = excluded.sequence_index,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
		RETURNING id
	`, collectionID, chunk.ID, chunk.DocumentID, chunk.Text,
		chunk.StartOffset, chunk.EndOffset, chunk.SequenceIndex, metadata,
		now, now).Scan(&rowID)
	if err != nil {
		return fmt.Errorf("%w: upsert chunk %s: %v", types.ErrPersistence, chunk.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_row, vector, dimension, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chunk_row) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension
	`, rowID, serializeVector(vector), len(vector), now)
	if err != nil {
		return fmt.Errorf("%w: upsert embedding for %s: %v", types.ErrPersistence, chunk.ID, err)
	}
	return nil
}

// Search scans the collection's vectors and ranks them by cosine
// similarity in Go.
func (s *SQLiteIndex) Search(ctx context.Context, collection string, vector []float32, k int) ([]types.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidConfig, k)
	}

	var collectionID int64
	var dim int
	err := s.db.QueryRowContext(ctx, `SELECT id, dimension FROM collections WHERE name = ?`, collection).Scan(&collectionID, &dim)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: collection %s", types.ErrEmptyIndex, collection)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup collection %s: %v", types.ErrPersistence, collection, err)
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, collection %s has %d",
			types.ErrDimensionMismatch, len(vector), collection, dim)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, c.document_id, c.content, c.start_offset, c.end_offset,
		       c.sequence_index, c.metadata, e.vector
		FROM chunks c
		INNER JOIN embeddings e ON c.id = e.chunk_row
		WHERE c.collection_id = ?
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query embeddings: %v", types.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	hits := make([]types.SearchHit, 0, 256)
	for rows.Next() {
		var chunk types.Chunk
		var metadata sql.NullString
		var blob []byte
		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.Text, &chunk.StartOffset,
			&chunk.EndOffset, &chunk.SequenceIndex, &metadata, &blob,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", types.ErrPersistence, err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("%w: decode metadata for %s: %v", types.ErrPersistence, chunk.ID, err)
			}
		}

		hits = append(hits, types.SearchHit{
			ChunkID: chunk.ID,
			Score:   cosineSimilarity(vector, deserializeVector(blob)),
			Chunk:   chunk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate embeddings: %v", types.ErrPersistence, err)
	}

	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: collection %s", types.ErrEmptyIndex, collection)
	}

	sortHits(hits)
	return topK(hits, k), nil
}

// Count reports the number of chunks in the collection.
func (s *SQLiteIndex) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM chunks c
		INNER JOIN collections col ON c.collection_id = col.id
		WHERE col.name = ?
	`, collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", types.ErrPersistence, collection, err)
	}
	return count, nil
}

// Collections lists the collection names currently stored.
func (s *SQLiteIndex) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %v", types.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan collection name: %v", types.ErrPersistence, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
