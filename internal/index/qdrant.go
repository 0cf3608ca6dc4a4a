package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"huurrag/pkg/types"
)

// metaPrefix namespaces chunk metadata keys inside the qdrant payload so
// they can't collide with the fixed chunk fields.
const metaPrefix = "meta_"

// QdrantIndex implements Index against a qdrant server over gRPC. Each
// Index collection maps to one qdrant collection with cosine distance.
type QdrantIndex struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
}

// NewQdrantIndex connects to qdrant at the given gRPC address.
func NewQdrantIndex(addr string) (*QdrantIndex, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: dial qdrant %s: %v", types.ErrPersistence, addr, err)
	}
	return &QdrantIndex{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// Close closes the underlying gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}

// collectionDimension reports the vector size of an existing collection,
// or ok=false when the collection does not exist.
func (q *QdrantIndex) collectionDimension(ctx context.Context, collection string) (int, bool, error) {
	list, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return 0, false, fmt.Errorf("%w: list collections: %v", types.ErrPersistence, err)
	}
	exists := false
	for _, c := range list.GetCollections() {
		if c.GetName() == collection {
			exists = true
			break
		}
	}
	if !exists {
		return 0, false, nil
	}

	info, err := q.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: collection})
	if err != nil {
		return 0, false, fmt.Errorf("%w: collection info %s: %v", types.ErrPersistence, collection, err)
	}
	size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	return int(size), true, nil
}

// ensureCollection creates the collection with cosine distance if needed
// and validates the dimension otherwise.
func (q *QdrantIndex) ensureCollection(ctx context.Context, collection string, dim int) error {
	stored, exists, err := q.collectionDimension(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		if stored != dim {
			return fmt.Errorf("%w: collection %s has dimension %d, got vectors of dimension %d",
				types.ErrDimensionMismatch, collection, stored, dim)
		}
		return nil
	}

	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dim),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create collection %s: %v", types.ErrPersistence, collection, err)
	}
	return nil
}

// Rebuild drops the collection; a missing collection is a no-op.
func (q *QdrantIndex) Rebuild(ctx context.Context, collection string) error {
	_, exists, err := q.collectionDimension(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	_, err = q.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: collection})
	if err != nil {
		return fmt.Errorf("%w: delete collection %s: %v", types.ErrPersistence, collection, err)
	}
	return nil
}

// pointID derives a stable UUID for a chunk within a collection so
// re-adding the same chunk upserts rather than duplicates.
func pointID(collection, chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+chunkID)).String()
}

// Add upserts chunks with their vectors.
func (q *QdrantIndex) Add(ctx context.Context, collection string, chunks []types.Chunk, vectors [][]float32) error {
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

	if err := q.ensureCollection(ctx, collection, dim); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(chunks))
	for i := range chunks {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(collection, chunks[i].ID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				},
			},
			Payload: chunkPayload(&chunks[i]),
		}
	}

	wait := true
	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert %d points: %v", types.ErrPersistence, len(points), err)
	}
	return nil
}

// chunkPayload flattens a chunk into a qdrant payload.
func chunkPayload(chunk *types.Chunk) map[string]*pb.Value {
	payload := map[string]*pb.Value{
		"chunk_id":       stringValue(chunk.ID),
		"document_id":    stringValue(chunk.DocumentID),
		"content":        stringValue(chunk.Text),
		"start_offset":   intValue(chunk.StartOffset),
		"end_offset":     intValue(chunk.EndOffset),
		"sequence_index": intValue(chunk.SequenceIndex),
	}
	for k, v := range chunk.Metadata {
		payload[metaPrefix+k] = stringValue(v)
	}
	return payload
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(n int) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(n)}}
}

// Search performs k-NN search and re-sorts client side so tie ordering
// matches the SQLite backend.
func (q *QdrantIndex) Search(ctx context.Context, collection string, vector []float32, k int) ([]types.SearchHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", types.ErrInvalidConfig, k)
	}

	dim, exists, err := q.collectionDimension(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: collection %s", types.ErrEmptyIndex, collection)
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, collection %s has %d",
			types.ErrDimensionMismatch, len(vector), collection, dim)
	}

	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", types.ErrPersistence, collection, err)
	}

	results := resp.GetResult()
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: collection %s", types.ErrEmptyIndex, collection)
	}

	hits := make([]types.SearchHit, len(results))
	for i, r := range results {
		chunk := chunkFromPayload(r.GetPayload())
		hits[i] = types.SearchHit{
			ChunkID: chunk.ID,
			Score:   float64(r.GetScore()),
			Chunk:   chunk,
		}
	}

	sortHits(hits)
	return topK(hits, k), nil
}

// chunkFromPayload reverses chunkPayload.
func chunkFromPayload(payload map[string]*pb.Value) types.Chunk {
	chunk := types.Chunk{
		ID:            payload["chunk_id"].GetStringValue(),
		DocumentID:    payload["document_id"].GetStringValue(),
		Text:          payload["content"].GetStringValue(),
		StartOffset:   int(payload["start_offset"].GetIntegerValue()),
		EndOffset:     int(payload["end_offset"].GetIntegerValue()),
		SequenceIndex: int(payload["sequence_index"].GetIntegerValue()),
	}
	for k, v := range payload {
		if strings.HasPrefix(k, metaPrefix) {
			if chunk.Metadata == nil {
				chunk.Metadata = make(map[string]string)
			}
			chunk.Metadata[strings.TrimPrefix(k, metaPrefix)] = v.GetStringValue()
		}
	}
	return chunk
}

// Count reports the number of points in the collection.
func (q *QdrantIndex) Count(ctx context.Context, collection string) (int, error) {
	_, exists, err := q.collectionDimension(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	exact := true
	resp, err := q.points.Count(ctx, &pb.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", types.ErrPersistence, collection, err)
	}
	return int(resp.GetResult().GetCount()), nil
}
