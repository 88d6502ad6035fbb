// Package store provides the production vector.ContextStore implementation
// backed by a Qdrant collection. One logical table, one similarity metric
// (cosine), tenant-partitioned by a payload filter — the store computes the
// distance and restricts results to the requesting tenant.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/parallx/semctx/internal/vector"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this collection.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements vector.ContextStore backed by a Qdrant instance.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig

	// now returns the row creation timestamp; overridable in tests.
	now func() time.Time
}

// NewQdrantStore creates a new QdrantStore, ensuring the target collection
// exists (creating it if necessary), and returns a ready-to-use ContextStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = "context_embeddings"
	}

	clientCfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	}

	client, err := qdrant.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg, now: time.Now}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}

	return nil
}

// Insert writes exactly one embedding row as a new point. The row's
// created_at is assigned here, at write time; rows are never updated after.
func (s *QdrantStore) Insert(ctx context.Context, row vector.EmbeddingRow) error {
	sourceIDs := make([]any, len(row.SourceIDs))
	for i, id := range row.SourceIDs {
		sourceIDs[i] = id
	}

	payload := map[string]any{
		"tenant_id":       row.TenantID,
		"actor_type":      row.ActorType,
		"actor_ref_id":    row.ActorRefID,
		"source_type":     row.SourceType,
		"source_ids":      sourceIDs,
		"embedding_model": row.EmbeddingModel,
		"created_at":      s.now().UTC().Format(time.RFC3339Nano),
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(uuid.NewString()),
		Vectors: qdrant.NewVectors(row.Embedding...),
		Payload: qdrant.NewValueMap(payload),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return &vector.PersistenceError{Op: "insert", Err: err}
	}

	return nil
}

// QueryNearest runs a tenant-filtered cosine search and returns up to limit
// rows ordered ascending by distance. Qdrant reports cosine similarity
// (higher = closer); the returned Distance is 1 - similarity so lower means
// more similar, and Qdrant's best-first ordering maps to distance ascending.
func (s *QdrantStore) QueryNearest(ctx context.Context, tenantID string, queryVector []float32, limit int) ([]vector.SimilarityResult, error) {
	qLimit := uint64(limit)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &qLimit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("tenant_id", tenantID),
			},
		},
	})
	if err != nil {
		return nil, &vector.PersistenceError{Op: "query", Err: err}
	}

	results := make([]vector.SimilarityResult, 0, len(points))
	for _, p := range points {
		results = append(results, resultFromPayload(p.Payload, float64(1-p.Score)))
	}

	return results, nil
}

// resultFromPayload reconstructs a SimilarityResult from a point's payload.
func resultFromPayload(payload map[string]*qdrant.Value, distance float64) vector.SimilarityResult {
	r := vector.SimilarityResult{Distance: distance}
	if payload == nil {
		return r
	}

	str := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	r.TenantID = str("tenant_id")
	r.ActorType = str("actor_type")
	r.ActorRefID = str("actor_ref_id")
	r.SourceType = str("source_type")
	r.EmbeddingModel = str("embedding_model")

	if v, ok := payload["source_ids"]; ok {
		if list := v.GetListValue(); list != nil {
			ids := make([]string, 0, len(list.GetValues()))
			for _, item := range list.GetValues() {
				ids = append(ids, item.GetStringValue())
			}
			r.SourceIDs = ids
		}
	}

	if createdAt := str("created_at"); createdAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
	}

	return r
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
