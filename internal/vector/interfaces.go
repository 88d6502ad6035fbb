// Package vector implements the activation-gated write/read contract for
// semantic context embeddings: a process-wide activation gate, the ingestion
// pipeline that turns normalized text into one stored embedding row, and the
// retrieval service that returns nearest-context rows by cosine distance.
// The embedding model call and the vector store are boundary dependencies
// behind narrow interfaces so the core never touches a network or database
// directly.
package vector

import (
	"context"
	"time"
)

// EmbeddingRow is one persisted context embedding. Rows are created
// exclusively by the ingestion pipeline and are immutable once written.
type EmbeddingRow struct {
	// TenantID is the isolation boundary; every read and write is scoped to it.
	TenantID string

	// ActorType classifies the business entity the context belongs to
	// (e.g. "user", "company", "candidate").
	ActorType string

	// ActorRefID is an opaque reference to the owning entity.
	ActorRefID string

	// SourceType tags which adapter produced the row
	// (e.g. "presentation", "transcript", "email_reply").
	SourceType string

	// SourceIDs is the caller-supplied ordered list of originating signal IDs.
	// May be empty. The pipeline persists the exact slice it was given —
	// never copied, reordered, or mutated.
	SourceIDs []string

	// Embedding is the model-produced vector, length = model dimension.
	Embedding []float32

	// EmbeddingModel identifies the model/version that produced the vector.
	EmbeddingModel string
}

// SimilarityResult is one nearest-context row returned by a query. It carries
// the row's provenance fields but not the embedding vector itself.
type SimilarityResult struct {
	// TenantID is the tenant the row belongs to.
	TenantID string

	// ActorType classifies the owning business entity.
	ActorType string

	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string

	// SourceType tags the adapter that produced the row.
	SourceType string

	// SourceIDs is the stored list of originating signal IDs.
	SourceIDs []string

	// EmbeddingModel identifies the model that produced the stored vector.
	EmbeddingModel string

	// CreatedAt is the server-assigned row creation time.
	CreatedAt time.Time

	// Distance is the cosine distance to the query vector; lower = more similar.
	Distance float64
}

// EmbeddingProvider converts text into a fixed-dimension vector by calling an
// external embedding model. Implementations must be safe to call from
// multiple goroutines.
type EmbeddingProvider interface {
	// Embed converts text into its embedding vector. Empty or whitespace-only
	// text is rejected with an *InvalidInputError; provider failures propagate
	// unmodified (no retry at this layer).
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the identifier of the model that produces the vectors,
	// stamped onto every persisted row.
	Model() string
}

// ContextStore persists embedding rows and answers nearest-neighbor queries.
// The store is responsible for tenant-scoped filtering and for computing the
// cosine distance; each call is an atomic remote operation with no
// partial-result semantics. Implementations must be safe for concurrent use.
type ContextStore interface {
	// Insert writes exactly one embedding row. Failures are reported as
	// *PersistenceError wrapping the underlying store error.
	Insert(ctx context.Context, row EmbeddingRow) error

	// QueryNearest returns up to limit rows for the tenant, ordered by
	// ascending cosine distance to the query vector.
	QueryNearest(ctx context.Context, tenantID string, vector []float32, limit int) ([]SimilarityResult, error)
}
