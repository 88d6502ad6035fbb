package vector

import (
	"context"
	"fmt"
)

// DefaultQueryLimit is the number of nearest rows returned when the caller
// does not specify a limit.
const DefaultQueryLimit = 5

// Retrieval answers nearest-context queries against the store. The activation
// gate is checked before any argument validation so that inactivity is
// reported identically regardless of argument validity.
type Retrieval struct {
	// gate blocks all reads until vectors are explicitly activated.
	gate *Gate

	// store answers the tenant-scoped nearest-neighbor query.
	store ContextStore
}

// NewRetrieval constructs a Retrieval from its dependencies.
func NewRetrieval(gate *Gate, store ContextStore) (*Retrieval, error) {
	if gate == nil {
		return nil, fmt.Errorf("vector: gate must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector: store must not be nil")
	}
	return &Retrieval{gate: gate, store: store}, nil
}

// FindSimilarContext returns up to limit rows nearest to embedding for the
// tenant, ordered ascending by distance exactly as the store returned them —
// this layer imposes no re-sorting, so ties stay in store order. A limit of
// zero or less falls back to DefaultQueryLimit.
func (r *Retrieval) FindSimilarContext(ctx context.Context, tenantID string, embedding []float32, limit int) ([]SimilarityResult, error) {
	if err := r.gate.RequireActive(); err != nil {
		return nil, err
	}

	const op = "FindSimilarContext"
	if tenantID == "" {
		return nil, &ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if embedding == nil {
		return nil, &ValidationError{Op: op, Field: "embedding", Reason: "is required"}
	}
	if len(embedding) == 0 {
		return nil, &ValidationError{Op: op, Field: "embedding", Reason: "cannot be empty"}
	}

	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	return r.store.QueryNearest(ctx, tenantID, embedding, limit)
}
