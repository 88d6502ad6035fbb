package vector

import (
	"context"
	"fmt"
	"strings"
)

// EmbedContextParams carries the inputs for one ingestion call. All fields
// are required; SourceIDs must be non-nil but may be empty.
type EmbedContextParams struct {
	// TenantID scopes the row to one tenant.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// SourceType tags the adapter kind that produced the text.
	SourceType string
	// SourceIDs lists the originating signal IDs in caller order.
	SourceIDs []string
	// Text is the normalized plain text to embed.
	Text string
}

// Pipeline validates ingestion input, requests one embedding, and writes one
// row to the context store. Every call is gated: a closed activation gate
// blocks the call before any validation or boundary call occurs.
type Pipeline struct {
	// gate blocks all writes until vectors are explicitly activated.
	gate *Gate

	// provider produces the embedding vector for the input text.
	provider EmbeddingProvider

	// store persists the resulting row.
	store ContextStore
}

// NewPipeline constructs a Pipeline from its three dependencies.
func NewPipeline(gate *Gate, provider EmbeddingProvider, store ContextStore) (*Pipeline, error) {
	if gate == nil {
		return nil, fmt.Errorf("vector: gate must not be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("vector: provider must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector: store must not be nil")
	}
	return &Pipeline{gate: gate, provider: provider, store: store}, nil
}

// EmbedContext validates params, embeds the text, and inserts exactly one row.
// Validation order is fixed: tenant_id, actor_type, actor_ref_id, source_type,
// source_ids presence, text — the first failing check determines the error.
// The SourceIDs slice is persisted as passed: same backing array, same order.
func (p *Pipeline) EmbedContext(ctx context.Context, params EmbedContextParams) error {
	if err := p.gate.RequireActive(); err != nil {
		return err
	}

	const op = "EmbedContext"
	if params.TenantID == "" {
		return &ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if params.ActorType == "" {
		return &ValidationError{Op: op, Field: "actor_type", Reason: "is required"}
	}
	if params.ActorRefID == "" {
		return &ValidationError{Op: op, Field: "actor_ref_id", Reason: "is required"}
	}
	if params.SourceType == "" {
		return &ValidationError{Op: op, Field: "source_type", Reason: "is required"}
	}
	if params.SourceIDs == nil {
		return &ValidationError{Op: op, Field: "source_ids", Reason: "is required"}
	}
	if strings.TrimSpace(params.Text) == "" {
		return &ValidationError{Op: op, Field: "text", Reason: "is required"}
	}

	embedding, err := p.provider.Embed(ctx, params.Text)
	if err != nil {
		return err
	}

	row := EmbeddingRow{
		TenantID:       params.TenantID,
		ActorType:      params.ActorType,
		ActorRefID:     params.ActorRefID,
		SourceType:     params.SourceType,
		SourceIDs:      params.SourceIDs,
		Embedding:      embedding,
		EmbeddingModel: p.provider.Model(),
	}

	return p.store.Insert(ctx, row)
}
