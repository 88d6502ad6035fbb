package adapter

import (
	"context"
	"strings"

	"github.com/parallx/semctx/internal/vector"
)

// EmbedReplyParams carries the inputs for an inbound reply ingestion
// (email or WhatsApp — the adapters differ only in source_type).
type EmbedReplyParams struct {
	// TenantID scopes the row to one tenant.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// Body is the raw reply body; stored trimmed.
	Body string
	// SignalIDs are the originating signal IDs. Must be non-nil.
	SignalIDs []string
}

// EmbedEmailReply ingests a trimmed email reply body with source_type
// "email_reply".
func EmbedEmailReply(ctx context.Context, embedder ContextEmbedder, params EmbedReplyParams) error {
	return embedReply(ctx, embedder, "EmbedEmailReply", SourceTypeEmailReply, params)
}

// EmbedWhatsappReply ingests a trimmed WhatsApp reply body with source_type
// "whatsapp_reply".
func EmbedWhatsappReply(ctx context.Context, embedder ContextEmbedder, params EmbedReplyParams) error {
	return embedReply(ctx, embedder, "EmbedWhatsappReply", SourceTypeWhatsappReply, params)
}

// embedReply validates the shared reply fields and delegates to the pipeline.
func embedReply(ctx context.Context, embedder ContextEmbedder, op, sourceType string, params EmbedReplyParams) error {
	if params.TenantID == "" {
		return &vector.ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if params.ActorType == "" {
		return &vector.ValidationError{Op: op, Field: "actor_type", Reason: "is required"}
	}
	if params.ActorRefID == "" {
		return &vector.ValidationError{Op: op, Field: "actor_ref_id", Reason: "is required"}
	}
	if params.SignalIDs == nil {
		return &vector.ValidationError{Op: op, Field: "signal_ids", Reason: "is required"}
	}
	if strings.TrimSpace(params.Body) == "" {
		return &vector.ValidationError{Op: op, Field: "body", Reason: "cannot be empty"}
	}

	return embedder.EmbedContext(ctx, vector.EmbedContextParams{
		TenantID:   params.TenantID,
		ActorType:  params.ActorType,
		ActorRefID: params.ActorRefID,
		SourceType: sourceType,
		SourceIDs:  params.SignalIDs,
		Text:       strings.TrimSpace(params.Body),
	})
}

// EmbedOutboundExplanationParams carries the inputs for an outbound
// explanation ingestion.
type EmbedOutboundExplanationParams struct {
	// TenantID scopes the row to one tenant.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// Text is the explanation body; stored trimmed.
	Text string
	// DecisionID references the decision the explanation accompanies.
	DecisionID string
	// SignalIDs are the originating signal IDs. Must be non-nil.
	SignalIDs []string
}

// EmbedOutboundExplanation ingests a trimmed outbound explanation with
// source_type "outbound_explanation". The decision ID leads the persisted
// source_ids, followed by the signal IDs in caller order.
func EmbedOutboundExplanation(ctx context.Context, embedder ContextEmbedder, params EmbedOutboundExplanationParams) error {
	const op = "EmbedOutboundExplanation"
	if params.TenantID == "" {
		return &vector.ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if params.ActorType == "" {
		return &vector.ValidationError{Op: op, Field: "actor_type", Reason: "is required"}
	}
	if params.ActorRefID == "" {
		return &vector.ValidationError{Op: op, Field: "actor_ref_id", Reason: "is required"}
	}
	if params.DecisionID == "" {
		return &vector.ValidationError{Op: op, Field: "decision_id", Reason: "is required"}
	}
	if params.SignalIDs == nil {
		return &vector.ValidationError{Op: op, Field: "signal_ids", Reason: "is required"}
	}
	if strings.TrimSpace(params.Text) == "" {
		return &vector.ValidationError{Op: op, Field: "text", Reason: "cannot be empty"}
	}

	sourceIDs := append([]string{params.DecisionID}, params.SignalIDs...)

	return embedder.EmbedContext(ctx, vector.EmbedContextParams{
		TenantID:   params.TenantID,
		ActorType:  params.ActorType,
		ActorRefID: params.ActorRefID,
		SourceType: SourceTypeOutboundExplanation,
		SourceIDs:  sourceIDs,
		Text:       strings.TrimSpace(params.Text),
	})
}
