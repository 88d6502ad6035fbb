// Package adapter flattens format-specific business documents (presentations,
// transcripts, outbound messages) into plain text plus source signal IDs and
// forwards them to the ingestion pipeline with a fixed source_type tag per
// adapter kind. Adapters are thin: all gating, validation of the common
// fields, and persistence live behind the pipeline's single entry point.
package adapter

import (
	"context"

	"github.com/parallx/semctx/internal/vector"
)

// ContextEmbedder is the single pipeline operation adapters depend on.
// *vector.Pipeline satisfies it; tests inject a fake.
type ContextEmbedder interface {
	// EmbedContext validates, embeds, and persists one context row.
	EmbedContext(ctx context.Context, params vector.EmbedContextParams) error
}

// Source type tags, one per adapter kind.
const (
	SourceTypePresentation        = "presentation"
	SourceTypeTranscript          = "transcript"
	SourceTypeEmailReply          = "email_reply"
	SourceTypeWhatsappReply       = "whatsapp_reply"
	SourceTypeOutboundExplanation = "outbound_explanation"
)
