package adapter

import (
	"context"
	"strings"

	"github.com/parallx/semctx/internal/vector"
)

// TranscriptBlock is one utterance of a conversation transcript.
type TranscriptBlock struct {
	// Speaker is the optional speaker label.
	Speaker string `json:"speaker,omitempty"`
	// Text is the utterance body.
	Text string `json:"text,omitempty"`
}

// TranscriptInput is the structured transcript input.
type TranscriptInput struct {
	// Blocks are the transcript's utterances in conversation order.
	Blocks []TranscriptBlock `json:"blocks"`
	// TranscriptSignalIDs are the originating signal IDs.
	TranscriptSignalIDs []string `json:"transcript_signal_ids"`
}

// EmbedTranscriptParams carries the inputs for one transcript ingestion.
type EmbedTranscriptParams struct {
	// TenantID scopes the row to one tenant.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// Transcript is the structured transcript to flatten and embed.
	Transcript *TranscriptInput
}

// transcriptText flattens a transcript to "speaker: text" lines, skipping
// blocks with neither speaker nor text.
func transcriptText(transcript *TranscriptInput) string {
	var parts []string
	for _, block := range transcript.Blocks {
		var fields []string
		if block.Speaker != "" {
			fields = append(fields, block.Speaker)
		}
		if block.Text != "" {
			fields = append(fields, block.Text)
		}
		if line := strings.Join(fields, ": "); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// EmbedTranscript flattens the transcript and ingests it with source_type
// "transcript". A transcript with no text content is rejected before the
// pipeline is invoked.
func EmbedTranscript(ctx context.Context, embedder ContextEmbedder, params EmbedTranscriptParams) error {
	const op = "EmbedTranscript"
	if params.TenantID == "" {
		return &vector.ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if params.ActorType == "" {
		return &vector.ValidationError{Op: op, Field: "actor_type", Reason: "is required"}
	}
	if params.ActorRefID == "" {
		return &vector.ValidationError{Op: op, Field: "actor_ref_id", Reason: "is required"}
	}
	if params.Transcript == nil {
		return &vector.ValidationError{Op: op, Field: "transcript", Reason: "is required"}
	}

	sourceIDs := params.Transcript.TranscriptSignalIDs
	if sourceIDs == nil {
		sourceIDs = []string{}
	}

	text := transcriptText(params.Transcript)
	if strings.TrimSpace(text) == "" {
		return &vector.ValidationError{Op: op, Field: "transcript", Reason: "has no text content"}
	}

	return embedder.EmbedContext(ctx, vector.EmbedContextParams{
		TenantID:   params.TenantID,
		ActorType:  params.ActorType,
		ActorRefID: params.ActorRefID,
		SourceType: SourceTypeTranscript,
		SourceIDs:  sourceIDs,
		Text:       text,
	})
}
