package adapter

import (
	"context"
	"strings"

	"github.com/parallx/semctx/internal/vector"
)

// PresentationParagraph is one paragraph of a presentation section.
type PresentationParagraph struct {
	// Text is the paragraph body; empty paragraphs are skipped.
	Text string `json:"text,omitempty"`
}

// PresentationSection is one section of a presentation artefact.
type PresentationSection struct {
	// Title is the optional section heading.
	Title string `json:"title,omitempty"`
	// Paragraphs are the section's body paragraphs.
	Paragraphs []PresentationParagraph `json:"paragraphs,omitempty"`
}

// PresentationArtefact is the structured presentation input.
type PresentationArtefact struct {
	// Sections are the artefact's ordered sections.
	Sections []PresentationSection `json:"sections,omitempty"`
	// SourceSignals carries the originating signal IDs.
	SourceSignals *PresentationSignals `json:"source_signals,omitempty"`
}

// PresentationSignals lists the signals a presentation was derived from.
type PresentationSignals struct {
	// SignalIDs are the originating signal IDs in presentation order.
	SignalIDs []string `json:"signal_ids,omitempty"`
}

// EmbedPresentationParams carries the inputs for one presentation ingestion.
type EmbedPresentationParams struct {
	// TenantID scopes the row to one tenant.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// Artefact is the structured presentation to flatten and embed.
	Artefact *PresentationArtefact
}

// presentationText flattens an artefact to plain text: section titles and
// paragraph bodies in document order, joined by blank lines.
func presentationText(artefact *PresentationArtefact) string {
	var parts []string
	for _, section := range artefact.Sections {
		if section.Title != "" {
			parts = append(parts, section.Title)
		}
		for _, p := range section.Paragraphs {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// EmbedPresentation flattens the artefact and ingests it with source_type
// "presentation". An artefact with no text content is rejected before the
// pipeline is invoked.
func EmbedPresentation(ctx context.Context, embedder ContextEmbedder, params EmbedPresentationParams) error {
	const op = "EmbedPresentation"
	if params.TenantID == "" {
		return &vector.ValidationError{Op: op, Field: "tenant_id", Reason: "is required"}
	}
	if params.ActorType == "" {
		return &vector.ValidationError{Op: op, Field: "actor_type", Reason: "is required"}
	}
	if params.ActorRefID == "" {
		return &vector.ValidationError{Op: op, Field: "actor_ref_id", Reason: "is required"}
	}
	if params.Artefact == nil {
		return &vector.ValidationError{Op: op, Field: "artefact", Reason: "is required"}
	}

	sourceIDs := []string{}
	if params.Artefact.SourceSignals != nil && params.Artefact.SourceSignals.SignalIDs != nil {
		sourceIDs = params.Artefact.SourceSignals.SignalIDs
	}

	text := presentationText(params.Artefact)
	if strings.TrimSpace(text) == "" {
		return &vector.ValidationError{Op: op, Field: "artefact", Reason: "has no text content"}
	}

	return embedder.EmbedContext(ctx, vector.EmbedContextParams{
		TenantID:   params.TenantID,
		ActorType:  params.ActorType,
		ActorRefID: params.ActorRefID,
		SourceType: SourceTypePresentation,
		SourceIDs:  sourceIDs,
		Text:       text,
	})
}
