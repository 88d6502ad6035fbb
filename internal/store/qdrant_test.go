package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

func Test_ResultFromPayload_FullRow(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	payload := qdrant.NewValueMap(map[string]any{
		"tenant_id":       "t1",
		"actor_type":      "user",
		"actor_ref_id":    "u1",
		"source_type":     "transcript",
		"source_ids":      []any{"s1", "s2"},
		"embedding_model": "text-embedding-3-large",
		"created_at":      created.Format(time.RFC3339Nano),
	})

	got := resultFromPayload(payload, 0.25)

	if got.TenantID != "t1" || got.ActorType != "user" || got.ActorRefID != "u1" {
		t.Errorf("provenance fields wrong: %+v", got)
	}
	if got.SourceType != "transcript" {
		t.Errorf("source_type = %q", got.SourceType)
	}
	if !reflect.DeepEqual(got.SourceIDs, []string{"s1", "s2"}) {
		t.Errorf("source_ids = %v", got.SourceIDs)
	}
	if got.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("embedding_model = %q", got.EmbeddingModel)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if got.Distance != 0.25 {
		t.Errorf("distance = %v, want 0.25", got.Distance)
	}
}

func Test_ResultFromPayload_NilAndPartialPayload(t *testing.T) {
	t.Parallel()

	got := resultFromPayload(nil, 0.5)
	if got.Distance != 0.5 || got.TenantID != "" || got.SourceIDs != nil {
		t.Errorf("nil payload not handled: %+v", got)
	}

	partial := qdrant.NewValueMap(map[string]any{
		"tenant_id":  "t1",
		"source_ids": []any{},
	})
	got = resultFromPayload(partial, 0)
	if got.TenantID != "t1" {
		t.Errorf("tenant_id = %q", got.TenantID)
	}
	if len(got.SourceIDs) != 0 {
		t.Errorf("empty source_ids round-trip: %v", got.SourceIDs)
	}
	if !got.CreatedAt.IsZero() {
		t.Errorf("missing created_at should stay zero, got %v", got.CreatedAt)
	}
}
