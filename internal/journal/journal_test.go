package journal

import (
	"context"
	"testing"
	"time"
)

func openTemp(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func Test_SQLiteJournal_AppendAndRecent(t *testing.T) {
	t.Parallel()
	j := openTemp(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := j.Append(ctx, Entry{
			TenantID:       "tenant-a",
			ActorType:      "customer",
			ActorRefID:     "cust-1",
			SourceType:     "transcript",
			SourceCount:    i,
			EmbeddingModel: "text-embedding-3-large",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, "tenant-a", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].SourceCount != 2 || entries[2].SourceCount != 0 {
		t.Errorf("Recent() order = [%d, %d, %d], want newest-first [2, 1, 0]",
			entries[0].SourceCount, entries[1].SourceCount, entries[2].SourceCount)
	}
	if entries[0].EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("EmbeddingModel = %q", entries[0].EmbeddingModel)
	}
}

func Test_SQLiteJournal_RecentIsTenantScoped(t *testing.T) {
	t.Parallel()
	j := openTemp(t)
	ctx := context.Background()

	for _, tenant := range []string{"tenant-a", "tenant-b", "tenant-a"} {
		if err := j.Append(ctx, Entry{TenantID: tenant, ActorType: "customer", ActorRefID: "c", SourceType: "email_reply", EmbeddingModel: "m"}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, "tenant-a", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(tenant-a) returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.TenantID != "tenant-a" {
			t.Errorf("Recent(tenant-a) returned entry for tenant %q", e.TenantID)
		}
	}
}

func Test_SQLiteJournal_RecentLimit(t *testing.T) {
	t.Parallel()
	j := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := j.Append(ctx, Entry{TenantID: "t", ActorType: "a", ActorRefID: "r", SourceType: "s", EmbeddingModel: "m"}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	entries, err := j.Recent(ctx, "t", 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Recent(n=2) returned %d entries, want 2", len(entries))
	}
}

func Test_SQLiteJournal_ZeroCreatedAtDefaultsToNow(t *testing.T) {
	t.Parallel()
	j := openTemp(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	if err := j.Append(ctx, Entry{TenantID: "t", ActorType: "a", ActorRefID: "r", SourceType: "s", EmbeddingModel: "m"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	entries, err := j.Recent(ctx, "t", 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}
	if entries[0].CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want >= %v", entries[0].CreatedAt, before)
	}
}

func Test_Discard_RecordsNothing(t *testing.T) {
	t.Parallel()
	var d Discard
	ctx := context.Background()

	if err := d.Append(ctx, Entry{TenantID: "t"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	entries, err := d.Recent(ctx, "t", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() returned %d entries, want 0", len(entries))
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
