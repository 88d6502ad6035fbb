// Package journal provides a SQLite-backed local journal of successful
// ingestions. One entry is appended per stored embedding row so operators can
// trace what was written for a tenant without querying the vector store.
// The journal is observability only — it never influences reads or writes.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one recorded ingestion.
type Entry struct {
	// TenantID is the tenant the row was written for.
	TenantID string
	// ActorType classifies the owning business entity.
	ActorType string
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string
	// SourceType tags the adapter that produced the row.
	SourceType string
	// SourceCount is the number of source signal IDs on the row.
	SourceCount int
	// EmbeddingModel identifies the model that produced the vector.
	EmbeddingModel string
	// CreatedAt is when the entry was journaled.
	CreatedAt time.Time
}

// Journal persists and retrieves ingestion entries keyed by tenant.
// Implementations must be safe for concurrent use.
type Journal interface {
	// Append records a single successful ingestion.
	Append(ctx context.Context, e Entry) error
	// Recent returns the most recent n entries for the tenant, newest-first.
	// If fewer than n entries exist, all are returned.
	Recent(ctx context.Context, tenantID string, n int) ([]Entry, error)
	// Close releases any resources held by the journal.
	Close() error
}

// SQLiteJournal is a Journal backed by a local SQLite database.
type SQLiteJournal struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the ingest journal database.
// It resolves to ~/.semctx/journal.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("journal: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".semctx")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("journal: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "journal.db"), nil
}

// Open opens (or creates) a SQLiteJournal at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteJournal, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// migrate creates the schema if it does not already exist.
func (j *SQLiteJournal) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS ingestions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    tenant_id       TEXT    NOT NULL,
    actor_type      TEXT    NOT NULL,
    actor_ref_id    TEXT    NOT NULL,
    source_type     TEXT    NOT NULL,
    source_count    INTEGER NOT NULL,
    embedding_model TEXT    NOT NULL,
    created_at      INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_ingestions_tenant_created
    ON ingestions (tenant_id, created_at);
`
	if _, err := j.db.Exec(ddl); err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Append records a single successful ingestion.
func (j *SQLiteJournal) Append(ctx context.Context, e Entry) error {
	const q = `INSERT INTO ingestions (tenant_id, actor_type, actor_ref_id, source_type, source_count, embedding_model, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := j.db.ExecContext(ctx, q,
		e.TenantID, e.ActorType, e.ActorRefID, e.SourceType, e.SourceCount, e.EmbeddingModel, createdAt.Unix(),
	); err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n entries for the tenant, newest-first.
func (j *SQLiteJournal) Recent(ctx context.Context, tenantID string, n int) ([]Entry, error) {
	const q = `
SELECT tenant_id, actor_type, actor_ref_id, source_type, source_count, embedding_model, created_at
FROM ingestions
WHERE tenant_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`
	rows, err := j.db.QueryContext(ctx, q, tenantID, n)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var unix int64
		if err := rows.Scan(&e.TenantID, &e.ActorType, &e.ActorRefID, &e.SourceType, &e.SourceCount, &e.EmbeddingModel, &unix); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.CreatedAt = time.Unix(unix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: rows: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Discard is a Journal that records nothing, used when journaling is disabled.
type Discard struct{}

// Append does nothing.
func (Discard) Append(context.Context, Entry) error { return nil }

// Recent always returns no entries.
func (Discard) Recent(context.Context, string, int) ([]Entry, error) { return nil, nil }

// Close does nothing.
func (Discard) Close() error { return nil }
