package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/parallx/semctx/internal/embedder"
	"github.com/parallx/semctx/internal/journal"
	"github.com/parallx/semctx/internal/store"
	"github.com/parallx/semctx/internal/vector"
)

// getEnvOrDefault returns the env var value, or def when unset or empty.
func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the env var parsed as int, or def when unset or invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// buildStore connects to Qdrant using env configuration and ensures the
// target collection exists. The caller owns the returned store's lifecycle.
func buildStore(ctx context.Context, log *slog.Logger) (*store.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "context_embeddings")
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "openai")
	vectorSize := uint64(getEnvInt("EMBEDDING_DIMENSIONS", embedder.DefaultDimensions(backend))) //nolint:gosec // dimensions are bounded

	qs, err := store.NewQdrantStore(ctx, &store.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return qs, nil
}

// pipelineDeps bundles the wired vector pipeline and its dependencies.
type pipelineDeps struct {
	// pipeline is the gated write path.
	pipeline *vector.Pipeline
	// retrieval is the gated read path.
	retrieval *vector.Retrieval
	// provider is the embedding backend shared by both paths.
	provider vector.EmbeddingProvider
	// store is the Qdrant-backed context store, exposed for readiness probes.
	store *store.QdrantStore
	// close releases the store connection.
	close func()
}

// buildPipeline wires the gate, embedder, and store into the full write/read
// pair. The caller must call the returned deps' close function.
func buildPipeline(ctx context.Context, log *slog.Logger) (*pipelineDeps, error) {
	gate := vector.NewGate(os.Getenv("VECTORS_ACTIVE"))
	if !gate.IsActive() {
		log.Warn("vectors are inactive — pipeline calls will be refused until VECTORS_ACTIVE=true")
	}

	provider, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	qs, err := buildStore(ctx, log)
	if err != nil {
		return nil, err
	}
	closeStore := func() { _ = qs.Close() }

	pipeline, err := vector.NewPipeline(gate, provider, qs)
	if err != nil {
		closeStore()
		return nil, err
	}
	retrieval, err := vector.NewRetrieval(gate, qs)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &pipelineDeps{
		pipeline:  pipeline,
		retrieval: retrieval,
		provider:  provider,
		store:     qs,
		close:     closeStore,
	}, nil
}

// openJournal opens the ingest journal. SEMCTX_JOURNAL_DB overrides the
// default path (~/.semctx/journal.db); "disabled" turns journaling off.
// Failures degrade to the discard journal — journaling never blocks ingest.
func openJournal(log *slog.Logger) (journal.Journal, func()) {
	dbPath := os.Getenv("SEMCTX_JOURNAL_DB")
	if dbPath == "disabled" {
		log.Info("journal: disabled via SEMCTX_JOURNAL_DB=disabled")
		return journal.Discard{}, func() {}
	}
	if dbPath == "" {
		p, err := journal.DefaultDBPath()
		if err != nil {
			log.Warn("journal: could not resolve default DB path, disabling", slog.Any("error", err))
			return journal.Discard{}, func() {}
		}
		dbPath = p
	}

	j, err := journal.Open(dbPath)
	if err != nil {
		log.Warn("journal: failed to open, disabling", slog.Any("error", err))
		return journal.Discard{}, func() {}
	}
	log.Info("journal: opened", slog.String("path", dbPath))
	return j, func() { _ = j.Close() }
}
