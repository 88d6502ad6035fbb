package store

import (
	"context"
	"fmt"
)

// Pinger exposes the store's reachability for readiness probes. It satisfies
// the server.Pinger interface.
type Pinger struct {
	// store is the Qdrant-backed store to probe.
	store *QdrantStore
}

// NewPinger constructs a Pinger for the given store.
func NewPinger(s *QdrantStore) *Pinger {
	return &Pinger{store: s}
}

// Name returns the dependency label used in readiness responses.
func (p *Pinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *Pinger) Ping(ctx context.Context) error {
	_, err := p.store.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
