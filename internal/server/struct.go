package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/parallx/semctx/internal/journal"
	"github.com/parallx/semctx/internal/vector"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [slog.Default] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry receives the server's Prometheus metrics. If nil, the default
	// registry is used. Tests inject a fresh registry to stay hermetic.
	Registry prometheus.Registerer
}

// ingestor is the interface handleContext calls to store one embedding row.
// *vector.Pipeline satisfies it; tests inject a fake.
type ingestor interface {
	EmbedContext(ctx context.Context, params vector.EmbedContextParams) error
}

// searcher is the interface handleSearch calls to retrieve nearest context.
// *vector.Retrieval satisfies it; tests inject a fake.
type searcher interface {
	FindSimilarContext(ctx context.Context, tenantID string, embedding []float32, limit int) ([]vector.SimilarityResult, error)
}

// Server is the HTTP server that exposes the context pipeline.
type Server struct {
	// ingestor stores embedding rows for POST /api/context.
	ingestor ingestor
	// searcher retrieves nearest context for POST /api/context/search.
	searcher searcher
	// provider embeds free text for search-by-text requests.
	provider vector.EmbeddingProvider
	// journal records successful ingestions. Never nil; journal.Discard
	// is used when journaling is disabled.
	journal journal.Journal
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus metrics owned by this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// contextRequest is the JSON body for POST /api/context.
type contextRequest struct {
	// TenantID scopes the row to one tenant.
	TenantID string `json:"tenant_id"`
	// ActorType classifies the owning business entity.
	ActorType string `json:"actor_type"`
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string `json:"actor_ref_id"`
	// SourceType tags the adapter kind that produced the text.
	SourceType string `json:"source_type"`
	// SourceIDs lists the originating signal IDs in caller order.
	SourceIDs []string `json:"source_ids"`
	// Text is the normalized plain text to embed.
	Text string `json:"text"`
}

// searchRequest is the JSON body for POST /api/context/search.
// Exactly one of Text or Embedding should be set; Text wins when both are.
type searchRequest struct {
	// TenantID scopes the query to one tenant.
	TenantID string `json:"tenant_id"`
	// Text is free text to embed and search with.
	Text string `json:"text,omitempty"`
	// Embedding is a pre-computed query vector.
	Embedding []float32 `json:"embedding,omitempty"`
	// Limit caps the number of results. Defaults to 5 when zero.
	Limit int `json:"limit,omitempty"`
}

// searchResult is one row of the POST /api/context/search response.
type searchResult struct {
	// TenantID is the tenant the row belongs to.
	TenantID string `json:"tenant_id"`
	// ActorType classifies the owning business entity.
	ActorType string `json:"actor_type"`
	// ActorRefID is the opaque reference to the owning entity.
	ActorRefID string `json:"actor_ref_id"`
	// SourceType tags the adapter that produced the row.
	SourceType string `json:"source_type"`
	// SourceIDs is the stored list of originating signal IDs.
	SourceIDs []string `json:"source_ids"`
	// CreatedAt is when the row was written, RFC 3339.
	CreatedAt time.Time `json:"created_at"`
	// Distance is the cosine distance to the query vector (lower is closer).
	Distance float64 `json:"distance"`
}

// searchResponse is the JSON body for POST /api/context/search.
type searchResponse struct {
	// Results is the nearest-context rows, closest first.
	Results []searchResult `json:"results"`
}

// hintsRequest is the JSON body for POST /api/hints.
type hintsRequest struct {
	// Text is the free-form text to infer technologies from.
	Text string `json:"text"`
	// MaxPerDomain caps hints per domain block. Defaults to 4 when zero.
	MaxPerDomain int `json:"max_per_domain,omitempty"`
}

// ontologyResponse is the JSON body for GET /api/ontology/{name}.
type ontologyResponse struct {
	// CanonicalName is the entry's unique primary key.
	CanonicalName string `json:"canonical_name"`
	// DomainBlock is the coarse category the entry belongs to.
	DomainBlock string `json:"domain_block"`
	// SubtechOf names the parent entry, when the entry has one.
	SubtechOf string `json:"subtech_of,omitempty"`
	// Aliases are the lowercase surface forms that evidence the entry.
	Aliases []string `json:"aliases"`
	// IsBaseline marks entries treated as baseline skills.
	IsBaseline bool `json:"is_baseline"`
	// IsRoot marks top-level entries that anchor a technology family.
	IsRoot bool `json:"is_root"`
}

// errorResponse is the JSON body for all non-2xx API responses.
type errorResponse struct {
	// Error is the stable machine-readable error kind.
	Error string `json:"error"`
	// Message is the human-readable explanation.
	Message string `json:"message"`
	// Field names the first failing input field, for validation errors.
	Field string `json:"field,omitempty"`
}
