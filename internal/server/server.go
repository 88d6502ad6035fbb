// Package server implements the HTTP server that exposes the semantic
// context pipeline: ingestion, similarity search, offline technology hints,
// and the ontology lookup. The server is started by the `semctx serve` CLI
// command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parallx/semctx/internal/journal"
	"github.com/parallx/semctx/internal/logging"
	"github.com/parallx/semctx/internal/ontology"
	"github.com/parallx/semctx/internal/vector"
)

// Deps bundles the domain dependencies the server exposes over HTTP.
type Deps struct {
	// Ingestor stores embedding rows. Required.
	Ingestor ingestor
	// Searcher retrieves nearest context. Required.
	Searcher searcher
	// Provider embeds free text for search-by-text requests. Required.
	Provider vector.EmbeddingProvider
	// Journal records successful ingestions. Optional; nil disables journaling.
	Journal journal.Journal
}

// New constructs a Server from the provided dependencies and config.
func New(deps Deps, cfg *Config) (*Server, error) {
	if deps.Ingestor == nil {
		return nil, fmt.Errorf("server: ingestor must not be nil")
	}
	if deps.Searcher == nil {
		return nil, fmt.Errorf("server: searcher must not be nil")
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("server: provider must not be nil")
	}
	if deps.Journal == nil {
		deps.Journal = journal.Discard{}
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	gatherer := prometheus.DefaultGatherer
	if cfg.Registry != nil {
		reg = cfg.Registry
		if g, ok := cfg.Registry.(prometheus.Gatherer); ok {
			gatherer = g
		}
	}

	s := &Server{
		ingestor: deps.Ingestor,
		searcher: deps.Searcher,
		provider: deps.Provider,
		journal:  deps.Journal,
		cfg:      cfg,
		log:      cfg.Logger,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(reg),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	mux := http.NewServeMux()

	// Protected routes: auth + per-IP rate limiting.
	protected := func(name string, h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(s.instrument(name, h)))
	}
	mux.Handle("POST /api/context", protected("context", s.handleContext))
	mux.Handle("POST /api/context/search", protected("search", s.handleSearch))
	mux.Handle("POST /api/hints", protected("hints", s.handleHints))
	mux.Handle("GET /api/ontology/{name}", protected("ontology", s.handleOntology))

	// Operational routes are unauthenticated so probes and scrapers work.
	mux.Handle("GET /api/health", s.instrument("health", s.handleHealth))
	mux.Handle("GET /api/ready", s.instrument("ready", s.handleReady))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if cfg.APIKey == "" {
		s.log.Warn("server: SEMCTX_API_KEY not set — API authentication is disabled")
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the server's root HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server: listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleContext handles POST /api/context. On success one embedding row has
// been stored and the response is 204 No Content.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "invalid request body"})
		return
	}

	err := s.ingestor.EmbedContext(r.Context(), vector.EmbedContextParams{
		TenantID:   req.TenantID,
		ActorType:  req.ActorType,
		ActorRefID: req.ActorRefID,
		SourceType: req.SourceType,
		SourceIDs:  req.SourceIDs,
		Text:       req.Text,
	})
	if err != nil {
		s.metrics.ingestTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.writeDomainError(w, log, err)
		return
	}
	s.metrics.ingestTotal.WithLabelValues("ok").Inc()

	if jerr := s.journal.Append(r.Context(), journal.Entry{
		TenantID:    req.TenantID,
		ActorType:   req.ActorType,
		ActorRefID:  req.ActorRefID,
		SourceType:  req.SourceType,
		SourceCount: len(req.SourceIDs),
	}); jerr != nil {
		// Journaling is observability only; a failed append never fails the request.
		log.Warn("journal append failed", slog.Any("error", jerr))
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSearch handles POST /api/context/search. When the body carries text
// it is embedded first; a pre-computed embedding is used as-is.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "invalid request body"})
		return
	}

	embedding := req.Embedding
	if req.Text != "" {
		vec, err := s.provider.Embed(r.Context(), req.Text)
		if err != nil {
			s.metrics.searchTotal.WithLabelValues(outcomeLabel(err)).Inc()
			s.writeDomainError(w, log, err)
			return
		}
		embedding = vec
	}

	results, err := s.searcher.FindSimilarContext(r.Context(), req.TenantID, embedding, req.Limit)
	if err != nil {
		s.metrics.searchTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.writeDomainError(w, log, err)
		return
	}
	s.metrics.searchTotal.WithLabelValues("ok").Inc()

	resp := searchResponse{Results: make([]searchResult, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, searchResult{
			TenantID:   res.TenantID,
			ActorType:  res.ActorType,
			ActorRefID: res.ActorRefID,
			SourceType: res.SourceType,
			SourceIDs:  res.SourceIDs,
			CreatedAt:  res.CreatedAt,
			Distance:   res.Distance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHints handles POST /api/hints. The matcher is fully offline and is
// not behind the activation gate, so hints work even when vectors are off.
func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	var req hintsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid_body", Message: "invalid request body"})
		return
	}

	hints := ontology.RetrieveHints(req.Text, req.MaxPerDomain)
	if hints == nil {
		hints = []ontology.TechHint{}
	}
	s.metrics.hintsTotal.Inc()
	writeJSON(w, http.StatusOK, map[string][]ontology.TechHint{"hints": hints})
}

// handleOntology handles GET /api/ontology/{name}. Lookup is case-insensitive
// on the canonical name; unknown names return 404, never 500.
func (s *Server) handleOntology(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	entry, ok := ontology.GetEntry(name)
	if !ok {
		writeError(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("no ontology entry named %q", name),
		})
		return
	}
	writeJSON(w, http.StatusOK, ontologyResponse{
		CanonicalName: entry.CanonicalName,
		DomainBlock:   entry.DomainBlock,
		SubtechOf:     entry.SubtechOf,
		Aliases:       entry.Aliases,
		IsBaseline:    entry.IsBaseline,
		IsRoot:        entry.IsRoot,
	})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps domain errors to HTTP status codes:
// closed gate → 403, invalid input → 400, storage failure → 502.
func (s *Server) writeDomainError(w http.ResponseWriter, log *slog.Logger, err error) {
	var inactive *vector.InactiveFeatureError
	if errors.As(err, &inactive) {
		writeError(w, http.StatusForbidden, errorResponse{Error: "vectors_inactive", Message: inactive.Error()})
		return
	}

	var invalid *vector.ValidationError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: invalid.Error(), Field: invalid.Field})
		return
	}

	var input *vector.InvalidInputError
	if errors.As(err, &input) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: input.Error()})
		return
	}

	var persist *vector.PersistenceError
	if errors.As(err, &persist) {
		log.Error("store operation failed", slog.String("op", persist.Op), slog.Any("error", err))
		writeError(w, http.StatusBadGateway, errorResponse{Error: "storage_unavailable", Message: "context store request failed"})
		return
	}

	log.Error("request failed", slog.Any("error", err))
	writeError(w, http.StatusBadGateway, errorResponse{Error: "upstream_failed", Message: "embedding request failed"})
}

// outcomeLabel classifies an error for the outcome metric label.
func outcomeLabel(err error) string {
	var inactive *vector.InactiveFeatureError
	var invalid *vector.ValidationError
	var input *vector.InvalidInputError
	switch {
	case errors.As(err, &inactive):
		return "inactive"
	case errors.As(err, &invalid), errors.As(err, &input):
		return "invalid"
	default:
		return "error"
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response with the given status code.
func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}
