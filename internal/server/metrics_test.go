package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parallx/semctx/internal/vector"
)

// newMetricsTestServer builds a Server backed by a fresh isolated registry so
// tests do not pollute prometheus.DefaultRegisterer.
func newMetricsTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := newTestServer()
	s.metrics = newServerMetrics(reg)
	return s, reg
}

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()
	_, reg := newMetricsTestServer(t)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

func Test_Metrics_IngestCounterIncremented(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	w := postJSON(t, s.handleContext, "/api/context", validContextBody())
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	if got := counterValue(t, reg, "semctx_ingest_requests_total", "outcome", "ok"); got != 1 {
		t.Errorf("ok outcome counter: want 1, got %v", got)
	}
}

func Test_Metrics_IngestInactiveOutcome(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)
	s.ingestor = &fakeIngestor{err: vector.NewGate("false").RequireActive()}

	w := postJSON(t, s.handleContext, "/api/context", validContextBody())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	if got := counterValue(t, reg, "semctx_ingest_requests_total", "outcome", "inactive"); got != 1 {
		t.Errorf("inactive outcome counter: want 1, got %v", got)
	}
}

func Test_Metrics_HintsCounter(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	for range 3 {
		w := postJSON(t, s.handleHints, "/api/hints", hintsRequest{Text: "terraform"})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}

	if got := counterValue(t, reg, "semctx_hints_requests_total"); got != 3 {
		t.Errorf("hints counter: want 3, got %v", got)
	}
}

func Test_Instrument_RecordsHTTPMetrics(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	h := s.instrument("health", s.handleHealth)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, reg, "semctx_http_requests_total", "code", "200"); got != 1 {
		t.Errorf("http requests counter: want 1, got %v", got)
	}
}

// counterValue gathers reg and returns the summed value of the named counter,
// optionally filtered by one label pair.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labelPair ...string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if len(labelPair) == 2 {
				matched := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == labelPair[0] && lp.GetValue() == labelPair[1] {
						matched = true
					}
				}
				if !matched {
					continue
				}
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
