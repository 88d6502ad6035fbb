package vector

import (
	"context"
	"errors"
	"testing"
)

// fakeProvider is a test double for EmbeddingProvider that records calls.
type fakeProvider struct {
	// embedding is returned from every Embed call.
	embedding []float32
	// err, when non-nil, is returned instead.
	err error
	// calls records the text of every Embed invocation.
	calls []string
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeProvider) Model() string { return "text-embedding-3-large" }

// fakeStore is a test double for ContextStore that records inserted rows and
// serves canned query results.
type fakeStore struct {
	// inserted collects every row passed to Insert.
	inserted []EmbeddingRow
	// insertErr, when non-nil, fails Insert.
	insertErr error
	// results is returned from QueryNearest.
	results []SimilarityResult
	// queryErr, when non-nil, fails QueryNearest.
	queryErr error
	// queries records (tenant, limit) for every QueryNearest call.
	queries []struct {
		tenant string
		limit  int
	}
}

func (f *fakeStore) Insert(_ context.Context, row EmbeddingRow) error {
	if f.insertErr != nil {
		return &PersistenceError{Op: "insert", Err: f.insertErr}
	}
	f.inserted = append(f.inserted, row)
	return nil
}

func (f *fakeStore) QueryNearest(_ context.Context, tenantID string, _ []float32, limit int) ([]SimilarityResult, error) {
	f.queries = append(f.queries, struct {
		tenant string
		limit  int
	}{tenantID, limit})
	if f.queryErr != nil {
		return nil, &PersistenceError{Op: "query", Err: f.queryErr}
	}
	return f.results, nil
}

// validParams returns a fully-populated EmbedContextParams for mutation in tests.
func validParams() EmbedContextParams {
	return EmbedContextParams{
		TenantID:   "t1",
		ActorType:  "user",
		ActorRefID: "u1",
		SourceType: "presentation",
		SourceIDs:  []string{"s1", "s2"},
		Text:       "hello world",
	}
}

func newTestPipeline(t *testing.T, gate *Gate, provider *fakeProvider, store *fakeStore) *Pipeline {
	t.Helper()
	p, err := NewPipeline(gate, provider, store)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func Test_Pipeline_EmbedsThenInsertsExactlyOnce(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{embedding: []float32{0.1, 0.2, 0.3}}
	store := &fakeStore{}
	p := newTestPipeline(t, NewGate("true"), provider, store)

	if err := p.EmbedContext(context.Background(), validParams()); err != nil {
		t.Fatalf("EmbedContext: %v", err)
	}

	if len(provider.calls) != 1 {
		t.Fatalf("want exactly 1 embed call, got %d", len(provider.calls))
	}
	if provider.calls[0] != "hello world" {
		t.Errorf("embed called with %q, want %q", provider.calls[0], "hello world")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("want exactly 1 insert, got %d", len(store.inserted))
	}

	row := store.inserted[0]
	if row.TenantID != "t1" || row.ActorType != "user" || row.ActorRefID != "u1" {
		t.Errorf("provenance fields not carried through: %+v", row)
	}
	if row.SourceType != "presentation" {
		t.Errorf("source_type = %q, want presentation", row.SourceType)
	}
	if row.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("embedding_model = %q, want provider model id", row.EmbeddingModel)
	}
	if len(row.Embedding) != 3 {
		t.Errorf("embedding not the provider vector: %v", row.Embedding)
	}
}

func Test_Pipeline_SourceIDsSliceIsPassedThroughUnmodified(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{embedding: []float32{0}}
	store := &fakeStore{}
	p := newTestPipeline(t, NewGate("true"), provider, store)

	sourceIDs := []string{"a", "b"}
	params := validParams()
	params.SourceIDs = sourceIDs

	if err := p.EmbedContext(context.Background(), params); err != nil {
		t.Fatalf("EmbedContext: %v", err)
	}

	got := store.inserted[0].SourceIDs
	if &got[0] != &sourceIDs[0] {
		t.Error("inserted source_ids is not the caller's backing array")
	}
	if got[0] != "a" || got[1] != "b" {
		t.Errorf("source_ids order changed: %v", got)
	}
}

func Test_Pipeline_EmptySourceIDsAccepted(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{embedding: []float32{0}}
	store := &fakeStore{}
	p := newTestPipeline(t, NewGate("true"), provider, store)

	params := validParams()
	params.SourceIDs = []string{}

	if err := p.EmbedContext(context.Background(), params); err != nil {
		t.Fatalf("empty source_ids must be accepted, got %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("want 1 insert, got %d", len(store.inserted))
	}
}

func Test_Pipeline_ValidationOrderAndFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*EmbedContextParams)
		field  string
	}{
		{"missing tenant_id", func(p *EmbedContextParams) { p.TenantID = "" }, "tenant_id"},
		{"missing actor_type", func(p *EmbedContextParams) { p.ActorType = "" }, "actor_type"},
		{"missing actor_ref_id", func(p *EmbedContextParams) { p.ActorRefID = "" }, "actor_ref_id"},
		{"missing source_type", func(p *EmbedContextParams) { p.SourceType = "" }, "source_type"},
		{"nil source_ids", func(p *EmbedContextParams) { p.SourceIDs = nil }, "source_ids"},
		{"empty text", func(p *EmbedContextParams) { p.Text = "" }, "text"},
		{"whitespace text", func(p *EmbedContextParams) { p.Text = "   \n\t" }, "text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			provider := &fakeProvider{embedding: []float32{0}}
			store := &fakeStore{}
			p := newTestPipeline(t, NewGate("true"), provider, store)

			params := validParams()
			tc.mutate(&params)

			err := p.EmbedContext(context.Background(), params)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want *ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("error names field %q, want %q", verr.Field, tc.field)
			}
			if len(provider.calls) != 0 {
				t.Error("embed was called despite validation failure")
			}
			if len(store.inserted) != 0 {
				t.Error("insert was called despite validation failure")
			}
		})
	}
}

func Test_Pipeline_FirstFailingFieldWins(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, NewGate("true"), &fakeProvider{embedding: []float32{0}}, &fakeStore{})

	// Everything is broken; tenant_id is validated first so it must be reported.
	err := p.EmbedContext(context.Background(), EmbedContextParams{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if verr.Field != "tenant_id" {
		t.Errorf("first failing field = %q, want tenant_id", verr.Field)
	}
}

func Test_Pipeline_ClosedGateBlocksBeforeValidation(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{embedding: []float32{0}}
	store := &fakeStore{}
	p := newTestPipeline(t, NewGate("false"), provider, store)

	// Invalid params: if validation ran first this would be a ValidationError.
	err := p.EmbedContext(context.Background(), EmbedContextParams{})
	var inactive *InactiveFeatureError
	if !errors.As(err, &inactive) {
		t.Fatalf("want *InactiveFeatureError before validation, got %v", err)
	}
	if len(provider.calls) != 0 || len(store.inserted) != 0 {
		t.Error("boundary call happened with the gate closed")
	}
}

func Test_Pipeline_ProviderErrorPropagatesWithoutInsert(t *testing.T) {
	t.Parallel()

	boom := errors.New("model unavailable")
	provider := &fakeProvider{err: boom}
	store := &fakeStore{}
	p := newTestPipeline(t, NewGate("true"), provider, store)

	err := p.EmbedContext(context.Background(), validParams())
	if !errors.Is(err, boom) {
		t.Fatalf("provider error not propagated unmodified: %v", err)
	}
	if len(store.inserted) != 0 {
		t.Error("insert attempted after embed failure")
	}
}

func Test_Pipeline_InsertErrorIsPersistenceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	provider := &fakeProvider{embedding: []float32{0}}
	store := &fakeStore{insertErr: cause}
	p := newTestPipeline(t, NewGate("true"), provider, store)

	err := p.EmbedContext(context.Background(), validParams())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("want *PersistenceError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("underlying cause not preserved: %v", err)
	}
}
