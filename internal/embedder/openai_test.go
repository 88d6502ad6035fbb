package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parallx/semctx/internal/budget"
	"github.com/parallx/semctx/internal/vector"
)

func Test_OpenAIEmbedder_Embed(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody openaiEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "sk-test",
		Model:      "text-embedding-3-large",
		Dimensions: 3,
	})

	got, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 3 || got[0] != 0.1 {
		t.Errorf("embedding = %v, want [0.1 0.2 0.3]", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer token", gotAuth)
	}
	if gotBody.Input != "hello world" || gotBody.Model != "text-embedding-3-large" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.EncodingFormat != "float" {
		t.Errorf("encoding_format = %q, want float", gotBody.EncodingFormat)
	}
	if e.Model() != "text-embedding-3-large" {
		t.Errorf("Model() = %q", e.Model())
	}
}

func Test_OpenAIEmbedder_RejectsEmptyText(t *testing.T) {
	t.Parallel()

	// No server: validation must fail before any network call.
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: "http://127.0.0.1:0", Model: "m"})

	cases := []struct {
		text string
		want string
	}{
		{"", "text is required"},
		{"   \n\t", "text cannot be empty"},
	}
	for _, tc := range cases {
		_, err := e.Embed(context.Background(), tc.text)
		var invalid *vector.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("Embed(%q): want *vector.InvalidInputError, got %v", tc.text, err)
		}
		if got := err.Error(); !contains(got, tc.want) {
			t.Errorf("Embed(%q) error = %q, want substring %q", tc.text, got, tc.want)
		}
	}
}

func Test_OpenAIEmbedder_RejectsOverBudgetText(t *testing.T) {
	t.Parallel()

	// No server: the token budget check must fail before any network call.
	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: "http://127.0.0.1:0", Model: "m"})

	long := strings.Repeat("x", (budget.DefaultMaxEmbedTokens+1)*4)
	_, err := e.Embed(context.Background(), long)
	var invalid *vector.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("Embed(long): want *vector.InvalidInputError, got %v", err)
	}
	if got := err.Error(); !contains(got, "token limit") {
		t.Errorf("Embed(long) error = %q, want token limit message", got)
	}
}

func Test_OpenAIEmbedder_BackendErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit reached"},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, Model: "m"})
	_, err := e.Embed(context.Background(), "text")
	if err == nil {
		t.Fatal("want error on HTTP 429")
	}
	if !contains(err.Error(), "rate limit reached") {
		t.Errorf("backend message not surfaced: %v", err)
	}
}

func Test_OllamaEmbedder_Embed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{1, 2}},
		})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})
	got, err := e.Embed(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 2 || got[0] != 1 {
		t.Errorf("embedding = %v, want [1 2]", got)
	}
}

func Test_DefaultDimensions(t *testing.T) {
	if got := DefaultDimensions("ollama"); got != 768 {
		t.Errorf("ollama dims = %d, want 768", got)
	}
	if got := DefaultDimensions("openai"); got != 1536 {
		t.Errorf("openai dims = %d, want 1536", got)
	}
}

// contains keeps the error assertions above readable.
func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
