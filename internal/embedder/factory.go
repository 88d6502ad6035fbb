package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/parallx/semctx/internal/vector"
)

// Default embedding models per backend.
const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-large"

	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the dimension stored rows are written with.
	// The context store collection is created at this size, so changing it
	// requires a new collection.
	defaultOpenAIDimensions = 1536
)

// DefaultDimensions returns the correct default embedding vector size for the
// given backend name. Callers that need to pre-configure the vector store
// (collection creation) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "ollama":
		return defaultOllamaDimensions
	default:
		return defaultOpenAIDimensions
	}
}

// NewFromEnv constructs a vector.EmbeddingProvider from environment variables.
//
// Resolution order:
//
//  1. EMBEDDING_PROVIDER — selects the backend (default: openai)
//  2. EMBEDDING_MODEL — overrides the backend's default model
//  3. EMBEDDING_API_KEY — overrides the backend's native API key variable
//  4. EMBEDDING_ENDPOINT — overrides the backend's default endpoint
//  5. EMBEDDING_DIMENSIONS — overrides the default dimensions
func NewFromEnv() (vector.EmbeddingProvider, error) {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "openai")

	switch backend {
	case "ollama":
		host := getEnv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		model := getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel)
		return NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: model,
		}), nil

	case "openai":
		dims := getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions)
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		baseURL := getEnv("EMBEDDING_ENDPOINT")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		model := getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel)
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			Dimensions: dims,
		}), nil

	case "azure":
		dims := getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions)
		apiKey := getEnv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = getEnv("AZURE_OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		endpoint := getEnv("EMBEDDING_ENDPOINT")
		if endpoint == "" {
			endpoint = getEnv("AZURE_OPENAI_ENDPOINT")
		}
		if endpoint == "" {
			return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
		apiVersion := getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview")
		model := getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel)
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    endpoint + "/openai",
			APIKey:     apiKey,
			Model:      model,
			Dimensions: dims,
			Azure:      true,
			APIVersion: apiVersion,
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: openai, azure, ollama", backend)
	}
}

// getEnv returns the value of the named environment variable, or empty string.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
