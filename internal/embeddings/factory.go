package embeddings

import (
	"fmt"
	"os"
)

// Options configures NewEmbedder.
type Options struct {
	Model      string
	Dimensions int
	BaseURL    string
	APIKey     string
}

// NewEmbedder builds an Embedder for the named provider ("ollama", "openai"
// or the offline "hash"). The OpenAI key falls back to OPENAI_API_KEY; a missing key is a
// construction error.
func NewEmbedder(provider string, opts Options) (Embedder, error) {
	switch provider {
	case "ollama", "":
		model := opts.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		dims := opts.Dimensions
		if dims == 0 {
			dims = 768
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OLLAMA_HOST")
		}
		return NewOllamaEmbedder(model, dims, baseURL), nil

	case "openai":
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(opts.Model), opts.BaseURL), nil

	case "hash":
		return NewHashEmbedder(opts.Dimensions), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
