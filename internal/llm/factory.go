package llm

import (
	"fmt"
	"os"
	"strings"
)

// Request defaults used by Backend when Options leaves them zero.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
)

// Options carries provider-specific construction parameters.
type Options struct {
	Model   string
	APIKey  string // falls back to the provider's environment variable
	BaseURL string
}

// DefaultModel returns the model used when Options.Model is empty.
func DefaultModel(providerType string) string {
	switch providerType {
	case "ollama":
		return "mistral"
	case "openai":
		return "gpt-4o-mini"
	case "groq":
		return "llama-3.3-70b-versatile"
	case "openrouter":
		return "openai/gpt-4o-mini"
	}
	return ""
}

// APIKeyEnvVar returns the environment variable holding the provider's key,
// or "" for providers that need none.
func APIKeyEnvVar(providerType string) string {
	switch providerType {
	case "openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	}
	return ""
}

// NewProvider creates a new LLM provider based on the given provider type.
// Supported provider types: "ollama", "openai", "groq", "openrouter".
// Missing credentials are reported here, never at request time.
func NewProvider(providerType string, opts Options) (Provider, error) {
	providerType = strings.ToLower(strings.TrimSpace(providerType))
	model := opts.Model
	if model == "" {
		model = DefaultModel(providerType)
	}

	switch providerType {
	case "ollama":
		host := opts.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	case "openai", "groq", "openrouter":
		apiKey := opts.APIKey
		envVar := APIKeyEnvVar(providerType)
		if apiKey == "" {
			apiKey = os.Getenv(envVar)
		}
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", envVar)
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			switch providerType {
			case "groq":
				baseURL = GroqBaseURL
			case "openrouter":
				baseURL = OpenRouterBaseURL
			}
		}
		return NewOpenAIProvider(providerType, apiKey, model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
