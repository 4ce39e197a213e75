package llm

import (
	"context"
	"fmt"
	"strings"
)

// BackendOptions configures a generative backend end to end: which model to
// reach and how to sample from it.
type BackendOptions struct {
	Options
	MaxTokens         int
	Temperature       float64
	RequestsPerMinute int
}

// DefaultBackendOptions returns the sampling defaults used when none are
// configured.
func DefaultBackendOptions() BackendOptions {
	return BackendOptions{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// Backend adapts a Provider to the Generator capability by sending the
// prompt as a single user message.
type Backend struct {
	provider    Provider
	model       string
	maxTokens   int
	temperature float64
}

// NewBackend wraps a provider. A non-positive maxTokens uses DefaultMaxTokens.
func NewBackend(provider Provider, model string, maxTokens int, temperature float64) *Backend {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Backend{
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Name reports provider/model, e.g. "ollama/mistral".
func (b *Backend) Name() string {
	if b.model == "" {
		return b.provider.Name()
	}
	return b.provider.Name() + "/" + b.model
}

// Generate returns the trimmed completion for prompt.
func (b *Backend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.provider.Complete(ctx, CompletionRequest{
		Model:       b.model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   b.maxTokens,
		Temperature: b.temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// BuildGenerator constructs the provider for providerType and wraps it as a
// rate-limited Generator. It returns the generator and its display name.
func BuildGenerator(providerType string, opts BackendOptions) (Generator, string, error) {
	if opts.Model == "" {
		opts.Model = DefaultModel(strings.ToLower(strings.TrimSpace(providerType)))
	}
	provider, err := NewProvider(providerType, opts.Options)
	if err != nil {
		return nil, "", fmt.Errorf("enable %s backend: %w", providerType, err)
	}
	backend := NewBackend(provider, opts.Model, opts.MaxTokens, opts.Temperature)
	return NewRateLimitedGenerator(backend, opts.RequestsPerMinute), backend.Name(), nil
}
