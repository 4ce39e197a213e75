package llm

import "context"

// Provider defines the interface for LLM transports.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Generator is the single capability the answer pipeline needs from a
// generative backend: turn one prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
