package classifier

import (
	"context"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/llm"
)

const routerInstruction = `You are a query router. Analyze the user's question and classify it into ONE of:
- 'product' (products, prices, features)
- 'marketing' (customer segments, campaigns)
- 'both' (mixed)
Respond ONLY with the category name, nothing else.`

// GeneratorSource yields the currently active generative backend, or nil.
// *llm.Session satisfies it.
type GeneratorSource interface {
	Current() llm.Generator
}

// LLMRouter is a Delegate that asks the active generative backend to route.
// With no backend it has no opinion.
type LLMRouter struct {
	source  GeneratorSource
	timeout time.Duration
}

// NewLLMRouter creates a router. A zero timeout leaves ctx as is.
func NewLLMRouter(source GeneratorSource, timeout time.Duration) *LLMRouter {
	return &LLMRouter{source: source, timeout: timeout}
}

func (r *LLMRouter) Route(ctx context.Context, query string) (string, error) {
	gen := r.source.Current()
	if gen == nil {
		return "", nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return gen.Generate(ctx, routerInstruction+"\n\nQuestion: "+query)
}
