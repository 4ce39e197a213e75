package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedGenerator wraps a Generator with a token bucket that refills to
// rpm tokens per minute. Hosted backends reject bursts; local Ollama does not
// need one.
type RateLimitedGenerator struct {
	gen      Generator
	rpm      int
	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// NewRateLimitedGenerator allows at most rpm generations per minute. A
// non-positive rpm returns gen unchanged.
func NewRateLimitedGenerator(gen Generator, rpm int) Generator {
	if rpm <= 0 {
		return gen
	}
	return &RateLimitedGenerator{
		gen:      gen,
		rpm:      rpm,
		tokens:   float64(rpm),
		lastFill: time.Now(),
	}
}

func (r *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.gen.Generate(ctx, prompt)
}

// take refills the bucket and consumes one token if available. Otherwise it
// reports how long until the next token.
func (r *RateLimitedGenerator) take() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	perToken := time.Minute / time.Duration(r.rpm)
	r.tokens += float64(now.Sub(r.lastFill)) / float64(perToken)
	if r.tokens > float64(r.rpm) {
		r.tokens = float64(r.rpm)
	}
	r.lastFill = now

	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}
	return time.Duration((1 - r.tokens) * float64(perToken)), false
}

func (r *RateLimitedGenerator) wait(ctx context.Context) error {
	for {
		delay, ok := r.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
