// Package assistant composes role-gated answers from retrieved evidence and
// an optional generative backend.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/classifier"
	"github.com/ziadkadry99/shopdesk/internal/llm"
)

// User-visible fixed texts.
const (
	AccessDenied    = "❌ Access Denied: Customers can only view product information."
	ProductsHeader  = "📦 Products:\n"
	MarketingHeader = "🎯 Marketing & Segments:\n"

	promptPreamble = "Here is relevant information:\n\n"
)

// Searcher returns evidence for a query. Implementations never fail; errors
// come back as descriptive text.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []string
}

// QueryClassifier routes a query to a corpus label.
type QueryClassifier interface {
	Classify(ctx context.Context, query string) classifier.Label
}

// Config holds answer composition settings.
type Config struct {
	TopK              int
	MaxPromptChars    int
	GenerationTimeout time.Duration
	// Backend supplies sampling settings applied by EnableBackend.
	Backend llm.BackendOptions
}

// DefaultConfig returns top 10 retrieval and a 15000 character prompt cap.
func DefaultConfig() Config {
	return Config{
		TopK:           10,
		MaxPromptChars: 15000,
		Backend:        llm.DefaultBackendOptions(),
	}
}

// Assistant is the explicit context object behind every user surface: it
// owns the per-corpus searchers and the generative backend session.
type Assistant struct {
	classifier QueryClassifier
	products   Searcher
	marketing  Searcher
	session    *llm.Session
	cfg        Config
	recorder   Recorder
}

// New wires an Assistant. A nil session starts with no backend.
func New(cls QueryClassifier, products, marketing Searcher, session *llm.Session, cfg Config) *Assistant {
	if session == nil {
		session = llm.NewSession()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	return &Assistant{
		classifier: cls,
		products:   products,
		marketing:  marketing,
		session:    session,
		cfg:        cfg,
	}
}

// Answer classifies query, enforces the role policy and composes the reply.
// It never fails: denials, retrieval errors and generation errors are all
// returned as text. Any role other than Employee is treated as Customer.
func (a *Assistant) Answer(ctx context.Context, query string, role Role) string {
	if role != Employee {
		role = Customer
	}
	label := a.classifier.Classify(ctx, query)
	backend := a.BackendName()

	var answer string
	denied := role == Customer && label != classifier.Product
	switch {
	case denied:
		// Deny before any retrieval so no marketing evidence is touched.
		answer = AccessDenied
	case label == classifier.Marketing:
		answer = MarketingHeader + a.compose(ctx, a.marketing, query)
	case label == classifier.Both:
		answer = ProductsHeader + a.compose(ctx, a.products, query) +
			"\n\n" + MarketingHeader + a.compose(ctx, a.marketing, query)
	default:
		answer = ProductsHeader + a.compose(ctx, a.products, query)
	}

	if a.recorder != nil {
		a.recorder.Record(ctx, Event{
			Surface:     SurfaceFrom(ctx),
			Role:        role,
			Query:       query,
			Label:       label,
			Denied:      denied,
			Backend:     backend,
			AnswerChars: len([]rune(answer)),
		})
	}
	return answer
}

// SetRecorder installs a Recorder. Call it before the assistant is shared.
func (a *Assistant) SetRecorder(r Recorder) {
	a.recorder = r
}

func (a *Assistant) compose(ctx context.Context, s Searcher, query string) string {
	evidence := s.Search(ctx, query, a.cfg.TopK)

	gen := a.session.Current()
	if gen == nil {
		return strings.Join(evidence, "\n\n")
	}

	if a.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.GenerationTimeout)
		defer cancel()
	}
	out, err := gen.Generate(ctx, ComposePrompt(evidence, query, a.cfg.MaxPromptChars))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return strings.TrimSpace(out)
}

// ComposePrompt frames the evidence as context followed by the question and
// keeps at most maxChars characters from the start. maxChars <= 0 disables
// the cap.
func ComposePrompt(evidence []string, query string, maxChars int) string {
	prompt := promptPreamble + strings.Join(evidence, "\n\n") + "\n\nQuestion: " + query
	if maxChars <= 0 {
		return prompt
	}
	if runes := []rune(prompt); len(runes) > maxChars {
		return string(runes[:maxChars])
	}
	return prompt
}

// EnableBackend builds and activates a generative backend. Missing
// credentials or an unknown provider fail here and leave the session as it
// was.
func (a *Assistant) EnableBackend(provider string, opts llm.Options) error {
	bo := a.cfg.Backend
	bo.Options = opts
	return a.session.Enable(provider, bo)
}

// DisableBackend switches to retrieval-only answers.
func (a *Assistant) DisableBackend() {
	a.session.Disable()
}

// BackendActive reports whether answers go through a generative backend.
func (a *Assistant) BackendActive() bool {
	return a.session.Active()
}

// BackendName returns e.g. "ollama/mistral", or "" in retrieval-only mode.
func (a *Assistant) BackendName() string {
	return a.session.Name()
}

// Session exposes the backend session, for routing and test injection.
func (a *Assistant) Session() *llm.Session {
	return a.session
}

// BackendStatus is the one-line status shown by the shell and the APIs.
func (a *Assistant) BackendStatus() string {
	if name := a.BackendName(); name != "" {
		return fmt.Sprintf("🤖 %s ACTIVE", name)
	}
	return "⚠️ RAG-Only"
}
