package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/classifier"
	"github.com/ziadkadry99/shopdesk/internal/corpus"
	"github.com/ziadkadry99/shopdesk/internal/embeddings"
	"github.com/ziadkadry99/shopdesk/internal/llm"
	"github.com/ziadkadry99/shopdesk/internal/retriever"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// stubSearcher returns canned evidence and counts calls.
type stubSearcher struct {
	mu       sync.Mutex
	evidence []string
	calls    int
	lastK    int
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastK = topK
	return s.evidence
}

type fixedClassifier classifier.Label

func (c fixedClassifier) Classify(context.Context, string) classifier.Label {
	return classifier.Label(c)
}

// echoGenerator returns its prompt unchanged.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return prompt, nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("backend unreachable")
}

// blockingGenerator waits for ctx to end.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newStubAssistant(label classifier.Label) (*Assistant, *stubSearcher, *stubSearcher) {
	products := &stubSearcher{evidence: []string{"Salmon: $12/kg", "Tuna: $20/kg"}}
	marketing := &stubSearcher{evidence: []string{"Loyalty: 10% off"}}
	return New(fixedClassifier(label), products, marketing, nil, DefaultConfig()), products, marketing
}

func TestCustomerDeniedMarketingWithoutRetrieval(t *testing.T) {
	for _, label := range []classifier.Label{classifier.Marketing, classifier.Both} {
		a, products, marketing := newStubAssistant(label)
		got := a.Answer(context.Background(), "describe the loyalty campaign", Customer)
		if got != AccessDenied {
			t.Errorf("%s: got %q, want denial", label, got)
		}
		if products.calls != 0 || marketing.calls != 0 {
			t.Errorf("%s: expected zero retrievals, got %d/%d", label, products.calls, marketing.calls)
		}
	}
}

func TestUnknownRoleTreatedAsCustomer(t *testing.T) {
	a, _, _ := newStubAssistant(classifier.Marketing)
	if got := a.Answer(context.Background(), "campaign", Role("admin")); got != AccessDenied {
		t.Errorf("got %q, want denial", got)
	}
}

func TestCustomerMayAskProducts(t *testing.T) {
	a, products, marketing := newStubAssistant(classifier.Product)
	got := a.Answer(context.Background(), "salmon price", Customer)
	if got != ProductsHeader+"Salmon: $12/kg\n\nTuna: $20/kg" {
		t.Errorf("unexpected answer %q", got)
	}
	if products.calls != 1 || marketing.calls != 0 {
		t.Errorf("expected products only, got %d/%d", products.calls, marketing.calls)
	}
	if products.lastK != 10 {
		t.Errorf("expected top_k 10, got %d", products.lastK)
	}
}

func TestDegradedAnswerHasNoFraming(t *testing.T) {
	a, _, _ := newStubAssistant(classifier.Product)
	got := a.Answer(context.Background(), "salmon price", Employee)
	if strings.Contains(got, "Here is relevant information") || strings.Contains(got, "Question:") {
		t.Errorf("retrieval-only answer contains prompt framing: %q", got)
	}
	if !strings.HasSuffix(got, "Salmon: $12/kg\n\nTuna: $20/kg") {
		t.Errorf("expected raw evidence joined by blank lines, got %q", got)
	}
}

func TestBothIsProductThenMarketing(t *testing.T) {
	a, _, _ := newStubAssistant(classifier.Both)
	got := a.Answer(context.Background(), "wine price in the loyalty bundle", Employee)
	want := ProductsHeader + "Salmon: $12/kg\n\nTuna: $20/kg" + "\n\n" + MarketingHeader + "Loyalty: 10% off"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGenerationErrorBecomesText(t *testing.T) {
	a, _, _ := newStubAssistant(classifier.Product)
	a.Session().Use(failingGenerator{}, "broken")

	got := a.Answer(context.Background(), "salmon", Employee)
	if got != ProductsHeader+"Error: backend unreachable" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestGenerationTimeoutBecomesText(t *testing.T) {
	products := &stubSearcher{evidence: []string{"Salmon: $12/kg"}}
	cfg := DefaultConfig()
	cfg.GenerationTimeout = 20 * time.Millisecond
	a := New(fixedClassifier(classifier.Product), products, &stubSearcher{}, nil, cfg)
	a.Session().Use(blockingGenerator{}, "slow")

	got := a.Answer(context.Background(), "salmon", Customer)
	if got != ProductsHeader+"Error: context deadline exceeded" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestComposePrompt(t *testing.T) {
	got := ComposePrompt([]string{"A", "B"}, "q?", 0)
	if got != "Here is relevant information:\n\nA\n\nB\n\nQuestion: q?" {
		t.Errorf("unexpected prompt %q", got)
	}

	long := strings.Repeat("é", 20000)
	capped := ComposePrompt([]string{long}, "q?", 15000)
	if n := len([]rune(capped)); n != 15000 {
		t.Errorf("expected 15000 characters, got %d", n)
	}
	if !strings.HasPrefix(capped, "Here is relevant information:") {
		t.Error("truncation must keep the start of the prompt")
	}
}

func TestBackendLifecycle(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OLLAMA_HOST", "")
	a, _, _ := newStubAssistant(classifier.Product)

	if a.BackendActive() || a.BackendStatus() != "⚠️ RAG-Only" {
		t.Fatal("expected retrieval-only mode initially")
	}

	if err := a.EnableBackend("groq", llm.Options{}); err == nil {
		t.Fatal("expected missing GROQ_API_KEY to fail")
	}
	if a.BackendActive() {
		t.Fatal("failed enable must not activate a backend")
	}

	if err := a.EnableBackend("ollama", llm.Options{Model: "mistral"}); err != nil {
		t.Fatalf("EnableBackend: %v", err)
	}
	if !a.BackendActive() || a.BackendName() != "ollama/mistral" {
		t.Errorf("expected ollama/mistral active, got %q", a.BackendName())
	}
	if a.BackendStatus() != "🤖 ollama/mistral ACTIVE" {
		t.Errorf("unexpected status %q", a.BackendStatus())
	}

	a.DisableBackend()
	if a.BackendActive() {
		t.Error("expected backend disabled")
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"1": Customer, "customer": Customer, " Employee ": Employee, "2": Employee} {
		if got, err := ParseRole(in); err != nil || got != want {
			t.Errorf("ParseRole(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRole("3"); err == nil {
		t.Error("expected error for unknown role")
	}
}

// newPipeline wires the real classifier, registry and retrievers over a
// temporary product file.
func newPipeline(t *testing.T, productParagraphs ...string) *Assistant {
	t.Helper()
	dir := t.TempDir()
	productPath := filepath.Join(dir, "product.txt")
	if err := os.WriteFile(productPath, []byte(strings.Join(productParagraphs, "\n\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	e := embeddings.NewHashEmbedder(0)
	store, err := vectordb.NewChromemStore(e, "")
	if err != nil {
		t.Fatal(err)
	}
	reg := corpus.NewRegistry(store, e, corpus.Options{})
	products := retriever.New(corpus.Spec{Name: corpus.Products, SourcePath: productPath}, reg, retriever.Options{})
	marketing := retriever.New(corpus.Spec{Name: corpus.Marketing, SourcePath: filepath.Join(dir, "cust_seg.txt")}, reg, retriever.Options{})
	return New(classifier.New(nil), products, marketing, nil, DefaultConfig())
}

func TestScenarioSalmonWithoutBackend(t *testing.T) {
	a := newPipeline(t, "Salmon: $12/kg", "Gold bar: $50000/oz")

	got := a.Answer(context.Background(), "salmon price", Employee)
	if !strings.Contains(got, "Salmon: $12/kg") {
		t.Errorf("expected salmon evidence, got %q", got)
	}
	if strings.Contains(got, "Gold bar") {
		t.Errorf("unexpected gold evidence in %q", got)
	}
}

func TestScenarioEchoBackend(t *testing.T) {
	a := newPipeline(t, "Salmon: $12/kg", "Gold bar: $50000/oz")
	a.Session().Use(echoGenerator{}, "echo")

	got := a.Answer(context.Background(), "cheapest fish", Employee)
	if !strings.HasPrefix(got, "📦 Products:") {
		t.Errorf("expected products header, got %q", got)
	}
	if !strings.Contains(got, "cheapest fish") {
		t.Errorf("expected echoed query in %q", got)
	}
}

type captureRecorder struct {
	events []Event
}

func (r *captureRecorder) Record(_ context.Context, ev Event) {
	r.events = append(r.events, ev)
}

func TestAnswerRecordsEvents(t *testing.T) {
	a, _, _ := newStubAssistant(classifier.Marketing)
	rec := &captureRecorder{}
	a.SetRecorder(rec)

	ctx := WithSurface(context.Background(), SurfaceHTTP)
	a.Answer(ctx, "describe the loyalty campaign", Role("guest"))
	a.Answer(context.Background(), "describe the loyalty campaign", Employee)

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}

	denied := rec.events[0]
	if !denied.Denied || denied.Role != Customer || denied.Surface != SurfaceHTTP || denied.Label != classifier.Marketing {
		t.Errorf("unexpected denial event %+v", denied)
	}
	if denied.AnswerChars != len([]rune(AccessDenied)) {
		t.Errorf("AnswerChars = %d, want %d", denied.AnswerChars, len([]rune(AccessDenied)))
	}

	allowed := rec.events[1]
	if allowed.Denied || allowed.Role != Employee || allowed.Surface != SurfaceCLI || allowed.Backend != "" {
		t.Errorf("unexpected employee event %+v", allowed)
	}
}
