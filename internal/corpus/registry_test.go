package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/embeddings"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// countingEmbedder wraps the hash embedder and records calls.
type countingEmbedder struct {
	*embeddings.HashEmbedder
	mu    sync.Mutex
	calls int
	texts int
	err   error
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{HashEmbedder: embeddings.NewHashEmbedder(0)}
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.texts += len(texts)
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return e.HashEmbedder.Embed(ctx, texts)
}

func (e *countingEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// gatedEmbedder blocks every Embed call until release is closed or ctx ends.
type gatedEmbedder struct {
	*countingEmbedder
	started     chan struct{}
	startedOnce sync.Once
	release     chan struct{}
}

func newGatedEmbedder() *gatedEmbedder {
	return &gatedEmbedder{
		countingEmbedder: newCountingEmbedder(),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (e *gatedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.startedOnce.Do(func() { close(e.started) })
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return e.countingEmbedder.Embed(ctx, texts)
}

// recordingReporter captures progress callbacks.
type recordingReporter struct {
	started  string
	total    int
	updates  []int
	finished bool
}

func (r *recordingReporter) Start(corpus string, total int) { r.started, r.total = corpus, total }
func (r *recordingReporter) Update(done int)                { r.updates = append(r.updates, done) }
func (r *recordingReporter) Finish()                        { r.finished = true }

func writeSource(t *testing.T, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "product.txt")
	if err := os.WriteFile(path, []byte(strings.Join(paragraphs, "\n\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRegistry(t *testing.T, e embeddings.Embedder, opts Options) (*Registry, vectordb.Store) {
	t.Helper()
	store, err := vectordb.NewChromemStore(e, "")
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return NewRegistry(store, e, opts), store
}

func TestGetOrBuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newCountingEmbedder()
	reg, _ := newRegistry(t, e, Options{})
	spec := Spec{Name: Products, SourcePath: writeSource(t, "Salmon: $12/kg", "Gold bar: $50000/oz")}

	first, err := reg.GetOrBuild(ctx, spec)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if first.Count() != 2 {
		t.Fatalf("expected 2 entries, got %d", first.Count())
	}
	calls := e.Calls()

	second, err := reg.GetOrBuild(ctx, spec)
	if err != nil {
		t.Fatalf("second GetOrBuild: %v", err)
	}
	if second != first {
		t.Error("expected the cached handle on the second call")
	}
	if second.Count() != 2 {
		t.Errorf("entry count changed to %d", second.Count())
	}
	if e.Calls() != calls {
		t.Errorf("expected no re-ingestion, embedder called %d more times", e.Calls()-calls)
	}
}

func TestGetOrBuildReusesExistingCollection(t *testing.T) {
	ctx := context.Background()
	e := newCountingEmbedder()
	reg, store := newRegistry(t, e, Options{})

	col, err := store.CreateCollection(Products)
	if err != nil {
		t.Fatal(err)
	}
	vecs, _ := e.HashEmbedder.Embed(ctx, []string{"stale entry"})
	if err := col.AddDocuments(ctx, []vectordb.Document{{ID: "products_0", Content: "stale entry", Embedding: vecs[0]}}); err != nil {
		t.Fatal(err)
	}

	ix, err := reg.GetOrBuild(ctx, Spec{Name: Products, SourcePath: writeSource(t, "a", "b", "c")})
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if ix.Count() != 1 {
		t.Errorf("expected the existing collection to be reused verbatim, got %d entries", ix.Count())
	}
	if e.Calls() != 0 {
		t.Errorf("expected the source not to be ingested, embedder called %d times", e.Calls())
	}
}

func TestGetOrBuildMissingSourceIsEmpty(t *testing.T) {
	reg, _ := newRegistry(t, newCountingEmbedder(), Options{})

	ix, err := reg.GetOrBuild(context.Background(), Spec{Name: Marketing, SourcePath: filepath.Join(t.TempDir(), "absent.txt")})
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if ix.Count() != 0 {
		t.Errorf("expected empty index, got %d entries", ix.Count())
	}
}

func TestGetOrBuildFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	e := newCountingEmbedder()
	e.err = errors.New("embedding service down")
	reg, store := newRegistry(t, e, Options{})
	spec := Spec{Name: Products, SourcePath: writeSource(t, "Salmon: $12/kg")}

	if _, err := reg.GetOrBuild(ctx, spec); err == nil {
		t.Fatal("expected ingestion error")
	}
	if _, err := store.Collection(Products); !errors.Is(err, vectordb.ErrCollectionNotFound) {
		t.Errorf("expected half-built collection to be removed, got %v", err)
	}

	e.mu.Lock()
	e.err = nil
	e.mu.Unlock()

	ix, err := reg.GetOrBuild(ctx, spec)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ix.Count() != 1 {
		t.Errorf("expected 1 entry after retry, got %d", ix.Count())
	}
}

func TestGetOrBuildConcurrentCallersShareOneBuild(t *testing.T) {
	ctx := context.Background()
	e := newCountingEmbedder()
	reg, _ := newRegistry(t, e, Options{BatchSize: 100})

	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, fmt.Sprintf("item %d", i))
	}
	spec := Spec{Name: Products, SourcePath: writeSource(t, paras...)}

	var wg sync.WaitGroup
	handles := make([]*Index, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ix, err := reg.GetOrBuild(ctx, spec)
			if err != nil {
				t.Errorf("GetOrBuild: %v", err)
				return
			}
			handles[i] = ix
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		if h != handles[0] {
			t.Fatal("expected every caller to receive the same handle")
		}
	}
	if handles[0].Count() != 20 {
		t.Errorf("expected 20 entries, got %d", handles[0].Count())
	}
	if e.Calls() != 1 {
		t.Errorf("expected a single embedding batch, got %d", e.Calls())
	}
}

func TestGetOrBuildKeepsChunkOrderAcrossBatches(t *testing.T) {
	ctx := context.Background()
	e := newCountingEmbedder()
	rep := &recordingReporter{}
	reg, _ := newRegistry(t, e, Options{BatchSize: 2, Concurrency: 3, Progress: rep})

	paras := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	ix, err := reg.GetOrBuild(ctx, Spec{Name: Products, SourcePath: writeSource(t, paras...)})
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if e.Calls() != 3 {
		t.Errorf("expected 3 batches, got %d", e.Calls())
	}

	for i, p := range paras {
		vec, _ := embeddings.EmbedOne(ctx, e.HashEmbedder, p)
		results, err := ix.Query(ctx, vec, 1)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		want := fmt.Sprintf("products_%d", i)
		if len(results) != 1 || results[0].Document.ID != want || results[0].Document.Content != p {
			t.Errorf("paragraph %q: got %+v, want id %s", p, results, want)
		}
		if results[0].Document.Metadata.Source != "product.txt" {
			t.Errorf("expected source basename, got %q", results[0].Document.Metadata.Source)
		}
	}

	if rep.started != Products || rep.total != 5 || !rep.finished {
		t.Errorf("unexpected progress: %+v", rep)
	}
	if len(rep.updates) != 3 || rep.updates[2] != 5 {
		t.Errorf("expected 3 updates ending at 5, got %v", rep.updates)
	}
}

func TestGetOrBuildOutlivesShortCaller(t *testing.T) {
	e := newGatedEmbedder()
	reg, _ := newRegistry(t, e, Options{BatchSize: 100})
	spec := Spec{Name: Products, SourcePath: writeSource(t, "Salmon: $12/kg", "Gold bar: $50000/oz")}

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	shortErr := make(chan error, 1)
	go func() {
		_, err := reg.GetOrBuild(shortCtx, spec)
		shortErr <- err
	}()
	<-e.started

	type result struct {
		ix  *Index
		err error
	}
	waiting := make(chan result, 1)
	go func() {
		ix, err := reg.GetOrBuild(context.Background(), spec)
		waiting <- result{ix, err}
	}()

	if err := <-shortErr; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the short caller to give up, got %v", err)
	}
	close(e.release)

	res := <-waiting
	if res.err != nil {
		t.Fatalf("waiting caller: %v", res.err)
	}
	if res.ix.Count() != 2 {
		t.Errorf("expected 2 entries, got %d", res.ix.Count())
	}
	if e.Calls() != 1 {
		t.Errorf("expected a single build, embedder called %d times", e.Calls())
	}
}

func TestGetOrBuildHonoursIngestTimeout(t *testing.T) {
	e := newGatedEmbedder()
	reg, store := newRegistry(t, e, Options{Timeout: 20 * time.Millisecond})
	spec := Spec{Name: Products, SourcePath: writeSource(t, "Salmon: $12/kg")}

	if _, err := reg.GetOrBuild(context.Background(), spec); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ingest timeout, got %v", err)
	}
	if _, err := store.Collection(Products); !errors.Is(err, vectordb.ErrCollectionNotFound) {
		t.Errorf("expected half-built collection to be removed, got %v", err)
	}

	close(e.release)
	ix, err := reg.GetOrBuild(context.Background(), spec)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ix.Count() != 1 {
		t.Errorf("expected 1 entry after retry, got %d", ix.Count())
	}
}
