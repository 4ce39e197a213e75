// Package corpus turns source text files into cached vector indexes.
//
// Each corpus is ingested at most once per backing store: if the store
// already holds a collection with the corpus name it is reused as-is and the
// source file is never re-read.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/shopdesk/internal/chunker"
	"github.com/ziadkadry99/shopdesk/internal/embeddings"
	"github.com/ziadkadry99/shopdesk/internal/progress"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// Well-known corpus names.
const (
	Products  = "products"
	Marketing = "marketing"
)

// Spec identifies a corpus and the plain-text file it is built from.
type Spec struct {
	Name       string
	SourcePath string
}

// Options tunes ingestion.
type Options struct {
	// Concurrency bounds parallel embedding batches. Defaults to 4.
	Concurrency int
	// BatchSize is the number of chunks per embedding call. Defaults to 16.
	BatchSize int
	// Progress, if set, receives per-batch updates while a corpus is embedded.
	Progress progress.Reporter
	// Timeout bounds one corpus build. Zero means none.
	Timeout time.Duration
}

// Index is a read handle over one corpus's collection.
type Index struct {
	name string
	col  vectordb.Collection
}

func (ix *Index) Name() string { return ix.name }

// Count returns the number of indexed chunks.
func (ix *Index) Count() int { return ix.col.Count() }

// Query returns up to k chunks ranked by similarity to embedding.
func (ix *Index) Query(ctx context.Context, embedding []float32, k int) ([]vectordb.SearchResult, error) {
	return ix.col.Query(ctx, embedding, k)
}

// Registry owns the process-wide mapping from corpus name to Index.
type Registry struct {
	store    vectordb.Store
	embedder embeddings.Embedder
	opts     Options

	mu    sync.RWMutex
	cache map[string]*Index
	group singleflight.Group
	// progressMu serialises reporters across concurrent builds.
	progressMu sync.Mutex
}

// NewRegistry creates a registry. The embedder must be the one used to
// embed queries against these indexes.
func NewRegistry(store vectordb.Store, embedder embeddings.Embedder, opts Options) *Registry {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 16
	}
	return &Registry{
		store:    store,
		embedder: embedder,
		opts:     opts,
		cache:    make(map[string]*Index),
	}
}

// Embedder returns the embedder shared by ingestion and querying.
func (r *Registry) Embedder() embeddings.Embedder { return r.embedder }

// GetOrBuild returns the cached index for spec.Name, building it on first
// use. Concurrent callers for the same corpus share one build. The build runs
// detached from ctx, bounded only by Options.Timeout, so a caller whose ctx
// ends stops waiting without failing the others.
func (r *Registry) GetOrBuild(ctx context.Context, spec Spec) (*Index, error) {
	if ix, ok := r.cached(spec.Name); ok {
		return ix, nil
	}

	ch := r.group.DoChan(spec.Name, func() (any, error) {
		if ix, ok := r.cached(spec.Name); ok {
			return ix, nil
		}
		bctx := context.WithoutCancel(ctx)
		if r.opts.Timeout > 0 {
			var cancel context.CancelFunc
			bctx, cancel = context.WithTimeout(bctx, r.opts.Timeout)
			defer cancel()
		}
		ix, err := r.open(bctx, spec)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[spec.Name] = ix
		r.mu.Unlock()
		return ix, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) cached(name string) (*Index, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ix, ok := r.cache[name]
	return ix, ok
}

func (r *Registry) open(ctx context.Context, spec Spec) (*Index, error) {
	col, err := r.store.Collection(spec.Name)
	if err == nil {
		return &Index{name: spec.Name, col: col}, nil
	}
	if !errors.Is(err, vectordb.ErrCollectionNotFound) {
		return nil, fmt.Errorf("open index %s: %w", spec.Name, err)
	}

	col, err = r.store.CreateCollection(spec.Name)
	if err != nil {
		return nil, err
	}

	if err := r.ingest(ctx, spec, col); err != nil {
		// Leave nothing behind so the next call starts over.
		if delErr := r.store.DeleteCollection(spec.Name); delErr != nil {
			return nil, errors.Join(err, delErr)
		}
		return nil, err
	}
	return &Index{name: spec.Name, col: col}, nil
}

func (r *Registry) ingest(ctx context.Context, spec Spec, col vectordb.Collection) error {
	if spec.SourcePath == "" {
		return nil
	}
	data, err := os.ReadFile(spec.SourcePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s source: %w", spec.Name, err)
	}

	chunks := chunker.Build(spec.Name, filepath.Base(spec.SourcePath), string(data))
	if len(chunks) == 0 {
		return nil
	}

	docs, err := r.embedChunks(ctx, spec.Name, chunks)
	if err != nil {
		return fmt.Errorf("embed %s: %w", spec.Name, err)
	}
	if err := col.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("index %s: %w", spec.Name, err)
	}
	return nil
}

// embedChunks embeds chunks in parallel batches. The returned documents keep
// chunk order regardless of batch completion order.
func (r *Registry) embedChunks(ctx context.Context, name string, chunks []chunker.Chunk) ([]vectordb.Document, error) {
	docs := make([]vectordb.Document, len(chunks))

	rep := r.opts.Progress
	if rep != nil {
		r.progressMu.Lock()
		defer r.progressMu.Unlock()
		rep.Start(name, len(chunks))
		defer rep.Finish()
	}
	var (
		doneMu sync.Mutex
		done   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for start := 0; start < len(chunks); start += r.opts.BatchSize {
		batch := chunks[start:min(start+r.opts.BatchSize, len(chunks))]
		offset := start

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vecs, err := r.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
			}
			for i, c := range batch {
				docs[offset+i] = vectordb.Document{
					ID:        c.ID,
					Content:   c.Text,
					Embedding: vecs[i],
					Metadata: vectordb.DocumentMetadata{
						Corpus:  name,
						Source:  c.Source,
						Ordinal: c.Ordinal,
					},
				}
			}

			if rep != nil {
				doneMu.Lock()
				done += len(batch)
				rep.Update(done)
				doneMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
