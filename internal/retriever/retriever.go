// Package retriever runs similarity search against one corpus and turns the
// ranked matches into unique evidence strings.
package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/shopdesk/internal/corpus"
	"github.com/ziadkadry99/shopdesk/internal/embeddings"
	"github.com/ziadkadry99/shopdesk/internal/vectordb"
)

// DefaultTopK is used when Search is called with a non-positive k.
const DefaultTopK = 10

// Options tunes a Retriever.
type Options struct {
	// MinSimilarity drops matches scoring at or below it. Zero discards only
	// orthogonal or opposed chunks.
	MinSimilarity float32
	// Timeout bounds the query embedding and lookup of one search. A lazy
	// index build is bounded by the registry instead. Zero means none.
	Timeout time.Duration
}

// Retriever searches a single corpus.
type Retriever struct {
	spec     corpus.Spec
	registry *corpus.Registry
	opts     Options

	noResults   string
	errorPrefix string
}

// New creates a Retriever for spec backed by registry.
func New(spec corpus.Spec, registry *corpus.Registry, opts Options) *Retriever {
	r := &Retriever{spec: spec, registry: registry, opts: opts}
	switch spec.Name {
	case corpus.Products:
		r.noResults = "No matching products found."
		r.errorPrefix = "Error searching products"
	case corpus.Marketing:
		r.noResults = "No matching segments or marketing strategies found."
		r.errorPrefix = "Error searching marketing data"
	default:
		r.noResults = "No matching results found."
		r.errorPrefix = "Error searching " + spec.Name
	}
	return r
}

// Corpus returns the name of the searched corpus.
func (r *Retriever) Corpus() string { return r.spec.Name }

// Warm builds or opens the corpus index ahead of the first search and
// returns its chunk count.
func (r *Retriever) Warm(ctx context.Context) (int, error) {
	ix, err := r.registry.GetOrBuild(ctx, r.spec)
	if err != nil {
		return 0, err
	}
	return ix.Count(), nil
}

// Search returns up to topK unique chunk texts in rank order. It never fails:
// an empty result becomes the corpus's "no matching" sentence and any error
// becomes a one-line description, both as the only element.
func (r *Retriever) Search(ctx context.Context, query string, topK int) []string {
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches, err := r.Matches(ctx, query, topK)
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", r.errorPrefix, err)}
	}

	texts := Dedupe(matches, topK, r.opts.MinSimilarity)
	if len(texts) == 0 {
		return []string{r.noResults}
	}
	return texts
}

// Matches returns the raw ranked matches with their scores.
func (r *Retriever) Matches(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error) {
	ix, err := r.registry.GetOrBuild(ctx, r.spec)
	if err != nil {
		return nil, err
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	vec, err := embeddings.EmbedOne(ctx, r.registry.Embedder(), query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.Query(ctx, vec, topK)
}

// Dedupe keeps the first occurrence of each non-blank text scoring above
// floor, in rank order, and stops after topK.
func Dedupe(matches []vectordb.SearchResult, topK int, floor float32) []string {
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if len(out) == topK {
			break
		}
		text := m.Document.Content
		if strings.TrimSpace(text) == "" || m.Similarity <= floor {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}
