package vectordb

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/shopdesk/internal/embeddings"
)

// ChromemStore implements Store using chromem-go.
type ChromemStore struct {
	db        *chromem.DB
	embedFunc chromem.EmbeddingFunc
}

// NewChromemStore creates a store. An empty dir keeps everything in memory;
// otherwise collections are persisted as gzip'd gob files under dir.
func NewChromemStore(embedder embeddings.Embedder, dir string) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, true)
		if err != nil {
			return nil, fmt.Errorf("open persistent vector db at %s: %w", dir, err)
		}
	}

	return &ChromemStore{
		db:        db,
		embedFunc: embeddings.ToChromemFunc(embedder),
	}, nil
}

func (s *ChromemStore) Collection(name string) (Collection, error) {
	col := s.db.GetCollection(name, s.embedFunc)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &chromemCollection{name: name, col: col}, nil
}

func (s *ChromemStore) CreateCollection(name string) (Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return &chromemCollection{name: name, col: col}, nil
}

func (s *ChromemStore) DeleteCollection(name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

type chromemCollection struct {
	name string
	col  *chromem.Collection
}

func (c *chromemCollection) Name() string { return c.name }

func (c *chromemCollection) Count() int { return c.col.Count() }

func (c *chromemCollection) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		chromDocs[i] = chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata:  metadataToMap(doc.Metadata),
		}
	}

	return c.col.AddDocuments(ctx, chromDocs, 1)
}

func (c *chromemCollection) Query(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := c.col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := c.col.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

// metadataToMap converts DocumentMetadata to a flat map[string]string for chromem.
func metadataToMap(m DocumentMetadata) map[string]string {
	return map[string]string{
		"corpus":  m.Corpus,
		"source":  m.Source,
		"ordinal": strconv.Itoa(m.Ordinal),
	}
}

// mapToMetadata converts a flat map[string]string back to DocumentMetadata.
func mapToMetadata(m map[string]string) DocumentMetadata {
	ordinal, _ := strconv.Atoi(m["ordinal"])
	return DocumentMetadata{
		Corpus:  m["corpus"],
		Source:  m["source"],
		Ordinal: ordinal,
	}
}
