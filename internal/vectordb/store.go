package vectordb

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned by Store.Collection for unknown names.
var ErrCollectionNotFound = errors.New("collection not found")

// Store manages named collections of embedded documents.
type Store interface {
	// Collection returns an existing collection or ErrCollectionNotFound.
	Collection(name string) (Collection, error)

	// CreateCollection returns the named collection, creating it if needed.
	CreateCollection(name string) (Collection, error)

	// DeleteCollection removes a collection and all of its documents.
	DeleteCollection(name string) error
}

// Collection is a single searchable index.
type Collection interface {
	Name() string

	// AddDocuments inserts or replaces documents. Each document must carry
	// its embedding.
	AddDocuments(ctx context.Context, docs []Document) error

	// Query returns up to limit documents ranked by descending similarity to
	// the given embedding.
	Query(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error)

	// Count returns the number of documents in the collection.
	Count() int
}
