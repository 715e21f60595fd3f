// Package vectordb defines the vector database interface knowledge bases
// are built on. Backends live in subpackages: chroma (ChromaDB over HTTP)
// and memdb (in-memory, for tests and small corpora).
package vectordb

import (
	"context"
	"errors"

	"github.com/dshills/assistant-go/assistant/document"
)

// ErrNotExists is returned by operations that require the underlying
// collection to exist when it does not.
var ErrNotExists = errors.New("vectordb: collection does not exist")

// VectorDB stores documents with embeddings and retrieves them by
// vector similarity.
//
// Implementations must be safe for concurrent use. Documents passed to
// Insert and Upsert must carry embeddings; callers (typically a
// knowledge base) embed before storing.
type VectorDB interface {
	// Create creates the underlying collection. Creating an existing
	// collection is not an error.
	Create(ctx context.Context) error

	// Exists reports whether the collection exists.
	Exists(ctx context.Context) (bool, error)

	// DocExists reports whether a document with the same identity
	// (ID, or content hash when ID is empty) is already stored.
	DocExists(ctx context.Context, doc document.Document) (bool, error)

	// Insert adds documents. Inserting a document whose identity is
	// already present is backend-defined; use Upsert to overwrite.
	Insert(ctx context.Context, docs []document.Document) error

	// Upsert adds documents, overwriting any with the same identity.
	Upsert(ctx context.Context, docs []document.Document) error

	// Search returns up to limit documents most similar to the query
	// embedding, best match first.
	Search(ctx context.Context, embedding []float32, limit int) ([]document.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear removes all documents but keeps the collection.
	Clear(ctx context.Context) error

	// Delete drops the collection entirely.
	Delete(ctx context.Context) error
}
