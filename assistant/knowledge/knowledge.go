// Package knowledge provides the knowledge base: documents loaded from
// readers, embedded, stored in a vector database, and retrieved by
// semantic similarity at chat time.
package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/embedder"
	"github.com/dshills/assistant-go/assistant/vectordb"
)

// DefaultNumDocuments is how many documents Search returns by default.
const DefaultNumDocuments = 5

// Metrics receives indexing counts from Load and LoadDocuments.
// *assistant.PrometheusMetrics satisfies it.
type Metrics interface {
	RecordDocumentsIndexed(n int)
}

// Base ties together document sources, an embedder, and a vector
// database. Load fills the database; Search retrieves references for a
// query.
type Base struct {
	// DB is the backing vector database. Required.
	DB vectordb.VectorDB

	// Embedder produces vectors for documents and queries. Required.
	Embedder embedder.Embedder

	// Sources supply documents on Load.
	Sources []document.Reader

	// NumDocuments is the search result count. Zero means
	// DefaultNumDocuments.
	NumDocuments int

	// Chunker splits documents before embedding. The zero value uses
	// the default chunk size and overlap.
	Chunker document.Chunker

	// Metrics, when set, is told how many documents each load writes.
	Metrics Metrics
}

// LoadOptions control how Load writes documents.
type LoadOptions struct {
	// Recreate drops and recreates the collection before loading.
	Recreate bool

	// Upsert overwrites documents with matching identities. When
	// false, documents already present are skipped.
	Upsert bool
}

// Load reads all sources, chunks and embeds the documents, and writes
// them to the vector database.
func (b *Base) Load(ctx context.Context, opts LoadOptions) error {
	if err := b.validate(); err != nil {
		return err
	}

	if opts.Recreate {
		if err := b.DB.Delete(ctx); err != nil && !errors.Is(err, vectordb.ErrNotExists) {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	if err := b.DB.Create(ctx); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, src := range b.Sources {
		docs, err := src.Read()
		if err != nil {
			return fmt.Errorf("failed to read source: %w", err)
		}
		if err := b.LoadDocuments(ctx, docs, opts); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocuments chunks, embeds, and stores the given documents. The
// collection must already exist.
func (b *Base) LoadDocuments(ctx context.Context, docs []document.Document, opts LoadOptions) error {
	if err := b.validate(); err != nil {
		return err
	}

	chunks := b.Chunker.ChunkAll(docs)

	// Without upsert, skip chunks whose identity is already stored.
	if !opts.Upsert {
		filtered := chunks[:0]
		for _, chunk := range chunks {
			exists, err := b.DB.DocExists(ctx, chunk)
			if err != nil {
				return fmt.Errorf("failed to check document: %w", err)
			}
			if !exists {
				filtered = append(filtered, chunk)
			}
		}
		chunks = filtered
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vecs, err := b.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vecs[i]
	}

	if opts.Upsert {
		if err := b.DB.Upsert(ctx, chunks); err != nil {
			return fmt.Errorf("failed to upsert documents: %w", err)
		}
	} else {
		if err := b.DB.Insert(ctx, chunks); err != nil {
			return fmt.Errorf("failed to insert documents: %w", err)
		}
	}
	if b.Metrics != nil {
		b.Metrics.RecordDocumentsIndexed(len(chunks))
	}
	return nil
}

// Search returns the documents most relevant to the query.
func (b *Base) Search(ctx context.Context, query string) ([]document.Document, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	vec, err := b.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := b.NumDocuments
	if limit <= 0 {
		limit = DefaultNumDocuments
	}
	docs, err := b.DB.Search(ctx, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (b *Base) Count(ctx context.Context) (int, error) {
	if err := b.validate(); err != nil {
		return 0, err
	}
	return b.DB.Count(ctx)
}

func (b *Base) validate() error {
	if b.DB == nil {
		return errors.New("knowledge base has no vector database")
	}
	if b.Embedder == nil {
		return errors.New("knowledge base has no embedder")
	}
	return nil
}
