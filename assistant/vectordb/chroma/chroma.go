// Package chroma implements vectordb.VectorDB backed by a ChromaDB
// server over HTTP.
package chroma

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/vectordb"
)

// DefaultURL is the standard local ChromaDB endpoint.
const DefaultURL = "http://localhost:8000"

// DB is a ChromaDB-backed vector database bound to a single collection.
type DB struct {
	client     chroma.Client
	collection string
	url        string
}

// Option configures a DB.
type Option func(*DB)

// WithURL sets the ChromaDB server URL. Default is DefaultURL.
func WithURL(url string) Option {
	return func(d *DB) {
		d.url = url
	}
}

// New creates a ChromaDB vector database for the named collection.
func New(collection string, opts ...Option) (*DB, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	d := &DB{
		collection: collection,
		url:        DefaultURL,
	}
	for _, opt := range opts {
		opt(d)
	}

	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(d.url))
	if err != nil {
		return nil, fmt.Errorf("failed to create ChromaDB client: %w", err)
	}
	d.client = client
	return d, nil
}

// Close releases the underlying HTTP client.
func (d *DB) Close() error {
	return d.client.Close()
}

// Create creates the collection if it does not exist.
func (d *DB) Create(ctx context.Context) error {
	if _, err := d.client.GetOrCreateCollection(ctx, d.collection); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", d.collection, err)
	}
	return nil
}

// Exists reports whether the collection exists on the server.
func (d *DB) Exists(ctx context.Context) (bool, error) {
	cols, err := d.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range cols {
		if col.Name() == d.collection {
			return true, nil
		}
	}
	return false, nil
}

// DocExists reports whether a document with the same identity is stored.
func (d *DB) DocExists(ctx context.Context, doc document.Document) (bool, error) {
	col, err := d.open(ctx)
	if err != nil {
		return false, err
	}

	res, err := col.Get(ctx, chroma.WithIDsGet(chroma.DocumentID(doc.Key())))
	if err != nil {
		return false, fmt.Errorf("failed to get document: %w", err)
	}
	return len(res.GetIDs()) > 0, nil
}

// Insert adds documents to the collection. The server decides how a
// duplicate identity is handled; use Upsert to overwrite.
func (d *DB) Insert(ctx context.Context, docs []document.Document) error {
	return d.add(ctx, docs, false)
}

// Upsert adds documents, overwriting any with the same identity.
func (d *DB) Upsert(ctx context.Context, docs []document.Document) error {
	return d.add(ctx, docs, true)
}

func (d *DB) add(ctx context.Context, docs []document.Document, upsert bool) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := d.open(ctx)
	if err != nil {
		return err
	}

	ids := make([]chroma.DocumentID, 0, len(docs))
	texts := make([]string, 0, len(docs))
	metas := make([]chroma.DocumentMetadata, 0, len(docs))
	embs := make([]embeddings.Embedding, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.Key())
		}
		ids = append(ids, chroma.DocumentID(doc.Key()))
		texts = append(texts, document.CleanContent(doc.Content))
		metas = append(metas, toMetadata(doc))
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(doc.Embedding))
	}

	opts := []chroma.CollectionAddOption{
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
		chroma.WithEmbeddings(embs...),
	}

	if upsert {
		if err := col.Upsert(ctx, opts...); err != nil {
			return fmt.Errorf("failed to upsert documents: %w", err)
		}
		return nil
	}
	if err := col.Add(ctx, opts...); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

// Search returns up to limit documents nearest to the query embedding.
func (d *DB) Search(ctx context.Context, embedding []float32, limit int) ([]document.Document, error) {
	if limit <= 0 {
		limit = 5
	}

	col, err := d.open(ctx)
	if err != nil {
		return nil, err
	}

	res, err := col.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chroma.WithNResults(limit),
		chroma.WithIncludeQuery(chroma.IncludeDocuments, chroma.IncludeMetadatas),
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	idGroups := res.GetIDGroups()
	docGroups := res.GetDocumentsGroups()
	metaGroups := res.GetMetadatasGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}

	out := make([]document.Document, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		doc := document.Document{ID: string(id)}
		if len(docGroups) > 0 && i < len(docGroups[0]) {
			doc.Content = docGroups[0][i].ContentString()
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) && metaGroups[0][i] != nil {
			doc.Meta = fromMetadata(metaGroups[0][i])
			if name, ok := doc.Meta["name"].(string); ok {
				doc.Name = name
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (d *DB) Count(ctx context.Context) (int, error) {
	col, err := d.open(ctx)
	if err != nil {
		return 0, err
	}
	n, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// Clear removes all documents from the collection.
func (d *DB) Clear(ctx context.Context) error {
	col, err := d.open(ctx)
	if err != nil {
		return err
	}

	res, err := col.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	ids := res.GetIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := col.Delete(ctx, chroma.WithIDsDelete(ids...)); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Delete drops the collection.
func (d *DB) Delete(ctx context.Context) error {
	if err := d.client.DeleteCollection(ctx, d.collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", d.collection, err)
	}
	return nil
}

func (d *DB) open(ctx context.Context) (chroma.Collection, error) {
	col, err := d.client.GetCollection(ctx, d.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vectordb.ErrNotExists, d.collection)
	}
	return col, nil
}

// toMetadata converts document metadata to ChromaDB attributes. The
// document name travels in the "name" key. Unsupported value types are
// stored as their string form.
func toMetadata(doc document.Document) chroma.DocumentMetadata {
	attrs := make([]*chroma.MetaAttribute, 0, len(doc.Meta)+1)
	if doc.Name != "" {
		attrs = append(attrs, chroma.NewStringAttribute("name", doc.Name))
	}
	for k, v := range doc.Meta {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, chroma.NewStringAttribute(k, val))
		case int:
			attrs = append(attrs, chroma.NewIntAttribute(k, int64(val)))
		case int64:
			attrs = append(attrs, chroma.NewIntAttribute(k, val))
		case float64:
			attrs = append(attrs, chroma.NewFloatAttribute(k, val))
		case bool:
			attrs = append(attrs, chroma.NewBoolAttribute(k, val))
		default:
			attrs = append(attrs, chroma.NewStringAttribute(k, fmt.Sprintf("%v", val)))
		}
	}
	return chroma.NewDocumentMetadata(attrs...)
}

func fromMetadata(meta chroma.DocumentMetadata) map[string]interface{} {
	keys := metadataKeys(meta)
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := meta.GetString(k); ok {
			out[k] = v
			continue
		}
		if v, ok := meta.GetInt(k); ok {
			out[k] = v
			continue
		}
		if v, ok := meta.GetFloat(k); ok {
			out[k] = v
			continue
		}
		if v, ok := meta.GetBool(k); ok {
			out[k] = v
		}
	}
	return out
}

// metadataKeys enumerates metadata keys. The DocumentMetadata interface
// exposes no key listing, but the library's concrete type does. When the
// assertion fails, fall back to the keys this package and the document
// loaders write.
func metadataKeys(meta chroma.DocumentMetadata) []string {
	if km, ok := meta.(interface{ Keys() []string }); ok {
		return km.Keys()
	}
	var keys []string
	for _, k := range []string{"name", "source", "chunk"} {
		if _, ok := meta.GetRaw(k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}
