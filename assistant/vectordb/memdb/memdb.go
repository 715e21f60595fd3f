// Package memdb implements an in-memory vectordb.VectorDB using
// brute-force cosine similarity. It is intended for tests and small
// corpora; nothing is persisted.
package memdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/vectordb"
)

// ErrDuplicate is returned by Insert when a document identity is
// already stored.
var ErrDuplicate = errors.New("memdb: document already exists")

// DB is an in-memory vector database. The zero value is not usable;
// call New.
type DB struct {
	mu      sync.RWMutex
	docs    map[string]document.Document
	created bool
}

// New creates an empty in-memory vector database.
func New() *DB {
	return &DB{docs: make(map[string]document.Document)}
}

// Create marks the collection as existing.
func (d *DB) Create(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created = true
	return nil
}

// Exists reports whether Create has been called.
func (d *DB) Exists(_ context.Context) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.created, nil
}

// DocExists reports whether the document identity is stored.
func (d *DB) DocExists(_ context.Context, doc document.Document) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.docs[doc.Key()]
	return ok, nil
}

// Insert adds documents, failing on duplicate identities.
func (d *DB) Insert(_ context.Context, docs []document.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.created {
		return vectordb.ErrNotExists
	}
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.Key())
		}
		if _, ok := d.docs[doc.Key()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, doc.Key())
		}
	}
	for _, doc := range docs {
		d.docs[doc.Key()] = doc
	}
	return nil
}

// Upsert adds documents, overwriting duplicates.
func (d *DB) Upsert(_ context.Context, docs []document.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.created {
		return vectordb.ErrNotExists
	}
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.Key())
		}
		d.docs[doc.Key()] = doc
	}
	return nil
}

// Search returns up to limit documents by descending cosine similarity.
func (d *DB) Search(_ context.Context, embedding []float32, limit int) ([]document.Document, error) {
	if limit <= 0 {
		limit = 5
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.created {
		return nil, vectordb.ErrNotExists
	}

	type scored struct {
		doc   document.Document
		score float64
	}
	results := make([]scored, 0, len(d.docs))
	for _, doc := range d.docs {
		results = append(results, scored{doc: doc, score: cosine(embedding, doc.Embedding)})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].doc.Key() < results[j].doc.Key()
	})

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]document.Document, len(results))
	for i, r := range results {
		out[i] = r.doc
	}
	return out, nil
}

// Count returns the number of stored documents.
func (d *DB) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs), nil
}

// Clear removes all documents.
func (d *DB) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = make(map[string]document.Document)
	return nil
}

// Delete drops the collection and its documents.
func (d *DB) Delete(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = make(map[string]document.Document)
	d.created = false
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
