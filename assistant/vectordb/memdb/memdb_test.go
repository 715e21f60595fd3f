package memdb

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/vectordb"
)

func newTestDB(t *testing.T) *DB {
	db := New()
	if err := db.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return db
}

func doc(id string, embedding ...float32) document.Document {
	return document.Document{
		ID:        id,
		Content:   "content of " + id,
		Embedding: embedding,
	}
}

func TestDB_CreateExistsDelete(t *testing.T) {
	ctx := context.Background()
	db := New()

	exists, err := db.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected collection to not exist before Create")
	}

	// Operations before Create fail with ErrNotExists.
	if err := db.Insert(ctx, []document.Document{doc("a", 1, 0)}); !errors.Is(err, vectordb.ErrNotExists) {
		t.Errorf("expected ErrNotExists from Insert, got: %v", err)
	}
	if _, err := db.Search(ctx, []float32{1, 0}, 5); !errors.Is(err, vectordb.ErrNotExists) {
		t.Errorf("expected ErrNotExists from Search, got: %v", err)
	}

	if err := db.Create(ctx); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	exists, _ = db.Exists(ctx)
	if !exists {
		t.Error("expected collection to exist after Create")
	}

	// Create is idempotent.
	if err := db.Create(ctx); err != nil {
		t.Errorf("repeat Create failed: %v", err)
	}

	if err := db.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, _ = db.Exists(ctx)
	if exists {
		t.Error("expected collection gone after Delete")
	}
}

func TestDB_InsertAndDuplicates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	if err := db.Insert(ctx, []document.Document{doc("a", 1, 0), doc("b", 0, 1)}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	count, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 documents, got %d", count)
	}

	// Duplicate identity fails.
	err = db.Insert(ctx, []document.Document{doc("a", 1, 1)})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got: %v", err)
	}

	// Documents without embeddings are rejected.
	err = db.Insert(ctx, []document.Document{{ID: "no-embedding", Content: "x"}})
	if err == nil {
		t.Error("expected error for missing embedding")
	}
}

func TestDB_Upsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	original := doc("a", 1, 0)
	if err := db.Upsert(ctx, []document.Document{original}); err != nil {
		t.Fatalf("Upsert (insert) failed: %v", err)
	}

	updated := document.Document{ID: "a", Content: "updated content", Embedding: []float32{0, 1}}
	if err := db.Upsert(ctx, []document.Document{updated}); err != nil {
		t.Fatalf("Upsert (update) failed: %v", err)
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Fatalf("expected 1 document after upsert, got %d", count)
	}

	results, err := db.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Content != "updated content" {
		t.Errorf("expected updated content, got %q", results[0].Content)
	}
}

func TestDB_DocExists(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	stored := doc("a", 1, 0)
	_ = db.Insert(ctx, []document.Document{stored})

	exists, err := db.DocExists(ctx, document.Document{ID: "a"})
	if err != nil {
		t.Fatalf("DocExists failed: %v", err)
	}
	if !exists {
		t.Error("expected document to exist")
	}

	exists, _ = db.DocExists(ctx, document.Document{ID: "missing"})
	if exists {
		t.Error("expected document to not exist")
	}

	// Identity falls back to the content hash for documents without IDs.
	hashDoc := document.Document{Content: "hash identified", Embedding: []float32{1, 1}}
	_ = db.Insert(ctx, []document.Document{hashDoc})
	exists, _ = db.DocExists(ctx, document.Document{Content: "hash identified"})
	if !exists {
		t.Error("expected hash-identified document to exist")
	}
}

func TestDB_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	docs := []document.Document{
		doc("east", 1, 0),
		doc("north", 0, 1),
		doc("northeast", 0.7071, 0.7071),
	}
	if err := db.Insert(ctx, docs); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := db.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "east" {
		t.Errorf("expected best match 'east', got %q", results[0].ID)
	}
	if results[1].ID != "northeast" {
		t.Errorf("expected second match 'northeast', got %q", results[1].ID)
	}
}

func TestDB_SearchLimit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		_ = db.Insert(ctx, []document.Document{doc(id, 1, 0)})
	}

	// Zero limit defaults to 5.
	results, err := db.Search(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("expected default limit of 5, got %d", len(results))
	}

	// Limit larger than the corpus returns everything.
	results, _ = db.Search(ctx, []float32{1, 0}, 100)
	if len(results) != 7 {
		t.Errorf("expected all 7 documents, got %d", len(results))
	}
}

func TestDB_Clear(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_ = db.Insert(ctx, []document.Document{doc("a", 1, 0)})
	if err := db.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	count, _ := db.Count(ctx)
	if count != 0 {
		t.Errorf("expected 0 documents after Clear, got %d", count)
	}

	// Clear keeps the collection usable.
	if err := db.Insert(ctx, []document.Document{doc("b", 0, 1)}); err != nil {
		t.Errorf("Insert after Clear failed: %v", err)
	}
}

func TestDB_InterfaceCompliance(t *testing.T) {
	var _ vectordb.VectorDB = (*DB)(nil)
}
