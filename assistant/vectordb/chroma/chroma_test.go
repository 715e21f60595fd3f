package chroma

import (
	"testing"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/vectordb"
)

func TestMetadataRoundTrip(t *testing.T) {
	doc := document.Document{
		ID:      "doc-1",
		Name:    "recipes",
		Content: "tomato soup",
		Meta: map[string]interface{}{
			"source":  "/data/recipes.txt",
			"chunk":   3,
			"score":   0.75,
			"indexed": true,
		},
	}

	meta := toMetadata(doc)
	got := fromMetadata(meta)

	// Test 1: the document name travels in the "name" key.
	if name, _ := got["name"].(string); name != "recipes" {
		t.Errorf("Expected name 'recipes', got %v", got["name"])
	}

	// Test 2: each value comes back with its stored type. Ints are
	// widened to int64 by the metadata attributes.
	if v, _ := got["source"].(string); v != "/data/recipes.txt" {
		t.Errorf("Expected source string, got %v", got["source"])
	}
	if v, _ := got["chunk"].(int64); v != 3 {
		t.Errorf("Expected chunk 3, got %v", got["chunk"])
	}
	if v, _ := got["score"].(float64); v != 0.75 {
		t.Errorf("Expected score 0.75, got %v", got["score"])
	}
	if v, _ := got["indexed"].(bool); !v {
		t.Errorf("Expected indexed true, got %v", got["indexed"])
	}

	if len(got) != 5 {
		t.Errorf("Expected 5 keys, got %d: %v", len(got), got)
	}
}

func TestMetadataRoundTrip_NoName(t *testing.T) {
	doc := document.Document{ID: "doc-2", Content: "plain"}

	got := fromMetadata(toMetadata(doc))
	if _, ok := got["name"]; ok {
		t.Errorf("Expected no name key for unnamed document, got %v", got["name"])
	}
	if len(got) != 0 {
		t.Errorf("Expected empty metadata, got %v", got)
	}
}

func TestMetadataRoundTrip_UnsupportedType(t *testing.T) {
	doc := document.Document{
		ID:      "doc-3",
		Content: "x",
		Meta:    map[string]interface{}{"tags": []string{"a", "b"}},
	}

	// Unsupported value types are stored as their string form.
	got := fromMetadata(toMetadata(doc))
	if v, _ := got["tags"].(string); v != "[a b]" {
		t.Errorf("Expected stringified tags, got %v", got["tags"])
	}
}

func TestNew_Validation(t *testing.T) {
	// Test 1: a collection name is required.
	if _, err := New(""); err == nil {
		t.Error("Expected error for empty collection name")
	}

	// Test 2: options apply.
	db, err := New("docs", WithURL("http://chroma.internal:9000"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer db.Close()
	if db.url != "http://chroma.internal:9000" {
		t.Errorf("Expected custom URL, got %s", db.url)
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ vectordb.VectorDB = (*DB)(nil)
	var _ chroma.DocumentMetadata = toMetadata(document.Document{})
}
