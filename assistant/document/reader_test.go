package document

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTextReader_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("file content"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := TextReader{Path: path}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Name != "note.txt" {
		t.Errorf("expected name 'note.txt', got %q", docs[0].Name)
	}
	if docs[0].Content != "file content" {
		t.Errorf("unexpected content: %q", docs[0].Content)
	}
	if docs[0].Meta["source"] != path {
		t.Errorf("expected source meta %q, got %v", path, docs[0].Meta["source"])
	}
}

func TestTextReader_Directory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":        "alpha",
		"b.md":         "bravo",
		"c.log":        "ignored extension",
		"nested/d.txt": "delta",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := TextReader{Path: dir}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents (.txt and .md only), got %d", len(docs))
	}

	names := make(map[string]bool)
	for _, doc := range docs {
		names[doc.Name] = true
	}
	for _, want := range []string{"a.txt", "b.md", "d.txt"} {
		if !names[want] {
			t.Errorf("expected document %q in results", want)
		}
	}
}

func TestTextReader_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.log"), []byte("log line"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "y.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := TextReader{Path: dir, Extensions: []string{".log"}}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "x.log" {
		t.Errorf("expected only x.log, got %v", docs)
	}
}

func TestTextReader_MissingPath(t *testing.T) {
	_, err := TextReader{Path: "/nonexistent/path"}.Read()
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestJSONReader_Array(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	content := `[{"title":"soup"},{"title":"salad"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := JSONReader{Path: path}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "recipes.json[0]" {
		t.Errorf("expected indexed name, got %q", docs[0].Name)
	}
	if docs[1].Content != `{"title":"salad"}` {
		t.Errorf("unexpected content: %q", docs[1].Content)
	}
}

func TestJSONReader_SingleObject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"key":"value"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := JSONReader{Path: path}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Name != "config.json" {
		t.Errorf("expected name 'config.json', got %q", docs[0].Name)
	}
}

func TestJSONReader_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (JSONReader{Path: path}).Read(); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestStaticReader(t *testing.T) {
	want := []Document{{ID: "a", Content: "x"}, {ID: "b", Content: "y"}}
	docs, err := StaticReader{Docs: want}.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}
