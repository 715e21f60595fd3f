package document

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Reader produces documents from some source, typically files on disk.
type Reader interface {
	Read() ([]Document, error)
}

// TextReader reads plain-text files from a path. If Path is a directory
// it is walked recursively; otherwise the single file is read.
type TextReader struct {
	// Path is a file or directory.
	Path string

	// Extensions filters directory walks to matching file extensions
	// (with leading dot, e.g. ".txt"). Empty means ".txt" and ".md".
	Extensions []string
}

// Read loads the file or directory into documents, one per file.
func (r TextReader) Read() ([]Document, error) {
	info, err := os.Stat(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", r.Path, err)
	}

	if !info.IsDir() {
		doc, err := readFile(r.Path)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	exts := r.Extensions
	if len(exts) == 0 {
		exts = []string{".txt", ".md"}
	}

	var docs []Document
	err = filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExtension(path, exts) {
			return nil
		}
		doc, err := readFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", r.Path, err)
	}
	return docs, nil
}

// JSONReader reads a JSON file containing either a single object or an
// array of objects. Each object becomes one document whose content is
// the object re-encoded as JSON.
type JSONReader struct {
	Path string
}

// Read loads the JSON file into documents.
func (r JSONReader) Read() ([]Document, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.Path, err)
	}

	name := filepath.Base(r.Path)
	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", r.Path, err)
		}
		docs := make([]Document, 0, len(items))
		for i, item := range items {
			docs = append(docs, Document{
				Name:    fmt.Sprintf("%s[%d]", name, i),
				Content: string(item),
				Meta:    map[string]interface{}{"source": r.Path},
			})
		}
		return docs, nil
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON in %s", r.Path)
	}
	return []Document{{
		Name:    name,
		Content: trimmed,
		Meta:    map[string]interface{}{"source": r.Path},
	}}, nil
}

// StaticReader wraps a fixed set of documents as a Reader. Useful for
// in-memory knowledge bases and tests.
type StaticReader struct {
	Docs []Document
}

func (r StaticReader) Read() ([]Document, error) {
	return r.Docs, nil
}

func readFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Document{
		Name:    filepath.Base(path),
		Content: string(data),
		Meta:    map[string]interface{}{"source": path},
	}, nil
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
