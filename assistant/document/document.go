// Package document defines the document type stored in vector databases,
// plus chunking and file readers for building knowledge bases.
package document

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Document is a unit of content stored in a vector database.
type Document struct {
	// ID uniquely identifies the document. Empty ID means the content
	// hash is used.
	ID string `json:"id,omitempty"`

	// Name is a human-readable label, typically the source file or URL.
	Name string `json:"name,omitempty"`

	// Content is the document text.
	Content string `json:"content"`

	// Meta holds arbitrary metadata stored alongside the document.
	Meta map[string]interface{} `json:"meta,omitempty"`

	// Embedding is the content vector. Populated by the knowledge base
	// before insert and by the vector database on search results.
	Embedding []float32 `json:"-"`
}

// Hash returns the MD5 hex digest of the cleaned content. It is the
// default document identity, so re-loading the same content upserts
// rather than duplicates.
func (d Document) Hash() string {
	sum := md5.Sum([]byte(CleanContent(d.Content)))
	return hex.EncodeToString(sum[:])
}

// Key returns the document's ID, falling back to the content hash.
func (d Document) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return d.Hash()
}

// CleanContent strips NUL bytes from text. Some storage backends reject
// content containing NUL, so it is replaced with the Unicode replacement
// character before hashing or inserting.
func CleanContent(s string) string {
	return strings.ReplaceAll(s, "\x00", "�")
}
