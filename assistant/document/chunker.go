package document

import (
	"fmt"
	"unicode/utf8"
)

// Default chunking parameters, in runes.
const (
	DefaultChunkSize    = 3000
	DefaultChunkOverlap = 200
)

// Chunker splits documents into fixed-size overlapping chunks.
//
// The zero value uses DefaultChunkSize and DefaultChunkOverlap.
type Chunker struct {
	// Size is the maximum chunk length in runes.
	Size int

	// Overlap is the number of runes shared between adjacent chunks.
	// Must be smaller than Size.
	Overlap int
}

// Chunk splits a document into chunks. Each chunk keeps the parent's
// name and metadata and gets an ID of the form "<key>-<n>" where key is
// the parent document's Key. Documents that fit in a single chunk are
// returned unchanged.
func (c Chunker) Chunk(doc Document) []Document {
	size := c.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := c.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	content := CleanContent(doc.Content)
	if utf8.RuneCountInString(content) <= size {
		doc.Content = content
		return []Document{doc}
	}

	runes := []rune(content)
	step := size - overlap
	key := doc.Key()

	var chunks []Document
	for start, n := 0, 1; start < len(runes); start, n = start+step, n+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		meta := make(map[string]interface{}, len(doc.Meta)+1)
		for k, v := range doc.Meta {
			meta[k] = v
		}
		meta["chunk"] = n

		chunks = append(chunks, Document{
			ID:      fmt.Sprintf("%s-%d", key, n),
			Name:    doc.Name,
			Content: string(runes[start:end]),
			Meta:    meta,
		})

		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunkAll chunks every document and returns the flattened result.
func (c Chunker) ChunkAll(docs []Document) []Document {
	var out []Document
	for _, doc := range docs {
		out = append(out, c.Chunk(doc)...)
	}
	return out
}
