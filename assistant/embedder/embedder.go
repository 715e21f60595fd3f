// Package embedder defines the embedding interface used by vector stores
// and knowledge bases, plus an OpenAI-backed implementation.
package embedder

import "context"

// Embedder converts text into dense vectors for similarity search.
//
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of the vectors this embedder produces.
	Dimensions() int
}
