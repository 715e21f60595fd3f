package embedder

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder produces deterministic vectors derived from the input text.
// Identical texts always embed to identical vectors, so similarity search
// over mock embeddings behaves predictably in tests.
type MockEmbedder struct {
	// Dims is the vector size. Zero means 8.
	Dims int

	// Err, if set, is returned by every call.
	Err error
}

func (m *MockEmbedder) dims() int {
	if m.Dims <= 0 {
		return 8
	}
	return m.Dims
}

// Embed returns a deterministic unit vector for the text.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.vector(text), nil
}

// EmbedBatch embeds each text independently.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

// Dimensions returns the configured vector size.
func (m *MockEmbedder) Dimensions() int {
	return m.dims()
}

func (m *MockEmbedder) vector(text string) []float32 {
	n := m.dims()
	vec := make([]float32, n)

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	var norm float64
	for i := range vec {
		// xorshift keeps components reproducible from the text hash.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float64(int64(seed%2000)-1000) / 1000.0
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
