package embedder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the default OpenAI embedding model.
const DefaultModel = "text-embedding-3-small"

// defaultDimensions is the vector size of text-embedding-3-small.
const defaultDimensions = 1536

// OpenAIEmbedder implements Embedder using OpenAI's embeddings API.
type OpenAIEmbedder struct {
	client     openai.Client
	modelName  string
	dimensions int
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithModel sets the embedding model name.
func WithModel(name string) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.modelName = name
	}
}

// WithDimensions overrides the reported vector dimensionality. Use this
// when selecting a model other than the default.
func WithDimensions(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.dimensions = n
	}
}

// NewOpenAIEmbedder creates an embedder backed by OpenAI.
//
// If apiKey is empty, it is read from the OPENAI_API_KEY environment
// variable.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key not provided and OPENAI_API_KEY environment variable not set")
		}
	}

	e := &OpenAIEmbedder{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		modelName:  DefaultModel,
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one embedding per input text, in order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.modelName),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

// Dimensions returns the vector length this embedder produces.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
