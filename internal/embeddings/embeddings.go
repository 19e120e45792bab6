package embeddings

import "context"

// Embedder generates fixed-dimension embeddings for narrative text.
//
// Implementations must be deterministic for a fixed model version: the same
// text always yields the same vector, and EmbedBatch row i equals
// Embed(texts[i]).
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
}

// Provider is an Embedder that holds releasable resources.
type Provider interface {
	Embedder
	// Close releases resources held by the provider.
	Close() error
}
