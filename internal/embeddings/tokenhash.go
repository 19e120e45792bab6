package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// TokenHashEmbedder is a deterministic, dependency-free Embedder.
//
// Each whitespace token hashes to a pseudo-random direction and the token
// directions are summed and L2-normalized, so texts sharing tokens land near
// each other while unrelated texts land far apart. It exists for tests and
// offline runs where the ONNX model is unavailable; it captures lexical, not
// semantic, similarity.
type TokenHashEmbedder struct {
	dim int
}

// NewTokenHashEmbedder creates a token-hash embedder of the given dimension.
func NewTokenHashEmbedder(dim int) (*TokenHashEmbedder, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension must be >= 1, got %d", ErrInvalidConfig, dim)
	}
	return &TokenHashEmbedder{dim: dim}, nil
}

// Embed generates a deterministic embedding for the text.
func (e *TokenHashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vec := make([]float64, e.dim)
	for _, tok := range strings.Fields(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		state := h.Sum64()
		for i := 0; i < e.dim; i++ {
			state = xorshift64(state)
			// Signed reinterpretation maps the state to [-1, 1)
			vec[i] += float64(int64(state)) / float64(math.MaxInt64)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, e.dim)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *TokenHashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimension returns the configured embedding dimension.
func (e *TokenHashEmbedder) Dimension() int {
	return e.dim
}

// Close is a no-op; the embedder holds no resources.
func (e *TokenHashEmbedder) Close() error {
	return nil
}

func xorshift64(x uint64) uint64 {
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}
