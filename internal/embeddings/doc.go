// Package embeddings provides the narrative text-embedding capability used
// by the feature composer.
//
// The engine depends only on the narrow Embedder interface; the FastEmbed
// provider runs a local ONNX model, and a deterministic token-hash embedder
// is available for tests and offline use. Dimension is read from the
// provider at startup, never assumed.
package embeddings
