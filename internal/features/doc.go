// Package features composes per-user behavioral vectors from session
// histories.
//
// A vector concatenates four order-fixed blocks: a semantic embedding of the
// journey narrative (dimension set by the embedder), 15 statistical
// behavioral features, 5 temporal features, and 5 constraint features.
// Vectors have no identity beyond positional correspondence to their source
// history.
package features
