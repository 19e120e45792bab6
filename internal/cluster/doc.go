// Package cluster discovers latent behavioral archetypes in batches of
// behavioral vectors.
//
// The pipeline standardizes each feature column, optionally reduces
// dimensionality with principal components, and runs hierarchical
// density-based clustering with explicit noise detection: points in dense
// neighborhoods group into the most stable flat partition of the condensed
// cluster tree, sparse points receive the noise label -1, and every point
// gets a soft membership probability and an outlier score.
//
// Discover returns an explicit FittedResult value; statistics and member
// lookups are pure reads on that value, so a Clusterer instance holds no
// hidden fit state and independent runs never alias.
package cluster
