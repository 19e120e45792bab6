// Package stability validates that discovered behavioral patterns persist
// across independently clustered time windows.
//
// Cluster ids carry no meaning across runs, so matching works on member
// index sets: each period-1 cluster is paired with the period-2 cluster
// maximizing Jaccard overlap, and a pattern counts as stable when that
// overlap meets the configured threshold. Persistent archetypes remain
// partially recoverable this way even though clustering is unsupervised.
package stability
