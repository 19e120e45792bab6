// Package logging provides structured, context-aware logging for the
// pattern discovery engine, backed by Zap.
//
// Fields attached to a context via WithFields travel with every log call
// made against that context, which keeps per-run correlation (run ids,
// batch sizes) out of individual call sites.
package logging
