// Package session defines the behavioral touchpoint records consumed by the
// pattern discovery engine.
//
// Records are immutable once captured and owned by the ingestion layer.
// Optional fields carry documented defaults that are resolved once via
// Normalized, so feature extraction never performs presence checks.
package session
