// Package config provides configuration loading for the archetype engine.
//
// Configuration comes from an optional YAML file overridden by ARCHETYPE_*
// environment variables, with hardcoded defaults underneath.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/archetype/internal/cluster"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/stability"
)

// Config holds the complete engine configuration.
type Config struct {
	Logging   logging.Config  `koanf:"logging"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Cluster   cluster.Config  `koanf:"cluster"`
	Stability StabilityConfig `koanf:"stability"`
}

// EmbeddingConfig holds text-embedding provider settings.
type EmbeddingConfig struct {
	// Model is the embedding model name.
	Model string `koanf:"model"`
	// CacheDir is the model cache directory.
	CacheDir string `koanf:"cache_dir"`
	// MaxLength is the maximum input sequence length.
	MaxLength int `koanf:"max_length"`
}

// StabilityConfig holds cross-period validation settings.
type StabilityConfig struct {
	// OverlapThreshold is the Jaccard overlap at which a pattern counts
	// as stable, in [0,1].
	OverlapThreshold float64 `koanf:"overlap_threshold"`
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Logging: *logging.DefaultConfig(),
		Embedding: EmbeddingConfig{
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			MaxLength: 512,
		},
		Cluster: cluster.DefaultConfig(),
		Stability: StabilityConfig{
			OverlapThreshold: stability.DefaultOverlapThreshold,
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Cluster.Validate(); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding: model must not be empty")
	}
	if c.Stability.OverlapThreshold < 0 || c.Stability.OverlapThreshold > 1 {
		return fmt.Errorf("stability: overlap_threshold must be in [0,1], got %v", c.Stability.OverlapThreshold)
	}
	return nil
}
