// Package archetype discovers latent behavioral archetypes among users.
//
// The engine converts per-user sequences of intent-labeled sessions into
// fixed-length behavioral vectors, groups similar vectors into density-based
// clusters with explicit noise detection, and validates that discovered
// patterns persist across independently clustered time windows. Persona
// naming, intent classification, and ingestion are external collaborators.
package archetype

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/archetype/internal/cluster"
	"github.com/fyrsmithlabs/archetype/internal/config"
	"github.com/fyrsmithlabs/archetype/internal/embeddings"
	"github.com/fyrsmithlabs/archetype/internal/features"
	"github.com/fyrsmithlabs/archetype/internal/logging"
	"github.com/fyrsmithlabs/archetype/internal/session"
	"github.com/fyrsmithlabs/archetype/internal/stability"
)

// Re-exported entry points so callers work with one import surface.
type (
	// Config is the complete engine configuration.
	Config = config.Config
	// Record is one behavioral touchpoint for a user.
	Record = session.Record
	// History is one user's chronological session sequence.
	History = session.History
	// FittedResult is the outcome of one discovery run.
	FittedResult = cluster.FittedResult
	// Statistics aggregates per-pattern descriptive figures.
	Statistics = cluster.Statistics
	// DiscoverOptions selects optional pipeline stages.
	DiscoverOptions = cluster.DiscoverOptions
	// StabilityReport is the outcome of one cross-period validation.
	StabilityReport = stability.Report
	// Embedder is the injected text-embedding capability.
	Embedder = embeddings.Embedder
)

// LoadConfig loads configuration from an optional YAML file with
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return config.Default()
}

// Engine wires the feature composer, pattern clusterer and stability
// validator behind one constructor. Components stay independently usable;
// the engine only sequences them.
//
// An Engine is safe for concurrent use: no state outlives a call except the
// injected embedder, which serializes access internally.
type Engine struct {
	composer  *features.Composer
	clusterer *cluster.Clusterer
	validator *stability.Validator
	logger    *logging.Logger
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithClock pins the clock used for temporal recency features. Discovery is
// reproducible only under a fixed clock, since recency measures against
// "now"; production engines default to time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.composer.WithClock(now)
	}
}

// New creates an engine from config and an injected embedder. Pass the
// FastEmbed provider for production use or any deterministic Embedder for
// tests.
func New(cfg *Config, embedder Embedder, logger *logging.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clusterer, err := cluster.NewClusterer(cfg.Cluster, logger)
	if err != nil {
		return nil, fmt.Errorf("creating clusterer: %w", err)
	}
	validator, err := stability.NewValidator(clusterer, cfg.Stability.OverlapThreshold, logger)
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}

	e := &Engine{
		composer:  features.NewComposer(embedder, logger),
		clusterer: clusterer,
		validator: validator,
		logger:    logger.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewWithFastEmbed creates an engine backed by the local ONNX FastEmbed
// provider configured in cfg.Embedding. Close releases the model.
func NewWithFastEmbed(cfg *Config, logger *logging.Logger, opts ...Option) (*Engine, func() error, error) {
	provider, err := embeddings.NewFastEmbedProvider(embeddings.FastEmbedConfig{
		Model:     cfg.Embedding.Model,
		CacheDir:  cfg.Embedding.CacheDir,
		MaxLength: cfg.Embedding.MaxLength,
		Logger:    logger.Underlying(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedding provider: %w", err)
	}
	engine, err := New(cfg, provider, logger, opts...)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return engine, provider.Close, nil
}

// Compose turns one user's history into a behavioral vector.
func (e *Engine) Compose(ctx context.Context, history History) ([]float64, error) {
	return e.composer.Compose(ctx, history)
}

// ComposeBatch turns a batch of histories into the matrix Discover consumes.
func (e *Engine) ComposeBatch(ctx context.Context, histories []History) ([][]float64, error) {
	return e.composer.ComposeBatch(ctx, histories)
}

// VectorDimension returns the behavioral vector length E + 25.
func (e *Engine) VectorDimension() int {
	return e.composer.Dimension()
}

// Discover composes the histories and clusters the resulting vectors.
func (e *Engine) Discover(ctx context.Context, histories []History, opts DiscoverOptions) (*FittedResult, error) {
	vectors, err := e.composer.ComposeBatch(ctx, histories)
	if err != nil {
		return nil, err
	}
	return e.clusterer.Discover(ctx, vectors, opts)
}

// DiscoverVectors clusters pre-composed behavioral vectors.
func (e *Engine) DiscoverVectors(ctx context.Context, vectors [][]float64, opts DiscoverOptions) (*FittedResult, error) {
	return e.clusterer.Discover(ctx, vectors, opts)
}

// ValidateStability composes both periods and measures cross-period pattern
// overlap.
func (e *Engine) ValidateStability(ctx context.Context, period1, period2 []History) (*StabilityReport, error) {
	vectors1, err := e.composer.ComposeBatch(ctx, period1)
	if err != nil {
		return nil, fmt.Errorf("composing period 1: %w", err)
	}
	vectors2, err := e.composer.ComposeBatch(ctx, period2)
	if err != nil {
		return nil, fmt.Errorf("composing period 2: %w", err)
	}
	return e.validator.Validate(ctx, vectors1, vectors2)
}

// ValidateStabilityVectors measures cross-period overlap on pre-composed
// vectors.
func (e *Engine) ValidateStabilityVectors(ctx context.Context, period1, period2 [][]float64) (*StabilityReport, error) {
	return e.validator.Validate(ctx, period1, period2)
}
