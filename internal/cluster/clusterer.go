package cluster

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/fyrsmithlabs/archetype/internal/logging"
)

// Config holds clustering parameters.
type Config struct {
	// MinClusterSize is the smallest group that counts as a pattern.
	MinClusterSize int `koanf:"min_cluster_size"`
	// MinSamples controls how conservative the density estimate is;
	// higher values produce fewer, more stable clusters and more noise.
	MinSamples int `koanf:"min_samples"`
	// Metric names the distance function: euclidean (default) or
	// manhattan.
	Metric string `koanf:"metric"`
	// PCAComponents is the target dimensionality for the optional
	// clustering-stage reduction.
	PCAComponents int `koanf:"pca_components"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MinClusterSize: 50,
		MinSamples:     10,
		Metric:         MetricEuclidean,
		PCAComponents:  50,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.MinClusterSize < 2 {
		return fmt.Errorf("%w: min_cluster_size must be >= 2, got %d", ErrInvalidConfig, c.MinClusterSize)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be >= 1, got %d", ErrInvalidConfig, c.MinSamples)
	}
	if c.PCAComponents < 2 {
		return fmt.Errorf("%w: pca_components must be >= 2, got %d", ErrInvalidConfig, c.PCAComponents)
	}
	if _, err := metricFunc(c.Metric); err != nil {
		return err
	}
	return nil
}

// DiscoverOptions selects optional pipeline stages.
type DiscoverOptions struct {
	// UseReduction enables the clustering-stage principal-component
	// reduction when the input dimension exceeds Config.PCAComponents.
	UseReduction bool
	// Projection requests 2-D visualization coordinates, computed from
	// the standardized vectors independently of UseReduction.
	Projection bool
}

// Clusterer runs the pattern discovery pipeline. It holds configuration
// only; every Discover call returns a self-contained FittedResult, so one
// Clusterer may serve concurrent callers.
type Clusterer struct {
	config  Config
	dist    distanceFunc
	logger  *logging.Logger
	metrics *Metrics
}

// NewClusterer creates a clusterer with validated configuration.
func NewClusterer(cfg Config, logger *logging.Logger) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dist, err := metricFunc(cfg.Metric)
	if err != nil {
		return nil, err
	}
	return &Clusterer{
		config:  cfg,
		dist:    dist,
		logger:  logger.Named("cluster"),
		metrics: NewMetrics(logger.Underlying()),
	}, nil
}

// Config returns the clusterer's configuration.
func (c *Clusterer) Config() Config {
	return c.config
}

// Discover groups the batch into density-based patterns.
//
// An empty batch is an error. A batch smaller than the minimum cluster size
// degrades gracefully to a single synthetic cluster with full membership
// confidence; the result carries the Degraded flag and a warning is logged.
// Internal clustering failures wrap ErrClustering and are never retried.
func (c *Clusterer) Discover(ctx context.Context, vectors [][]float64, opts DiscoverOptions) (*FittedResult, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("%w", ErrEmptyBatch)
	}

	runID := uuid.New()
	ctx = logging.WithFields(ctx,
		zap.String("run_id", runID.String()),
		zap.Int("users", n))
	start := time.Now()

	dim := len(vectors[0])
	for i, row := range vectors {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has dimension %d, want %d", ErrRaggedMatrix, i, len(row), dim)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite value at row %d column %d", ErrClustering, i, j)
			}
		}
	}

	if n < c.config.MinClusterSize {
		return c.degraded(ctx, runID, n, opts), nil
	}

	x := mat.NewDense(n, dim, nil)
	for i, row := range vectors {
		x.SetRow(i, row)
	}

	var sc scaler
	scaled := sc.fitTransform(x)

	result := &FittedResult{RunID: runID}

	forClustering := scaled
	if opts.UseReduction && dim > c.config.PCAComponents {
		reduced, retained, err := principalProject(scaled, c.config.PCAComponents)
		if err != nil {
			return nil, fmt.Errorf("reducing %d dimensions: %w", dim, err)
		}
		forClustering = reduced
		_, result.ReducedComponents = reduced.Dims()
		result.VarianceRetained = retained
		c.logger.Debug(ctx, "reduced dimensionality for clustering",
			zap.Int("from", dim),
			zap.Int("to", result.ReducedComponents),
			zap.Float64("variance_retained", retained))
	}

	minSamples := c.config.MinSamples
	if minSamples > n {
		minSamples = n
	}

	points := denseRows(forClustering)
	assigned := runDensityClustering(points, c.config.MinClusterSize, minSamples, c.dist)
	result.Labels = assigned.labels
	result.Probabilities = assigned.probs
	result.OutlierScores = assigned.outliers

	if opts.Projection {
		coords, retained, err := principalProject(scaled, 2)
		if err != nil {
			return nil, fmt.Errorf("projecting to 2 dimensions: %w", err)
		}
		result.Projection = denseRows(coords)
		result.ProjectionVariance = retained
		c.logger.Debug(ctx, "created 2D visualization coordinates",
			zap.Float64("variance_retained", retained))
	}

	noise := len(result.Members(-1))
	c.logger.Info(ctx, "pattern discovery complete",
		zap.Int("patterns", assigned.nClusters),
		zap.Int("noise", noise),
		zap.Duration("elapsed", time.Since(start)))
	c.metrics.RecordRun(ctx, time.Since(start), assigned.nClusters, n, noise, false)

	return result, nil
}

// degraded assigns every point to one synthetic cluster. Deliberate policy
// for tiny batches, not an error: a result is still produced.
func (c *Clusterer) degraded(ctx context.Context, runID uuid.UUID, n int, opts DiscoverOptions) *FittedResult {
	c.logger.Warn(ctx, "batch smaller than min_cluster_size; returning single cluster",
		zap.Int("min_cluster_size", c.config.MinClusterSize))

	result := &FittedResult{
		RunID:         runID,
		Labels:        make([]int, n),
		Probabilities: make([]float64, n),
		OutlierScores: make([]float64, n),
		Degraded:      true,
	}
	for i := range result.Probabilities {
		result.Probabilities[i] = 1.0
	}
	if opts.Projection {
		result.Projection = make([][]float64, n)
		for i := range result.Projection {
			result.Projection[i] = make([]float64, 2)
		}
	}
	c.metrics.RecordRun(ctx, 0, 1, n, 0, true)
	return result
}

func denseRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		copy(out[i], m.RawRowView(i))
	}
	return out
}
