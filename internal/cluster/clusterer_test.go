package cluster

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/archetype/internal/logging"
)

// blob generates count points around center with small deterministic
// jitter, so tests are reproducible without a seeded PRNG.
func blob(center []float64, count int, spread float64) [][]float64 {
	out := make([][]float64, count)
	for i := range out {
		p := make([]float64, len(center))
		for j := range p {
			jitter := float64(((i*31+j*17)%97)-48) / 48.0
			p[j] = center[j] + spread*jitter
		}
		out[i] = p
	}
	return out
}

func newTestClusterer(t *testing.T, cfg Config) *Clusterer {
	t.Helper()
	c, err := NewClusterer(cfg, logging.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

func twoBlobConfig() Config {
	return Config{MinClusterSize: 20, MinSamples: 5, Metric: MetricEuclidean, PCAComponents: 50}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"min_cluster_size too small", Config{MinClusterSize: 1, MinSamples: 1, PCAComponents: 2}},
		{"min_samples too small", Config{MinClusterSize: 2, MinSamples: 0, PCAComponents: 2}},
		{"pca_components too small", Config{MinClusterSize: 2, MinSamples: 1, PCAComponents: 1}},
		{"unknown metric", Config{MinClusterSize: 2, MinSamples: 1, PCAComponents: 2, Metric: "chebyshev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestDiscover_EmptyBatch(t *testing.T) {
	c := newTestClusterer(t, DefaultConfig())

	_, err := c.Discover(context.Background(), nil, DiscoverOptions{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestDiscover_RaggedMatrix(t *testing.T) {
	c := newTestClusterer(t, DefaultConfig())

	_, err := c.Discover(context.Background(), [][]float64{{1, 2}, {1}}, DiscoverOptions{})
	assert.ErrorIs(t, err, ErrRaggedMatrix)
}

func TestDiscover_NonFiniteValues(t *testing.T) {
	c := newTestClusterer(t, DefaultConfig())

	_, err := c.Discover(context.Background(), [][]float64{{1, math.NaN()}}, DiscoverOptions{})
	assert.ErrorIs(t, err, ErrClustering)
}

func TestDiscover_DegradedTinyBatch(t *testing.T) {
	// Five all-zero vectors against min_cluster_size 50: the engine falls
	// back to a single synthetic cluster instead of erroring.
	c := newTestClusterer(t, Config{MinClusterSize: 50, MinSamples: 10, PCAComponents: 50})

	vectors := make([][]float64, 5)
	for i := range vectors {
		vectors[i] = make([]float64, 41)
	}

	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{Projection: true})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, result.Labels)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 1.0, result.Probabilities[i])
		assert.Equal(t, 0.0, result.OutlierScores[i])
		assert.Equal(t, []float64{0, 0}, result.Projection[i])
	}
	assert.Equal(t, 1, result.NumClusters())
}

func TestDiscover_TwoBlobs(t *testing.T) {
	vectors := append(
		blob([]float64{0, 0, 0, 0}, 30, 0.5),
		blob([]float64{10, 10, 10, 10}, 30, 0.5)...,
	)

	c := newTestClusterer(t, twoBlobConfig())
	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{})
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	require.Len(t, result.Labels, 60)
	assert.Equal(t, 2, result.NumClusters())

	// Each blob maps onto exactly one cluster with at most 10% noise.
	noise := len(result.Members(-1))
	assert.LessOrEqual(t, noise, 6)
	for _, half := range [][2]int{{0, 30}, {30, 60}} {
		seen := -2
		for i := half[0]; i < half[1]; i++ {
			l := result.Labels[i]
			if l == -1 {
				continue
			}
			if seen == -2 {
				seen = l
			}
			assert.Equal(t, seen, l, "blob rows must share one cluster")
		}
		assert.GreaterOrEqual(t, seen, 0)
	}

	for i := range vectors {
		if result.Labels[i] >= 0 {
			assert.Greater(t, result.Probabilities[i], 0.0)
			assert.LessOrEqual(t, result.Probabilities[i], 1.0)
		} else {
			assert.Zero(t, result.Probabilities[i])
		}
		assert.GreaterOrEqual(t, result.OutlierScores[i], 0.0)
		assert.LessOrEqual(t, result.OutlierScores[i], 1.0)
	}
}

func TestDiscover_LabelsAreDense(t *testing.T) {
	vectors := append(
		append(
			blob([]float64{0, 0, 0}, 25, 0.4),
			blob([]float64{8, 8, 8}, 25, 0.4)...,
		),
		blob([]float64{-8, 8, -8}, 25, 0.4)...,
	)

	c := newTestClusterer(t, Config{MinClusterSize: 15, MinSamples: 5, PCAComponents: 50})
	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{})
	require.NoError(t, err)

	k := result.NumClusters()
	present := make(map[int]bool)
	for _, l := range result.Labels {
		require.GreaterOrEqual(t, l, -1)
		require.Less(t, l, k)
		present[l] = true
	}
	for id := 0; id < k; id++ {
		assert.True(t, present[id], "label %d missing from a dense range", id)
	}
}

func TestDiscover_SingleBlobHasNoSplit(t *testing.T) {
	// 25 points in one dense region with min_cluster_size 20: no split can
	// produce two valid children, and the hierarchy root is never
	// selected, so everything is noise.
	vectors := blob([]float64{0, 0, 0, 0}, 25, 0.5)

	c := newTestClusterer(t, twoBlobConfig())
	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.NumClusters())
	for i := range vectors {
		assert.Equal(t, -1, result.Labels[i])
		assert.Zero(t, result.Probabilities[i])
	}
}

func TestDiscover_MinSamplesClampedToBatch(t *testing.T) {
	vectors := append(
		blob([]float64{0, 0}, 15, 0.3),
		blob([]float64{9, 9}, 15, 0.3)...,
	)

	// min_samples far above N must clamp instead of panicking.
	c := newTestClusterer(t, Config{MinClusterSize: 10, MinSamples: 500, PCAComponents: 50})
	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{})
	require.NoError(t, err)
	require.Len(t, result.Labels, 30)
	for i, l := range result.Labels {
		assert.GreaterOrEqual(t, l, -1)
		assert.GreaterOrEqual(t, result.Probabilities[i], 0.0)
		assert.LessOrEqual(t, result.Probabilities[i], 1.0)
	}
}

func TestDiscover_ReductionAndProjection(t *testing.T) {
	center1 := make([]float64, 40)
	center2 := make([]float64, 40)
	for j := range center2 {
		center2[j] = 10
	}
	vectors := append(blob(center1, 30, 0.5), blob(center2, 30, 0.5)...)

	c := newTestClusterer(t, Config{MinClusterSize: 20, MinSamples: 5, PCAComponents: 5})
	result, err := c.Discover(context.Background(), vectors, DiscoverOptions{UseReduction: true, Projection: true})
	require.NoError(t, err)

	assert.Equal(t, 5, result.ReducedComponents)
	assert.Greater(t, result.VarianceRetained, 0.0)
	assert.LessOrEqual(t, result.VarianceRetained, 1.0)

	require.Len(t, result.Projection, 60)
	assert.Len(t, result.Projection[0], 2)
	assert.Greater(t, result.ProjectionVariance, 0.0)

	assert.Equal(t, 2, result.NumClusters())
}

func TestDiscover_Deterministic(t *testing.T) {
	vectors := append(
		blob([]float64{0, 0, 0, 0}, 30, 0.5),
		blob([]float64{10, 10, 10, 10}, 30, 0.5)...,
	)

	c := newTestClusterer(t, twoBlobConfig())
	a, err := c.Discover(context.Background(), vectors, DiscoverOptions{Projection: true})
	require.NoError(t, err)
	b, err := c.Discover(context.Background(), vectors, DiscoverOptions{Projection: true})
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Probabilities, b.Probabilities)
	assert.Equal(t, a.OutlierScores, b.OutlierScores)
	assert.Equal(t, a.Projection, b.Projection)
}
