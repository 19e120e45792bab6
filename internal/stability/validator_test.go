package stability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/archetype/internal/cluster"
	"github.com/fyrsmithlabs/archetype/internal/logging"
)

func newTestValidator(t *testing.T, threshold float64) *Validator {
	t.Helper()
	clusterer, err := cluster.NewClusterer(cluster.Config{
		MinClusterSize: 20,
		MinSamples:     5,
		Metric:         cluster.MetricEuclidean,
		PCAComponents:  50,
	}, logging.NewTestLogger(t))
	require.NoError(t, err)

	v, err := NewValidator(clusterer, threshold, logging.NewTestLogger(t))
	require.NoError(t, err)
	return v
}

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

func twoBlobs() [][]float64 {
	return append(
		blob([]float64{0, 0, 0, 0}, 30, 0.5),
		blob([]float64{10, 10, 10, 10}, 30, 0.5)...,
	)
}

func TestNewValidator_ThresholdValidation(t *testing.T) {
	clusterer, err := cluster.NewClusterer(cluster.DefaultConfig(), logging.NewNop())
	require.NoError(t, err)

	_, err = NewValidator(clusterer, 1.5, logging.NewNop())
	assert.ErrorIs(t, err, cluster.ErrInvalidConfig)

	v, err := NewValidator(clusterer, 0, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultOverlapThreshold, v.threshold)
}

func TestValidate_IdenticalPeriodsAreStable(t *testing.T) {
	v := newTestValidator(t, 0.3)
	vectors := twoBlobs()

	report, err := v.Validate(context.Background(), vectors, vectors)
	require.NoError(t, err)

	assert.Equal(t, 2, report.PatternsPeriod1)
	assert.Equal(t, 2, report.PatternsPeriod2)
	assert.Equal(t, 2, report.StablePatterns)
	assert.InDelta(t, 1.0, report.StabilityRate, 1e-9)
	for id, m := range report.Matches {
		assert.True(t, m.Stable, "cluster %d", id)
		assert.InDelta(t, 1.0, m.Overlap, 1e-9)
	}
}

func TestValidate_Deterministic(t *testing.T) {
	v := newTestValidator(t, 0.3)
	period1 := twoBlobs()
	period2 := append(
		blob([]float64{1, 1, 1, 1}, 30, 0.5),
		blob([]float64{11, 11, 11, 11}, 30, 0.5)...,
	)

	first, err := v.Validate(context.Background(), period1, period2)
	require.NoError(t, err)
	second, err := v.Validate(context.Background(), period1, period2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_ErrorsPropagate(t *testing.T) {
	v := newTestValidator(t, 0.3)

	_, err := v.Validate(context.Background(), nil, twoBlobs())
	assert.ErrorIs(t, err, cluster.ErrEmptyBatch)

	_, err = v.Validate(context.Background(), twoBlobs(), nil)
	assert.ErrorIs(t, err, cluster.ErrEmptyBatch)
}

func TestMatchClusters_RelabelingInvariance(t *testing.T) {
	labels1 := []int{0, 0, 0, 1, 1, 1, -1, -1}
	labels2 := []int{0, 0, 0, 1, 1, 1, -1, -1}
	// Same partition with period-2 ids swapped.
	swapped := []int{1, 1, 1, 0, 0, 0, -1, -1}

	a := matchClusters(labels1, labels2, 0.3)
	b := matchClusters(labels1, swapped, 0.3)

	require.Len(t, a.Matches, 2)
	for id := range a.Matches {
		assert.Equal(t, a.Matches[id].Overlap, b.Matches[id].Overlap, "cluster %d", id)
		assert.Equal(t, a.Matches[id].Stable, b.Matches[id].Stable, "cluster %d", id)
	}
	assert.Equal(t, a.StabilityRate, b.StabilityRate)
}

func TestMatchClusters_PartialOverlap(t *testing.T) {
	// Cluster 0 keeps 3 of its 4 members across periods; member 3 drifts
	// into a different cluster. Jaccard = 3 / 5.
	labels1 := []int{0, 0, 0, 0, 1, 1}
	labels2 := []int{0, 0, 0, 1, 0, 1}

	report := matchClusters(labels1, labels2, 0.5)

	m0 := report.Matches[0]
	assert.Equal(t, 0, m0.BestMatch)
	assert.InDelta(t, 0.6, m0.Overlap, 1e-9)
	assert.True(t, m0.Stable)

	// Cluster 1 overlaps period-2 cluster 1 more than cluster 0.
	m1 := report.Matches[1]
	assert.Equal(t, 1, m1.BestMatch)
	assert.InDelta(t, 1.0/3.0, m1.Overlap, 1e-9)
	assert.False(t, m1.Stable)

	assert.Equal(t, 1, report.StablePatterns)
	assert.InDelta(t, 0.5, report.StabilityRate, 1e-9)
}

func TestMatchClusters_TiesBreakToSmallerID(t *testing.T) {
	// Both period-2 clusters overlap each period-1 cluster by exactly 1/3.
	labels1 := []int{0, 0, 1, 1}
	labels2 := []int{0, 1, 0, 1}

	report := matchClusters(labels1, labels2, 0.9)
	for id, m := range report.Matches {
		assert.Equal(t, 0, m.BestMatch, "cluster %d ties to the smaller id", id)
		assert.InDelta(t, 1.0/3.0, m.Overlap, 1e-9)
	}
}

func TestMatchClusters_NoClustersYieldsZeroRate(t *testing.T) {
	allNoise := []int{-1, -1, -1}
	clustered := []int{0, 0, 0}

	report := matchClusters(allNoise, clustered, 0.3)
	assert.Zero(t, report.PatternsPeriod1)
	assert.Zero(t, report.StabilityRate)
	assert.Empty(t, report.Matches)

	report = matchClusters(clustered, allNoise, 0.3)
	assert.Equal(t, 1, report.PatternsPeriod1)
	assert.Zero(t, report.PatternsPeriod2)
	assert.Zero(t, report.StabilityRate)
	m := report.Matches[0]
	assert.Equal(t, -1, m.BestMatch)
	assert.False(t, m.Stable)
}
