package cluster

import "github.com/google/uuid"

// FittedResult is the complete outcome of one Discover call. It is a plain
// value: statistics and member lookups are pure reads, and holding a result
// across later Discover calls is always safe because nothing aliases.
type FittedResult struct {
	// RunID correlates this result with log entries and metrics.
	RunID uuid.UUID

	// Labels holds one assignment per input vector: -1 for noise, else a
	// dense pattern id in 0..NumClusters()-1.
	Labels []int

	// Probabilities holds soft membership confidence in [0,1] per point;
	// noise points have 0.
	Probabilities []float64

	// OutlierScores holds a score in [0,1] per point; higher means the
	// point detached earlier from its branch of the density hierarchy.
	OutlierScores []float64

	// Projection holds 2-D visualization coordinates when requested,
	// computed from the standardized (pre-reduction) vectors. Nil
	// otherwise.
	Projection [][]float64

	// ProjectionVariance is the variance fraction the 2-D projection
	// retains, when Projection is set.
	ProjectionVariance float64

	// ReducedComponents is the dimensionality used for clustering when
	// reduction ran, and 0 when clustering used the full standardized
	// space.
	ReducedComponents int

	// VarianceRetained is the variance fraction kept by the clustering
	// reduction, when ReducedComponents is nonzero.
	VarianceRetained float64

	// Degraded marks the tiny-batch fallback: fewer points than the
	// minimum cluster size, so every point was assigned to one synthetic
	// cluster instead of running a real clustering.
	Degraded bool
}

// NumClusters returns K, the number of non-noise patterns found.
func (r *FittedResult) NumClusters() int {
	k := 0
	for _, l := range r.Labels {
		if l+1 > k {
			k = l + 1
		}
	}
	return k
}

// Label returns the assignment for one point index.
func (r *FittedResult) Label(i int) int {
	return r.Labels[i]
}

// Members returns the point indices assigned to the given pattern id.
// Pass -1 for the noise set.
func (r *FittedResult) Members(id int) []int {
	var out []int
	for i, l := range r.Labels {
		if l == id {
			out = append(out, i)
		}
	}
	return out
}

// ClusterStats summarizes one discovered pattern.
type ClusterStats struct {
	// Size is the number of member points.
	Size int
	// Percentage is the share of the non-noise total, in percent.
	Percentage float64
	// Mean/Min/MaxProbability summarize member confidence; the mean is the
	// cluster's cohesion.
	MeanProbability float64
	MinProbability  float64
	MaxProbability  float64
}

// Cohesion is the mean membership probability; higher means a tighter
// pattern.
func (s ClusterStats) Cohesion() float64 {
	return s.MeanProbability
}

// Statistics aggregates per-pattern and batch-level figures. Recomputed on
// demand from the result, never stored independently.
type Statistics struct {
	NumClusters         int
	NumNoise            int
	NumTotal            int
	NoisePercentage     float64
	Clusters            map[int]ClusterStats
	AvgClusterSize      float64
	LargestClusterSize  int
	SmallestClusterSize int
}

// Statistics derives descriptive statistics from the result.
func (r *FittedResult) Statistics() Statistics {
	stats := Statistics{
		NumTotal: len(r.Labels),
		Clusters: make(map[int]ClusterStats),
	}

	nonNoise := 0
	for _, l := range r.Labels {
		if l == -1 {
			stats.NumNoise++
		} else {
			nonNoise++
		}
	}
	if stats.NumTotal > 0 {
		stats.NoisePercentage = float64(stats.NumNoise) / float64(stats.NumTotal) * 100
	}

	stats.NumClusters = r.NumClusters()
	var sizeSum int
	for id := 0; id < stats.NumClusters; id++ {
		var (
			size     int
			sum      float64
			min, max float64
		)
		for i, l := range r.Labels {
			if l != id {
				continue
			}
			p := r.Probabilities[i]
			if size == 0 {
				min, max = p, p
			} else {
				if p < min {
					min = p
				}
				if p > max {
					max = p
				}
			}
			size++
			sum += p
		}
		cs := ClusterStats{
			Size:            size,
			MinProbability:  min,
			MaxProbability:  max,
			MeanProbability: sum / float64(size),
		}
		if nonNoise > 0 {
			cs.Percentage = float64(size) / float64(nonNoise) * 100
		}
		stats.Clusters[id] = cs

		sizeSum += size
		if size > stats.LargestClusterSize {
			stats.LargestClusterSize = size
		}
		if stats.SmallestClusterSize == 0 || size < stats.SmallestClusterSize {
			stats.SmallestClusterSize = size
		}
	}
	if stats.NumClusters > 0 {
		stats.AvgClusterSize = float64(sizeSum) / float64(stats.NumClusters)
	}
	return stats
}
