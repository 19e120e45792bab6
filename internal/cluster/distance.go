package cluster

import (
	"fmt"
	"math"
)

// Supported distance metrics.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
)

type distanceFunc func(a, b []float64) float64

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func metricFunc(name string) (distanceFunc, error) {
	switch name {
	case MetricEuclidean, "":
		return euclidean, nil
	case MetricManhattan:
		return manhattan, nil
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidConfig, name)
	}
}
