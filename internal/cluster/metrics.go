package cluster

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/archetype/internal/cluster"

// Metrics holds clustering instruments. A nil *Metrics is a no-op.
type Metrics struct {
	meter      metric.Meter
	logger     *zap.Logger
	duration   metric.Float64Histogram
	patterns   metric.Int64Histogram
	noiseRatio metric.Float64Histogram
	runs       metric.Int64Counter
}

// NewMetrics creates a Metrics instance against the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"archetype.cluster.discover_duration_seconds",
		metric.WithDescription("Duration of one pattern discovery run in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.patterns, err = m.meter.Int64Histogram(
		"archetype.cluster.patterns_found",
		metric.WithDescription("Number of non-noise patterns per discovery run"),
		metric.WithUnit("{pattern}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 8, 13, 21),
	)
	if err != nil {
		m.logger.Warn("failed to create patterns histogram", zap.Error(err))
	}

	m.noiseRatio, err = m.meter.Float64Histogram(
		"archetype.cluster.noise_ratio",
		metric.WithDescription("Fraction of points labeled noise per discovery run"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1),
	)
	if err != nil {
		m.logger.Warn("failed to create noise ratio histogram", zap.Error(err))
	}

	m.runs, err = m.meter.Int64Counter(
		"archetype.cluster.runs_total",
		metric.WithDescription("Total discovery runs, labeled degraded=true for tiny-batch fallbacks"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		m.logger.Warn("failed to create runs counter", zap.Error(err))
	}
}

// RecordRun records one completed discovery run.
func (m *Metrics) RecordRun(ctx context.Context, elapsed time.Duration, patterns, total, noise int, degraded bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("degraded", degraded))
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if m.patterns != nil {
		m.patterns.Record(ctx, int64(patterns), attrs)
	}
	if m.noiseRatio != nil && total > 0 {
		m.noiseRatio.Record(ctx, float64(noise)/float64(total), attrs)
	}
	if m.runs != nil {
		m.runs.Add(ctx, 1, attrs)
	}
}
