package stability

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/archetype/internal/cluster"
	"github.com/fyrsmithlabs/archetype/internal/logging"
)

// DefaultOverlapThreshold marks a pattern stable when its best cross-period
// match overlaps by more than 30%.
const DefaultOverlapThreshold = 0.3

// Match describes the best period-2 counterpart of one period-1 cluster.
type Match struct {
	// BestMatch is the period-2 cluster id, or -1 when period 2 produced
	// no clusters.
	BestMatch int `json:"best_match"`
	// Overlap is the Jaccard similarity of the two member index sets.
	Overlap float64 `json:"overlap"`
	// Stable reports whether Overlap met the threshold.
	Stable bool `json:"is_stable"`
}

// Report is the read-only outcome of one validation call.
type Report struct {
	PatternsPeriod1 int           `json:"n_patterns_period1"`
	PatternsPeriod2 int           `json:"n_patterns_period2"`
	Matches         map[int]Match `json:"overlap_scores"`
	StablePatterns  int           `json:"n_stable_patterns"`
	StabilityRate   float64       `json:"stability_rate"`
	Threshold       float64       `json:"threshold_used"`
}

// Validator measures cluster stability across two periods.
type Validator struct {
	clusterer *cluster.Clusterer
	threshold float64
	logger    *logging.Logger
}

// NewValidator creates a validator that clusters each period with the given
// clusterer configuration. A threshold of 0 falls back to the default.
func NewValidator(clusterer *cluster.Clusterer, threshold float64, logger *logging.Logger) (*Validator, error) {
	if threshold == 0 {
		threshold = DefaultOverlapThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: overlap threshold must be in [0,1], got %v", cluster.ErrInvalidConfig, threshold)
	}
	return &Validator{
		clusterer: clusterer,
		threshold: threshold,
		logger:    logger.Named("stability"),
	}, nil
}

// Validate clusters both periods independently and matches every period-1
// cluster to its best period-2 counterpart by Jaccard overlap.
//
// A period with zero non-noise clusters yields a zero stability rate rather
// than an error; that is a valid, if uninteresting, outcome.
func (v *Validator) Validate(ctx context.Context, period1, period2 [][]float64) (*Report, error) {
	opts := cluster.DiscoverOptions{UseReduction: true}

	fit1, err := v.clusterer.Discover(ctx, period1, opts)
	if err != nil {
		return nil, fmt.Errorf("clustering period 1: %w", err)
	}
	fit2, err := v.clusterer.Discover(ctx, period2, opts)
	if err != nil {
		return nil, fmt.Errorf("clustering period 2: %w", err)
	}

	report := matchClusters(fit1.Labels, fit2.Labels, v.threshold)

	v.logger.Info(ctx, "stability validation complete",
		zap.Int("patterns_period1", report.PatternsPeriod1),
		zap.Int("patterns_period2", report.PatternsPeriod2),
		zap.Int("stable", report.StablePatterns),
		zap.Float64("rate", report.StabilityRate))
	return report, nil
}

// matchClusters computes the report from two label arrays. Matching is by
// member set, so any relabeling of period-2 cluster ids leaves the overlap
// scores unchanged; ties on overlap go to the smallest period-2 id.
func matchClusters(labels1, labels2 []int, threshold float64) *Report {
	members1 := memberSets(labels1)
	members2 := memberSets(labels2)

	report := &Report{
		PatternsPeriod1: len(members1),
		PatternsPeriod2: len(members2),
		Matches:         make(map[int]Match, len(members1)),
		Threshold:       threshold,
	}

	for c1 := 0; c1 < len(members1); c1++ {
		best := Match{BestMatch: -1}
		for c2 := 0; c2 < len(members2); c2++ {
			if overlap := jaccard(members1[c1], members2[c2]); overlap > best.Overlap {
				best.Overlap = overlap
				best.BestMatch = c2
			}
		}
		best.Stable = best.Overlap >= threshold && best.BestMatch >= 0
		report.Matches[c1] = best
		if best.Stable {
			report.StablePatterns++
		}
	}

	if len(members1) > 0 {
		report.StabilityRate = float64(report.StablePatterns) / float64(len(members1))
	}
	return report
}

// memberSets groups point indices by non-noise label. Labels are dense from
// 0, so the slice index is the cluster id.
func memberSets(labels []int) [][]int {
	k := 0
	for _, l := range labels {
		if l+1 > k {
			k = l + 1
		}
	}
	sets := make([][]int, k)
	for i, l := range labels {
		if l >= 0 {
			sets[l] = append(sets[l], i)
		}
	}
	return sets
}

// jaccard computes |intersection| / |union| for two sorted index slices.
func jaccard(a, b []int) float64 {
	var intersection int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
